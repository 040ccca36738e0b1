package main

import (
	"fmt"
	"os"

	"github.com/openkraft/buildgate/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "buildgate:", err)
		os.Exit(1)
	}
}
