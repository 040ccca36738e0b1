package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/buildgate/internal/adapters/inbound/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "core", "src", "main", "java"), 0755))

	root := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"init", tmpDir})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, "buildgate.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "group: net.kyori.moonshine")
	assert.Contains(t, string(data), "version: 2.0.0-SNAPSHOT")
	assert.Contains(t, string(data), "name: core")
	assert.Contains(t, buf.String(), "Modules: core")
}

func TestInitCmd_GroupAndVersion(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"init", tmpDir, "--group", "org.example", "--version", "1.4.0"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, "buildgate.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "group: org.example")
	assert.Contains(t, string(data), "version: 1.4.0")
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "buildgate.yaml"), []byte("existing"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "buildgate.yaml"), []byte("old"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"init", tmpDir, "--force"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, "buildgate.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "group:")
	assert.NotEqual(t, "old", string(data))
}
