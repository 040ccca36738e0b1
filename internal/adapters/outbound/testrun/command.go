package testrun

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openkraft/buildgate/internal/domain"
)

// CommandRunner implements domain.TestRunner by running the module's test
// command and reading the JUnit XML reports it leaves behind.
//
// Arguments may use the placeholders {module} and {module_dir}.
type CommandRunner struct {
	Command      []string
	ResultsDir   string
	CoverageData string
	Logger       *zap.Logger
}

// New creates a runner. resultsDir and coverageData are relative to the
// module directory.
func New(command []string, resultsDir, coverageData string, logger *zap.Logger) *CommandRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRunner{Command: command, ResultsDir: resultsDir, CoverageData: coverageData, Logger: logger}
}

// Run executes the tests. A failing suite is reported in the result; only a
// command that cannot start (or a cancelled context) returns an error.
func (r *CommandRunner) Run(ctx context.Context, p domain.ModulePolicy) (*domain.TestRunResult, error) {
	command := r.Command
	if len(p.TestCommand) > 0 {
		command = p.TestCommand
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: no test command for module %s", domain.ErrConfig, p.Module)
	}

	replacer := strings.NewReplacer("{module}", p.Module, "{module_dir}", p.Path)
	args := make([]string, len(command)-1)
	for i, a := range command[1:] {
		args[i] = replacer.Replace(a)
	}

	resultsDir := filepath.Join(p.Path, r.ResultsDir)
	// Stale reports from a previous run would be counted again.
	if r.ResultsDir != "" {
		if err := os.RemoveAll(resultsDir); err != nil {
			return nil, fmt.Errorf("clearing %s: %w", resultsDir, err)
		}
	}

	cmd := exec.CommandContext(ctx, replacer.Replace(command[0]), args...)
	cmd.Dir = p.Path

	start := time.Now()
	out, err := cmd.CombinedOutput()
	result := &domain.TestRunResult{
		Module:   p.Module,
		Output:   string(out),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", command[0], err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if r.ResultsDir != "" {
		cases, err := ReadJUnitDir(resultsDir)
		if err != nil {
			return nil, err
		}
		result.Cases = cases
	}

	if r.CoverageData != "" {
		data := filepath.Join(p.Path, r.CoverageData)
		if _, err := os.Stat(data); err == nil {
			result.CoverageData = data
		}
	}

	passed, failed, skipped := result.Counts()
	r.Logger.Info("tests finished",
		zap.String("module", p.Module),
		zap.Int("exit_code", result.ExitCode),
		zap.Int("passed", passed),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Duration("duration", result.Duration))

	return result, nil
}

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name  string      `xml:"name,attr"`
	Cases []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure"`
	Error     *junitMessage `xml:"error"`
	Skipped   *junitMessage `xml:"skipped"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// ReadJUnitDir reads every *.xml report under dir. A missing directory
// yields no cases.
func ReadJUnitDir(dir string) ([]domain.TestCase, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading test results: %w", err)
	}
	sort.Strings(files)

	var cases []domain.TestCase
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		parsed, err := ParseJUnit(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		cases = append(cases, parsed...)
	}
	return cases, nil
}

// ParseJUnit parses a single <testsuite> or a <testsuites> document.
func ParseJUnit(data []byte) ([]domain.TestCase, error) {
	var suites []junitSuite

	var wrapped junitSuites
	if err := xml.Unmarshal(data, &wrapped); err == nil {
		suites = wrapped.Suites
	} else {
		var single junitSuite
		if err2 := xml.Unmarshal(data, &single); err2 != nil {
			return nil, err2
		}
		suites = []junitSuite{single}
	}

	var cases []domain.TestCase
	for _, s := range suites {
		for _, c := range s.Cases {
			tc := domain.TestCase{
				Suite:    c.ClassName,
				Name:     c.Name,
				Status:   domain.TestPassed,
				Duration: time.Duration(math.Round(c.Time * float64(time.Second))),
			}
			if tc.Suite == "" {
				tc.Suite = s.Name
			}
			switch {
			case c.Failure != nil:
				tc.Status = domain.TestFailed
				tc.Message = firstNonEmpty(c.Failure.Message, c.Failure.Body)
			case c.Error != nil:
				tc.Status = domain.TestFailed
				tc.Message = firstNonEmpty(c.Error.Message, c.Error.Body)
			case c.Skipped != nil:
				tc.Status = domain.TestSkipped
				tc.Message = c.Skipped.Message
			}
			cases = append(cases, tc)
		}
	}
	return cases, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
