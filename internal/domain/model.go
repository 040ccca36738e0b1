package domain

import (
	"fmt"
	"time"
)

// Violation is a single finding from a gate tool.
type Violation struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity string `json:"severity"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
}

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

func (v Violation) String() string {
	loc := v.File
	if v.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, v.Line)
		if v.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, v.Column)
		}
	}
	if loc == "" {
		return v.Message
	}
	return loc + ": " + v.Message
}

// Errors returns the error-severity findings, the ones that fail a gate.
func Errors(vs []Violation) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Severity == SeverityError {
			out = append(out, v)
		}
	}
	return out
}

// TestStatus is the outcome of one test case.
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

// TestCase is one reported test.
type TestCase struct {
	Suite    string        `json:"suite"`
	Name     string        `json:"name"`
	Status   TestStatus    `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// TestRunResult is what the test runner reports for one module.
type TestRunResult struct {
	Module   string        `json:"module"`
	ExitCode int           `json:"exit_code"`
	Cases    []TestCase    `json:"cases"`
	Output   string        `json:"-"`
	Duration time.Duration `json:"duration"`
	// CoverageData is the engine's raw coverage file for the run, if any.
	CoverageData string `json:"coverage_data,omitempty"`
}

// Failed reports whether any test failed or the runner exited non-zero.
func (r TestRunResult) Failed() bool {
	if r.ExitCode != 0 {
		return true
	}
	for _, c := range r.Cases {
		if c.Status == TestFailed {
			return true
		}
	}
	return false
}

// Counts returns passed, failed and skipped totals.
func (r TestRunResult) Counts() (passed, failed, skipped int) {
	for _, c := range r.Cases {
		switch c.Status {
		case TestPassed:
			passed++
		case TestFailed:
			failed++
		case TestSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Outcome is the single pass/fail result of a module for a run.
type Outcome string

const (
	OutcomePassed      Outcome = "passed"
	OutcomeGateFailed  Outcome = "gate-failed"
	OutcomeTestsFailed Outcome = "tests-failed"
	OutcomeError       Outcome = "error"
	OutcomeAborted     Outcome = "aborted"
)

// ModuleResult is one module's outcome for a run.
type ModuleResult struct {
	Module     string          `json:"module"`
	Outcome    Outcome         `json:"outcome"`
	Stages     []Stage         `json:"stages"`
	FailedAt   CheckTag        `json:"failed_at,omitempty"`
	Violations []Violation     `json:"violations,omitempty"`
	Fixed      []string        `json:"fixed,omitempty"`
	Tests      *TestRunResult  `json:"tests,omitempty"`
	Report     *CoverageReport `json:"report,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// RunSummary is the result of one pipeline run across modules.
type RunSummary struct {
	RunID     string          `json:"run_id"`
	Workspace WorkspaceConfig `json:"workspace"`
	Commit    string          `json:"commit,omitempty"`
	CI        bool            `json:"ci"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Modules   []ModuleResult  `json:"modules"`
}

// Passed reports whether every module passed.
func (s RunSummary) Passed() bool {
	for _, m := range s.Modules {
		if m.Outcome != OutcomePassed {
			return false
		}
	}
	return true
}

// Module returns the result for the named module.
func (s RunSummary) Module(name string) (ModuleResult, bool) {
	for _, m := range s.Modules {
		if m.Module == name {
			return m, true
		}
	}
	return ModuleResult{}, false
}

// RunEntry is the compact form of a run kept in history.
type RunEntry struct {
	RunID     string             `json:"run_id"`
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Commit    string             `json:"commit,omitempty"`
	CI        bool               `json:"ci"`
	Outcomes  map[string]Outcome `json:"outcomes"`
}

// Entry converts a summary to its history form.
func (s RunSummary) Entry() RunEntry {
	e := RunEntry{
		RunID:     s.RunID,
		Timestamp: s.StartedAt,
		Version:   s.Workspace.Version,
		Commit:    s.Commit,
		CI:        s.CI,
		Outcomes:  make(map[string]Outcome, len(s.Modules)),
	}
	for _, m := range s.Modules {
		e.Outcomes[m.Module] = m.Outcome
	}
	return e
}

// BundleResult is one archive written by the bundle step.
type BundleResult struct {
	Module     string `json:"module"`
	Classifier string `json:"classifier"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
}
