package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestViolation_String(t *testing.T) {
	assert.Equal(t, "A.java:12:4: missing javadoc", domain.Violation{File: "A.java", Line: 12, Column: 4, Message: "missing javadoc"}.String())
	assert.Equal(t, "A.java:12: x", domain.Violation{File: "A.java", Line: 12, Message: "x"}.String())
	assert.Equal(t, "A.java: x", domain.Violation{File: "A.java", Message: "x"}.String())
	assert.Equal(t, "x", domain.Violation{Message: "x"}.String())
}

func TestErrors_KeepsErrorSeverityOnly(t *testing.T) {
	vs := []domain.Violation{
		{File: "A.java", Severity: domain.SeverityWarning, Message: "long line"},
		{File: "B.java", Severity: domain.SeverityError, Message: "unused import"},
		{File: "C.java", Severity: domain.SeverityInfo, Message: "audit"},
	}
	errs := domain.Errors(vs)
	assert.Equal(t, []domain.Violation{vs[1]}, errs)
	assert.Empty(t, domain.Errors(vs[:1]))
}

func TestTestRunResult_Failed(t *testing.T) {
	ok := domain.TestRunResult{Cases: []domain.TestCase{{Name: "a", Status: domain.TestPassed}, {Name: "b", Status: domain.TestSkipped}}}
	assert.False(t, ok.Failed())

	failedCase := domain.TestRunResult{Cases: []domain.TestCase{{Name: "a", Status: domain.TestFailed}}}
	assert.True(t, failedCase.Failed())

	badExit := domain.TestRunResult{ExitCode: 1}
	assert.True(t, badExit.Failed())

	p, f, s := ok.Counts()
	assert.Equal(t, [3]int{1, 0, 1}, [3]int{p, f, s})
}

func TestRunSummary_PassedAndEntry(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := domain.RunSummary{
		RunID:     "r1",
		Workspace: domain.WorkspaceConfig{GroupID: "g", Version: "1.0.0"},
		StartedAt: started,
		Modules: []domain.ModuleResult{
			{Module: "core", Outcome: domain.OutcomePassed},
			{Module: "kotlin", Outcome: domain.OutcomeGateFailed},
		},
	}
	assert.False(t, s.Passed())

	m, ok := s.Module("kotlin")
	assert.True(t, ok)
	assert.Equal(t, domain.OutcomeGateFailed, m.Outcome)

	e := s.Entry()
	assert.Equal(t, "r1", e.RunID)
	assert.Equal(t, "1.0.0", e.Version)
	assert.Equal(t, started, e.Timestamp)
	assert.Equal(t, domain.OutcomePassed, e.Outcomes["core"])
}

func TestGateError(t *testing.T) {
	err := &domain.GateError{
		Module: "core",
		Check:  domain.CheckLintMain,
		Violations: []domain.Violation{
			{File: "A.java", Line: 1, Message: "a"},
			{File: "B.java", Line: 2, Message: "b"},
			{File: "C.java", Line: 3, Message: "c"},
			{File: "D.java", Line: 4, Message: "d"},
			{File: "E.java", Line: 5, Message: "e"},
		},
	}
	assert.True(t, errors.Is(err, domain.ErrGateFailed))
	assert.Contains(t, err.Error(), "core: lint-main failed with 5 violation(s)")
	assert.Contains(t, err.Error(), "A.java:1: a")
	assert.Contains(t, err.Error(), "and 2 more")
	assert.NotContains(t, err.Error(), "E.java")
}

func TestPublishError(t *testing.T) {
	err := &domain.PublishError{URL: "https://repo/x.jar", StatusCode: 401, Status: "401 Unauthorized", Body: "bad credentials\n"}
	assert.Equal(t, "publishing https://repo/x.jar: 401 Unauthorized: bad credentials", err.Error())

	cause := errors.New("connection refused")
	netErr := &domain.PublishError{URL: "https://repo/x.jar", Err: cause}
	assert.True(t, errors.Is(netErr, cause))
}

func TestCoverageReportPolicy(t *testing.T) {
	p := domain.DefaultCoverageReportPolicy("/ws")
	p.Formats[domain.FormatHTML] = true
	assert.Equal(t, []domain.ReportFormat{domain.FormatXML, domain.FormatHTML}, p.Enabled())
	assert.Equal(t, "/ws/build/reports/coverage/message-core.xml", p.ReportPath("MessageCore", domain.FormatXML))

	c := domain.CoverageCounter{Type: "LINE", Missed: 1, Covered: 3}
	assert.InDelta(t, 0.75, c.Ratio(), 0.0001)
	assert.Zero(t, domain.CoverageCounter{}.Ratio())
}
