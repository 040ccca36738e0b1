package domain

import (
	"fmt"
	"strings"
)

// CheckTag names a pre-test check.
type CheckTag string

const (
	CheckLintMain      CheckTag = "lint-main"
	CheckLintTest      CheckTag = "lint-test"
	CheckLicenseFormat CheckTag = "license-format"
	CheckLicenseMain   CheckTag = "license-main"
	CheckLicenseTest   CheckTag = "license-test"
)

// SourceSetName returns the source set a check runs against.
func (c CheckTag) SourceSetName() string {
	if strings.HasSuffix(string(c), "-test") {
		return SourceSetTest
	}
	return SourceSetMain
}

// QualityGatePolicy is the ordered list of checks that must pass before a
// module's tests run.
type QualityGatePolicy struct {
	Checks            []CheckTag `json:"checks"`
	RunLicenseAutoFix bool       `json:"run_license_auto_fix"`
}

// NewQualityGatePolicy builds the gate list. Lint always precedes license
// verification; the auto-fix step is only scheduled outside CI.
func NewQualityGatePolicy(ci bool, caps CapabilitySet) QualityGatePolicy {
	p := QualityGatePolicy{RunLicenseAutoFix: !ci}
	if caps.Has(CapCheckstyle) {
		p.Checks = append(p.Checks, CheckLintMain, CheckLintTest)
	}
	if caps.Has(CapLicense) {
		if !ci {
			p.Checks = append(p.Checks, CheckLicenseFormat)
		}
		p.Checks = append(p.Checks, CheckLicenseMain, CheckLicenseTest)
	}
	return p
}

// LintChecks returns the lint checks in order.
func (p QualityGatePolicy) LintChecks() []CheckTag {
	return p.filter(CheckLintMain, CheckLintTest)
}

// LicenseChecks returns the license verification checks in order.
func (p QualityGatePolicy) LicenseChecks() []CheckTag {
	return p.filter(CheckLicenseMain, CheckLicenseTest)
}

func (p QualityGatePolicy) filter(tags ...CheckTag) []CheckTag {
	var out []CheckTag
	for _, c := range p.Checks {
		for _, t := range tags {
			if c == t {
				out = append(out, c)
			}
		}
	}
	return out
}

// ParseCIFlag interprets the CI environment value. Only a case-insensitive
// "true" enables CI mode.
func ParseCIFlag(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// Stage is a step of a module's gate pipeline.
type Stage string

const (
	StagePending         Stage = "pending"
	StageLintChecked     Stage = "lint-checked"
	StageAutoFixed       Stage = "auto-fixed"
	StageLicenseVerified Stage = "license-verified"
	StageReadyForTest    Stage = "ready-for-test"
	StageTestRun         Stage = "test-run"
	StageReportGenerated Stage = "report-generated"
	StageFailed          Stage = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s Stage) IsTerminal() bool {
	return s == StageReportGenerated || s == StageFailed
}

func isAllowedTransition(from, to Stage) bool {
	switch from {
	case StagePending:
		return to == StageLintChecked || to == StageFailed
	case StageLintChecked:
		return to == StageLicenseVerified || to == StageAutoFixed || to == StageFailed
	case StageAutoFixed:
		return to == StageLicenseVerified || to == StageFailed
	case StageLicenseVerified:
		return to == StageReadyForTest || to == StageFailed
	case StageReadyForTest:
		return to == StageTestRun || to == StageFailed
	case StageTestRun:
		return to == StageReportGenerated
	default:
		return false
	}
}

// GateRun tracks one module's progress through the stages of a single run.
// It is owned by one goroutine.
type GateRun struct {
	module  string
	autoFix bool
	current Stage
	history []Stage
}

// NewGateRun starts a gate run in the pending stage.
func NewGateRun(module string, policy QualityGatePolicy) *GateRun {
	return &GateRun{
		module:  module,
		autoFix: policy.RunLicenseAutoFix,
		current: StagePending,
		history: []Stage{StagePending},
	}
}

// Current returns the stage the run is in.
func (r *GateRun) Current() Stage { return r.current }

// History returns the stages visited so far, in order.
func (r *GateRun) History() []Stage { return append([]Stage(nil), r.history...) }

// Reached reports whether the run has passed through s.
func (r *GateRun) Reached(s Stage) bool {
	for _, h := range r.history {
		if h == s {
			return true
		}
	}
	return false
}

// Advance moves the run to the next stage, rejecting skipped or reordered
// stages. Auto-fix is rejected when the policy runs in CI mode.
func (r *GateRun) Advance(to Stage) error {
	if to == StageAutoFixed && !r.autoFix {
		return fmt.Errorf("%w: %s: auto-fix disabled in CI", ErrInvalidTransition, r.module)
	}
	if !isAllowedTransition(r.current, to) {
		return fmt.Errorf("%w: %s: %s -> %s", ErrInvalidTransition, r.module, r.current, to)
	}
	r.current = to
	r.history = append(r.history, to)
	return nil
}

// Fail moves the run to the failed stage.
func (r *GateRun) Fail() error { return r.Advance(StageFailed) }
