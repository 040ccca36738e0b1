package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig marks missing or malformed workspace input. Reported before
	// any module work begins.
	ErrConfig = errors.New("configuration error")

	// ErrNoSourceSet is returned by Configure when a module has nothing to build.
	ErrNoSourceSet = errors.New("module has no buildable source set")

	// ErrInvalidTransition is returned when a gate run is asked to skip or
	// reorder a stage.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrGateFailed marks a lint or license gate failure.
	ErrGateFailed = errors.New("quality gate failed")
)

// GateError describes a failed gate together with the violations reported
// by the underlying tool.
type GateError struct {
	Module     string
	Check      CheckTag
	Violations []Violation
}

func (e *GateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failed with %d violation(s)", e.Module, e.Check, len(e.Violations))
	for i, v := range e.Violations {
		if i == 3 {
			fmt.Fprintf(&b, "; and %d more", len(e.Violations)-i)
			break
		}
		b.WriteString("; ")
		b.WriteString(v.String())
	}
	return b.String()
}

func (e *GateError) Unwrap() error { return ErrGateFailed }

// PublishError is a failure reported by the remote repository. The body is
// kept verbatim so the caller sees what the endpoint said.
type PublishError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("publishing %s: %v", e.URL, e.Err)
	}
	msg := fmt.Sprintf("publishing %s: %s", e.URL, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

func (e *PublishError) Unwrap() error { return e.Err }

// configErrorf builds an error wrapping ErrConfig.
func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
