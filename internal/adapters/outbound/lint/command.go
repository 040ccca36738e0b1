package lint

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/openkraft/buildgate/internal/domain"
)

// CommandLinter implements domain.Linter by running an external
// static-analysis command (checkstyle by default) over a source set.
//
// Arguments may use the placeholders {config_dir}, {basedir} and {module}.
// The files to check are appended after the arguments. The absolute config
// directory is exported to the tool as the "basedir" property.
type CommandLinter struct {
	Command   []string
	ConfigDir string
	Logger    *zap.Logger
}

// New creates a linter rooted at the workspace config directory.
func New(command []string, root, configDir string, logger *zap.Logger) *CommandLinter {
	if !filepath.IsAbs(configDir) {
		configDir = filepath.Join(root, configDir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandLinter{Command: command, ConfigDir: configDir, Logger: logger}
}

// Lint runs the tool and parses its findings. A non-zero exit without
// parseable findings is reported as a tool error.
func (l *CommandLinter) Lint(ctx context.Context, m domain.Module, set domain.SourceSet) ([]domain.Violation, error) {
	if len(set.Files) == 0 {
		return nil, nil
	}
	if len(l.Command) == 0 {
		return nil, fmt.Errorf("%w: lint command is empty", domain.ErrConfig)
	}

	replacer := strings.NewReplacer(
		"{config_dir}", l.ConfigDir,
		"{basedir}", l.ConfigDir,
		"{module}", m.Name,
	)
	args := make([]string, 0, len(l.Command)-1+len(set.Files))
	for _, a := range l.Command[1:] {
		args = append(args, replacer.Replace(a))
	}
	args = append(args, set.Files...)

	cmd := exec.CommandContext(ctx, replacer.Replace(l.Command[0]), args...)
	cmd.Dir = m.Path
	cmd.Env = append(os.Environ(), "basedir="+l.ConfigDir, "JAVA_OPTS="+javaOpts(os.Getenv("JAVA_OPTS"), l.ConfigDir))

	l.Logger.Debug("running lint",
		zap.String("module", m.Name),
		zap.String("source_set", set.Name),
		zap.Int("files", len(set.Files)))

	out, err := cmd.CombinedOutput()
	violations := Parse(out)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", l.Command[0], err)
		}
		if len(domain.Errors(violations)) == 0 {
			return nil, fmt.Errorf("%s exited with %d: %s", l.Command[0], exitErr.ExitCode(), strings.TrimSpace(string(out)))
		}
	}
	return violations, nil
}

// javaOpts appends the basedir property to the caller's JAVA_OPTS.
func javaOpts(existing, dir string) string {
	return strings.TrimSpace(existing + " -Dbasedir=" + dir)
}

// lineRE matches "[ERROR] path:line[:col]: message [Rule]".
var lineRE = regexp.MustCompile(`^\[(ERROR|WARN|WARNING|INFO)\]\s+(.+?):(\d+)(?::(\d+))?:\s*(.*?)(?:\s+\[(\w+)\])?\s*$`)

// Parse extracts findings from tool output. Lines that do not look like
// findings are ignored.
func Parse(out []byte) []domain.Violation {
	var violations []domain.Violation
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := lineRE.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[3])
		col, _ := strconv.Atoi(m[4])
		violations = append(violations, domain.Violation{
			File:     m[2],
			Line:     line,
			Column:   col,
			Severity: severity(m[1]),
			Message:  m[5],
			Rule:     m[6],
		})
	}
	return violations
}

func severity(tag string) string {
	switch tag {
	case "ERROR":
		return domain.SeverityError
	case "WARN", "WARNING":
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
