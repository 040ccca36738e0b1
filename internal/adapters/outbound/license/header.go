package license

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openkraft/buildgate/internal/domain"
)

// Engine implements domain.HeaderEngine for a fixed header template. The
// template's ${year} placeholder is substituted once at construction.
type Engine struct {
	header []byte
	style  string
	first  string
}

// New renders the template in the given comment style. A zero year means the
// current year.
func New(template string, year int, style string) *Engine {
	if year == 0 {
		year = time.Now().Year()
	}
	if style == "" {
		style = domain.StyleDoubleSlash
	}
	text := strings.ReplaceAll(template, "${year}", strconv.Itoa(year))
	return &Engine{header: render(text, style), style: style, first: firstLine(text)}
}

// Load reads the template from path.
func Load(path string, year int, style string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading license header: %v", domain.ErrConfig, err)
	}
	return New(string(data), year, style), nil
}

// Header returns the rendered header including the trailing blank line.
func (e *Engine) Header() string { return string(e.header) }

// Check returns one violation per file that does not start with the header.
func (e *Engine) Check(files []string) ([]domain.Violation, error) {
	var out []domain.Violation
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if !bytes.HasPrefix(normalize(data), e.header) {
			out = append(out, domain.Violation{
				File:     f,
				Line:     1,
				Severity: domain.SeverityError,
				Rule:     "license-header",
				Message:  "missing or outdated license header",
			})
		}
	}
	return out, nil
}

// Format rewrites files whose header does not match. A leading comment that
// reads as a license header is replaced; any other leading comment is kept
// below the new header. It returns the files it changed.
func (e *Engine) Format(files []string) ([]string, error) {
	var changed []string
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return changed, fmt.Errorf("reading %s: %w", f, err)
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return changed, fmt.Errorf("reading %s: %w", f, err)
		}
		body := normalize(data)
		if bytes.HasPrefix(body, e.header) {
			continue
		}
		if comment, rest, ok := leadingComment(body); ok && e.isHeader(comment) {
			body = rest
		}
		body = bytes.TrimLeft(body, "\n")
		out := append(append([]byte(nil), e.header...), body...)
		if err := os.WriteFile(f, out, info.Mode().Perm()); err != nil {
			return changed, fmt.Errorf("writing %s: %w", f, err)
		}
		changed = append(changed, f)
	}
	return changed, nil
}

func render(text, style string) []byte {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n"), "\n")
	var b strings.Builder
	switch style {
	case domain.StyleSlashStar:
		b.WriteString("/*\n")
		for _, l := range lines {
			if strings.TrimSpace(l) == "" {
				b.WriteString(" *\n")
			} else {
				b.WriteString(" * " + l + "\n")
			}
		}
		b.WriteString(" */\n")
	default:
		b.WriteString("//\n")
		for _, l := range lines {
			if strings.TrimSpace(l) == "" {
				b.WriteString("//\n")
			} else {
				b.WriteString("// " + l + "\n")
			}
		}
		b.WriteString("//\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func normalize(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

var headerWords = []string{"copyright", "license", "licence"}

// isHeader reports whether a leading comment is an earlier license header
// rather than ordinary documentation such as a generated-code banner.
func (e *Engine) isHeader(comment []byte) bool {
	text := strings.ToLower(string(comment))
	for _, w := range headerWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return e.first != "" && strings.Contains(text, strings.ToLower(e.first))
}

func firstLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

// leadingComment splits off a leading /* */ block or run of // lines.
func leadingComment(body []byte) (comment, rest []byte, ok bool) {
	trimmed := bytes.TrimLeft(body, " \t\n")
	if bytes.HasPrefix(trimmed, []byte("/*")) {
		end := bytes.Index(trimmed, []byte("*/"))
		if end < 0 {
			return nil, body, false
		}
		return trimmed[:end+2], trimmed[end+2:], true
	}
	rest = trimmed
	for bytes.HasPrefix(bytes.TrimLeft(rest, " \t"), []byte("//")) {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			return trimmed, nil, true
		}
		rest = rest[nl+1:]
	}
	if len(rest) == len(trimmed) {
		return nil, body, false
	}
	return trimmed[:len(trimmed)-len(rest)], rest, true
}
