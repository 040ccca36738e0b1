package coverage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/openkraft/buildgate/internal/domain"
)

// Engine implements domain.CoverageEngine. It aggregates the counters of a
// JaCoCo CSV export and writes one report per enabled format into the
// shared output directory.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Generate writes the reports for run. Missing coverage data yields a report
// with test counts only.
func (e *Engine) Generate(ctx context.Context, run *domain.TestRunResult, p domain.CoverageReportPolicy) (*domain.CoverageReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating report dir: %w", err)
	}

	report := &domain.CoverageReport{Module: run.Module}
	if run.CoverageData != "" {
		counters, err := ReadCSV(run.CoverageData)
		if err != nil {
			return nil, err
		}
		report.Counters = counters
	}

	for _, f := range p.Enabled() {
		var (
			data []byte
			err  error
		)
		switch f {
		case domain.FormatXML:
			data, err = renderXML(run, report)
		case domain.FormatHTML:
			data, err = renderHTML(run, report)
		default:
			err = fmt.Errorf("unsupported report format %q", f)
		}
		if err != nil {
			return nil, err
		}
		path := p.ReportPath(run.Module, f)
		if err := writeAtomic(path, data); err != nil {
			return nil, err
		}
		report.Files = append(report.Files, path)
	}
	return report, nil
}

// ReadCSV sums the *_MISSED / *_COVERED columns of a JaCoCo CSV export.
func ReadCSV(path string) ([]domain.CoverageCounter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening coverage data: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading coverage data: %w", err)
	}

	type col struct {
		metric  string
		covered bool
	}
	cols := make(map[int]col)
	for i, h := range header {
		switch {
		case strings.HasSuffix(h, "_MISSED"):
			cols[i] = col{metric: strings.TrimSuffix(h, "_MISSED")}
		case strings.HasSuffix(h, "_COVERED"):
			cols[i] = col{metric: strings.TrimSuffix(h, "_COVERED"), covered: true}
		}
	}

	totals := make(map[string]*domain.CoverageCounter)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading coverage data: %w", err)
		}
		for i, c := range cols {
			if i >= len(rec) {
				continue
			}
			n, err := strconv.Atoi(rec[i])
			if err != nil {
				return nil, fmt.Errorf("coverage data column %s: %w", header[i], err)
			}
			t, ok := totals[c.metric]
			if !ok {
				t = &domain.CoverageCounter{Type: c.metric}
				totals[c.metric] = t
			}
			if c.covered {
				t.Covered += n
			} else {
				t.Missed += n
			}
		}
	}

	out := make([]domain.CoverageCounter, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

type xmlReport struct {
	XMLName  xml.Name     `xml:"report"`
	Name     string       `xml:"name,attr"`
	Tests    xmlTests     `xml:"tests"`
	Counters []xmlCounter `xml:"counter"`
}

type xmlTests struct {
	Passed  int `xml:"passed,attr"`
	Failed  int `xml:"failed,attr"`
	Skipped int `xml:"skipped,attr"`
	Exit    int `xml:"exit,attr"`
}

type xmlCounter struct {
	Type    string `xml:"type,attr"`
	Missed  int    `xml:"missed,attr"`
	Covered int    `xml:"covered,attr"`
}

func renderXML(run *domain.TestRunResult, report *domain.CoverageReport) ([]byte, error) {
	passed, failed, skipped := run.Counts()
	doc := xmlReport{
		Name:  run.Module,
		Tests: xmlTests{Passed: passed, Failed: failed, Skipped: skipped, Exit: run.ExitCode},
	}
	for _, c := range report.Counters {
		doc.Counters = append(doc.Counters, xmlCounter(c))
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding xml report: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(c domain.CoverageCounter) string { return fmt.Sprintf("%.1f%%", c.Ratio()*100) },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Module}} coverage</title></head>
<body>
<h1>{{.Module}}</h1>
<p>{{.Passed}} passed, {{.Failed}} failed, {{.Skipped}} skipped</p>
<table>
<tr><th>Counter</th><th>Missed</th><th>Covered</th><th>Coverage</th></tr>
{{range .Counters}}<tr><td>{{.Type}}</td><td>{{.Missed}}</td><td>{{.Covered}}</td><td>{{pct .}}</td></tr>
{{end}}</table>
</body></html>
`))

func renderHTML(run *domain.TestRunResult, report *domain.CoverageReport) ([]byte, error) {
	passed, failed, skipped := run.Counts()
	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, map[string]any{
		"Module":   run.Module,
		"Passed":   passed,
		"Failed":   failed,
		"Skipped":  skipped,
		"Counters": report.Counters,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering html report: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic replaces path so a concurrent reader never sees a partial
// report.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
