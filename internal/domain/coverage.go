package domain

import (
	"path/filepath"
	"sort"
)

// ReportFormat is an output format of the coverage report.
type ReportFormat string

const (
	FormatXML  ReportFormat = "xml"
	FormatHTML ReportFormat = "html"
)

// Ext returns the file extension of the format.
func (f ReportFormat) Ext() string { return string(f) }

// CoverageReportPolicy configures the report generated after every test run.
type CoverageReportPolicy struct {
	Formats   map[ReportFormat]bool `json:"formats"`
	OutputDir string                `json:"output_dir"`
}

// DefaultCoverageReportPolicy writes the machine-readable report only, into
// the shared workspace report directory.
func DefaultCoverageReportPolicy(root string) CoverageReportPolicy {
	return CoverageReportPolicy{
		Formats:   map[ReportFormat]bool{FormatXML: true, FormatHTML: false},
		OutputDir: filepath.Join(root, "build", "reports", "coverage"),
	}
}

// Enabled returns the enabled formats, XML first.
func (p CoverageReportPolicy) Enabled() []ReportFormat {
	var out []ReportFormat
	for f, on := range p.Formats {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == FormatXML {
			return out[j] != FormatXML
		}
		if out[j] == FormatXML {
			return false
		}
		return out[i] < out[j]
	})
	return out
}

// ReportPath is the module-qualified report file for a format. The path is
// the same on every run so a rerun overwrites instead of duplicating.
func (p CoverageReportPolicy) ReportPath(module string, f ReportFormat) string {
	return filepath.Join(p.OutputDir, ArtifactIDFor(module)+"."+f.Ext())
}

// CoverageCounter is a missed/covered pair for one metric.
type CoverageCounter struct {
	Type    string `json:"type"`
	Missed  int    `json:"missed"`
	Covered int    `json:"covered"`
}

// Ratio returns covered / (missed + covered), or 0 when nothing was counted.
func (c CoverageCounter) Ratio() float64 {
	total := c.Missed + c.Covered
	if total == 0 {
		return 0
	}
	return float64(c.Covered) / float64(total)
}

// CoverageReport is what the report engine produced for one module.
type CoverageReport struct {
	Module   string            `json:"module"`
	Counters []CoverageCounter `json:"counters,omitempty"`
	Files    []string          `json:"files"`
}
