package application_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/openkraft/buildgate/internal/adapters/outbound/config"
	"github.com/openkraft/buildgate/internal/adapters/outbound/scanner"
	"github.com/openkraft/buildgate/internal/application"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../testdata/moonshine"

// copyFixture returns a writable copy of the moonshine workspace.
func copyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS(fixtureDir)))
	return dir
}

func newWorkspaceService() *application.WorkspaceService {
	return application.NewWorkspaceService(config.New(), scanner.New())
}

type fakeLinter struct {
	mu       sync.Mutex
	findings map[string][]domain.Violation // "module/set"
	errs     map[string]error
	calls    []string
}

func (f *fakeLinter) Lint(_ context.Context, m domain.Module, set domain.SourceSet) ([]domain.Violation, error) {
	key := m.Name + "/" + set.Name
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.findings[key], nil
}

type fakeHeaders struct {
	mu        sync.Mutex
	bad       map[string]bool // by base name
	formatted []string
}

func (f *fakeHeaders) Check(files []string) ([]domain.Violation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var vs []domain.Violation
	for _, file := range files {
		if f.bad[filepath.Base(file)] {
			vs = append(vs, domain.Violation{File: file, Line: 1, Severity: domain.SeverityError, Rule: "license-header", Message: "missing or malformed license header"})
		}
	}
	return vs, nil
}

func (f *fakeHeaders) Format(files []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fixed []string
	for _, file := range files {
		if f.bad[filepath.Base(file)] {
			delete(f.bad, filepath.Base(file))
			fixed = append(fixed, file)
		}
	}
	f.formatted = append(f.formatted, fixed...)
	return fixed, nil
}

type fakeTests struct {
	mu      sync.Mutex
	results map[string]*domain.TestRunResult
	errs    map[string]error
	calls   []string
	// started, when set, receives the module name before a run blocks on
	// release.
	started chan string
	release chan struct{}
}

func (f *fakeTests) Run(ctx context.Context, p domain.ModulePolicy) (*domain.TestRunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p.Module)
	res, err := f.results[p.Module], f.errs[p.Module]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- p.Module
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &domain.TestRunResult{Cases: []domain.TestCase{{Suite: "S", Name: "ok", Status: domain.TestPassed}}}
	}
	out := *res
	out.Module = p.Module
	return &out, nil
}

func (f *fakeTests) called(module string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == module {
			return true
		}
	}
	return false
}

type fakeCoverage struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeCoverage) Generate(_ context.Context, run *domain.TestRunResult, p domain.CoverageReportPolicy) (*domain.CoverageReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[run.Module]++
	return &domain.CoverageReport{Module: run.Module, Files: []string{p.ReportPath(run.Module, domain.FormatXML)}}, nil
}

func (f *fakeCoverage) count(module string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[module]
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []domain.RunEntry
}

func (f *fakeHistory) Save(_ string, e domain.RunEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeHistory) Load(string) ([]domain.RunEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RunEntry(nil), f.entries...), nil
}

type fakeGit struct{ hash string }

func (f fakeGit) IsGitRepo(string) bool { return f.hash != "" }

func (f fakeGit) CommitHash(string) (string, error) { return f.hash, nil }

type engines struct {
	linter   *fakeLinter
	headers  *fakeHeaders
	tests    *fakeTests
	coverage *fakeCoverage
}

func newEngines() *engines {
	return &engines{
		linter:   &fakeLinter{},
		headers:  &fakeHeaders{bad: map[string]bool{}},
		tests:    &fakeTests{},
		coverage: &fakeCoverage{},
	}
}

func (e *engines) factory(*application.Workspace) (application.Engines, error) {
	return application.Engines{
		Linter:   e.linter,
		Headers:  e.headers,
		Tests:    e.tests,
		Coverage: e.coverage,
	}, nil
}
