package domain

import "context"

// ConfigLoader loads the workspace file from a workspace root.
type ConfigLoader interface {
	Load(root string) (WorkspaceFile, error)
}

// PropertySource returns the external project properties (credentials and
// similar) visible from a workspace root.
type PropertySource interface {
	Properties(root string) (map[string]string, error)
}

// ModuleScanner discovers the modules declared by a workspace file and the
// qualifying files of their source sets.
type ModuleScanner interface {
	Scan(root string, file WorkspaceFile) ([]Module, error)
}

// Linter runs the static-analysis tool over one source set. Returned
// violations fail the gate; a non-nil error means the tool itself broke.
type Linter interface {
	Lint(ctx context.Context, m Module, set SourceSet) ([]Violation, error)
}

// HeaderEngine verifies and rewrites license headers.
type HeaderEngine interface {
	Check(files []string) ([]Violation, error)
	Format(files []string) ([]string, error)
}

// TestRunner executes a module's test suite. Test failures are reported in
// the result, not as an error.
type TestRunner interface {
	Run(ctx context.Context, p ModulePolicy) (*TestRunResult, error)
}

// CoverageEngine turns a test run into report files.
type CoverageEngine interface {
	Generate(ctx context.Context, run *TestRunResult, p CoverageReportPolicy) (*CoverageReport, error)
}

// Bundler writes a sibling archive and returns its size in bytes.
type Bundler interface {
	Bundle(ctx context.Context, b Bundle) (int64, error)
}

// Repository uploads an artifact to a remote repository and returns the
// URLs written.
type Repository interface {
	Upload(ctx context.Context, p PublicationPolicy, a Artifact) ([]string, error)
}

// GitInfo reads version control metadata.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
}

// RunHistory stores run entries.
type RunHistory interface {
	Save(root string, entry RunEntry) error
	Load(root string) ([]RunEntry, error)
}

// Describer renders the project descriptor published with an artifact.
type Describer interface {
	Describe(p ModulePolicy, commit string) ([]byte, error)
}
