package application

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/openkraft/buildgate/internal/domain"
)

// Workspace is a loaded and configured workspace: the file, its identity and
// one policy per buildable module.
type Workspace struct {
	Root     string
	File     domain.WorkspaceFile
	Config   domain.WorkspaceConfig
	Modules  []domain.Module
	Policies []domain.ModulePolicy
}

// Module returns the scanned module and its policy.
func (w *Workspace) Module(name string) (domain.Module, domain.ModulePolicy, bool) {
	for i, m := range w.Modules {
		if m.Name == name {
			return m, w.Policies[i], true
		}
	}
	return domain.Module{}, domain.ModulePolicy{}, false
}

// Select narrows the workspace to the named modules, keeping declaration
// order. An empty list keeps every module.
func (w *Workspace) Select(names []string) (*Workspace, error) {
	if len(names) == 0 {
		return w, nil
	}
	out := *w
	out.Modules, out.Policies = nil, nil
	for _, name := range names {
		m, p, ok := w.Module(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown module %q", domain.ErrConfig, name)
		}
		out.Modules = append(out.Modules, m)
		out.Policies = append(out.Policies, p)
	}
	return &out, nil
}

// GatePolicy returns the gate policy of a module.
func (w *Workspace) GatePolicy(p domain.ModulePolicy, ci bool) domain.QualityGatePolicy {
	return domain.NewQualityGatePolicy(ci, p.Capabilities)
}

// CoveragePolicy returns the report policy shared by every module.
func (w *Workspace) CoveragePolicy() domain.CoverageReportPolicy {
	return w.File.CoveragePolicy(w.Root)
}

// HeaderPath is the absolute path of the license header template.
func (w *Workspace) HeaderPath() string {
	if filepath.IsAbs(w.File.License.Header) {
		return w.File.License.Header
	}
	return filepath.Join(w.Root, w.File.License.Header)
}

// WorkspaceService loads the workspace file, scans the modules and
// configures their policies.
type WorkspaceService struct {
	configLoader domain.ConfigLoader
	scanner      domain.ModuleScanner
}

func NewWorkspaceService(configLoader domain.ConfigLoader, scanner domain.ModuleScanner) *WorkspaceService {
	return &WorkspaceService{configLoader: configLoader, scanner: scanner}
}

// Load returns the configured workspace. Every failure wraps
// domain.ErrConfig; nothing has been executed when it is returned.
func (s *WorkspaceService) Load(root string) (*Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}

	// 1. Workspace file
	file, err := s.configLoader.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", asConfigError(err))
	}

	// 2. Identity
	ws, err := file.Workspace()
	if err != nil {
		return nil, err
	}

	// 3. Modules
	modules, err := s.scanner.Scan(absRoot, file)
	if err != nil {
		return nil, fmt.Errorf("scanning workspace: %w", asConfigError(err))
	}

	// 4. Policies
	defaults := file.ModuleDefaults()
	policies := make([]domain.ModulePolicy, 0, len(modules))
	for _, m := range modules {
		p, err := domain.Configure(ws, m, defaults)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}

	// 5. Output names
	if err := checkDistinctOutputs(policies); err != nil {
		return nil, err
	}

	return &Workspace{
		Root:     absRoot,
		File:     file,
		Config:   ws,
		Modules:  modules,
		Policies: policies,
	}, nil
}

// checkDistinctOutputs rejects discovered modules that would share a coverage
// report file or published coordinates. Declared modules are already checked
// by WorkspaceFile.Validate.
func checkDistinctOutputs(policies []domain.ModulePolicy) error {
	reports := make(map[string]string, len(policies))
	artifacts := make(map[string]string, len(policies))
	for _, p := range policies {
		key := domain.ArtifactIDFor(p.Module)
		if other, ok := reports[key]; ok {
			return fmt.Errorf("%w: modules %q and %q both write coverage reports as %q", domain.ErrConfig, other, p.Module, key)
		}
		reports[key] = p.Module
		if other, ok := artifacts[p.Coordinates.ArtifactID]; ok {
			return fmt.Errorf("%w: modules %q and %q both publish as artifact %q", domain.ErrConfig, other, p.Module, p.Coordinates.ArtifactID)
		}
		artifacts[p.Coordinates.ArtifactID] = p.Module
	}
	return nil
}

func asConfigError(err error) error {
	if errors.Is(err, domain.ErrConfig) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrConfig, err)
}
