package application

import (
	"fmt"

	"github.com/openkraft/buildgate/internal/domain"
)

// HeaderFactory builds the header engine for a workspace.
type HeaderFactory func(ws *Workspace) (domain.HeaderEngine, error)

// LicenseService verifies or rewrites license headers across a workspace,
// independent of a run.
type LicenseService struct {
	workspace *WorkspaceService
	headers   HeaderFactory
}

func NewLicenseService(workspace *WorkspaceService, headers HeaderFactory) *LicenseService {
	return &LicenseService{workspace: workspace, headers: headers}
}

// Check returns every file of the selected modules whose header does not
// match the template.
func (s *LicenseService) Check(root string, modules []string) ([]domain.Violation, error) {
	engine, files, err := s.prepare(root, modules)
	if err != nil {
		return nil, err
	}
	vs, err := engine.Check(files)
	if err != nil {
		return nil, fmt.Errorf("checking headers: %w", err)
	}
	return vs, nil
}

// Format rewrites non-conforming headers and returns the files changed.
func (s *LicenseService) Format(root string, modules []string) ([]string, error) {
	engine, files, err := s.prepare(root, modules)
	if err != nil {
		return nil, err
	}
	fixed, err := engine.Format(files)
	if err != nil {
		return nil, fmt.Errorf("formatting headers: %w", err)
	}
	return fixed, nil
}

func (s *LicenseService) prepare(root string, modules []string) (domain.HeaderEngine, []string, error) {
	ws, err := s.workspace.Load(root)
	if err != nil {
		return nil, nil, err
	}
	ws, err = ws.Select(modules)
	if err != nil {
		return nil, nil, err
	}
	engine, err := s.headers(ws)
	if err != nil {
		return nil, nil, err
	}

	var files []string
	for _, m := range ws.Modules {
		for _, set := range m.SourceSets {
			files = append(files, set.Files...)
		}
	}
	return engine, files, nil
}
