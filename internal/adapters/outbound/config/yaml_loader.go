package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/buildgate/internal/domain"
)

// FileName is the workspace file read from the workspace root.
const FileName = "buildgate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading buildgate.yaml.
type YAMLLoader struct {
	validate *validator.Validate
}

// New creates a YAMLLoader.
func New() *YAMLLoader {
	return &YAMLLoader{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Load reads buildgate.yaml from root.
// Returns DefaultWorkspaceFile if the file does not exist.
func (l *YAMLLoader) Load(root string) (domain.WorkspaceFile, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultWorkspaceFile(), nil
		}
		return domain.WorkspaceFile{}, fmt.Errorf("%w: reading %s: %v", domain.ErrConfig, FileName, err)
	}

	var raw domain.WorkspaceFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfig, FileName, err)
	}

	// Defaults go under explicit values before validation so that a file
	// declaring only its modules is complete.
	cfg := mergeWorkspace(domain.DefaultWorkspaceFile(), raw)

	if err := l.validate.Struct(cfg); err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("%w: invalid %s: %v", domain.ErrConfig, FileName, describe(err))
	}
	if err := cfg.Validate(); err != nil {
		return domain.WorkspaceFile{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg, nil
}

// Write stores f as buildgate.yaml under root. Existing files are kept
// unless force is set.
func (l *YAMLLoader) Write(root string, f domain.WorkspaceFile, force bool) (string, error) {
	path := filepath.Join(root, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", FileName)
		}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", FileName, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", FileName, err)
	}
	return path, nil
}

// mergeWorkspace overlays explicit values on top of the defaults.
// Explicit (non-zero) values always win; lists replace, never append.
func mergeWorkspace(base, override domain.WorkspaceFile) domain.WorkspaceFile {
	result := base

	if override.Group != "" {
		result.Group = override.Group
	}
	if override.Version != "" {
		result.Version = override.Version
	}
	result.Modules = override.Modules
	result.Dependencies = override.Dependencies

	if override.Java.Source != "" {
		result.Java.Source = override.Java.Source
		if override.Java.Target == "" {
			result.Java.Target = override.Java.Source
		}
	}
	if override.Java.Target != "" {
		result.Java.Target = override.Java.Target
	}
	if len(override.Java.CompilerArgs) > 0 {
		result.Java.CompilerArgs = override.Java.CompilerArgs
	}
	if len(override.Java.Capabilities) > 0 {
		result.Java.Capabilities = override.Java.Capabilities
	}

	if len(override.Docs.Links) > 0 {
		result.Docs.Links = override.Docs.Links
	}
	if len(override.SourceSets) > 0 {
		result.SourceSets = override.SourceSets
	}

	if override.License.Header != "" {
		result.License.Header = override.License.Header
	}
	if len(override.License.Include) > 0 {
		result.License.Include = override.License.Include
	}
	if override.License.Style != "" {
		result.License.Style = override.License.Style
	}
	if override.License.Year != 0 {
		result.License.Year = override.License.Year
	}

	if len(override.Lint.Command) > 0 {
		result.Lint.Command = override.Lint.Command
	}
	if override.Lint.ConfigDir != "" {
		result.Lint.ConfigDir = override.Lint.ConfigDir
	}
	if override.Lint.ToolVersion != "" {
		result.Lint.ToolVersion = override.Lint.ToolVersion
	}

	if len(override.Test.Command) > 0 {
		result.Test.Command = override.Test.Command
	}
	if override.Test.ResultsDir != "" {
		result.Test.ResultsDir = override.Test.ResultsDir
	}
	if override.Test.CoverageData != "" {
		result.Test.CoverageData = override.Test.CoverageData
	}

	if override.Coverage.XML != nil {
		result.Coverage.XML = override.Coverage.XML
	}
	if override.Coverage.HTML != nil {
		result.Coverage.HTML = override.Coverage.HTML
	}
	if override.Coverage.OutputDir != "" {
		result.Coverage.OutputDir = override.Coverage.OutputDir
	}

	repo := override.Publishing.Repository
	if repo.Name != "" {
		result.Publishing.Repository.Name = repo.Name
	}
	if repo.Snapshot != "" {
		result.Publishing.Repository.Snapshot = repo.Snapshot
	}
	if repo.Release != "" {
		result.Publishing.Repository.Release = repo.Release
	}
	if override.Publishing.Credentials.User != "" {
		result.Publishing.Credentials.User = override.Publishing.Credentials.User
	}
	if override.Publishing.Credentials.Password != "" {
		result.Publishing.Credentials.Password = override.Publishing.Credentials.Password
	}

	return result
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
	}
	return msg
}
