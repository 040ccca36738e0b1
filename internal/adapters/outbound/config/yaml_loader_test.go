package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/openkraft/buildgate/internal/adapters/outbound/config"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, appconfig.FileName), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWorkspaceFile(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
group: net.kyori.moonshine
version: 2.1.0
modules:
  - name: core
  - name: kotlin
    path: kotlin-ext
    artifact_id: moonshine-kotlin
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", cfg.Version)
	require.Len(t, cfg.Modules, 2)
	assert.Equal(t, "kotlin-ext", cfg.Modules[1].DirName())
	assert.Equal(t, "core", cfg.Modules[0].DirName())
	// defaults fill what the file leaves out
	assert.Equal(t, []string{"*.java", "*.kt"}, cfg.License.Include)
	assert.Equal(t, "proxi-nexus", cfg.Publishing.Repository.Name)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.Contains(t, err.Error(), "parsing buildgate.yaml")
}

func TestYAMLLoader_ModuleWithoutName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
modules:
  - path: core
`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
	assert.Contains(t, err.Error(), "required")
}

func TestYAMLLoader_BadRepositoryURL(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
publishing:
  repository:
    snapshot: not a url
`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Snapshot")
}

func TestYAMLLoader_RuleValidation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
license:
  style: hash
`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.Contains(t, err.Error(), "invalid buildgate.yaml")
}

func TestYAMLLoader_SourceOnlySetsTarget(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
java:
  source: "11"
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageLevel("11"), cfg.Java.Target)
}

func TestYAMLLoader_CoverageToggles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
coverage:
  html: true
  output_dir: out/coverage
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	p := cfg.CoveragePolicy(dir)
	assert.Equal(t, []domain.ReportFormat{domain.FormatXML, domain.FormatHTML}, p.Enabled())
	assert.Equal(t, filepath.Join(dir, "out", "coverage"), p.OutputDir)
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "net.kyori.moonshine", cfg.Group)
}

func TestYAMLLoader_WriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	f := domain.DefaultWorkspaceFile()
	f.Modules = []domain.ModuleSpec{{Name: "core"}}
	path, err := loader.Write(dir, f, false)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = loader.Write(dir, f, false)
	assert.Error(t, err, "existing file is not overwritten without force")

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Modules, 1)
	assert.Equal(t, "core", cfg.Modules[0].Name)
}
