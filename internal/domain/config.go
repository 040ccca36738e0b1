package domain

import (
	"path/filepath"
	"strings"
)

// WorkspaceFile holds the workspace configuration loaded from buildgate.yaml.
type WorkspaceFile struct {
	Group        string              `yaml:"group"        json:"group"   validate:"required"`
	Version      string              `yaml:"version"      json:"version" validate:"required"`
	Modules      []ModuleSpec        `yaml:"modules"      json:"modules" validate:"dive"`
	Java         JavaConfig          `yaml:"java"         json:"java"`
	Docs         DocsConfig          `yaml:"docs"         json:"docs"`
	Dependencies []Dependency        `yaml:"dependencies" json:"dependencies,omitempty"`
	SourceSets   map[string][]string `yaml:"source_sets"  json:"source_sets,omitempty"`
	License      LicenseConfig       `yaml:"license"      json:"license"`
	Lint         LintConfig          `yaml:"lint"         json:"lint"`
	Test         TestConfig          `yaml:"test"         json:"test"`
	Coverage     CoverageConfig      `yaml:"coverage"     json:"coverage"`
	Publishing   PublishingConfig    `yaml:"publishing"   json:"publishing"`
}

// ModuleSpec declares one module of the workspace.
type ModuleSpec struct {
	Name         string       `yaml:"name"          json:"name" validate:"required"`
	Path         string       `yaml:"path"          json:"path,omitempty"`
	ArtifactID   string       `yaml:"artifact_id"   json:"artifact_id,omitempty"`
	CompilerArgs []string     `yaml:"compiler_args" json:"compiler_args,omitempty"`
	Capabilities []Capability `yaml:"capabilities"  json:"capabilities,omitempty"`
	TestCommand  []string     `yaml:"test_command"  json:"test_command,omitempty"`
	Artifact     string       `yaml:"artifact"      json:"artifact,omitempty"`
}

// DirName returns the module directory relative to the workspace root.
func (m ModuleSpec) DirName() string {
	if m.Path != "" {
		return m.Path
	}
	return m.Name
}

// JavaConfig sets language levels and extra compiler arguments.
type JavaConfig struct {
	Source       LanguageLevel `yaml:"source"        json:"source,omitempty"`
	Target       LanguageLevel `yaml:"target"        json:"target,omitempty"`
	CompilerArgs []string      `yaml:"compiler_args" json:"compiler_args,omitempty"`
	Capabilities []Capability  `yaml:"capabilities"  json:"capabilities,omitempty"`
}

// DocsConfig sets documentation links.
type DocsConfig struct {
	Links []string `yaml:"links" json:"links,omitempty" validate:"dive,url"`
}

// LicenseConfig configures header verification.
type LicenseConfig struct {
	Header  string   `yaml:"header"  json:"header"`
	Include []string `yaml:"include" json:"include"`
	Style   string   `yaml:"style"   json:"style"`
	Year    int      `yaml:"year"    json:"year,omitempty" validate:"omitempty,gte=1970"`
}

// LintConfig configures the static-analysis tool.
type LintConfig struct {
	Command     []string `yaml:"command"      json:"command"`
	ConfigDir   string   `yaml:"config_dir"   json:"config_dir"`
	ToolVersion string   `yaml:"tool_version" json:"tool_version,omitempty"`
}

// TestConfig configures the external test runner.
type TestConfig struct {
	Command      []string `yaml:"command"       json:"command"`
	ResultsDir   string   `yaml:"results_dir"   json:"results_dir"`
	CoverageData string   `yaml:"coverage_data" json:"coverage_data"`
}

// CoverageConfig configures the post-test report.
type CoverageConfig struct {
	XML       *bool  `yaml:"xml"        json:"xml,omitempty"`
	HTML      *bool  `yaml:"html"       json:"html,omitempty"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// PublishingConfig configures the remote repositories.
type PublishingConfig struct {
	Repository  Endpoints            `yaml:"repository"  json:"repository"`
	Credentials CredentialProperties `yaml:"credentials" json:"credentials"`
}

// License header styles.
const (
	StyleDoubleSlash = "doubleslash"
	StyleSlashStar   = "slashstar"
)

var validLicenseStyles = []string{StyleDoubleSlash, StyleSlashStar}

// DefaultWorkspaceFile returns the settings every workspace starts from.
func DefaultWorkspaceFile() WorkspaceFile {
	d := DefaultModuleDefaults()
	xml, html := true, false
	return WorkspaceFile{
		Group:   "net.kyori.moonshine",
		Version: "2.0.0" + SnapshotSuffix,
		Java: JavaConfig{
			Source: d.SourceLevel,
			Target: d.TargetLevel,
		},
		Docs: DocsConfig{Links: d.DocLinks},
		SourceSets: map[string][]string{
			SourceSetMain: {"src/main/java", "src/main/kotlin"},
			SourceSetTest: {"src/test/java", "src/test/kotlin"},
		},
		License: LicenseConfig{
			Header:  "LICENCE-HEADER",
			Include: []string{"*.java", "*.kt"},
			Style:   StyleDoubleSlash,
		},
		Lint: LintConfig{
			Command:     []string{"checkstyle", "-c", "{config_dir}/checkstyle.xml"},
			ConfigDir:   ".checkstyle",
			ToolVersion: "8.43",
		},
		Test: TestConfig{
			Command:      []string{"gradle", "test"},
			ResultsDir:   "build/test-results",
			CoverageData: "build/reports/jacoco/test/jacocoTestReport.csv",
		},
		Coverage: CoverageConfig{
			XML:       &xml,
			HTML:      &html,
			OutputDir: "build/reports/coverage",
		},
		Publishing: PublishingConfig{
			Repository:  DefaultEndpoints(),
			Credentials: DefaultCredentialProperties(),
		},
	}
}

// Validate checks the file for invalid values and returns a descriptive error.
func (f WorkspaceFile) Validate() error {
	// 1. identity
	if strings.TrimSpace(f.Group) == "" {
		return configErrorf("group must not be empty")
	}
	if strings.TrimSpace(f.Version) == "" {
		return configErrorf("version must not be empty")
	}

	// 2. module names, report names and artifact ids unique, paths relative
	seen := make(map[string]bool, len(f.Modules))
	reportKeys := make(map[string]string, len(f.Modules))
	artifactIDs := make(map[string]string, len(f.Modules))
	for i, m := range f.Modules {
		if m.Name == "" {
			return configErrorf("modules[%d].name must not be empty", i)
		}
		if seen[m.Name] {
			return configErrorf("duplicate module %q", m.Name)
		}
		seen[m.Name] = true
		if other, ok := reportKeys[ArtifactIDFor(m.Name)]; ok {
			return configErrorf("modules %q and %q both write coverage reports as %q", other, m.Name, ArtifactIDFor(m.Name))
		}
		reportKeys[ArtifactIDFor(m.Name)] = m.Name
		id := m.ArtifactID
		if id == "" {
			id = ArtifactIDFor(m.Name)
		}
		if other, ok := artifactIDs[id]; ok {
			return configErrorf("modules %q and %q both publish as artifact %q", other, m.Name, id)
		}
		artifactIDs[id] = m.Name
		if filepath.IsAbs(m.Path) || strings.HasPrefix(filepath.Clean(m.Path), "..") {
			return configErrorf("modules[%d].path %q must be inside the workspace", i, m.Path)
		}
		for _, c := range m.Capabilities {
			if !IsValidCapability(c) {
				return configErrorf("unknown capability %q in module %q", c, m.Name)
			}
		}
	}

	// 3. workspace capabilities
	for _, c := range f.Java.Capabilities {
		if !IsValidCapability(c) {
			return configErrorf("unknown capability %q in java.capabilities", c)
		}
	}

	// 4. license style
	if f.License.Style != "" && !contains(validLicenseStyles, f.License.Style) {
		return configErrorf("unknown license style %q (valid: %s)", f.License.Style, strings.Join(validLicenseStyles, ", "))
	}

	// 5. source sets need a main entry when declared
	if len(f.SourceSets) > 0 {
		if len(f.SourceSets[SourceSetMain]) == 0 {
			return configErrorf("source_sets.main must list at least one root")
		}
		for name := range f.SourceSets {
			if name != SourceSetMain && name != SourceSetTest {
				return configErrorf("unknown source set %q (valid: main, test)", name)
			}
		}
	}

	// 6. one of the two endpoints must be usable for the version's channel
	if f.Publishing.Repository.Snapshot != "" || f.Publishing.Repository.Release != "" {
		if f.Publishing.Repository.URLFor(ResolveChannel(f.Version)) == "" {
			return configErrorf("no %s repository configured for version %s", ResolveChannel(f.Version), f.Version)
		}
	}

	// 7. the xml report is always written; only html is optional
	if f.Coverage.XML != nil && !*f.Coverage.XML {
		return configErrorf("coverage.xml cannot be disabled; only coverage.html is optional")
	}

	// 8. dependency coordinates are group:artifact:version
	for i, d := range f.Dependencies {
		if strings.Count(d.Coordinates, ":") != 2 {
			return configErrorf("dependencies[%d] %q is not group:artifact:version", i, d.Coordinates)
		}
	}

	return nil
}

// Workspace returns the identity declared by the file.
func (f WorkspaceFile) Workspace() (WorkspaceConfig, error) {
	return NewWorkspaceConfig(f.Group, f.Version)
}

// ModuleDefaults returns the settings shared by every module.
func (f WorkspaceFile) ModuleDefaults() ModuleDefaults {
	d := DefaultModuleDefaults()
	if f.Java.Source != "" {
		d.SourceLevel = f.Java.Source
		d.TargetLevel = f.Java.Source
	}
	if f.Java.Target != "" {
		d.TargetLevel = f.Java.Target
	}
	d.CompilerArgs = append([]string(nil), f.Java.CompilerArgs...)
	if len(f.Java.Capabilities) > 0 {
		d.Capabilities = append([]Capability(nil), f.Java.Capabilities...)
	}
	if len(f.Docs.Links) > 0 {
		d.DocLinks = append([]string(nil), f.Docs.Links...)
	}
	d.Dependencies = append([]Dependency(nil), f.Dependencies...)
	return d
}

// CoveragePolicy returns the report policy rooted at root.
func (f WorkspaceFile) CoveragePolicy(root string) CoverageReportPolicy {
	p := DefaultCoverageReportPolicy(root)
	if f.Coverage.OutputDir != "" {
		p.OutputDir = f.Coverage.OutputDir
		if !filepath.IsAbs(p.OutputDir) {
			p.OutputDir = filepath.Join(root, p.OutputDir)
		}
	}
	if f.Coverage.HTML != nil {
		p.Formats[FormatHTML] = *f.Coverage.HTML
	}
	return p
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
