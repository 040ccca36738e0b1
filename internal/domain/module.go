package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// Module is an independently buildable unit of the workspace.
type Module struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	ArtifactID string      `json:"artifact_id,omitempty"`
	SourceSets []SourceSet `json:"source_sets"`

	// Per-module overrides from the workspace file.
	CompilerArgs []string     `json:"compiler_args,omitempty"`
	Capabilities []Capability `json:"capabilities,omitempty"`
	TestCommand  []string     `json:"test_command,omitempty"`
	Artifact     string       `json:"artifact,omitempty"`
}

// SourceSet groups the source roots of one compilation (main or test).
type SourceSet struct {
	Name  string   `json:"name"`
	Roots []string `json:"roots"`
	Files []string `json:"files"`
}

const (
	SourceSetMain = "main"
	SourceSetTest = "test"
)

// SourceSet returns the named source set, if the module has one.
func (m Module) SourceSet(name string) (SourceSet, bool) {
	for _, s := range m.SourceSets {
		if s.Name == name {
			return s, true
		}
	}
	return SourceSet{}, false
}

// Buildable reports whether the module has a main source set with files.
func (m Module) Buildable() bool {
	main, ok := m.SourceSet(SourceSetMain)
	return ok && len(main.Files) > 0
}

// Capability is a build capability enabled for a module. The orchestration
// checks the set explicitly instead of attaching behaviour at runtime.
type Capability string

const (
	CapJava             Capability = "java"
	CapJavaLibrary      Capability = "java-library"
	CapMavenPublish     Capability = "maven-publish"
	CapCheckstyle       Capability = "checkstyle"
	CapJacoco           Capability = "jacoco"
	CapIdea             Capability = "idea"
	CapKotlinJVM        Capability = "kotlin-jvm"
	CapLicense          Capability = "license"
	CapCheckerFramework Capability = "checker-framework"
)

// AllCapabilities lists every known capability in application order.
var AllCapabilities = []Capability{
	CapJava, CapJavaLibrary, CapMavenPublish, CapCheckstyle, CapJacoco,
	CapIdea, CapKotlinJVM, CapLicense, CapCheckerFramework,
}

// IsValidCapability reports whether c is a known capability.
func IsValidCapability(c Capability) bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// CapabilitySet is an explicit set of enabled capabilities.
type CapabilitySet map[Capability]bool

// NewCapabilitySet builds a set from the given tags.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = true
	}
	return s
}

// Has reports whether c is enabled.
func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// Sorted returns the enabled capabilities in their canonical order.
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for _, c := range AllCapabilities {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// LanguageLevel is a source or target language version such as "1.8".
type LanguageLevel string

const DefaultLanguageLevel LanguageLevel = "1.8"

// DocRelease returns the release number used by the doc tool: "1.8" -> "8".
func (l LanguageLevel) DocRelease() string {
	return strings.TrimPrefix(string(l), "1.")
}

// CompileTask carries the arguments passed to one compile step.
type CompileTask struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// DocOptions configure documentation generation. They have no effect on
// library consumers.
type DocOptions struct {
	DocLint  string   `json:"doclint"`
	Quiet    bool     `json:"quiet"`
	Encoding string   `json:"encoding"`
	CharSet  string   `json:"charset"`
	Source   string   `json:"source"`
	Links    []string `json:"links"`
}

// Args renders the options as doc tool flags.
func (d DocOptions) Args() []string {
	var args []string
	if d.DocLint != "" {
		args = append(args, "-Xdoclint:"+d.DocLint)
	}
	if d.Quiet {
		args = append(args, "-quiet")
	}
	if d.Encoding != "" {
		args = append(args, "-encoding", d.Encoding)
	}
	if d.CharSet != "" {
		args = append(args, "-charset", d.CharSet)
	}
	if d.Source != "" {
		args = append(args, "-source", d.Source)
	}
	for _, l := range d.Links {
		args = append(args, "-link", l)
	}
	return args
}

// Bundle is a sibling archive produced next to the main artifact.
type Bundle struct {
	Classifier string   `json:"classifier"`
	Roots      []string `json:"roots"`
	Output     string   `json:"output"`
}

const (
	ClassifierSources = "sources"
	ClassifierJavadoc = "javadoc"
)

// Dependency is a declared library dependency carried into the POM.
type Dependency struct {
	Coordinates string `json:"coordinates" yaml:"coordinates"`
	Scope       string `json:"scope"       yaml:"scope"`
}

// ModuleDefaults are the workspace-wide settings every module starts from.
type ModuleDefaults struct {
	SourceLevel  LanguageLevel
	TargetLevel  LanguageLevel
	CompilerArgs []string
	Capabilities []Capability
	DocLinks     []string
	Dependencies []Dependency
}

// DefaultModuleDefaults mirrors the settings applied to every subproject.
func DefaultModuleDefaults() ModuleDefaults {
	return ModuleDefaults{
		SourceLevel:  DefaultLanguageLevel,
		TargetLevel:  DefaultLanguageLevel,
		Capabilities: append([]Capability(nil), AllCapabilities...),
		DocLinks:     []string{"https://docs.oracle.com/javase/8/docs/api/"},
	}
}

// ModulePolicy is the per-module build policy. It is not mutated after
// Configure returns it.
type ModulePolicy struct {
	Module        string              `json:"module"`
	Path          string              `json:"path"`
	Coordinates   ArtifactCoordinates `json:"coordinates"`
	SourceLevel   LanguageLevel       `json:"source_level"`
	TargetLevel   LanguageLevel       `json:"target_level"`
	AutoTargetJVM bool                `json:"auto_target_jvm"`
	CompileTasks  []CompileTask       `json:"compile_tasks"`
	Capabilities  CapabilitySet       `json:"capabilities"`
	Docs          DocOptions          `json:"docs"`
	Bundles       []Bundle            `json:"bundles"`
	Dependencies  []Dependency        `json:"dependencies,omitempty"`
	Artifact      string              `json:"artifact,omitempty"`
	TestCommand   []string            `json:"test_command,omitempty"`
}

// Configure attaches the language levels, compiler arguments, doc options
// and bundles to a module. A module without a main source set is a
// configuration error.
func Configure(ws WorkspaceConfig, m Module, d ModuleDefaults) (ModulePolicy, error) {
	if !m.Buildable() {
		return ModulePolicy{}, &ModuleError{Module: m.Name, Err: ErrNoSourceSet}
	}

	source := d.SourceLevel
	if source == "" {
		source = DefaultLanguageLevel
	}
	target := d.TargetLevel
	if target == "" {
		target = source
	}

	caps := d.Capabilities
	if len(m.Capabilities) > 0 {
		caps = m.Capabilities
	}
	capSet := NewCapabilitySet(caps...)

	coords := ws.Coordinates(m)
	p := ModulePolicy{
		Module:       m.Name,
		Path:         m.Path,
		Coordinates:  coords,
		SourceLevel:  source,
		TargetLevel:  target,
		Capabilities: capSet,
		Dependencies: append([]Dependency(nil), d.Dependencies...),
		Artifact:     m.Artifact,
		TestCommand:  append([]string(nil), m.TestCommand...),
		Docs: DocOptions{
			DocLint:  "none",
			Quiet:    true,
			Encoding: "UTF-8",
			CharSet:  "UTF-8",
			Source:   source.DocRelease(),
			Links:    append([]string(nil), d.DocLinks...),
		},
	}
	if p.Artifact == "" {
		p.Artifact = filepath.Join(m.Path, "build", "libs", coords.FileName("", "jar"))
	}

	extra := append(append([]string(nil), d.CompilerArgs...), m.CompilerArgs...)
	javaArgs := append([]string{"-parameters"}, extra...)
	p.CompileTasks = []CompileTask{
		{Name: "compileJava", Args: javaArgs},
		{Name: "compileTestJava", Args: append([]string(nil), javaArgs...)},
	}
	if capSet.Has(CapKotlinJVM) {
		kotlinArgs := []string{"-jvm-target", string(target), "-java-parameters"}
		p.CompileTasks = append(p.CompileTasks,
			CompileTask{Name: "compileKotlin", Args: kotlinArgs},
			CompileTask{Name: "compileTestKotlin", Args: append([]string(nil), kotlinArgs...)},
		)
	}

	main, _ := m.SourceSet(SourceSetMain)
	libs := filepath.Join(m.Path, "build", "libs")
	p.Bundles = []Bundle{
		{Classifier: ClassifierSources, Roots: sortedCopy(main.Roots), Output: filepath.Join(libs, coords.FileName(ClassifierSources, "jar"))},
		{Classifier: ClassifierJavadoc, Roots: []string{filepath.Join(m.Path, "build", "docs", "javadoc")}, Output: filepath.Join(libs, coords.FileName(ClassifierJavadoc, "jar"))},
	}

	return p, nil
}

// ModuleError attaches a module name to a configuration failure.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string { return "module " + e.Module + ": " + e.Err.Error() }

func (e *ModuleError) Unwrap() []error { return []error{ErrConfig, e.Err} }

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
