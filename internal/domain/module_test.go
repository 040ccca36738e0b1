package domain_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ws = domain.WorkspaceConfig{GroupID: "net.kyori.moonshine", Version: "2.0.0-SNAPSHOT"}

func coreModule() domain.Module {
	return domain.Module{
		Name: "core",
		Path: "core",
		SourceSets: []domain.SourceSet{
			{Name: domain.SourceSetMain, Roots: []string{"core/src/main/java"}, Files: []string{"core/src/main/java/A.java"}},
			{Name: domain.SourceSetTest, Roots: []string{"core/src/test/java"}, Files: []string{"core/src/test/java/ATest.java"}},
		},
	}
}

func TestConfigure_Defaults(t *testing.T) {
	p, err := domain.Configure(ws, coreModule(), domain.DefaultModuleDefaults())
	require.NoError(t, err)

	assert.Equal(t, domain.LanguageLevel("1.8"), p.SourceLevel)
	assert.Equal(t, domain.LanguageLevel("1.8"), p.TargetLevel)
	assert.False(t, p.AutoTargetJVM)
	assert.Equal(t, "net.kyori.moonshine:core:2.0.0-SNAPSHOT", p.Coordinates.String())

	want := []domain.CompileTask{
		{Name: "compileJava", Args: []string{"-parameters"}},
		{Name: "compileTestJava", Args: []string{"-parameters"}},
		{Name: "compileKotlin", Args: []string{"-jvm-target", "1.8", "-java-parameters"}},
		{Name: "compileTestKotlin", Args: []string{"-jvm-target", "1.8", "-java-parameters"}},
	}
	if diff := cmp.Diff(want, p.CompileTasks); diff != "" {
		t.Errorf("compile tasks mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{
		"-Xdoclint:none", "-quiet", "-encoding", "UTF-8", "-charset", "UTF-8",
		"-source", "8", "-link", "https://docs.oracle.com/javase/8/docs/api/",
	}, p.Docs.Args())

	require.Len(t, p.Bundles, 2)
	assert.Equal(t, domain.ClassifierSources, p.Bundles[0].Classifier)
	assert.Equal(t, filepath.Join("core", "build", "libs", "core-2.0.0-SNAPSHOT-sources.jar"), p.Bundles[0].Output)
	assert.Equal(t, domain.ClassifierJavadoc, p.Bundles[1].Classifier)
	assert.Equal(t, filepath.Join("core", "build", "libs", "core-2.0.0-SNAPSHOT.jar"), p.Artifact)
}

func TestConfigure_NoSourceSet(t *testing.T) {
	m := domain.Module{Name: "docs", Path: "docs"}
	_, err := domain.Configure(ws, m, domain.DefaultModuleDefaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoSourceSet))
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.Contains(t, err.Error(), "module docs")
}

func TestConfigure_WithoutKotlinCapability(t *testing.T) {
	m := coreModule()
	m.Capabilities = []domain.Capability{domain.CapJava, domain.CapCheckstyle}
	m.CompilerArgs = []string{"-Xlint:all"}

	d := domain.DefaultModuleDefaults()
	d.CompilerArgs = []string{"-Werror"}

	p, err := domain.Configure(ws, m, d)
	require.NoError(t, err)
	require.Len(t, p.CompileTasks, 2)
	assert.Equal(t, []string{"-parameters", "-Werror", "-Xlint:all"}, p.CompileTasks[0].Args)
	assert.True(t, p.Capabilities.Has(domain.CapCheckstyle))
	assert.False(t, p.Capabilities.Has(domain.CapLicense))
	assert.Equal(t, []domain.Capability{domain.CapJava, domain.CapCheckstyle}, p.Capabilities.Sorted())
}

func TestConfigure_TargetDefaultsToSource(t *testing.T) {
	d := domain.DefaultModuleDefaults()
	d.SourceLevel = "11"
	d.TargetLevel = ""
	p, err := domain.Configure(ws, coreModule(), d)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageLevel("11"), p.TargetLevel)
	assert.Equal(t, "11", p.Docs.Source)
}

func TestArtifactIDFor(t *testing.T) {
	tests := map[string]string{
		"core":           "core",
		"MessageCore":    "message-core",
		"moonshine_core": "moonshine-core",
		"kotlin-ext":     "kotlin-ext",
		"HTTPClient":     "http-client",
	}
	for in, want := range tests {
		assert.Equal(t, want, domain.ArtifactIDFor(in), "name %q", in)
	}
}

func TestCoordinates_ExplicitArtifactID(t *testing.T) {
	m := coreModule()
	m.ArtifactID = "moonshine-core"
	c := ws.Coordinates(m)
	assert.Equal(t, "moonshine-core", c.ArtifactID)
	assert.Equal(t, "net/kyori/moonshine/moonshine-core/2.0.0-SNAPSHOT", c.RepositoryPath())
	assert.Equal(t, "moonshine-core-2.0.0-SNAPSHOT-sources.jar", c.FileName("sources", "jar"))
	assert.Equal(t, "moonshine-core-2.0.0-SNAPSHOT.pom", c.FileName("", "pom"))
}

func TestNewWorkspaceConfig(t *testing.T) {
	w, err := domain.NewWorkspaceConfig(" net.kyori ", "1.0.0 ")
	require.NoError(t, err)
	assert.Equal(t, "net.kyori", w.GroupID)
	assert.Equal(t, domain.ChannelRelease, w.Channel())

	_, err = domain.NewWorkspaceConfig("net.kyori", "")
	assert.True(t, errors.Is(err, domain.ErrConfig))
}
