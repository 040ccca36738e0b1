package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/buildgate/internal/adapters/outbound/scanner"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../../../testdata/moonshine"

func fixtureFile() domain.WorkspaceFile {
	f := domain.DefaultWorkspaceFile()
	f.Modules = []domain.ModuleSpec{{Name: "core"}, {Name: "kotlin"}, {Name: "docs"}}
	return f
}

func TestFileScanner_Scan(t *testing.T) {
	modules, err := scanner.New().Scan(fixtureDir, fixtureFile())
	require.NoError(t, err)
	require.Len(t, modules, 3)

	core := modules[0]
	assert.Equal(t, "core", core.Name)
	assert.True(t, filepath.IsAbs(core.Path))
	assert.True(t, core.Buildable())

	main, ok := core.SourceSet(domain.SourceSetMain)
	require.True(t, ok)
	require.Len(t, main.Files, 1)
	assert.Equal(t, "Moonshine.java", filepath.Base(main.Files[0]))

	test, ok := core.SourceSet(domain.SourceSetTest)
	require.True(t, ok)
	assert.Len(t, test.Files, 1)
}

func TestFileScanner_KotlinRoot(t *testing.T) {
	modules, err := scanner.New().Scan(fixtureDir, fixtureFile())
	require.NoError(t, err)

	kotlin := modules[1]
	main, ok := kotlin.SourceSet(domain.SourceSetMain)
	require.True(t, ok)
	assert.Equal(t, "Extensions.kt", filepath.Base(main.Files[0]))
	_, hasTest := kotlin.SourceSet(domain.SourceSetTest)
	assert.False(t, hasTest)
}

func TestFileScanner_ModuleWithoutSources(t *testing.T) {
	modules, err := scanner.New().Scan(fixtureDir, fixtureFile())
	require.NoError(t, err)

	docs := modules[2]
	assert.Equal(t, "docs", docs.Name)
	assert.False(t, docs.Buildable())
}

func TestFileScanner_DiscoversModules(t *testing.T) {
	f := domain.DefaultWorkspaceFile()
	modules, err := scanner.New().Scan(fixtureDir, f)
	require.NoError(t, err)

	var names []string
	for _, m := range modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"core", "kotlin"}, names, "docs has no main source root")
}

func TestFileScanner_SkipsBuildOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "core", "src", "main", "java")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "build"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "A.java"), []byte("class A {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "build", "Gen.java"), []byte("class Gen {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0644))

	f := domain.DefaultWorkspaceFile()
	f.Modules = []domain.ModuleSpec{{Name: "core"}}
	modules, err := scanner.New().Scan(dir, f)
	require.NoError(t, err)

	main, _ := modules[0].SourceSet(domain.SourceSetMain)
	require.Len(t, main.Files, 1)
	assert.Equal(t, "A.java", filepath.Base(main.Files[0]))
}

func TestMatches(t *testing.T) {
	assert.True(t, scanner.Matches("A.java", []string{"*.java", "*.kt"}))
	assert.True(t, scanner.Matches("B.kt", []string{"*.java", "*.kt"}))
	assert.False(t, scanner.Matches("C.kts", []string{"*.java", "*.kt"}))
}
