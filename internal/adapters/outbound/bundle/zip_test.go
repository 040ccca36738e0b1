package bundle_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/openkraft/buildgate/internal/adapters/outbound/bundle"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func TestBundle_SourcesFromSeveralRoots(t *testing.T) {
	dir := t.TempDir()
	java := filepath.Join(dir, "src", "main", "java")
	kotlin := filepath.Join(dir, "src", "main", "kotlin")
	writeFile(t, filepath.Join(java, "net", "kyori", "A.java"), "class A {}")
	writeFile(t, filepath.Join(kotlin, "net", "kyori", "B.kt"), "class B")

	out := filepath.Join(dir, "build", "libs", "core-1.0-sources.jar")
	size, err := bundle.New().Bundle(context.Background(), domain.Bundle{
		Classifier: domain.ClassifierSources,
		Roots:      []string{java, kotlin, filepath.Join(dir, "missing")},
		Output:     out,
	})
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)

	files := readZip(t, out)
	assert.Equal(t, "class A {}", files["net/kyori/A.java"])
	assert.Equal(t, "class B", files["net/kyori/B.kt"])
	assert.Contains(t, files["META-INF/MANIFEST.MF"], "Manifest-Version: 1.0")
}

func TestBundle_FirstRootWins(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeFile(t, filepath.Join(a, "x.txt"), "from a")
	writeFile(t, filepath.Join(b, "x.txt"), "from b")

	out := filepath.Join(dir, "out.jar")
	_, err := bundle.New().Bundle(context.Background(), domain.Bundle{Roots: []string{a, b}, Output: out})
	require.NoError(t, err)
	assert.Equal(t, "from a", readZip(t, out)["x.txt"])
}

func TestBundle_Reproducible(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "A.java"), "class A {}")

	first := filepath.Join(dir, "one.jar")
	second := filepath.Join(dir, "two.jar")
	_, err := bundle.New().Bundle(context.Background(), domain.Bundle{Roots: []string{src}, Output: first})
	require.NoError(t, err)
	_, err = bundle.New().Bundle(context.Background(), domain.Bundle{Roots: []string{src}, Output: second})
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBundle_EmptyRootsStillHasManifest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "javadoc.jar")
	_, err := bundle.New().Bundle(context.Background(), domain.Bundle{Output: out})
	require.NoError(t, err)
	files := readZip(t, out)
	assert.Len(t, files, 1)
}
