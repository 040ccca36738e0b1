package application_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceService_Load(t *testing.T) {
	ws, err := newWorkspaceService().Load(fixtureDir)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(ws.Root))
	assert.Equal(t, "net.kyori.moonshine", ws.Config.GroupID)
	assert.Equal(t, domain.ChannelSnapshot, ws.Config.Channel())
	require.Len(t, ws.Policies, 2)

	_, core, ok := ws.Module("core")
	require.True(t, ok)
	assert.Equal(t, "net.kyori.moonshine:moonshine-core:2.0.0-SNAPSHOT", core.Coordinates.String())
	assert.Len(t, core.Dependencies, 3)
	assert.Equal(t, filepath.Join(ws.Root, "LICENCE-HEADER"), ws.HeaderPath())
	assert.Equal(t, filepath.Join(ws.Root, "build", "reports", "coverage"), ws.CoveragePolicy().OutputDir)
}

func TestWorkspace_Select(t *testing.T) {
	ws, err := newWorkspaceService().Load(fixtureDir)
	require.NoError(t, err)

	sel, err := ws.Select([]string{"kotlin"})
	require.NoError(t, err)
	require.Len(t, sel.Policies, 1)
	assert.Equal(t, "kotlin", sel.Policies[0].Module)
	assert.Len(t, ws.Policies, 2, "selection does not modify the original")

	_, err = ws.Select([]string{"missing"})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestWorkspaceService_ModuleWithoutSources(t *testing.T) {
	dir := t.TempDir()
	yaml := "group: net.kyori\nversion: 1.0.0\nmodules:\n  - name: empty\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildgate.yaml"), []byte(yaml), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))

	_, err := newWorkspaceService().Load(dir)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.ErrorIs(t, err, domain.ErrNoSourceSet)
}

func TestWorkspaceService_DiscoveredModulesShareReportName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildgate.yaml"), []byte("group: net.kyori\nversion: 1.0.0\n"), 0644))
	for _, name := range []string{"messageCore", "message_core"} {
		src := filepath.Join(dir, name, "src", "main", "java")
		require.NoError(t, os.MkdirAll(src, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(src, "A.java"), []byte("class A {}\n"), 0644))
	}

	_, err := newWorkspaceService().Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), `modules "messageCore" and "message_core"`)
}
