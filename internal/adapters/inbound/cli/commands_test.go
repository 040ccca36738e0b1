package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openkraft/buildgate/internal/adapters/inbound/cli"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../../../testdata/moonshine"

// workspace copies the fixture and replaces the external tools with ones
// that always succeed.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS(fixtureDir)))

	f, err := os.OpenFile(filepath.Join(dir, "buildgate.yaml"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("\nlint:\n  command: [\"true\"]\ntest:\n  command: [\"true\"]\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "buildgate dev")
}

func TestChannelCmd(t *testing.T) {
	out, err := execute(t, "channel", "2.0.0-SNAPSHOT")
	require.NoError(t, err)
	assert.Equal(t, "snapshot\n", out)

	out, err = execute(t, "channel", "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "release\n", out)

	_, err = execute(t, "channel")
	assert.Error(t, err)
}

func TestPlanCmd(t *testing.T) {
	out, err := execute(t, "plan", "--path", fixtureDir)
	require.NoError(t, err)
	assert.Contains(t, out, "net.kyori.moonshine")
	assert.Contains(t, out, "moonshine-core")
	assert.Contains(t, out, "snapshot")
}

func TestPlanCmd_JSON(t *testing.T) {
	out, err := execute(t, "plan", "--path", fixtureDir, "--json", "--ci")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result), "output should be valid JSON")
	assert.Equal(t, "snapshot", result["channel"])
	assert.Len(t, result["modules"], 2)
	gate := result["gate"].(map[string]interface{})
	assert.Equal(t, false, gate["run_license_auto_fix"])
}

func TestPlanCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildgate.yaml"), []byte("group: [\n"), 0644))

	_, err := execute(t, "plan", "--path", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestRunCmd_Passes(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "run", "--path", dir, "--json", "--ci")
	require.NoError(t, err)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.Modules, 2)
	for _, m := range summary.Modules {
		assert.Equal(t, domain.OutcomePassed, m.Outcome, m.Module)
		assert.Equal(t, domain.StageReportGenerated, m.Stages[len(m.Stages)-1])
	}
	assert.FileExists(t, filepath.Join(dir, "build", "reports", "coverage", "core.xml"))

	out, err = execute(t, "history", "--path", dir, "--json")
	require.NoError(t, err)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, summary.RunID, entries[0].RunID)
}

func TestRunCmd_FailingTestsExitNonZero(t *testing.T) {
	dir := workspace(t)
	cfgPath := filepath.Join(dir, "buildgate.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	data = []byte(strings.Replace(string(data),
		"artifact_id: moonshine-core\n",
		"artifact_id: moonshine-core\n    test_command: [\"false\"]\n", 1))
	require.NoError(t, os.WriteFile(cfgPath, data, 0644))

	_, err = execute(t, "run", "--path", dir, "--module", "core", "--ci")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 modules did not pass")
}

func TestCheckCmd_MalformedHeaderInCI(t *testing.T) {
	dir := workspace(t)
	broken := filepath.Join(dir, "kotlin", "src", "main", "kotlin", "net", "kyori", "moonshine", "kotlin", "Extensions.kt")
	require.NoError(t, os.WriteFile(broken, []byte("package net.kyori.moonshine.kotlin\n"), 0644))

	out, err := execute(t, "check", "--path", dir, "--ci")
	require.Error(t, err)
	assert.Contains(t, out, "kotlin")

	data, err := os.ReadFile(broken)
	require.NoError(t, err)
	assert.Equal(t, "package net.kyori.moonshine.kotlin\n", string(data), "CI never rewrites headers")
}

func TestLicenseCmds(t *testing.T) {
	dir := workspace(t)
	broken := filepath.Join(dir, "core", "src", "test", "java", "net", "kyori", "moonshine", "MoonshineTest.java")
	require.NoError(t, os.WriteFile(broken, []byte("package net.kyori.moonshine;\n"), 0644))

	_, err := execute(t, "license", "check", "--path", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 files")

	out, err := execute(t, "license", "format", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "MoonshineTest.java")

	out, err = execute(t, "license", "check", "--path", dir, "--json")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestBundleCmd(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "bundle", "--path", dir, "--module", "core", "--json")
	require.NoError(t, err)

	var results []domain.BundleResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.FileExists(t, r.Path)
	}
}

func TestPublishCmd_DryRun(t *testing.T) {
	out, err := execute(t, "publish", "--path", fixtureDir, "--dry-run", "--json",
		"-P", "proxiUser=deploy", "-P", "proxiPassword=s3cret")
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cret")

	var plans []domain.PublicationPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plans))
	require.Len(t, plans, 2)
	assert.Equal(t, domain.ChannelSnapshot, plans[0].Policy.Channel)
	assert.Equal(t, "https://nexus.mardroemmar.dev/repository/maven-snapshots/", plans[0].Policy.DestinationURL)
	require.NotNil(t, plans[0].Policy.Credentials)
	assert.Equal(t, "deploy", plans[0].Policy.Credentials.Username)
}

func TestPublishCmd_BadProperty(t *testing.T) {
	_, err := execute(t, "publish", "--path", fixtureDir, "--dry-run", "-P", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid property")
}

func TestMCPCmds(t *testing.T) {
	out, err := execute(t, "mcp", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "buildgate MCP")
	assert.Contains(t, out, "serve")

	out, err = execute(t, "mcp", "serve", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "stdio")
	assert.Contains(t, out, "publication channels")
}
