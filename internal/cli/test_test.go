package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: smoke
description: "set then read"
steps:
  - op: set
    caller: B
    value: 5
  - op: read
    target: B
    expect:
      case: ok
      value: 5
`

const failingScenario = `name: broken
description: "expects the wrong value"
steps:
  - op: set
    caller: B
    value: 5
  - op: read
    target: B
    expect:
      case: ok
      value: 6
`

func writeScenario(t *testing.T, dir, file, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644))
}

func TestTestCommandRunsRepoScenarios(t *testing.T) {
	env := newTestEnv(t)

	out, _, code := env.run(t, "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	assert.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "✓ admin_reset")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "smoke.yaml", passingScenario)

	_, _, code := env.run(t, "test", dir, "--update")
	require.Equal(t, ExitSuccess, code)

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "smoke.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name": "smoke"`)

	out, _, code := env.run(t, "test", dir)
	assert.Equal(t, ExitSuccess, code, out)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "smoke.golden"), []byte("{}\n"), 0o644))
	out, _, code = env.run(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "smoke.yaml", passingScenario)
	writeScenario(t, dir, "broken.yaml", failingScenario)

	out, _, code := env.run(t, "--format", "json", "test", dir)
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestTestCommandFilter(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "smoke.yaml", passingScenario)
	writeScenario(t, dir, "broken.yaml", failingScenario)

	out, _, code := env.run(t, "test", dir, "--filter", "smo*")
	assert.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandMissingDir(t *testing.T) {
	env := newTestEnv(t)

	_, _, code := env.run(t, "test", filepath.Join(env.dir, "nope"))
	assert.Equal(t, ExitCommandError, code)
}

func TestTestCommandEmptyDir(t *testing.T) {
	env := newTestEnv(t)

	out, _, code := env.run(t, "test", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "No scenarios found.")
}

func TestFindScenarioFilesSkipsGolden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	writeScenario(t, dir, "a.yaml", passingScenario)
	writeScenario(t, dir, "b.yml", passingScenario)
	writeScenario(t, dir, "notes.md", "x")
	writeScenario(t, filepath.Join(dir, "golden"), "c.yaml", passingScenario)

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "x.golden"), goldenFilePath(filepath.Join("s", "x.yaml")))
}
