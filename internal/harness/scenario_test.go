package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/admin_reset.yaml")
	require.NoError(t, err)

	assert.Equal(t, "admin_reset", s.Name)
	require.Len(t, s.Steps, 7)
	assert.Equal(t, OpInitialize, s.Steps[0].Op)
	assert.Equal(t, "A", s.Steps[0].Caller)
	require.NotNil(t, s.Steps[1].Value)
	assert.Equal(t, uint64(5), *s.Steps[1].Value)
	assert.Equal(t, "UNAUTHORIZED", s.Steps[5].Expect.Case)
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenarioFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: disk
description: "written to a temp file"
steps:
  - op: config
    expect:
      case: NOT_INITIALIZED
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "disk", s.Name)
}

func TestParseScenarioRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			doc:     "name: [",
			wantErr: "failed to parse YAML",
		},
		{
			name: "missing description",
			doc: `
name: x
steps:
  - op: config`,
			wantErr: "invalid scenario",
		},
		{
			name: "no steps",
			doc: `
name: x
description: d
steps: []`,
			wantErr: "invalid scenario",
		},
		{
			name: "unknown op",
			doc: `
name: x
description: d
steps:
  - op: delete`,
			wantErr: "invalid scenario",
		},
		{
			name: "unknown field",
			doc: `
name: x
description: d
steps:
  - op: config
    colour: red`,
			wantErr: "invalid scenario",
		},
		{
			name: "negative value",
			doc: `
name: x
description: d
steps:
  - op: set
    caller: B
    value: -1`,
			wantErr: "invalid scenario",
		},
		{
			name: "unknown case",
			doc: `
name: x
description: d
steps:
  - op: config
    expect:
      case: EXPLODED`,
			wantErr: "invalid scenario",
		},
		{
			name: "set without value",
			doc: `
name: x
description: d
steps:
  - op: set
    caller: B`,
			wantErr: "caller and value are required for set",
		},
		{
			name: "reset without target",
			doc: `
name: x
description: d
steps:
  - op: reset
    caller: A
    value: 1`,
			wantErr: "caller, target and value are required for reset",
		},
		{
			name: "read without target",
			doc: `
name: x
description: d
steps:
  - op: read`,
			wantErr: "target is required for read",
		},
		{
			name: "initialize without caller",
			doc: `
name: x
description: d
steps:
  - op: initialize`,
			wantErr: "caller is required for initialize",
		},
		{
			name: "final_record with value and absent",
			doc: `
name: x
description: d
steps:
  - op: config
    expect:
      case: NOT_INITIALIZED
assertions:
  - type: final_record
    owner: B
    value: 1
    absent: true`,
			wantErr: "exactly one of value or absent",
		},
		{
			name: "trace_count without count",
			doc: `
name: x
description: d
steps:
  - op: config
    expect:
      case: NOT_INITIALIZED
assertions:
  - type: trace_count
    op: config`,
			wantErr: "op and count are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDocumentAcceptsMaxValue(t *testing.T) {
	doc := map[string]any{
		"name":        "max",
		"description": "largest value",
		"steps": []any{
			map[string]any{"op": "set", "caller": "B", "value": uint64(18446744073709551615)},
		},
	}
	assert.NoError(t, ValidateDocument(doc))
}

func TestSchemaErrorNamesPath(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
description: d
steps:
  - op: config
  - op: explode
`))
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.NotEmpty(t, se.Violations)
	assert.Contains(t, se.Error(), "steps.1.op")
}
