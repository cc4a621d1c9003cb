package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/form"
)

func writeScenario(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()

	// Scenarios resolve their schema relative to their own location.
	schema := `fields: {
	count: {type: "int", default: 0, min: 0}
	note:  {type: "string", default: ""}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fields.cue"), []byte(schema), 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: basic
schema: fields.cue
steps:
  - set:
      - field: count
        value: 3
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", s.Name)
	assert.Equal(t, "fields.cue", s.Schema)
	require.Len(t, s.Steps, 1)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "schema: fields.cue\nsteps: [{set: [{field: count, value: 1}]}]", "name is required"},
		{"missing schema", "name: x\nsteps: [{set: [{field: count, value: 1}]}]", "schema is required"},
		{"no steps", "name: x\nschema: fields.cue", "at least one step"},
		{"bad yaml", "name: [unterminated", "parse scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_StepsAndRemovals(t *testing.T) {
	path := writeScenario(t, `
name: removal
schema: fields.cue
steps:
  - set:
      - field: count
        value: 5
  - remove:
      - note
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	res, err := Run(s)
	require.NoError(t, err)

	// Seed merge plus one per step.
	require.Len(t, res.Merges, 3)
	assert.Equal(t, "removal-run-1", res.Merges[0].RunToken)
	assert.Equal(t, form.Author("schema"), res.Merges[0].Author)
	assert.Equal(t, form.AuthorUser, res.Merges[1].Author)

	n, ok := field.Value[int64](res.Fields, "count")
	require.True(t, ok)
	assert.Equal(t, int64(5), n)
	assert.False(t, res.Fields.Has("note"))
}

func TestRun_YAMLIntsReachInt64Validators(t *testing.T) {
	path := writeScenario(t, `
name: coercion
schema: fields.cue
steps:
  - set:
      - field: count
        value: 7
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	res, err := Run(s)
	require.NoError(t, err)

	// Schema ints are int64; the harness normalizes YAML's plain ints so
	// updates pass the type check.
	last := res.Merges[len(res.Merges)-1]
	assert.Empty(t, last.Errors)

	n, ok := field.Value[int64](res.Fields, "count")
	require.True(t, ok)
	assert.Equal(t, int64(7), n)
}

func TestVerify_ReportsMismatch(t *testing.T) {
	path := writeScenario(t, `
name: mismatch
schema: fields.cue
steps:
  - set:
      - field: count
        value: 5
expect:
  - field: count
    value: 6
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	res, err := Run(s)
	require.NoError(t, err)

	err = s.Verify(res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"count"`)
}

func TestVerify_ReportsAbsentField(t *testing.T) {
	path := writeScenario(t, `
name: absent
schema: fields.cue
steps:
  - remove:
      - note
expect:
  - field: note
    value: ""
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	res, err := Run(s)
	require.NoError(t, err)

	err = s.Verify(res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent")
}

func TestRun_ReactionRulesCascade(t *testing.T) {
	path := writeScenario(t, `
name: cascade
schema: fields.cue
max_iterations: 10
steps:
  - set:
      - field: count
        value: 1
reactions:
  - when:
      field: count
      equals: 1
    then:
      - field: note
        value: "one"
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	res, err := Run(s)
	require.NoError(t, err)

	last := res.Merges[len(res.Merges)-1]
	assert.Equal(t, 2, last.Iterations)

	note, ok := field.Value[string](res.Fields, "note")
	require.True(t, ok)
	assert.Equal(t, "one", note)
}

func TestSeqTokens_Deterministic(t *testing.T) {
	g := &seqTokens{prefix: "demo"}
	assert.Equal(t, "demo-run-1", g.Generate())
	assert.Equal(t, "demo-run-2", g.Generate())
}
