package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/form"
	"github.com/roach88/formflow/schema"
)

// Scenario defines a declarative convergence test.
type Scenario struct {
	// Name uniquely identifies this scenario. Run tokens and golden file
	// names are derived from it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Schema is the path to the CUE field schema, relative to the
	// scenario file location.
	Schema string `yaml:"schema"`

	// MaxIterations overrides the engine's iteration cap when positive.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// Steps are the modification batches committed in order.
	Steps []Step `yaml:"steps"`

	// Reactions are declarative rules compiled into the engine's
	// reaction hook: when a commit carries the given field/value, the
	// rule proposes the listed follow-up updates.
	Reactions []Rule `yaml:"reactions,omitempty"`

	// Expect lists final field values to verify after all steps.
	Expect []FieldValue `yaml:"expect,omitempty"`

	// dir is the scenario file's directory, for resolving Schema.
	dir string
}

// Step is one commit: a batch of value sets and removals.
type Step struct {
	// Author tags the commit; defaults to "user".
	Author string `yaml:"author,omitempty"`

	// Set lists field updates applied in this batch.
	Set []FieldValue `yaml:"set,omitempty"`

	// Remove lists fields deleted in this batch.
	Remove []string `yaml:"remove,omitempty"`
}

// FieldValue pairs a field name with a value.
type FieldValue struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// Rule is one declarative reaction: when a commit's diff contains the
// condition's field at the condition's value, propose the Then updates.
type Rule struct {
	When Condition    `yaml:"when"`
	Then []FieldValue `yaml:"then"`
}

// Condition matches a diff entry by field and value.
type Condition struct {
	Field  string `yaml:"field"`
	Equals any    `yaml:"equals"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Merges holds one merge per commit issued: the schema seeding merge
	// first, then one per step.
	Merges []form.Merge

	// Fields is the final snapshot.
	Fields field.Fields
}

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	s.dir = filepath.Dir(path)

	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Schema == "" {
		return nil, fmt.Errorf("scenario %s: schema is required", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one step is required", path)
	}
	return &s, nil
}

// Run executes the scenario against a fresh engine and returns its trace.
// Extra options (a history sink, for example) are applied after the
// scenario's own configuration.
func Run(s *Scenario, extra ...form.Option) (*Result, error) {
	schemaPath := s.Schema
	if s.dir != "" && !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(s.dir, schemaPath)
	}
	defs, err := schema.Load(schemaPath)
	if err != nil {
		return nil, err
	}

	opts := []form.Option{
		WithScenarioTokens(s.Name),
		form.WithReaction(s.reaction()),
	}
	if s.MaxIterations > 0 {
		opts = append(opts, form.WithMaxIterations(s.MaxIterations))
	}
	opts = append(opts, extra...)

	f := form.New(opts...)
	defer f.Close()

	ctx := context.Background()
	result := &Result{}

	seed, err := f.Commit(ctx, "schema", schema.Modifications(defs)...)
	if err != nil {
		return nil, fmt.Errorf("seed schema: %w", err)
	}
	result.Merges = append(result.Merges, seed)

	for i, step := range s.Steps {
		author := form.Author(step.Author)
		mods, err := step.modifications()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		m, err := f.Commit(ctx, author, mods...)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		result.Merges = append(result.Merges, m)
	}

	result.Fields = f.Fields()
	return result, nil
}

// Verify checks the scenario's expectations against a result.
func (s *Scenario) Verify(res *Result) error {
	for _, exp := range s.Expect {
		f, ok := res.Fields.Get(field.ID(exp.Field))
		if !ok {
			return fmt.Errorf("expectation failed: field %q is absent", exp.Field)
		}
		want := normalizeValue(exp.Value)
		if !reflect.DeepEqual(f.Value, want) {
			return fmt.Errorf("expectation failed: field %q = %v, want %v", exp.Field, f.Value, want)
		}
	}
	return nil
}

func (st Step) modifications() ([]form.Modification, error) {
	var mods []form.Modification
	for _, fv := range st.Set {
		if fv.Field == "" {
			return nil, fmt.Errorf("set entry is missing a field name")
		}
		mods = append(mods, form.Update(field.ID(fv.Field), normalizeValue(fv.Value)))
	}
	for _, name := range st.Remove {
		mods = append(mods, form.Remove(field.ID(name)))
	}
	if len(mods) == 0 {
		return nil, fmt.Errorf("step has no operations")
	}
	return mods, nil
}

// reaction compiles the scenario's rules into the engine's reaction hook.
// Each rule fires when the commit's diff carries the condition field at
// the condition value.
func (s *Scenario) reaction() form.ReactionFunc {
	return func(ctx context.Context, c form.Commit) []form.Modification {
		var mods []form.Modification
		for _, rule := range s.Reactions {
			if !commitMatches(c, rule.When) {
				continue
			}
			for _, fv := range rule.Then {
				mods = append(mods, form.Update(field.ID(fv.Field), normalizeValue(fv.Value)))
			}
		}
		return mods
	}
}

func commitMatches(c form.Commit, cond Condition) bool {
	id := field.ID(cond.Field)
	want := normalizeValue(cond.Equals)
	for _, a := range c.Added {
		if a.ID == id && reflect.DeepEqual(a.Value, want) {
			return true
		}
	}
	for _, u := range c.Updated {
		if u.ID == id && reflect.DeepEqual(u.Value, want) {
			return true
		}
	}
	return false
}

// normalizeValue aligns YAML decoding with the schema package's value
// types: plain ints become int64, float32 becomes float64.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}
