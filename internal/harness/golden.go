package harness

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/form"
)

// seqTokens generates deterministic run tokens "<prefix>-run-1",
// "<prefix>-run-2", ... so scenario traces are reproducible without
// enumerating tokens up front.
type seqTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *seqTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-run-%d", g.prefix, g.n)
}

// WithScenarioTokens configures a form with deterministic run tokens
// derived from the scenario name.
func WithScenarioTokens(name string) form.Option {
	return form.WithTokens(&seqTokens{prefix: name})
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	if err := scenario.Verify(result); err != nil {
		t.Fatalf("verify scenario %s: %v", scenario.Name, err)
	}

	trace, err := field.MarshalCanonical(Snapshot(scenario, result))
	if err != nil {
		t.Fatalf("marshal trace %s: %v", scenario.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, trace)
}

// Snapshot flattens a result into plain maps for canonical JSON encoding.
func Snapshot(s *Scenario, res *Result) map[string]any {
	merges := make([]any, len(res.Merges))
	for i, m := range res.Merges {
		merges[i] = mergeMap(m)
	}

	fields := make([]any, 0, res.Fields.Len())
	for _, f := range res.Fields.All() {
		fields = append(fields, map[string]any{
			"id":    string(f.ID),
			"value": f.Value,
		})
	}

	return map[string]any{
		"scenario": s.Name,
		"merges":   merges,
		"fields":   fields,
	}
}

func mergeMap(m form.Merge) map[string]any {
	added := make([]any, len(m.Added))
	for i, a := range m.Added {
		added[i] = map[string]any{
			"id":         string(a.ID),
			"value":      a.Value,
			"previous":   a.Previous,
			"overriding": a.Overriding,
		}
	}
	updated := make([]any, len(m.Updated))
	for i, u := range m.Updated {
		updated[i] = map[string]any{
			"id":       string(u.ID),
			"value":    u.Value,
			"previous": u.Previous,
		}
	}
	removed := make([]any, len(m.Removed))
	for i, r := range m.Removed {
		removed[i] = map[string]any{
			"id":         string(r.ID),
			"last_value": r.LastValue,
		}
	}
	errs := make([]any, len(m.Errors))
	for i, e := range m.Errors {
		errMap := map[string]any{
			"code": string(e.Code),
		}
		if e.FieldID != "" {
			errMap["field"] = string(e.FieldID)
		}
		if e.ValidatorID != "" {
			errMap["validator"] = e.ValidatorID
		}
		errs[i] = errMap
	}

	return map[string]any{
		"run":        m.RunToken,
		"author":     string(m.Author),
		"iterations": m.Iterations,
		"added":      added,
		"updated":    updated,
		"removed":    removed,
		"errors":     errs,
	}
}
