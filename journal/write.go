package journal

import (
	"context"
	"fmt"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/form"
)

// WriteCommit appends one per-iteration commit to the journal.
// The diff and error lists are serialized to canonical JSON so equal
// commits always produce byte-identical payloads.
func (j *Journal) WriteCommit(ctx context.Context, c form.Commit) error {
	payload, err := marshalPayload(commitPayload(c))
	if err != nil {
		return fmt.Errorf("write commit: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries (seq, run_token, kind, author, payload)
		VALUES (?, ?, 'commit', ?, ?)
	`, c.Seq, c.RunToken, string(c.Author), payload)
	if err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	return nil
}

// WriteMerge appends one squashed run-level merge to the journal.
// The merge's seq is the seq of its last commit, or 0 for a run that
// applied no batches.
func (j *Journal) WriteMerge(ctx context.Context, m form.Merge) error {
	payload, err := marshalPayload(mergePayload(m))
	if err != nil {
		return fmt.Errorf("write merge: %w", err)
	}

	var seq int64
	if n := len(m.Commits); n > 0 {
		seq = m.Commits[n-1].Seq
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries (seq, run_token, kind, author, payload)
		VALUES (?, ?, 'merge', ?, ?)
	`, seq, m.RunToken, string(m.Author), payload)
	if err != nil {
		return fmt.Errorf("write merge: %w", err)
	}
	return nil
}

func marshalPayload(v map[string]any) (string, error) {
	data, err := field.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func commitPayload(c form.Commit) map[string]any {
	return map[string]any{
		"iteration": c.Iteration,
		"added":     addedList(c.Added),
		"updated":   updatedList(c.Updated),
		"removed":   removedList(c.Removed),
		"errors":    errorList(c.Errors),
	}
}

func mergePayload(m form.Merge) map[string]any {
	return map[string]any{
		"iterations": m.Iterations,
		"added":      addedList(m.Added),
		"updated":    updatedList(m.Updated),
		"removed":    removedList(m.Removed),
		"errors":     errorList(m.Errors),
	}
}

func addedList(entries []form.Added) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"id":         string(e.ID),
			"value":      e.Value,
			"previous":   e.Previous,
			"overriding": e.Overriding,
		}
	}
	return out
}

func updatedList(entries []form.Updated) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"id":       string(e.ID),
			"value":    e.Value,
			"previous": e.Previous,
		}
	}
	return out
}

func removedList(entries []form.Removed) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"id":         string(e.ID),
			"last_value": e.LastValue,
		}
	}
	return out
}

func errorList(errs []*form.Error) []any {
	out := make([]any, len(errs))
	for i, e := range errs {
		entry := map[string]any{
			"code": string(e.Code),
		}
		if e.FieldID != "" {
			entry["field"] = string(e.FieldID)
		}
		if e.ValidatorID != "" {
			entry["validator"] = e.ValidatorID
		}
		out[i] = entry
	}
	return out
}
