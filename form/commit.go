package form

import "github.com/roach88/formflow/field"

// Author tags who initiated a batch of modifications.
type Author string

const (
	// AuthorUser is the default author for externally initiated commits.
	AuthorUser Author = "user"

	// AuthorForm is the author of every reaction-driven iteration after
	// the first: follow-up changes are system-driven.
	AuthorForm Author = "form"
)

// Commit is the outcome of applying one batch of modifications in one
// loop iteration: the diff entries partitioned by kind, the non-fatal
// errors that occurred, and the resulting field snapshot.
type Commit struct {
	// Author tags who requested the batch.
	Author Author

	// RunToken identifies the convergence run this commit belongs to.
	RunToken string

	// Seq is a monotonic sequence number across the engine's lifetime.
	Seq int64

	// Iteration is the commit's zero-based position within its run.
	Iteration int

	// Added, Updated and Removed partition the batch's diff entries.
	Added   []Added
	Updated []Updated
	Removed []Removed

	// Errors lists the non-fatal errors recorded while applying the batch.
	Errors []*Error

	// Fields is the store snapshot after the batch was applied.
	Fields field.Fields
}

// Empty reports whether the commit carries no diff entries.
// An empty commit is a fixed point: the loop stops without reacting.
func (c Commit) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// Merge is the squashed outcome of one full convergence run: every commit
// the run produced, the net diff relative to the state before the run
// began, and the final field snapshot.
type Merge struct {
	// Author tags who triggered the run.
	Author Author

	// RunToken identifies the run.
	RunToken string

	// Commits holds the per-iteration commits, for audit and debugging.
	Commits []Commit

	// Added, Updated and Removed form the squashed net diff.
	Added   []Added
	Updated []Updated
	Removed []Removed

	// Errors aggregates the error lists of all commits. A degenerate
	// merge produced by a rejected reentrant call carries only a
	// commitInProgress error.
	Errors []*Error

	// Fields is the final snapshot after the run.
	Fields field.Fields

	// Iterations is the number of batches applied during the run.
	Iterations int
}

// Empty reports whether the merge's net diff carries no entries.
func (m Merge) Empty() bool {
	return len(m.Added) == 0 && len(m.Updated) == 0 && len(m.Removed) == 0
}

// collectErrors aggregates commit error lists in commit order.
func collectErrors(commits []Commit) []*Error {
	var errs []*Error
	for _, c := range commits {
		errs = append(errs, c.Errors...)
	}
	return errs
}
