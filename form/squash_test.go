package form

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/formflow/field"
)

func original(pairs ...field.Field) field.Fields {
	return field.NewFields(pairs...)
}

// TestSquash_LastWriteWins tests that repeated writes to one field across
// iterations collapse to a single net entry.
func TestSquash_LastWriteWins(t *testing.T) {
	commits := []Commit{
		{Updated: []Updated{{ID: "a", Value: 1, Previous: 0}}},
		{Updated: []Updated{{ID: "a", Value: 2, Previous: 1}}},
		{Updated: []Updated{{ID: "a", Value: 3, Previous: 2}}},
	}

	added, updated, removed := squash(commits, original(field.Field{ID: "a", Value: 0}))

	assert.Empty(t, added)
	assert.Empty(t, removed)
	assert.Equal(t, []Updated{{ID: "a", Value: 3, Previous: 0}}, updated)
}

// TestSquash_NewFieldIsAdded tests that a field absent from the original
// snapshot nets to an Added entry regardless of how it got its last value.
func TestSquash_NewFieldIsAdded(t *testing.T) {
	commits := []Commit{
		{Added: []Added{{ID: "n", Value: 1, Previous: 1}}},
		{Updated: []Updated{{ID: "n", Value: 5, Previous: 1}}},
	}

	added, updated, removed := squash(commits, original())

	assert.Empty(t, updated)
	assert.Empty(t, removed)
	assert.Equal(t, []Added{{ID: "n", Value: 5, Previous: 5}}, added)
}

// TestSquash_CreateThenDestroyNetsToZero tests that a field created and
// removed within the same run leaves no trace in the merge diff.
func TestSquash_CreateThenDestroyNetsToZero(t *testing.T) {
	commits := []Commit{
		{Added: []Added{{ID: "tmp", Value: 1, Previous: 1}}},
		{Removed: []Removed{{ID: "tmp", LastValue: 1}}},
	}

	added, updated, removed := squash(commits, original())

	assert.Empty(t, added)
	assert.Empty(t, updated)
	assert.Empty(t, removed)
}

// TestSquash_RemovedCarriesOriginalValue tests that removing a
// pre-existing field reports the value it had before the run, not the
// value it last held inside the run.
func TestSquash_RemovedCarriesOriginalValue(t *testing.T) {
	commits := []Commit{
		{Updated: []Updated{{ID: "a", Value: 9, Previous: 1}}},
		{Removed: []Removed{{ID: "a", LastValue: 9}}},
	}

	added, updated, removed := squash(commits, original(field.Field{ID: "a", Value: 1}))

	assert.Empty(t, added)
	assert.Empty(t, updated)
	assert.Equal(t, []Removed{{ID: "a", LastValue: 1}}, removed)
}

// TestSquash_RemoveThenRecreate tests that destroy-then-create on a
// pre-existing field nets to an Updated entry against the original value.
func TestSquash_RemoveThenRecreate(t *testing.T) {
	commits := []Commit{
		{Removed: []Removed{{ID: "a", LastValue: 1}}},
		{Added: []Added{{ID: "a", Value: 7, Previous: 7}}},
	}

	added, updated, removed := squash(commits, original(field.Field{ID: "a", Value: 1}))

	assert.Empty(t, added)
	assert.Empty(t, removed)
	assert.Equal(t, []Updated{{ID: "a", Value: 7, Previous: 1}}, updated)
}

// TestSquash_FirstSeenOrder tests that the net diff lists fields in the
// order the run first touched them.
func TestSquash_FirstSeenOrder(t *testing.T) {
	commits := []Commit{
		{Updated: []Updated{
			{ID: "z", Value: 1, Previous: 0},
			{ID: "a", Value: 2, Previous: 0},
		}},
		{Updated: []Updated{{ID: "m", Value: 3, Previous: 0}}},
	}

	_, updated, _ := squash(commits, original(
		field.Field{ID: "a", Value: 0},
		field.Field{ID: "m", Value: 0},
		field.Field{ID: "z", Value: 0},
	))

	ids := make([]field.ID, len(updated))
	for i, u := range updated {
		ids[i] = u.ID
	}
	assert.Equal(t, []field.ID{"z", "a", "m"}, ids)
}

func TestSquash_NoCommits(t *testing.T) {
	added, updated, removed := squash(nil, original(field.Field{ID: "a", Value: 1}))
	assert.Empty(t, added)
	assert.Empty(t, updated)
	assert.Empty(t, removed)
}
