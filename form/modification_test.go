package form

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/internal/testutil"
)

// TestDedupe_KeepsLastOccurrence tests that only the last modification per
// field survives, at the position of that last occurrence.
func TestDedupe_KeepsLastOccurrence(t *testing.T) {
	mods := []Modification{
		Update("a", 1),
		Update("b", 2),
		Update("a", 3),
		Remove("c"),
		Update("b", 4),
	}

	out := dedupe(mods)

	assert.Equal(t, []Modification{
		Update("a", 3),
		Remove("c"),
		Update("b", 4),
	}, out)
}

// TestDedupe_DifferentOperationsSameField tests that a later operation of
// a different kind supersedes an earlier one.
func TestDedupe_DifferentOperationsSameField(t *testing.T) {
	mods := []Modification{
		Update("a", 1),
		Remove("a"),
	}

	out := dedupe(mods)

	assert.Equal(t, []Modification{Remove("a")}, out)
}

func TestDedupe_ShortBatchesPassThrough(t *testing.T) {
	assert.Nil(t, dedupe(nil))

	one := []Modification{Update("a", 1)}
	assert.Equal(t, one, dedupe(one))
}

func TestModification_FieldID(t *testing.T) {
	v := testutil.Int("v", 0)

	assert.Equal(t, field.ID("a"), Add("a", v).FieldID())
	assert.Equal(t, field.ID("b"), AddAndUpdate("b", 1, v).FieldID())
	assert.Equal(t, field.ID("c"), Update("c", 1).FieldID())
	assert.Equal(t, field.ID("d"), Remove("d").FieldID())
}
