package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/internal/testutil"
)

// TestApply_AddCreatesWithDefault tests Add on a missing field.
func TestApply_AddCreatesWithDefault(t *testing.T) {
	s := newFieldStore()

	out := s.apply([]Modification{Add("count", testutil.Int("count-v", 7))})

	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "count", Value: 7, Previous: 7, Overriding: false}, out.added[0])
	assert.Empty(t, out.errs)

	f, ok := s.snapshot().Get("count")
	require.True(t, ok)
	assert.Equal(t, 7, f.Value)
}

// TestApply_AddKeepsSurvivingValue tests validator replacement where the
// previous value passes the new validator.
func TestApply_AddKeepsSurvivingValue(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.Int("v1", 0)),
		Update("count", 5),
	})

	out := s.apply([]Modification{Add("count", testutil.IntRange("v2", 0, 0, 10))})

	// Value 5 passes the new validator: kept, and no diff entry since the
	// value did not change.
	assert.Empty(t, out.added)
	assert.Empty(t, out.errs)

	f, _ := s.snapshot().Get("count")
	assert.Equal(t, 5, f.Value)
}

// TestApply_AddFallsBackToNewDefault tests validator replacement where the
// previous value fails the new predicate.
func TestApply_AddFallsBackToNewDefault(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.Int("v1", 0)),
		Update("count", 50),
	})

	out := s.apply([]Modification{Add("count", testutil.IntRange("v2", 1, 0, 10))})

	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeValidationFailed, out.errs[0].Code)
	assert.Equal(t, "v2", out.errs[0].ValidatorID)

	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "count", Value: 1, Previous: 50, Overriding: true}, out.added[0])
}

// TestApply_AddTypeSwitch tests validator replacement with a new expected
// type: the previous value is invalidType under the new validator.
func TestApply_AddTypeSwitch(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{Add("slot", testutil.Int("ints", 3))})

	out := s.apply([]Modification{Add("slot", testutil.String("strings", "none"))})

	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeInvalidValueType, out.errs[0].Code)

	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "slot", Value: "none", Previous: 3, Overriding: true}, out.added[0])
}

// TestApply_AddAndUpdateCreates tests AddAndUpdate on a missing field.
func TestApply_AddAndUpdateCreates(t *testing.T) {
	s := newFieldStore()

	out := s.apply([]Modification{AddAndUpdate("city", "porto", testutil.String("city-v", ""))})

	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "city", Value: "porto", Previous: "porto", Overriding: false}, out.added[0])
	assert.Empty(t, out.errs)
}

// TestApply_AddAndUpdateCreatesWithInvalidValue tests the default
// substitution when the proposed value fails on a fresh field.
func TestApply_AddAndUpdateCreatesWithInvalidValue(t *testing.T) {
	s := newFieldStore()

	out := s.apply([]Modification{AddAndUpdate("count", 99, testutil.IntRange("v", 2, 0, 10))})

	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeValidationFailed, out.errs[0].Code)

	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "count", Value: 2, Previous: 2, Overriding: false}, out.added[0])
}

// TestApply_AddAndUpdateFallsBackToPrevious tests the fallback ladder on
// an existing field: rejected value, previous value still valid.
func TestApply_AddAndUpdateFallsBackToPrevious(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.Int("v1", 0)),
		Update("count", 5),
	})

	out := s.apply([]Modification{AddAndUpdate("count", 99, testutil.IntRange("v2", 0, 0, 10))})

	// One error for the rejected candidate; previous value 5 survives
	// under the new validator, so the value does not change.
	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeValidationFailed, out.errs[0].Code)
	assert.Empty(t, out.added)

	f, _ := s.snapshot().Get("count")
	assert.Equal(t, 5, f.Value)
}

// TestApply_AddAndUpdateDoubleFallback tests the ladder's last rung:
// rejected value, previous value also rejected, default substituted.
func TestApply_AddAndUpdateDoubleFallback(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.Int("v1", 0)),
		Update("count", 50),
	})

	out := s.apply([]Modification{AddAndUpdate("count", 99, testutil.IntRange("v2", 1, 0, 10))})

	require.Len(t, out.errs, 2)
	assert.Equal(t, CodeValidationFailed, out.errs[0].Code)
	assert.Equal(t, CodeValidationFailed, out.errs[1].Code)

	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "count", Value: 1, Previous: 50, Overriding: true}, out.added[0])
}

// TestApply_AddAndUpdateWrongTypeSkipsFallback tests that a wrong-typed
// candidate goes straight to the default with no fallback attempt.
func TestApply_AddAndUpdateWrongTypeSkipsFallback(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.Int("v1", 0)),
		Update("count", 5),
	})

	out := s.apply([]Modification{AddAndUpdate("count", "not-a-number", testutil.IntRange("v2", 1, 0, 10))})

	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeInvalidValueType, out.errs[0].Code)

	// Previous value 5 would have survived, but invalidType skips the
	// fallback: the default wins.
	require.Len(t, out.added, 1)
	assert.Equal(t, Added{ID: "count", Value: 1, Previous: 5, Overriding: true}, out.added[0])
}

// TestApply_Update tests the plain value update path.
func TestApply_Update(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{Add("count", testutil.IntRange("v", 0, 0, 10))})

	out := s.apply([]Modification{Update("count", 9)})
	require.Len(t, out.updated, 1)
	assert.Equal(t, Updated{ID: "count", Value: 9, Previous: 0}, out.updated[0])
	assert.Empty(t, out.errs)
}

// TestApply_UpdateMissingField tests fieldNotFound on Update.
func TestApply_UpdateMissingField(t *testing.T) {
	s := newFieldStore()

	out := s.apply([]Modification{Update("ghost", 1)})

	assert.Empty(t, out.updated)
	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeFieldNotFound, out.errs[0].Code)
	assert.Equal(t, field.ID("ghost"), out.errs[0].FieldID)
}

// TestApply_UpdateRejectedLeavesRecordUnchanged tests the §predicate and
// type failure paths of Update.
func TestApply_UpdateRejectedLeavesRecordUnchanged(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.IntRange("v", 0, 0, 10)),
		Update("count", 5),
	})

	out := s.apply([]Modification{Update("count", 99)})
	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeValidationFailed, out.errs[0].Code)
	assert.Empty(t, out.updated)

	out = s.apply([]Modification{Update("count", "nine")})
	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeInvalidValueType, out.errs[0].Code)
	assert.Empty(t, out.updated)

	f, _ := s.snapshot().Get("count")
	assert.Equal(t, 5, f.Value)
}

// TestApply_Remove tests deletion with last value capture.
func TestApply_Remove(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("count", testutil.Int("v", 0)),
		Update("count", 4),
	})

	out := s.apply([]Modification{Remove("count")})

	require.Len(t, out.removed, 1)
	assert.Equal(t, Removed{ID: "count", LastValue: 4}, out.removed[0])
	assert.False(t, s.snapshot().Has("count"))
}

// TestApply_RemoveMissingFieldWarns tests that removing a missing field
// records a fieldNotFound warning, symmetric with Update.
func TestApply_RemoveMissingFieldWarns(t *testing.T) {
	s := newFieldStore()

	out := s.apply([]Modification{Remove("ghost")})

	assert.Empty(t, out.removed)
	require.Len(t, out.errs, 1)
	assert.Equal(t, CodeFieldNotFound, out.errs[0].Code)
}

// TestApply_FailureNeverAbortsBatch tests that a failing operation leaves
// the rest of the batch intact.
func TestApply_FailureNeverAbortsBatch(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{Add("a", testutil.Int("va", 0))})

	out := s.apply([]Modification{
		Update("ghost", 1),
		Update("a", 2),
	})

	require.Len(t, out.errs, 1)
	require.Len(t, out.updated, 1)
	assert.Equal(t, Updated{ID: "a", Value: 2, Previous: 0}, out.updated[0])
}

// TestApply_InsertionOrderSurvivesUpdates tests that snapshots keep the
// order fields were first added.
func TestApply_InsertionOrderSurvivesUpdates(t *testing.T) {
	s := newFieldStore()
	s.apply([]Modification{
		Add("b", testutil.Int("vb", 0)),
		Add("a", testutil.Int("va", 0)),
		Add("c", testutil.Int("vc", 0)),
	})
	s.apply([]Modification{Update("a", 9)})

	assert.Equal(t, []field.ID{"b", "a", "c"}, s.snapshot().IDs())
}
