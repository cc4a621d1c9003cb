package form

import "github.com/roach88/formflow/field"

// Added records that a field gained a validator during a batch.
//
// Overriding distinguishes two cases: false means the field was newly
// created; true means the field already existed and its validator was
// replaced, in which case Value may differ from Previous when the old
// value did not survive re-validation.
type Added struct {
	ID         field.ID
	Value      any
	Previous   any
	Overriding bool
}

// Updated records a value change on an existing field under its
// current validator.
type Updated struct {
	ID       field.ID
	Value    any
	Previous any
}

// Removed records a field deletion along with the value it held last.
type Removed struct {
	ID        field.ID
	LastValue any
}
