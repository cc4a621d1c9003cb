package form

import "github.com/roach88/formflow/field"

// Modification is a sealed union of the four operations a caller can
// request against a form. Only AddModification, AddAndUpdateModification,
// UpdateModification and RemoveModification implement it.
type Modification interface {
	// FieldID returns the field the operation targets.
	FieldID() field.ID

	modification() // Sealed - only these types implement it
}

// AddModification installs a validator for a field. A missing field is
// created with the validator's default value; an existing field keeps its
// value if the new validator accepts it, otherwise falls back to the
// new default.
type AddModification struct {
	ID        field.ID
	Validator field.Validator
}

func (m AddModification) FieldID() field.ID { return m.ID }
func (AddModification) modification()       {}

// AddAndUpdateModification installs a validator and proposes a value in
// one operation. On an existing field, a value rejected by the predicate
// falls back to re-validating the previous value before resorting to the
// default; a value of the wrong type goes straight to the default.
type AddAndUpdateModification struct {
	ID        field.ID
	Value     any
	Validator field.Validator
}

func (m AddAndUpdateModification) FieldID() field.ID { return m.ID }
func (AddAndUpdateModification) modification()       {}

// UpdateModification sets a new value on an existing field. Targeting a
// missing field records a fieldNotFound error and changes nothing.
type UpdateModification struct {
	ID    field.ID
	Value any
}

func (m UpdateModification) FieldID() field.ID { return m.ID }
func (UpdateModification) modification()       {}

// RemoveModification deletes a field. Removing a missing field records a
// fieldNotFound warning and changes nothing.
type RemoveModification struct {
	ID field.ID
}

func (m RemoveModification) FieldID() field.ID { return m.ID }
func (RemoveModification) modification()       {}

// Add requests that a validator be installed for id.
func Add(id field.ID, v field.Validator) Modification {
	return AddModification{ID: id, Validator: v}
}

// AddAndUpdate requests that a validator be installed and value set for id.
func AddAndUpdate(id field.ID, value any, v field.Validator) Modification {
	return AddAndUpdateModification{ID: id, Value: value, Validator: v}
}

// Update requests that value be set on the existing field id.
func Update(id field.ID, value any) Modification {
	return UpdateModification{ID: id, Value: value}
}

// Remove requests that field id be deleted.
func Remove(id field.ID) Modification {
	return RemoveModification{ID: id}
}

// dedupe keeps, for each field ID, only the last modification targeting it,
// at the position of that last occurrence. A later operation on the same
// field within one batch silently supersedes an earlier one.
func dedupe(mods []Modification) []Modification {
	if len(mods) < 2 {
		return mods
	}
	last := make(map[field.ID]int, len(mods))
	for i, m := range mods {
		last[m.FieldID()] = i
	}
	out := make([]Modification, 0, len(last))
	for i, m := range mods {
		if last[m.FieldID()] == i {
			out = append(out, m)
		}
	}
	return out
}
