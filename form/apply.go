package form

import (
	"reflect"

	"github.com/roach88/formflow/field"
)

// batchOutcome collects the diff entries and non-fatal errors produced by
// applying one deduplicated batch against the store.
type batchOutcome struct {
	added   []Added
	updated []Updated
	removed []Removed
	errs    []*Error
}

// apply runs one batch of modifications against the store. The batch must
// already be deduplicated, so each field appears at most once.
//
// Individual operation failures never abort the rest of the batch: each
// modification is evaluated independently and failures degrade to "keep
// previous value" or "use default value", always leaving every field's
// value valid under its current validator.
func (s *fieldStore) apply(mods []Modification) batchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out batchOutcome
	for _, m := range mods {
		switch mod := m.(type) {
		case AddModification:
			s.applyAdd(mod, &out)
		case AddAndUpdateModification:
			s.applyAddAndUpdate(mod, &out)
		case UpdateModification:
			s.applyUpdate(mod, &out)
		case RemoveModification:
			s.applyRemove(mod, &out)
		}
	}
	return out
}

// applyAdd installs a validator. On a missing field the validator's
// default seeds the value. On an existing field the previous value is
// re-validated against the new validator and kept if it passes.
func (s *fieldStore) applyAdd(mod AddModification, out *batchOutcome) {
	rec, ok := s.recs[mod.ID]
	if !ok {
		def := mod.Validator.Default()
		s.insert(mod.ID, &record{validator: mod.Validator, value: def})
		out.added = append(out.added, Added{ID: mod.ID, Value: def, Previous: def})
		return
	}

	prev := rec.value
	rec.validator = mod.Validator

	result := prev
	switch mod.Validator.Validate(prev) {
	case field.OutcomeOK:
	case field.OutcomeFailed:
		out.errs = append(out.errs, newValidationFailed(mod.ID, prev, mod.Validator.ID()))
		result = mod.Validator.Default()
	case field.OutcomeInvalidType:
		out.errs = append(out.errs, newInvalidValueType(mod.ID, prev, mod.Validator.ID()))
		result = mod.Validator.Default()
	}

	rec.value = result
	if !valuesEqual(result, prev) {
		out.added = append(out.added, Added{ID: mod.ID, Value: result, Previous: prev, Overriding: true})
	}
}

// applyAddAndUpdate installs a validator and proposes a value. On an
// existing field a predicate-rejected value falls back to re-validating
// the previous value; a wrong-typed value goes straight to the default
// with no fallback attempt.
func (s *fieldStore) applyAddAndUpdate(mod AddAndUpdateModification, out *batchOutcome) {
	v := mod.Validator
	rec, ok := s.recs[mod.ID]
	if !ok {
		result := mod.Value
		switch v.Validate(mod.Value) {
		case field.OutcomeOK:
		case field.OutcomeFailed:
			out.errs = append(out.errs, newValidationFailed(mod.ID, mod.Value, v.ID()))
			result = v.Default()
		case field.OutcomeInvalidType:
			out.errs = append(out.errs, newInvalidValueType(mod.ID, mod.Value, v.ID()))
			result = v.Default()
		}
		s.insert(mod.ID, &record{validator: v, value: result})
		out.added = append(out.added, Added{ID: mod.ID, Value: result, Previous: result})
		return
	}

	prev := rec.value
	rec.validator = v

	var result any
	switch v.Validate(mod.Value) {
	case field.OutcomeOK:
		result = mod.Value
	case field.OutcomeInvalidType:
		out.errs = append(out.errs, newInvalidValueType(mod.ID, mod.Value, v.ID()))
		result = v.Default()
	case field.OutcomeFailed:
		out.errs = append(out.errs, newValidationFailed(mod.ID, mod.Value, v.ID()))
		switch v.Validate(prev) {
		case field.OutcomeOK:
			result = prev
		case field.OutcomeFailed:
			out.errs = append(out.errs, newValidationFailed(mod.ID, prev, v.ID()))
			result = v.Default()
		case field.OutcomeInvalidType:
			out.errs = append(out.errs, newInvalidValueType(mod.ID, prev, v.ID()))
			result = v.Default()
		}
	}

	rec.value = result
	if !valuesEqual(result, prev) {
		out.added = append(out.added, Added{ID: mod.ID, Value: result, Previous: prev, Overriding: true})
	}
}

// applyUpdate sets a value on an existing field under its current
// validator. The record is left unchanged on any validation failure.
func (s *fieldStore) applyUpdate(mod UpdateModification, out *batchOutcome) {
	rec, ok := s.recs[mod.ID]
	if !ok {
		out.errs = append(out.errs, newFieldNotFound(mod.ID, mod.Value))
		return
	}

	switch rec.validator.Validate(mod.Value) {
	case field.OutcomeOK:
		prev := rec.value
		rec.value = mod.Value
		out.updated = append(out.updated, Updated{ID: mod.ID, Value: mod.Value, Previous: prev})
	case field.OutcomeFailed:
		out.errs = append(out.errs, newValidationFailed(mod.ID, mod.Value, rec.validator.ID()))
	case field.OutcomeInvalidType:
		out.errs = append(out.errs, newInvalidValueType(mod.ID, mod.Value, rec.validator.ID()))
	}
}

// applyRemove deletes a field. Removing a missing field records a
// fieldNotFound warning, symmetric with Update.
func (s *fieldStore) applyRemove(mod RemoveModification, out *batchOutcome) {
	rec, ok := s.recs[mod.ID]
	if !ok {
		out.errs = append(out.errs, newFieldNotFound(mod.ID, nil))
		return
	}

	s.delete(mod.ID)
	out.removed = append(out.removed, Removed{ID: mod.ID, LastValue: rec.value})
}

// valuesEqual compares type-erased field values. DeepEqual handles
// caller-defined composite value types that are not directly comparable.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
