package form

import (
	"errors"
	"fmt"

	"github.com/roach88/formflow/field"
)

// ErrClosed is returned by Commit after Close has been called.
var ErrClosed = errors.New("form: engine closed")

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// CodeCommitInProgress indicates a reentrant Commit call was rejected.
	CodeCommitInProgress ErrorCode = "COMMIT_IN_PROGRESS"

	// CodeFieldNotFound indicates an Update or Remove targeted a missing field.
	CodeFieldNotFound ErrorCode = "FIELD_NOT_FOUND"

	// CodeValidationFailed indicates a candidate value was rejected by the
	// validator's predicate.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// CodeInvalidValueType indicates a candidate value's runtime type does
	// not match the validator's expected type.
	CodeInvalidValueType ErrorCode = "INVALID_VALUE_TYPE"

	// CodeMaxIterationsReached indicates a run did not reach a fixed point
	// within the iteration cap. A warning, not a failure: the run still
	// returns its last computed snapshot and diff.
	CodeMaxIterationsReached ErrorCode = "MAX_ITERATIONS_REACHED"
)

// Error is a non-fatal engine error. Errors are recorded on the Commit
// where they occurred and surfaced through Commit/Merge error lists; they
// never abort the rest of a batch.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// FieldID identifies the affected field, when one is involved.
	FieldID field.ID

	// Value is the candidate value that was rejected, when one is involved.
	Value any

	// ValidatorID attributes a validation error to a validator.
	ValidatorID string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.FieldID != "" && e.ValidatorID != "" {
		return fmt.Sprintf("%s: %s (field=%s, validator=%s)", e.Code, e.Message, e.FieldID, e.ValidatorID)
	}
	if e.FieldID != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.FieldID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a *Error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// HasCode reports whether any error in errs carries the given code.
func HasCode(errs []*Error, code ErrorCode) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func newCommitInProgress() *Error {
	return &Error{
		Code:    CodeCommitInProgress,
		Message: "commit rejected: a convergence run is already in progress on this call stack",
	}
}

func newFieldNotFound(id field.ID, value any) *Error {
	return &Error{
		Code:    CodeFieldNotFound,
		FieldID: id,
		Value:   value,
		Message: "operation targeted a field that does not exist",
	}
}

func newValidationFailed(id field.ID, value any, validatorID string) *Error {
	return &Error{
		Code:        CodeValidationFailed,
		FieldID:     id,
		Value:       value,
		ValidatorID: validatorID,
		Message:     fmt.Sprintf("value %v rejected by validator predicate", value),
	}
}

func newInvalidValueType(id field.ID, value any, validatorID string) *Error {
	return &Error{
		Code:        CodeInvalidValueType,
		FieldID:     id,
		Value:       value,
		ValidatorID: validatorID,
		Message:     fmt.Sprintf("value of type %T does not match validator's expected type", value),
	}
}

func newMaxIterationsReached(limit int) *Error {
	return &Error{
		Code:    CodeMaxIterationsReached,
		Message: fmt.Sprintf("convergence did not reach a fixed point within %d iterations", limit),
	}
}
