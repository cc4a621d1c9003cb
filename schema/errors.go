package schema

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a problem in a field schema, with the CUE source
// position when one is available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: field %q: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// formatCUEError converts a CUE error into a CompileError, preserving the
// first position CUE reports.
func formatCUEError(err error) error {
	var pos token.Pos
	if positions := errors.Positions(errors.Promote(err, "schema")); len(positions) > 0 {
		pos = positions[0]
	}
	return &CompileError{
		Message: err.Error(),
		Pos:     pos,
	}
}
