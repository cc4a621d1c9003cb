package field

import "fmt"

// Outcome is the result of validating a candidate value.
type Outcome int

const (
	// OutcomeOK means the value has the expected type and passes the predicate.
	OutcomeOK Outcome = iota
	// OutcomeFailed means the value has the expected type but fails the predicate.
	OutcomeFailed
	// OutcomeInvalidType means the value's runtime type is not the expected type.
	OutcomeInvalidType
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFailed:
		return "failed"
	case OutcomeInvalidType:
		return "invalid_type"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Validator is the capability a caller attaches to a field: an expected
// value type, a predicate over values of that type, and a default used
// when validation fails or cannot be attempted.
//
// Contract: Default() must itself pass Validate with OutcomeOK. The New
// constructor enforces this at construction time.
//
// Validators must be safe for concurrent use; the engine may call
// Validate from its run loop while callers hold references elsewhere.
type Validator interface {
	// ID identifies the validator for error attribution.
	// Stable for the validator's lifetime.
	ID() string

	// Validate classifies a type-erased candidate value.
	Validate(value any) Outcome

	// Default returns the fallback value substituted on validation failure.
	Default() any

	// Type names the expected value type, for diagnostics.
	Type() string
}

// validator is the generic Validator implementation for a concrete type T.
type validator[T any] struct {
	id   string
	def  T
	pred func(T) bool
}

// New builds a Validator for values of type T. A nil predicate accepts
// every value of type T.
//
// Panics if def does not satisfy pred: a validator whose own default is
// invalid cannot uphold the engine's at-rest invariant.
func New[T any](id string, def T, pred func(T) bool) Validator {
	if pred != nil && !pred(def) {
		panic(fmt.Sprintf("field: validator %q default %v fails its own predicate", id, def))
	}
	return &validator[T]{id: id, def: def, pred: pred}
}

func (v *validator[T]) ID() string { return v.id }

func (v *validator[T]) Validate(value any) Outcome {
	t, ok := value.(T)
	if !ok {
		return OutcomeInvalidType
	}
	if v.pred != nil && !v.pred(t) {
		return OutcomeFailed
	}
	return OutcomeOK
}

func (v *validator[T]) Default() any { return v.def }

func (v *validator[T]) Type() string {
	return fmt.Sprintf("%T", v.def)
}
