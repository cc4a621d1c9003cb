// Package field defines the value model for the convergence engine:
// opaque field identifiers, type-erased values with soft-fail typed access,
// caller-supplied validator capabilities, and immutable ordered snapshots.
//
// The engine itself never knows the concrete type behind a field's value.
// Every typed decision goes through a Validator, which owns the runtime
// type check, or through the generic Value accessor, which returns a
// zero value and false on mismatch instead of panicking.
package field
