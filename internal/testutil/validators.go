// Package testutil provides validator builders shared across test
// packages. Keeping them here avoids re-declaring the same predicates in
// every _test.go file.
package testutil

import "github.com/roach88/formflow/field"

// Int builds a validator accepting every int, defaulting to def.
func Int(id string, def int) field.Validator {
	return field.New(id, def, nil)
}

// IntRange builds a validator accepting ints in [min, max].
// def must lie within the range.
func IntRange(id string, def, min, max int) field.Validator {
	return field.New(id, def, func(n int) bool {
		return n >= min && n <= max
	})
}

// String builds a validator accepting every string, defaulting to def.
func String(id, def string) field.Validator {
	return field.New(id, def, nil)
}

// StringEnum builds a validator accepting only the listed strings.
// def must be one of them.
func StringEnum(id, def string, allowed ...string) field.Validator {
	return field.New(id, def, func(s string) bool {
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	})
}

// Bool builds a validator accepting every bool, defaulting to def.
func Bool(id string, def bool) field.Validator {
	return field.New(id, def, nil)
}
