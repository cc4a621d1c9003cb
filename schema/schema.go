// Package schema compiles declarative CUE field schemas into validators
// and seeding modifications for the convergence engine.
//
// A schema file declares fields under a top-level "fields" struct:
//
//	fields: {
//		priceMax: { type: "int", default: 0, min: 0 }
//		city:     { type: "string", default: "", enum: ["porto", "lisbon"] }
//		accepted: { type: "bool", default: false }
//	}
//
// Supported types: string (minLen, maxLen, pattern, enum), int (min, max,
// enum), float (min, max), bool. Defaults are checked against the declared
// constraints at compile time, so every generated validator upholds the
// engine's default-must-validate contract.
package schema

import (
	"fmt"
	"os"
	"regexp"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/formflow/field"
	"github.com/roach88/formflow/form"
)

// Definition is one compiled field declaration.
type Definition struct {
	Name    string
	Type    string // "string" | "int" | "float" | "bool"
	Default any

	// Numeric constraints (int uses MinInt/MaxInt, float uses MinFloat/MaxFloat).
	MinInt   *int64
	MaxInt   *int64
	MinFloat *float64
	MaxFloat *float64

	// String constraints.
	MinLen  *int
	MaxLen  *int
	Pattern *regexp.Regexp

	// Enum restricts the value to an explicit set. Applies to string and int.
	Enum []any
}

// Validator builds the field validator for this definition.
// The validator's ID is "schema:<name>".
func (d Definition) Validator() field.Validator {
	id := "schema:" + d.Name
	switch d.Type {
	case "string":
		return field.New(id, d.Default.(string), d.stringPredicate())
	case "int":
		return field.New(id, d.Default.(int64), d.intPredicate())
	case "float":
		return field.New(id, d.Default.(float64), d.floatPredicate())
	case "bool":
		return field.New(id, d.Default.(bool), nil)
	default:
		panic(fmt.Sprintf("schema: unsupported type %q for field %q", d.Type, d.Name))
	}
}

// Modification returns the Add that seeds this field into a form.
func (d Definition) Modification() form.Modification {
	return form.Add(field.ID(d.Name), d.Validator())
}

func (d Definition) stringPredicate() func(string) bool {
	return func(s string) bool {
		if d.MinLen != nil && len(s) < *d.MinLen {
			return false
		}
		if d.MaxLen != nil && len(s) > *d.MaxLen {
			return false
		}
		if d.Pattern != nil && !d.Pattern.MatchString(s) {
			return false
		}
		return d.inEnum(s)
	}
}

func (d Definition) intPredicate() func(int64) bool {
	return func(n int64) bool {
		if d.MinInt != nil && n < *d.MinInt {
			return false
		}
		if d.MaxInt != nil && n > *d.MaxInt {
			return false
		}
		return d.inEnum(n)
	}
}

func (d Definition) floatPredicate() func(float64) bool {
	return func(x float64) bool {
		if d.MinFloat != nil && x < *d.MinFloat {
			return false
		}
		if d.MaxFloat != nil && x > *d.MaxFloat {
			return false
		}
		return true
	}
}

// defaultSatisfiesConstraints checks the default against the compiled
// predicate without constructing a validator.
func (d Definition) defaultSatisfiesConstraints() bool {
	switch d.Type {
	case "string":
		return d.stringPredicate()(d.Default.(string))
	case "int":
		return d.intPredicate()(d.Default.(int64))
	case "float":
		return d.floatPredicate()(d.Default.(float64))
	default:
		return true
	}
}

func (d Definition) inEnum(v any) bool {
	if len(d.Enum) == 0 {
		return true
	}
	for _, e := range d.Enum {
		if e == v {
			return true
		}
	}
	return false
}

// Modifications maps definitions to their seeding Adds, in schema order.
func Modifications(defs []Definition) []form.Modification {
	mods := make([]form.Modification, len(defs))
	for i, d := range defs {
		mods[i] = d.Modification()
	}
	return mods
}

// Load reads and compiles a CUE field schema file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile parses a CUE value holding a top-level "fields" struct into
// field definitions, preserving declaration order.
func Compile(v cue.Value) ([]Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Message: "schema must declare a top-level \"fields\" struct", Pos: v.Pos()}
	}

	it, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []Definition
	seen := make(map[string]bool)
	for it.Next() {
		name := it.Selector().String()
		if seen[name] {
			return nil, &CompileError{Field: name, Message: "duplicate field", Pos: it.Value().Pos()}
		}
		seen[name] = true

		def, err := compileField(name, it.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, &CompileError{Message: "schema declares no fields", Pos: fieldsVal.Pos()}
	}
	return defs, nil
}

func compileField(name string, v cue.Value) (Definition, error) {
	def := Definition{Name: name}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return def, &CompileError{Field: name, Message: "type is required", Pos: v.Pos()}
	}
	typ, err := typeVal.String()
	if err != nil {
		return def, &CompileError{Field: name, Message: "type must be a string", Pos: typeVal.Pos()}
	}
	def.Type = typ

	switch typ {
	case "string":
		err = compileStringField(&def, v)
	case "int":
		err = compileIntField(&def, v)
	case "float":
		err = compileFloatField(&def, v)
	case "bool":
		err = compileBoolField(&def, v)
	default:
		return def, &CompileError{
			Field:   name,
			Message: fmt.Sprintf("unsupported type %q (want string, int, float or bool)", typ),
			Pos:     typeVal.Pos(),
		}
	}
	if err != nil {
		return def, err
	}

	// The engine's validator contract requires defaults to validate.
	// Checked here, before Validator() is ever built, so schema problems
	// surface as errors rather than constructor panics.
	if !def.defaultSatisfiesConstraints() {
		return def, &CompileError{
			Field:   name,
			Message: fmt.Sprintf("default %v does not satisfy the field's constraints", def.Default),
			Pos:     v.Pos(),
		}
	}
	return def, nil
}

func compileStringField(def *Definition, v cue.Value) error {
	def.Default = ""
	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		s, err := dv.String()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "default must be a string", Pos: dv.Pos()}
		}
		def.Default = s
	}

	if mv := v.LookupPath(cue.ParsePath("minLen")); mv.Exists() {
		n, err := mv.Int64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "minLen must be an int", Pos: mv.Pos()}
		}
		m := int(n)
		def.MinLen = &m
	}
	if mv := v.LookupPath(cue.ParsePath("maxLen")); mv.Exists() {
		n, err := mv.Int64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "maxLen must be an int", Pos: mv.Pos()}
		}
		m := int(n)
		def.MaxLen = &m
	}
	if pv := v.LookupPath(cue.ParsePath("pattern")); pv.Exists() {
		p, err := pv.String()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "pattern must be a string", Pos: pv.Pos()}
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return &CompileError{Field: def.Name, Message: fmt.Sprintf("invalid pattern: %v", err), Pos: pv.Pos()}
		}
		def.Pattern = re
	}

	enum, err := compileEnum(def.Name, v, func(ev cue.Value) (any, error) { return ev.String() })
	if err != nil {
		return err
	}
	def.Enum = enum
	return nil
}

func compileIntField(def *Definition, v cue.Value) error {
	def.Default = int64(0)
	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		n, err := dv.Int64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "default must be an int", Pos: dv.Pos()}
		}
		def.Default = n
	}

	if mv := v.LookupPath(cue.ParsePath("min")); mv.Exists() {
		n, err := mv.Int64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "min must be an int", Pos: mv.Pos()}
		}
		def.MinInt = &n
	}
	if mv := v.LookupPath(cue.ParsePath("max")); mv.Exists() {
		n, err := mv.Int64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "max must be an int", Pos: mv.Pos()}
		}
		def.MaxInt = &n
	}

	enum, err := compileEnum(def.Name, v, func(ev cue.Value) (any, error) { return ev.Int64() })
	if err != nil {
		return err
	}
	def.Enum = enum
	return nil
}

func compileFloatField(def *Definition, v cue.Value) error {
	def.Default = float64(0)
	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		x, err := dv.Float64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "default must be a number", Pos: dv.Pos()}
		}
		def.Default = x
	}

	if mv := v.LookupPath(cue.ParsePath("min")); mv.Exists() {
		x, err := mv.Float64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "min must be a number", Pos: mv.Pos()}
		}
		def.MinFloat = &x
	}
	if mv := v.LookupPath(cue.ParsePath("max")); mv.Exists() {
		x, err := mv.Float64()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "max must be a number", Pos: mv.Pos()}
		}
		def.MaxFloat = &x
	}
	return nil
}

func compileBoolField(def *Definition, v cue.Value) error {
	def.Default = false
	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		b, err := dv.Bool()
		if err != nil {
			return &CompileError{Field: def.Name, Message: "default must be a bool", Pos: dv.Pos()}
		}
		def.Default = b
	}
	return nil
}

func compileEnum(name string, v cue.Value, elem func(cue.Value) (any, error)) ([]any, error) {
	ev := v.LookupPath(cue.ParsePath("enum"))
	if !ev.Exists() {
		return nil, nil
	}

	it, err := ev.List()
	if err != nil {
		return nil, &CompileError{Field: name, Message: "enum must be a list", Pos: ev.Pos()}
	}

	var enum []any
	for it.Next() {
		e, err := elem(it.Value())
		if err != nil {
			return nil, &CompileError{Field: name, Message: "enum element has the wrong type", Pos: it.Value().Pos()}
		}
		enum = append(enum, e)
	}
	if len(enum) == 0 {
		return nil, &CompileError{Field: name, Message: "enum must not be empty", Pos: ev.Pos()}
	}
	return enum, nil
}
