package field

// ID identifies a field within a form. IDs come from a caller-defined
// universe; the engine treats them as opaque map keys.
type ID string

// Field is one (id, value) slot in a snapshot. Value is type-erased;
// use Value[T] for checked access.
type Field struct {
	ID    ID
	Value any
}

// Fields is an immutable, ordered snapshot of a form's fields.
// Order is the store's insertion order, which is stable across updates.
//
// The zero value is an empty snapshot.
type Fields struct {
	order []Field
	index map[ID]int
}

// NewFields builds a snapshot from fields in the given order.
// Later duplicates of an ID overwrite earlier ones in place.
func NewFields(fields ...Field) Fields {
	s := Fields{
		order: make([]Field, 0, len(fields)),
		index: make(map[ID]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := s.index[f.ID]; ok {
			s.order[i] = f
			continue
		}
		s.index[f.ID] = len(s.order)
		s.order = append(s.order, f)
	}
	return s
}

// Get returns the field for id, or false if absent.
func (s Fields) Get(id ID) (Field, bool) {
	i, ok := s.index[id]
	if !ok {
		return Field{}, false
	}
	return s.order[i], true
}

// Has reports whether id is present in the snapshot.
func (s Fields) Has(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of fields in the snapshot.
func (s Fields) Len() int {
	return len(s.order)
}

// All returns the fields in insertion order. The slice is a copy;
// mutating it does not affect the snapshot.
func (s Fields) All() []Field {
	out := make([]Field, len(s.order))
	copy(out, s.order)
	return out
}

// IDs returns the field IDs in insertion order.
func (s Fields) IDs() []ID {
	out := make([]ID, len(s.order))
	for i, f := range s.order {
		out[i] = f.ID
	}
	return out
}

// Value returns the value of id as T. It fails softly: a missing field or
// a value of a different runtime type yields (zero, false), never a panic.
func Value[T any](s Fields, id ID) (T, bool) {
	var zero T
	f, ok := s.Get(id)
	if !ok {
		return zero, false
	}
	v, ok := f.Value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
