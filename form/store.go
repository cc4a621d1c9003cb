package form

import (
	"sync"

	"github.com/roach88/formflow/field"
)

// record is a store-owned (id, value, validator) triple. Records are
// mutated only by the batch processor while a convergence run holds the
// store's single mutation right.
type record struct {
	validator field.Validator
	value     any
}

// fieldStore is the ordered collection of field records; the single
// source of truth for the current state of the form.
//
// Insertion order is preserved across updates: snapshots list fields in
// the order they were first added. Mutations happen only on the engine's
// run loop goroutine; the lock exists so snapshots can be taken from any
// goroutine while a run is in flight.
type fieldStore struct {
	mu    sync.RWMutex
	order []field.ID
	recs  map[field.ID]*record
}

func newFieldStore() *fieldStore {
	return &fieldStore{
		recs: make(map[field.ID]*record),
	}
}

// insert adds a new record. The caller must hold the write lock and must
// have checked that id is absent.
func (s *fieldStore) insert(id field.ID, rec *record) {
	s.recs[id] = rec
	s.order = append(s.order, id)
}

// delete removes a record and its order slot. The caller must hold the
// write lock.
func (s *fieldStore) delete(id field.ID) {
	delete(s.recs, id)
	for i, ord := range s.order {
		if ord == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// snapshot returns an immutable copy of the current fields in order.
func (s *fieldStore) snapshot() field.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]field.Field, 0, len(s.order))
	for _, id := range s.order {
		fields = append(fields, field.Field{ID: id, Value: s.recs[id].value})
	}
	return field.NewFields(fields...)
}
