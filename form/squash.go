package form

import "github.com/roach88/formflow/field"

// netState tracks a field's last observed state while folding a run's
// commits, plus the order in which the field first appeared so the
// squashed diff is deterministic.
type netState struct {
	removed bool
	value   any
	order   int
}

// squash collapses the per-iteration diffs of one run into a single net
// diff relative to the snapshot taken before the run began.
//
// Fold rules, last-write-wins per field:
//   - last state set and field existed originally: Updated against the
//     original value
//   - last state set and field is new: Added (non-overriding)
//   - last state removed and field existed originally: Removed carrying
//     the original value
//   - last state removed and field is new: nothing - created and
//     destroyed within the same run nets to zero
func squash(commits []Commit, original field.Fields) (added []Added, updated []Updated, removed []Removed) {
	states := make(map[field.ID]*netState)
	touch := func(id field.ID) *netState {
		st, ok := states[id]
		if !ok {
			st = &netState{order: len(states)}
			states[id] = st
		}
		return st
	}

	// Each field appears at most once per commit (batches are deduplicated),
	// so partition order within a commit does not matter.
	for _, c := range commits {
		for _, a := range c.Added {
			st := touch(a.ID)
			st.removed = false
			st.value = a.Value
		}
		for _, u := range c.Updated {
			st := touch(u.ID)
			st.removed = false
			st.value = u.Value
		}
		for _, r := range c.Removed {
			st := touch(r.ID)
			st.removed = true
			st.value = nil
		}
	}

	ids := make([]field.ID, len(states))
	for id, st := range states {
		ids[st.order] = id
	}

	for _, id := range ids {
		st := states[id]
		orig, existed := original.Get(id)
		switch {
		case st.removed && existed:
			removed = append(removed, Removed{ID: id, LastValue: orig.Value})
		case st.removed:
			// Created and destroyed within the run: net effect is zero.
		case existed:
			updated = append(updated, Updated{ID: id, Value: st.value, Previous: orig.Value})
		default:
			added = append(added, Added{ID: id, Value: st.value, Previous: st.value})
		}
	}
	return added, updated, removed
}
