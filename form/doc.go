// Package form implements the transactional convergence engine.
//
// A Form owns an ordered collection of validated fields. Callers submit
// batches of modifications through Commit; the engine applies each batch,
// hands the resulting diff to a reaction hook that may propose follow-up
// modifications, and iterates this apply/react cycle until no further
// changes are proposed or the iteration cap is hit. The net effect of a
// whole run is squashed into a single Merge.
//
// Thread-safety model:
//   - Commit(): safe from any goroutine; requests are served strictly FIFO
//   - All store mutations happen on the engine's single run-loop goroutine
//   - Fields() and History() return snapshots and are safe from any goroutine
//
// The reaction hook runs inside the current convergence run and must not
// call Commit with the context it is handed; such reentrant calls are
// rejected with a commitInProgress error instead of deadlocking.
package form
