// Package engine implements the optimistic mutation engine.
//
// Every mutation follows the same path:
//
//  1. Wait for the entity's single-flight slot (see Sequencing).
//  2. Under the state write lock, compute the new collection, append a
//     journal entry holding the undo data, and swap the collection in.
//  3. Call the remote service with the entry id as idempotency key.
//  4. On success, remove the entry and write the server's canonical record
//     over the local one. On failure, Rollback restores the snapshot and
//     removes the entry. Either way the entry is gone when the call returns.
//
// Steps 2 and 4 both check the journal under the state lock, so an entry is
// settled at most once. If a reconciliation clears the journal while a call
// is in flight, the late commit or rollback finds no entry and leaves the
// reconciled state alone.
//
// # Sequencing
//
// Operations on one entity id run one at a time, in arrival order, so an
// update's snapshot is always the state the previous operation settled on.
// A create holds the id it generates, so an update queued on that id waits
// for the server's answer. If the server assigned a different id, the
// queued operation moves to it before taking its snapshot. A reorder takes
// the whole kind and waits for in-flight entity operations to settle before
// it snapshots.
//
// # Errors
//
// Update and delete of an id the state does not hold return ErrNotFound.
// Moving a candidate to a stage outside the pipeline returns
// ErrUnknownStage.
// Remote failures propagate unchanged (see package api for the
// classification). Every public operation also records its last error under
// its operation name in the state's ErrorState and clears its loading flag
// on every path.
package engine
