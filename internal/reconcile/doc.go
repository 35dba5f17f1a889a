// Package reconcile replaces in-memory state with authoritative data.
//
// LoadFromStore runs at startup. It reads the badger-backed local store,
// fills missing timestamps with the current time, and validates: jobs must
// be present and complete, candidates must be absent or complete. An invalid
// store is reseeded once. A "seeding" marker with a short TTL and a
// "seeded_at" time guard against two processes reseeding at once: when
// either says a reseed is running or recent, the read is retried once and
// whatever is there is used.
//
// SyncWithAPI runs on demand and when the connectivity watcher sees the
// service come back. It fetches the three collections concurrently, installs
// them, and writes them to the local store in one transaction.
//
// Both paths clear the pending update journal in the same state write that
// installs the new collections. Remote data wins over any in-flight
// optimistic change; the engine's late commit or rollback then finds no
// entry and leaves the reconciled state alone.
package reconcile
