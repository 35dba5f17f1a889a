// Package state provides the in-memory state container shared by the
// mutation engine, the reconciliation service and the UI.
//
// # Overview
//
// A Store owns three keyed collections (jobs, candidates, assessments), a
// per-candidate timeline cache, the LoadingState and ErrorState maps keyed by
// operation name, and connectivity bookkeeping. There is no package-level
// instance: the composition root builds one Store and passes it to every
// consumer, and tests build their own.
//
// # Writes
//
// Collection writes go through Apply, which holds the write lock for the
// whole callback. The engine performs its optimistic apply and its journal
// append inside one callback, so no reader ever sees one without the other.
// The lock order is always state first, journal second.
//
// Collections are copy-on-write. Writers never modify a slice they read;
// they build a new one (slices.Clone, slices.Insert on a clone,
// append on slices.Clip). Holding an old slice header is therefore a free,
// exact snapshot, which is what the journal keeps for reorder rollback.
//
// # Reads
//
// Snapshot returns deep-enough copies for the UI to keep and mutate.
// Collections returns the live slices without copying for internal readers
// that promise not to write.
//
// # Notifications
//
// Subscribe hands out a one-slot channel per subscriber. Notifications are
// coalesced: a burst of writes leaves at most one pending tick, and the
// subscriber re-reads a fresh Snapshot when it wakes.
//
// # Connectivity
//
// RecordProbe is fed by the connectivity watcher. Each failed probe
// increments ConsecutiveFailures, two or more mean offline, and
// the first success after an offline period reports reconnected so the
// caller can trigger reconciliation.
package state
