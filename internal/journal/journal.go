// Package journal holds the pending update journal: the ordered list of
// optimistic operations still waiting on the remote service.
//
// Each Entry carries an Op, a closed set of generic variants (Create,
// Update, Delete, Reorder) parameterised by the record type. The entry's
// Entity picks the collection and the Op's concrete type picks the undo
// path, so the engine dispatches with a type switch instead of inspecting
// untyped payloads.
package journal

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/hireboard/internal/domain"
)

// OpKind names the operation an entry records.
type OpKind string

const (
	OpCreate  OpKind = "create"
	OpUpdate  OpKind = "update"
	OpDelete  OpKind = "delete"
	OpReorder OpKind = "reorder"
)

// Op is implemented only by the variants in this package.
type Op interface {
	Kind() OpKind
	// HasOriginal reports whether the op carries what it needs to undo itself.
	HasOriginal() bool
	sealed()
}

// Create records an optimistic insert. Undo removes New by key.
type Create[T domain.Record] struct {
	New T
}

// Update records an optimistic patch. Original is the record before it.
type Update[T domain.Record] struct {
	New      T
	Original *T
}

// Delete records an optimistic removal. Index is where Original sat.
type Delete[T domain.Record] struct {
	Original *T
	Index    int
}

// Reorder records a move within an ordered collection. Original is the
// whole collection before the move; collections are never mutated in place
// so holding the old slice is enough.
type Reorder[T domain.Record] struct {
	FromIndex int
	ToIndex   int
	New       []T
	Original  []T
}

func (Create[T]) Kind() OpKind  { return OpCreate }
func (Update[T]) Kind() OpKind  { return OpUpdate }
func (Delete[T]) Kind() OpKind  { return OpDelete }
func (Reorder[T]) Kind() OpKind { return OpReorder }

func (Create[T]) HasOriginal() bool    { return true }
func (o Update[T]) HasOriginal() bool  { return o.Original != nil }
func (o Delete[T]) HasOriginal() bool  { return o.Original != nil }
func (o Reorder[T]) HasOriginal() bool { return o.Original != nil }

func (Create[T]) sealed()  {}
func (Update[T]) sealed()  {}
func (Delete[T]) sealed()  {}
func (Reorder[T]) sealed() {}

// Entry is one in-flight optimistic operation.
type Entry struct {
	// ID is the operation token; it doubles as the idempotency key sent
	// with the remote call.
	ID        string
	Entity    domain.Kind
	Op        Op
	Timestamp time.Time
}

// Journal is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{}
}

// Append adds e at the end. Non-create entries without undo data and
// duplicate ids are rejected.
func (j *Journal) Append(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("journal entry has no id")
	}
	if e.Op == nil {
		return fmt.Errorf("journal entry %s has no op", e.ID)
	}
	if !e.Op.HasOriginal() {
		return fmt.Errorf("journal entry %s (%s %s) has no original data", e.ID, e.Op.Kind(), e.Entity)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if slices.ContainsFunc(j.entries, func(x Entry) bool { return x.ID == e.ID }) {
		return fmt.Errorf("journal entry %s already exists", e.ID)
	}
	j.entries = append(j.entries, e)
	return nil
}

// Remove deletes the entry with id and reports whether it was present.
func (j *Journal) Remove(id string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	idx := slices.IndexFunc(j.entries, func(x Entry) bool { return x.ID == id })
	if idx < 0 {
		return false
	}
	j.entries = slices.Delete(j.entries, idx, idx+1)
	return true
}

// Find returns the entry with id.
func (j *Journal) Find(id string) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	idx := slices.IndexFunc(j.entries, func(x Entry) bool { return x.ID == id })
	if idx < 0 {
		return Entry{}, false
	}
	return j.entries[idx], true
}

// Len returns the number of pending entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Entries returns a copy of the pending entries in append order.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

// Clear drops every entry and returns how many were dropped.
func (j *Journal) Clear() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := len(j.entries)
	j.entries = nil
	return n
}
