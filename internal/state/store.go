package state

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/five82/hireboard/internal/domain"
)

// Collections are the keyed entity lists owned by the mutation engine.
// Slices are treated as immutable: writers build a new slice and swap it in,
// so any previously read slice stays a valid snapshot.
type Collections struct {
	Jobs        []domain.Job
	Candidates  []domain.Candidate
	Assessments []domain.Assessment
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Collections
	Timelines           map[string][]domain.TimelineEvent
	Loading             map[string]bool
	Errors              map[string]string
	Pending             int
	LastSynced          time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive connectivity probe failures
}

// IsOffline returns true when the API has been unreachable for multiple probes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Busy reports whether any operation is in flight.
func (s Snapshot) Busy() bool {
	for _, v := range s.Loading {
		if v {
			return true
		}
	}
	return false
}

// Store is the single in-memory state container. One is built per process
// (or per test) and handed to every consumer.
type Store struct {
	mu          sync.RWMutex
	collections Collections
	timelines   map[string][]domain.TimelineEvent
	loading     map[string]bool
	errors      map[string]string
	pending     func() int
	lastSynced  time.Time
	lastError   error
	failures    int

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{
		timelines: make(map[string][]domain.TimelineEvent),
		loading:   make(map[string]bool),
		errors:    make(map[string]string),
		subs:      make(map[chan struct{}]struct{}),
	}
}

// SetPendingCounter wires the journal length into snapshots.
func (s *Store) SetPendingCounter(fn func() int) {
	s.mu.Lock()
	s.pending = fn
	s.mu.Unlock()
}

// Apply runs fn with exclusive access to the collections. fn reports
// whether it changed anything; subscribers are notified only then.
func (s *Store) Apply(fn func(c *Collections) bool) {
	s.mu.Lock()
	changed := fn(&s.collections)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Collections returns the current collections without copying. The slices
// must not be modified.
func (s *Store) Collections() Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections
}

// SetLoading flags op as running or finished.
func (s *Store) SetLoading(op string, on bool) {
	s.mu.Lock()
	if on {
		s.loading[op] = true
	} else {
		delete(s.loading, op)
	}
	s.mu.Unlock()
	s.notify()
}

// SetError records the last error message for op; an empty msg clears it.
func (s *Store) SetError(op, msg string) {
	s.mu.Lock()
	if msg == "" {
		delete(s.errors, op)
	} else {
		s.errors[op] = msg
	}
	s.mu.Unlock()
	s.notify()
}

// SetTimeline replaces the cached timeline of a candidate.
func (s *Store) SetTimeline(candidateID string, events []domain.TimelineEvent) {
	s.mu.Lock()
	s.timelines[candidateID] = slices.Clone(events)
	s.mu.Unlock()
	s.notify()
}

// AppendTimeline adds an event to a candidate's cached timeline.
func (s *Store) AppendTimeline(candidateID string, ev domain.TimelineEvent) {
	s.mu.Lock()
	s.timelines[candidateID] = append(slices.Clip(s.timelines[candidateID]), ev)
	s.mu.Unlock()
	s.notify()
}

// MarkSynced records a successful reconciliation.
func (s *Store) MarkSynced(at time.Time) {
	s.mu.Lock()
	s.lastSynced = at
	s.mu.Unlock()
	s.notify()
}

// RecordProbe records a connectivity check. When err is non-nil the data is
// kept but the error and failure count are updated for visibility. It
// returns true when the probe ends an offline period.
func (s *Store) RecordProbe(err error) (reconnected bool) {
	s.mu.Lock()
	if err != nil {
		s.lastError = err
		s.failures++
	} else {
		reconnected = s.failures >= 2
		s.lastError = nil
		s.failures = 0
	}
	s.mu.Unlock()
	s.notify()
	return reconnected
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Collections: Collections{
			Jobs:        slices.Clone(s.collections.Jobs),
			Candidates:  slices.Clone(s.collections.Candidates),
			Assessments: slices.Clone(s.collections.Assessments),
		},
		Timelines:           make(map[string][]domain.TimelineEvent, len(s.timelines)),
		Loading:             maps.Clone(s.loading),
		Errors:              maps.Clone(s.errors),
		LastSynced:          s.lastSynced,
		ConsecutiveFailures: s.failures,
	}
	for id, events := range s.timelines {
		snap.Timelines[id] = slices.Clone(events)
	}
	if s.pending != nil {
		snap.Pending = s.pending()
	}
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

// Subscribe returns a channel that receives a value after every change.
// Bursts coalesce into one notification. Call the returned func to stop.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
