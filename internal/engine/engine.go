package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/journal"
	"github.com/five82/hireboard/internal/state"
)

var (
	// ErrNotFound is returned when a mutation names an id the local state
	// does not hold.
	ErrNotFound = errors.New("not found")

	// ErrIndexOutOfRange is returned by reorders with an invalid index.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownStage is returned when a candidate is moved to a stage
	// outside the pipeline.
	ErrUnknownStage = errors.New("unknown stage")
)

// Options wires an Engine. State, Journal and Remote are required.
type Options struct {
	State   *state.Store
	Journal *journal.Journal
	Remote  api.Remote
	Logger  logrus.FieldLogger

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Engine applies mutations optimistically and settles them against the
// remote service.
type Engine struct {
	state   *state.Store
	journal *journal.Journal
	remote  api.Remote
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func() string
	seq     *sequencer
}

// New builds an Engine.
func New(opts Options) (*Engine, error) {
	if opts.State == nil || opts.Journal == nil || opts.Remote == nil {
		return nil, fmt.Errorf("engine requires state, journal and remote")
	}
	e := &Engine{
		state:   opts.State,
		journal: opts.Journal,
		remote:  opts.Remote,
		log:     opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
		seq:     newSequencer(),
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	e.log = e.log.WithField("component", "engine")
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	e.state.SetPendingCounter(e.journal.Len)
	return e, nil
}

// Pending returns the in-flight journal entries.
func (e *Engine) Pending() []journal.Entry {
	return e.journal.Entries()
}

// track brackets an operation with its loading flag and error message.
func (e *Engine) track(op string, fn func() error) error {
	e.state.SetError(op, "")
	e.state.SetLoading(op, true)
	defer e.state.SetLoading(op, false)

	err := fn()
	if err != nil {
		e.state.SetError(op, api.Message(err))
		e.log.WithField("op", op).WithError(err).Warn("operation failed")
	}
	return err
}

// Rollback undoes the journal entry id and removes it. It reports whether
// the entry existed. An entry without undo data is removed without touching
// state.
func (e *Engine) Rollback(id string) bool {
	found := false
	e.state.Apply(func(c *state.Collections) bool {
		entry, ok := e.journal.Find(id)
		if !ok {
			return false
		}
		found = true
		e.journal.Remove(id)
		if !entry.Op.HasOriginal() {
			return true
		}

		var restored bool
		switch entry.Entity {
		case domain.KindJob:
			restored = restore(c, jobBinding, entry.Op)
		case domain.KindCandidate:
			restored = restore(c, candidateBinding, entry.Op)
		case domain.KindAssessment:
			restored = restore(c, assessmentBinding, entry.Op)
		}
		if !restored {
			e.log.WithFields(logrus.Fields{
				"entry":  id,
				"entity": entry.Entity,
				"op":     entry.Op.Kind(),
			}).Debug("rollback left state unchanged")
		}
		return true
	})
	return found
}

func restore[T domain.Record](c *state.Collections, b binding[T], op journal.Op) bool {
	items := b.get(c)
	switch o := op.(type) {
	case journal.Create[T]:
		idx := indexOf(items, o.New.Key())
		if idx < 0 {
			return false
		}
		b.set(c, withRemoved(items, idx))
	case journal.Update[T]:
		idx := indexOf(items, (*o.Original).Key())
		if idx < 0 {
			return false
		}
		b.set(c, withReplaced(items, idx, *o.Original))
	case journal.Delete[T]:
		if indexOf(items, (*o.Original).Key()) >= 0 {
			return false
		}
		b.set(c, withInserted(items, o.Index, *o.Original))
	case journal.Reorder[T]:
		b.set(c, o.Original)
	default:
		return false
	}
	return true
}

// commit settles a successful call: the entry goes, and canonical (when the
// server sent one) replaces the record held under localID. Nothing happens
// if the entry is already gone, since a reconciliation has replaced state
// since the apply.
func commit[T domain.Record](e *Engine, b binding[T], entryID, localID string, canonical T) {
	e.state.Apply(func(c *state.Collections) bool {
		if !e.journal.Remove(entryID) {
			return false
		}
		if canonical.Key() == "" {
			return true
		}
		items := b.get(c)
		if idx := indexOf(items, localID); idx >= 0 {
			b.set(c, withReplaced(items, idx, canonical))
		}
		return true
	})
}

func create[T domain.Record](
	ctx context.Context,
	e *Engine,
	b binding[T],
	build func(c *state.Collections, id string, now time.Time) T,
	send func(ctx context.Context, rec T) (T, error),
) (T, error) {
	var zero T
	entryID := e.newID()
	id := e.newID()
	_, release, err := e.seq.entity(ctx, b.kind, id)
	if err != nil {
		return zero, err
	}
	defer release()

	var rec T
	var applyErr error
	e.state.Apply(func(c *state.Collections) bool {
		now := e.now()
		rec = build(c, id, now)
		if applyErr = domain.Validate(rec); applyErr != nil {
			return false
		}
		applyErr = e.journal.Append(journal.Entry{
			ID:        entryID,
			Entity:    b.kind,
			Op:        journal.Create[T]{New: rec},
			Timestamp: now,
		})
		if applyErr != nil {
			return false
		}
		b.set(c, withAppended(b.get(c), rec))
		return true
	})
	if applyErr != nil {
		return zero, applyErr
	}

	canonical, err := send(api.WithIdempotencyKey(ctx, entryID), rec)
	if err != nil {
		e.Rollback(entryID)
		return zero, err
	}
	commit(e, b, entryID, rec.Key(), canonical)
	if canonical.Key() == "" {
		return rec, nil
	}
	if canonical.Key() != rec.Key() {
		e.seq.rename(b.kind, rec.Key(), canonical.Key())
	}
	return canonical, nil
}

func update[T domain.Record](
	ctx context.Context,
	e *Engine,
	b binding[T],
	id string,
	apply func(current T, now time.Time) T,
	send func(ctx context.Context, next T) (T, error),
) (T, error) {
	var zero T
	id, release, err := e.seq.entity(ctx, b.kind, id)
	if err != nil {
		return zero, err
	}
	defer release()

	entryID := e.newID()
	var next T
	var applyErr error
	e.state.Apply(func(c *state.Collections) bool {
		items := b.get(c)
		idx := indexOf(items, id)
		if idx < 0 {
			applyErr = fmt.Errorf("%s %s: %w", b.kind, id, ErrNotFound)
			return false
		}
		now := e.now()
		original := items[idx]
		next = apply(original, now)
		applyErr = e.journal.Append(journal.Entry{
			ID:        entryID,
			Entity:    b.kind,
			Op:        journal.Update[T]{New: next, Original: &original},
			Timestamp: now,
		})
		if applyErr != nil {
			return false
		}
		b.set(c, withReplaced(items, idx, next))
		return true
	})
	if applyErr != nil {
		return zero, applyErr
	}

	canonical, err := send(api.WithIdempotencyKey(ctx, entryID), next)
	if err != nil {
		e.Rollback(entryID)
		return zero, err
	}
	commit(e, b, entryID, id, canonical)
	if canonical.Key() == "" {
		return next, nil
	}
	return canonical, nil
}

func remove[T domain.Record](
	ctx context.Context,
	e *Engine,
	b binding[T],
	id string,
	send func(ctx context.Context, id string) error,
) error {
	id, release, err := e.seq.entity(ctx, b.kind, id)
	if err != nil {
		return err
	}
	defer release()

	entryID := e.newID()
	var applyErr error
	e.state.Apply(func(c *state.Collections) bool {
		items := b.get(c)
		idx := indexOf(items, id)
		if idx < 0 {
			applyErr = fmt.Errorf("%s %s: %w", b.kind, id, ErrNotFound)
			return false
		}
		original := items[idx]
		applyErr = e.journal.Append(journal.Entry{
			ID:        entryID,
			Entity:    b.kind,
			Op:        journal.Delete[T]{Original: &original, Index: idx},
			Timestamp: e.now(),
		})
		if applyErr != nil {
			return false
		}
		b.set(c, withRemoved(items, idx))
		return true
	})
	if applyErr != nil {
		return applyErr
	}

	if err := send(api.WithIdempotencyKey(ctx, entryID), id); err != nil {
		e.Rollback(entryID)
		return err
	}
	e.state.Apply(func(*state.Collections) bool {
		return e.journal.Remove(entryID)
	})
	return nil
}

func reorder[T domain.Record](
	ctx context.Context,
	e *Engine,
	b binding[T],
	from, to int,
	position func(rec T, index int, now time.Time) T,
	send func(ctx context.Context, from, to int) error,
) error {
	release, err := e.seq.collection(ctx, b.kind)
	if err != nil {
		return err
	}
	defer release()

	entryID := e.newID()
	var applyErr error
	noop := false
	e.state.Apply(func(c *state.Collections) bool {
		items := b.get(c)
		if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
			applyErr = fmt.Errorf("move %s %d -> %d of %d: %w", b.kind, from, to, len(items), ErrIndexOutOfRange)
			return false
		}
		if from == to {
			noop = true
			return false
		}
		now := e.now()
		next := moved(items, from, to)
		for i := range next {
			next[i] = position(next[i], i, now)
		}
		applyErr = e.journal.Append(journal.Entry{
			ID:        entryID,
			Entity:    b.kind,
			Op:        journal.Reorder[T]{FromIndex: from, ToIndex: to, New: next, Original: items},
			Timestamp: now,
		})
		if applyErr != nil {
			return false
		}
		b.set(c, next)
		return true
	})
	if applyErr != nil || noop {
		return applyErr
	}

	if err := send(api.WithIdempotencyKey(ctx, entryID), from, to); err != nil {
		e.Rollback(entryID)
		return err
	}
	e.state.Apply(func(*state.Collections) bool {
		return e.journal.Remove(entryID)
	})
	return nil
}
