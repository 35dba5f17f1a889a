package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/journal"
	"github.com/five82/hireboard/internal/state"
	"github.com/five82/hireboard/internal/store"
)

// ErrStoreInvalid marks a local store whose collections fail validation.
var ErrStoreInvalid = errors.New("local store invalid")

// Operation names used as LoadingState and ErrorState keys.
const (
	OpLoadFromStore = "loadFromStore"
	OpSyncWithAPI   = "syncWithAPI"
)

const (
	seedingMarker = "seeding"
	seededAtKey   = "seeded_at"

	defaultReseedWindow = 5 * time.Minute
	defaultSeedingTTL   = 30 * time.Second
	defaultRetryDelay   = 500 * time.Millisecond
)

// Source is the read side of the remote service.
type Source interface {
	ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error)
	ListAssessments(ctx context.Context, jobID string) ([]domain.Assessment, error)
}

var _ Source = (*api.Client)(nil)

// Seeder fills an empty or corrupt store.
type Seeder interface {
	Seed(ctx context.Context, db *store.DB) error
}

// Options wires a Service. State and Journal are required; DB, Source and
// Seeder may be nil when the corresponding path is unused.
type Options struct {
	DB      *store.DB
	State   *state.Store
	Journal *journal.Journal
	Source  Source
	Seeder  Seeder
	Logger  logrus.FieldLogger

	// ReseedWindow is how long after a reseed another one is suppressed
	// (default 5m). SeedingTTL bounds the in-progress marker (default 30s).
	ReseedWindow time.Duration
	SeedingTTL   time.Duration

	// RetryDelay is the pause before the second read when a reseed is in
	// progress or recent (default 500ms, negative for none).
	RetryDelay time.Duration

	Now func() time.Time
}

// Service replaces in-memory state from the local store or the remote
// service.
type Service struct {
	db      *store.DB
	state   *state.Store
	journal *journal.Journal
	source  Source
	seeder  Seeder
	log     logrus.FieldLogger

	reseedWindow time.Duration
	seedingTTL   time.Duration
	retryDelay   time.Duration
	now          func() time.Time
}

// New builds a Service.
func New(opts Options) (*Service, error) {
	if opts.State == nil || opts.Journal == nil {
		return nil, fmt.Errorf("reconcile requires state and journal")
	}
	s := &Service{
		db:           opts.DB,
		state:        opts.State,
		journal:      opts.Journal,
		source:       opts.Source,
		seeder:       opts.Seeder,
		log:          opts.Logger,
		reseedWindow: opts.ReseedWindow,
		seedingTTL:   opts.SeedingTTL,
		retryDelay:   opts.RetryDelay,
		now:          opts.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "reconcile")
	if s.reseedWindow <= 0 {
		s.reseedWindow = defaultReseedWindow
	}
	if s.seedingTTL <= 0 {
		s.seedingTTL = defaultSeedingTTL
	}
	if s.retryDelay < 0 {
		s.retryDelay = 0
	} else if opts.RetryDelay == 0 {
		s.retryDelay = defaultRetryDelay
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// LoadResult describes what LoadFromStore found.
type LoadResult struct {
	Collections state.Collections
	// Reseeded is true when this call ran the seeder.
	Reseeded bool
	// Valid is false when the collections that were installed still fail
	// validation.
	Valid bool
}

// LoadFromStore reads every collection from the local store, normalizes
// dates, validates, reseeds when invalid, and replaces in-memory state. The
// journal is cleared. When the reseed fails the store's current contents
// are installed anyway and the seed error is returned with the result.
func (s *Service) LoadFromStore(ctx context.Context) (LoadResult, error) {
	var res LoadResult
	err := s.track(OpLoadFromStore, func() error {
		var err error
		res, err = s.loadFromStore(ctx)
		return err
	})
	return res, err
}

func (s *Service) loadFromStore(ctx context.Context) (LoadResult, error) {
	if s.db == nil {
		return LoadResult{}, fmt.Errorf("no local store configured")
	}

	cols, err := s.read(ctx)
	if err == nil {
		s.install(cols)
		return LoadResult{Collections: cols, Valid: true}, nil
	}
	if !errors.Is(err, ErrStoreInvalid) {
		return LoadResult{}, err
	}
	s.log.WithError(err).Warn("local store failed validation")

	busy, err := s.reseedBusy(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	if busy || s.seeder == nil {
		// Someone else is (or just was) seeding: read once more, then
		// settle for whatever is there.
		if busy {
			if err := sleep(ctx, s.retryDelay); err != nil {
				return LoadResult{}, err
			}
		}
		return s.settle(ctx)
	}

	if seedErr := s.reseed(ctx); seedErr != nil {
		// The store is still readable: run from it and report the failure.
		s.log.WithError(seedErr).Warn("reseed failed, using local store contents")
		res, err := s.settle(ctx)
		if err != nil {
			return LoadResult{}, errors.Join(seedErr, err)
		}
		return res, seedErr
	}
	res, err := s.settle(ctx)
	res.Reseeded = true
	return res, err
}

// settle reads the store and installs the result whether or not it validates.
func (s *Service) settle(ctx context.Context) (LoadResult, error) {
	cols, err := s.read(ctx)
	valid := err == nil
	if err != nil && !errors.Is(err, ErrStoreInvalid) {
		return LoadResult{}, err
	}
	if !valid {
		s.log.WithError(err).Warn("using local store contents despite failed validation")
	}
	s.install(cols)
	return LoadResult{Collections: cols, Valid: valid}, nil
}

// read returns normalized collections. The error wraps ErrStoreInvalid when
// validation fails; the collections are still returned in that case.
func (s *Service) read(ctx context.Context) (state.Collections, error) {
	var cols state.Collections
	var corrupt error
	err := s.db.View(ctx, func(tx *store.Tx) error {
		var err error
		if cols.Jobs, err = store.Jobs.Scan(tx); err != nil {
			if !errors.Is(err, store.ErrCorrupt) {
				return err
			}
			corrupt = err
		}
		if cols.Candidates, err = store.Candidates.Scan(tx); err != nil {
			if !errors.Is(err, store.ErrCorrupt) {
				return err
			}
			corrupt = err
		}
		if cols.Assessments, err = store.Assessments.Scan(tx); err != nil {
			if !errors.Is(err, store.ErrCorrupt) {
				return err
			}
			corrupt = err
		}
		return nil
	})
	if err != nil {
		return state.Collections{}, fmt.Errorf("read local store: %w", err)
	}

	normalize(&cols, s.now())
	if corrupt != nil {
		return cols, fmt.Errorf("%w: %w", ErrStoreInvalid, corrupt)
	}
	if err := validate(cols); err != nil {
		return cols, err
	}
	return cols, nil
}

func (s *Service) reseedBusy(ctx context.Context) (bool, error) {
	var busy bool
	err := s.db.View(ctx, func(tx *store.Tx) error {
		inProgress, err := tx.Marker(seedingMarker)
		if err != nil {
			return err
		}
		seededAt, ok, err := tx.Time(seededAtKey)
		if err != nil {
			return err
		}
		busy = inProgress || (ok && s.now().Sub(seededAt) < s.reseedWindow)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read seeding markers: %w", err)
	}
	return busy, nil
}

func (s *Service) reseed(ctx context.Context) error {
	if err := s.db.Update(ctx, func(tx *store.Tx) error {
		return tx.SetMarker(seedingMarker, s.seedingTTL)
	}); err != nil {
		return fmt.Errorf("set seeding marker: %w", err)
	}

	s.log.Info("reseeding local store")
	seedErr := s.seeder.Seed(ctx, s.db)

	// Clear with a fresh context so a cancelled seed still drops the marker.
	err := s.db.Update(context.WithoutCancel(ctx), func(tx *store.Tx) error {
		if err := tx.ClearMarker(seedingMarker); err != nil {
			return err
		}
		if seedErr != nil {
			return nil
		}
		return tx.SetTime(seededAtKey, s.now())
	})
	if seedErr != nil {
		return fmt.Errorf("reseed: %w", seedErr)
	}
	if err != nil {
		return fmt.Errorf("clear seeding marker: %w", err)
	}
	return nil
}

// SyncWithAPI fetches the three collections in parallel, replaces in-memory
// state wholesale, clears the journal and writes the result to the local
// store. State is untouched when any fetch fails.
func (s *Service) SyncWithAPI(ctx context.Context) error {
	return s.track(OpSyncWithAPI, func() error {
		if s.source == nil {
			return fmt.Errorf("no remote source configured")
		}
		cols, err := Fetch(ctx, s.source)
		if err != nil {
			return err
		}
		normalize(&cols, s.now())
		dropped := s.install(cols)
		s.state.MarkSynced(s.now())
		s.log.WithFields(logrus.Fields{
			"jobs":        len(cols.Jobs),
			"candidates":  len(cols.Candidates),
			"assessments": len(cols.Assessments),
			"dropped":     dropped,
		}).Info("synced with api")

		if s.db == nil {
			return nil
		}
		if err := Persist(ctx, s.db, cols); err != nil {
			return fmt.Errorf("persist synced collections: %w", err)
		}
		return nil
	})
}

// install swaps cols into state and clears the journal in one step. It
// returns the number of journal entries dropped.
func (s *Service) install(cols state.Collections) int {
	var dropped int
	s.state.Apply(func(c *state.Collections) bool {
		*c = cols
		dropped = s.journal.Clear()
		return true
	})
	if dropped > 0 {
		s.log.WithField("entries", dropped).Warn("discarded pending updates")
	}
	return dropped
}

func (s *Service) track(op string, fn func() error) error {
	s.state.SetError(op, "")
	s.state.SetLoading(op, true)
	defer s.state.SetLoading(op, false)
	err := fn()
	if err != nil {
		s.state.SetError(op, api.Message(err))
		s.log.WithField("op", op).WithError(err).Warn("reconciliation failed")
	}
	return err
}

// Fetch reads the three canonical collections concurrently.
func Fetch(ctx context.Context, src Source) (state.Collections, error) {
	var cols state.Collections
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cols.Jobs, err = src.ListJobs(ctx, domain.JobFilter{})
		if err != nil {
			return fmt.Errorf("fetch jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cols.Candidates, err = src.ListCandidates(ctx, domain.CandidateFilter{})
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cols.Assessments, err = src.ListAssessments(ctx, "")
		if err != nil {
			return fmt.Errorf("fetch assessments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return state.Collections{}, err
	}
	return cols, nil
}

// Persist makes the local store hold exactly cols, in one transaction.
func Persist(ctx context.Context, db *store.DB, cols state.Collections) error {
	return db.Update(ctx, func(tx *store.Tx) error {
		if err := store.Jobs.Replace(tx, cols.Jobs); err != nil {
			return err
		}
		if err := store.Candidates.Replace(tx, cols.Candidates); err != nil {
			return err
		}
		return store.Assessments.Replace(tx, cols.Assessments)
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
