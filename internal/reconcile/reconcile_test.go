package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/journal"
	"github.com/five82/hireboard/internal/state"
	"github.com/five82/hireboard/internal/store"
)

type fakeSource struct {
	jobs          []domain.Job
	candidates    []domain.Candidate
	assessments   []domain.Assessment
	candidatesErr error
}

func (f *fakeSource) ListJobs(context.Context, domain.JobFilter) ([]domain.Job, error) {
	return append([]domain.Job(nil), f.jobs...), nil
}

func (f *fakeSource) ListCandidates(context.Context, domain.CandidateFilter) ([]domain.Candidate, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	return append([]domain.Candidate(nil), f.candidates...), nil
}

func (f *fakeSource) ListAssessments(context.Context, string) ([]domain.Assessment, error) {
	return append([]domain.Assessment(nil), f.assessments...), nil
}

type harness struct {
	svc     *Service
	db      *store.DB
	state   *state.Store
	journal *journal.Journal
	seeds   *atomic.Int32
}

func openDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newHarness builds a Service whose seeder writes seedJobs when seed is nil.
func newHarness(t *testing.T, src Source, seed Seeder) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	h := &harness{
		db:      openDB(t),
		state:   state.New(),
		journal: journal.New(),
		seeds:   &atomic.Int32{},
	}
	if seed == nil {
		seed = SeederFunc(func(ctx context.Context, db *store.DB) error {
			return db.Update(ctx, func(tx *store.Tx) error {
				if err := store.Jobs.Replace(tx, seedJobs()); err != nil {
					return err
				}
				return store.Candidates.Replace(tx, nil)
			})
		})
	}
	counted := SeederFunc(func(ctx context.Context, db *store.DB) error {
		h.seeds.Add(1)
		return seed.Seed(ctx, db)
	})
	svc, err := New(Options{
		DB:         h.db,
		State:      h.state,
		Journal:    h.journal,
		Source:     src,
		Seeder:     counted,
		Logger:     logger,
		RetryDelay: -1,
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func seedJobs() []domain.Job {
	return []domain.Job{
		{ID: "j1", Title: "Backend", Slug: "backend", Status: domain.JobActive, Order: 0},
		{ID: "j2", Title: "Frontend", Slug: "frontend", Status: domain.JobActive, Order: 1},
	}
}

func (h *harness) put(t *testing.T, jobs []domain.Job, cands []domain.Candidate) {
	t.Helper()
	require.NoError(t, h.db.Update(context.Background(), func(tx *store.Tx) error {
		if _, err := store.Jobs.PutAll(tx, jobs...); err != nil {
			return err
		}
		_, err := store.Candidates.PutAll(tx, cands...)
		return err
	}))
}

func (h *harness) pendingEntry(t *testing.T) {
	t.Helper()
	require.NoError(t, h.journal.Append(journal.Entry{
		ID:        "op-1",
		Entity:    domain.KindJob,
		Op:        journal.Create[domain.Job]{New: domain.Job{ID: "tmp"}},
		Timestamp: time.Now(),
	}))
}

func ids[T domain.Record](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func TestLoadFromStore_ValidStoreInstallsAndClearsJournal(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.put(t,
		[]domain.Job{
			{ID: "j2", Title: "Second", Slug: "second", Status: domain.JobActive, Order: 1},
			{ID: "j1", Title: "First", Slug: "first", Status: domain.JobActive, Order: 0},
		},
		[]domain.Candidate{{ID: "c1", Name: "Ada", Email: "ada@example.com", JobID: "j1", Stage: domain.StageApplied}},
	)
	h.pendingEntry(t)

	res, err := h.svc.LoadFromStore(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.False(t, res.Reseeded)
	assert.Zero(t, h.seeds.Load())

	snap := h.state.Snapshot()
	assert.Equal(t, []string{"j1", "j2"}, ids(snap.Jobs))
	assert.Equal(t, []string{"c1"}, ids(snap.Candidates))
	assert.False(t, snap.Jobs[0].CreatedAt.IsZero())
	assert.Zero(t, h.journal.Len())
	assert.Empty(t, snap.Loading)
}

func TestLoadFromStore_ReseedsWhenInvalid(t *testing.T) {
	tests := []struct {
		name  string
		jobs  []domain.Job
		cands []domain.Candidate
	}{
		{name: "empty store"},
		{
			name: "job missing title",
			jobs: []domain.Job{{ID: "j9", Slug: "untitled", Status: domain.JobActive}},
		},
		{
			name: "job with unknown status",
			jobs: []domain.Job{{ID: "j9", Title: "Odd", Slug: "odd", Status: "paused"}},
		},
		{
			name:  "candidate with bad email",
			jobs:  seedJobs(),
			cands: []domain.Candidate{{ID: "c1", Name: "Ada", Email: "not-an-email", JobID: "j1", Stage: domain.StageApplied}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, nil)
			h.put(t, tt.jobs, tt.cands)

			res, err := h.svc.LoadFromStore(context.Background())
			require.NoError(t, err)
			assert.True(t, res.Reseeded)
			assert.True(t, res.Valid)
			assert.EqualValues(t, 1, h.seeds.Load())
			assert.Equal(t, []string{"j1", "j2"}, ids(h.state.Collections().Jobs))

			// The marker is gone and the seed time recorded.
			require.NoError(t, h.db.View(context.Background(), func(tx *store.Tx) error {
				inProgress, err := tx.Marker(seedingMarker)
				require.NoError(t, err)
				assert.False(t, inProgress)
				_, ok, err := tx.Time(seededAtKey)
				require.NoError(t, err)
				assert.True(t, ok)
				return nil
			}))
		})
	}
}

func TestLoadFromStore_SkipsReseedWhenRecentOrInProgress(t *testing.T) {
	tests := []struct {
		name   string
		mark   func(tx *store.Tx) error
		reseed bool
	}{
		{
			name: "seeded a minute ago",
			mark: func(tx *store.Tx) error { return tx.SetTime(seededAtKey, time.Now().Add(-time.Minute)) },
		},
		{
			name: "seed in progress",
			mark: func(tx *store.Tx) error { return tx.SetMarker(seedingMarker, time.Minute) },
		},
		{
			name:   "seeded outside the window",
			mark:   func(tx *store.Tx) error { return tx.SetTime(seededAtKey, time.Now().Add(-10*time.Minute)) },
			reseed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, nil)
			require.NoError(t, h.db.Update(context.Background(), tt.mark))

			res, err := h.svc.LoadFromStore(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.reseed, res.Reseeded)
			assert.Equal(t, tt.reseed, res.Valid)
			if tt.reseed {
				assert.EqualValues(t, 1, h.seeds.Load())
				assert.Len(t, h.state.Collections().Jobs, 2)
			} else {
				assert.Zero(t, h.seeds.Load())
				assert.Empty(t, h.state.Collections().Jobs)
			}
		})
	}
}

func TestLoadFromStore_SeedFailureKeepsStoreContents(t *testing.T) {
	boom := errors.New("seed source down")
	h := newHarness(t, nil, SeederFunc(func(context.Context, *store.DB) error { return boom }))
	h.put(t, seedJobs(), []domain.Candidate{
		{ID: "c1", Name: "Ada", Email: "not-an-email", JobID: "j1", Stage: domain.StageApplied},
	})
	h.pendingEntry(t)

	res, err := h.svc.LoadFromStore(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, h.state.Snapshot().Errors[OpLoadFromStore], "seed source down")

	// The readable contents are installed even though they fail validation.
	assert.False(t, res.Valid)
	assert.False(t, res.Reseeded)
	assert.EqualValues(t, 1, h.seeds.Load())
	cols := h.state.Collections()
	assert.Equal(t, []string{"j1", "j2"}, ids(cols.Jobs))
	assert.Equal(t, []string{"c1"}, ids(cols.Candidates))
	assert.Equal(t, cols, res.Collections)
	assert.Zero(t, h.journal.Len())

	require.NoError(t, h.db.View(context.Background(), func(tx *store.Tx) error {
		inProgress, err := tx.Marker(seedingMarker)
		require.NoError(t, err)
		assert.False(t, inProgress)
		_, ok, err := tx.Time(seededAtKey)
		require.NoError(t, err)
		assert.False(t, ok, "a failed seed must not open the suppression window")
		return nil
	}))
}

func TestSyncWithAPI_ReplacesStateAndPersists(t *testing.T) {
	src := &fakeSource{
		jobs: []domain.Job{{ID: "srv-1", Title: "Remote", Slug: "remote", Status: domain.JobActive}},
		candidates: []domain.Candidate{
			{ID: "c7", Name: "Lin", Email: "lin@example.com", JobID: "srv-1", Stage: domain.StageScreen},
		},
		assessments: []domain.Assessment{{ID: "a1", JobID: "srv-1", Title: "Take-home"}},
	}
	h := newHarness(t, src, nil)
	h.put(t, seedJobs(), nil)
	h.state.Apply(func(c *state.Collections) bool {
		c.Jobs = seedJobs()
		return true
	})
	h.pendingEntry(t)

	require.NoError(t, h.svc.SyncWithAPI(context.Background()))

	snap := h.state.Snapshot()
	assert.Equal(t, []string{"srv-1"}, ids(snap.Jobs))
	assert.Equal(t, []string{"c7"}, ids(snap.Candidates))
	assert.Equal(t, []string{"a1"}, ids(snap.Assessments))
	assert.False(t, snap.Jobs[0].CreatedAt.IsZero(), "missing dates are filled")
	assert.False(t, snap.LastSynced.IsZero())
	assert.Zero(t, h.journal.Len())

	require.NoError(t, h.db.View(context.Background(), func(tx *store.Tx) error {
		jobs, err := store.Jobs.Scan(tx)
		require.NoError(t, err)
		assert.Equal(t, []string{"srv-1"}, ids(jobs))
		cands, err := store.Candidates.ScanIndex(tx, "jobId", "srv-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c7"}, ids(cands))
		return nil
	}))
}

func TestSyncWithAPI_FailureLeavesStateAlone(t *testing.T) {
	src := &fakeSource{jobs: seedJobs(), candidatesErr: errors.New("connection refused")}
	h := newHarness(t, src, nil)
	h.state.Apply(func(c *state.Collections) bool {
		c.Jobs = []domain.Job{{ID: "local"}}
		return true
	})
	h.pendingEntry(t)

	err := h.svc.SyncWithAPI(context.Background())
	require.Error(t, err)

	snap := h.state.Snapshot()
	assert.Equal(t, []string{"local"}, ids(snap.Jobs))
	assert.Equal(t, 1, h.journal.Len())
	assert.Contains(t, snap.Errors[OpSyncWithAPI], "connection refused")
	assert.True(t, snap.LastSynced.IsZero())
}

func TestRemoteSeeder_WritesRemoteCollections(t *testing.T) {
	db := openDB(t)
	src := &fakeSource{jobs: seedJobs()}

	require.NoError(t, RemoteSeeder{Source: src}.Seed(context.Background(), db))
	require.NoError(t, db.View(context.Background(), func(tx *store.Tx) error {
		n, err := store.Jobs.Count(tx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return nil
	}))

	require.Error(t, RemoteSeeder{}.Seed(context.Background(), db))
}

func TestNormalizeFillsMissingDates(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	kept := domain.At(now.Add(-time.Hour))
	cols := state.Collections{
		Jobs:        []domain.Job{{ID: "j1", CreatedAt: kept}},
		Candidates:  []domain.Candidate{{ID: "c1"}},
		Assessments: []domain.Assessment{{ID: "a1"}},
	}
	normalize(&cols, now)

	assert.Equal(t, kept, cols.Jobs[0].CreatedAt)
	assert.Equal(t, now, cols.Jobs[0].UpdatedAt.Time)
	assert.Equal(t, now, cols.Candidates[0].CreatedAt.Time)
	assert.Equal(t, now, cols.Assessments[0].UpdatedAt.Time)
}

func TestNew_RequiresStateAndJournal(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
