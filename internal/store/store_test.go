package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/hireboard/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func job(id string, order int, status domain.JobStatus) domain.Job {
	return domain.Job{ID: id, Title: "Job " + id, Slug: "job-" + id, Status: status, Order: order}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

func TestOpen_RoutesBadgerLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	db, err := Open(Config{InMemory: true, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	bl := badgerLogger{log: logger.WithField("component", "badger")}
	hook.Reset()
	bl.Errorf("disk %s", "full")
	bl.Warningf("slow")
	bl.Infof("compaction")
	bl.Debugf("level %d", 0)

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	levels := []logrus.Level{logrus.ErrorLevel, logrus.WarnLevel, logrus.DebugLevel, logrus.TraceLevel}
	for i, want := range levels {
		assert.Equal(t, want, entries[i].Level)
		assert.Equal(t, "badger", entries[i].Data["component"])
	}
	assert.Equal(t, "disk full", entries[0].Message)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		_, err := Jobs.PutAll(tx, job("a", 0, domain.JobActive))
		return err
	}))
	require.NoError(t, db.Close())

	db, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		got, err := Jobs.Get(tx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Job a", got.Title)
		return nil
	}))
}

func TestTable_ScanOrderedBySortKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		_, err := Jobs.PutAll(tx,
			job("c", 2, domain.JobActive),
			job("a", 10, domain.JobArchived),
			job("b", 0, domain.JobActive),
		)
		return err
	}))

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		all, err := Jobs.Scan(tx)
		require.NoError(t, err)
		ids := make([]string, len(all))
		for i, j := range all {
			ids[i] = j.ID
		}
		assert.Equal(t, []string{"b", "c", "a"}, ids)
		return nil
	}))
}

func TestTable_UpsertMovesIndexEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		_, err := Jobs.PutAll(tx, job("a", 0, domain.JobActive), job("b", 1, domain.JobActive))
		return err
	}))
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		_, err := Jobs.PutAll(tx, job("a", 5, domain.JobArchived))
		return err
	}))

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		active, err := Jobs.ScanIndex(tx, "status", string(domain.JobActive))
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "b", active[0].ID)

		archived, err := Jobs.ScanIndex(tx, "status", string(domain.JobArchived))
		require.NoError(t, err)
		require.Len(t, archived, 1)
		assert.Equal(t, 5, archived[0].Order)

		all, err := Jobs.Scan(tx)
		require.NoError(t, err)
		assert.Len(t, all, 2, "old sort key must be dropped")

		_, err = Jobs.ScanIndex(tx, "missing", "x")
		assert.Error(t, err)
		return nil
	}))
}

func TestTable_StampHooks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	clock := first
	prev := Candidates.now
	Candidates.now = func() time.Time { return clock }
	t.Cleanup(func() { Candidates.now = prev })

	c := domain.Candidate{ID: "c1", Name: "Ada", Email: "ada@example.com", JobID: "j1", Stage: domain.StageApplied}
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		stamped, err := Candidates.PutAll(tx, c)
		require.NoError(t, err)
		assert.True(t, stamped[0].CreatedAt.Equal(first))
		assert.True(t, stamped[0].UpdatedAt.Equal(first))
		return nil
	}))

	clock = second
	c.Stage = domain.StageScreen
	c.CreatedAt = domain.At(second.Add(24 * time.Hour)) // caller cannot move creation time
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		_, err := Candidates.PutAll(tx, c)
		return err
	}))

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		got, err := Candidates.Get(tx, "c1")
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(first), "createdAt = %v", got.CreatedAt)
		assert.True(t, got.UpdatedAt.Equal(second), "updatedAt = %v", got.UpdatedAt)
		assert.Equal(t, domain.StageScreen, got.Stage)
		return nil
	}))
}

func TestDB_MultiTableTransactionIsAtomic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Update(ctx, func(tx *Tx) error {
		if _, err := Jobs.PutAll(tx, job("a", 0, domain.JobActive)); err != nil {
			return err
		}
		if _, err := Candidates.PutAll(tx, domain.Candidate{ID: "c1", JobID: "a"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		n, err := Jobs.Count(tx)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = Candidates.Count(tx)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))
}

func TestTable_DeleteAndReplace(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		_, err := Jobs.PutAll(tx, job("a", 0, domain.JobActive), job("b", 1, domain.JobActive), job("c", 2, domain.JobActive))
		return err
	}))
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		return Jobs.DeleteAll(tx, "a", "missing")
	}))
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		return Jobs.Replace(tx, []domain.Job{job("c", 0, domain.JobActive), job("d", 1, domain.JobActive)})
	}))

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		ids, err := Jobs.IDs(tx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "d"}, ids)

		_, err = Jobs.Get(tx, "a")
		assert.ErrorIs(t, err, ErrNotFound)

		active, err := Jobs.ScanIndex(tx, "status", string(domain.JobActive))
		require.NoError(t, err)
		assert.Len(t, active, 2)
		return nil
	}))
}

func TestTx_Markers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seededAt := time.Now().Truncate(time.Second)
	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.SetMarker("seeding", time.Minute))
		return tx.SetTime("seeded-at", seededAt)
	}))

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		on, err := tx.Marker("seeding")
		require.NoError(t, err)
		assert.True(t, on)

		at, ok, err := tx.Time("seeded-at")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, at.Equal(seededAt))

		_, ok, err = tx.Time("never")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))

	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		return tx.ClearMarker("seeding")
	}))
	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		on, err := tx.Marker("seeding")
		require.NoError(t, err)
		assert.False(t, on)
		return nil
	}))
}

func TestTx_ReadOnlyRejectsWrites(t *testing.T) {
	db := openTestDB(t)
	err := db.View(context.Background(), func(tx *Tx) error {
		_, err := Jobs.PutAll(tx, job("a", 0, domain.JobActive))
		return err
	})
	require.Error(t, err)
}

func TestTable_PrefixesStopAtTheSeparator(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	status := func(j domain.Job) string { return string(j.Status) }
	team := NewTable(Schema[domain.Job]{Name: "team", Indexes: map[string]func(domain.Job) string{"status": status}})
	teams := NewTable(Schema[domain.Job]{Name: "teams", Indexes: map[string]func(domain.Job) string{"status": status}})

	require.NoError(t, db.Update(ctx, func(tx *Tx) error {
		if _, err := team.PutAll(tx, job("a", 0, domain.JobActive)); err != nil {
			return err
		}
		_, err := teams.PutAll(tx,
			job("b", 0, domain.JobActive),
			job("c", 1, domain.JobStatus(string(domain.JobActive)+"x")),
		)
		return err
	}))

	require.NoError(t, db.View(ctx, func(tx *Tx) error {
		all, err := team.Scan(tx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "a", all[0].ID)

		ids, err := team.IDs(tx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids)

		n, err := teams.Count(tx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		active, err := teams.ScanIndex(tx, "status", string(domain.JobActive))
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "b", active[0].ID)
		return nil
	}))
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "r\x00jobs\x00a", joinKey("r", "jobs", "a"))
	assert.Equal(t, "m", joinKey("m"))
}
