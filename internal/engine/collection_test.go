package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/domain"
)

func TestCollectionHelpersNeverWriteTheirInput(t *testing.T) {
	base := []int{1, 2, 3, 4}
	orig := append([]int(nil), base...)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, withAppended(base[:4:4], 5))
	assert.Equal(t, []int{1, 9, 3, 4}, withReplaced(base, 1, 9))
	assert.Equal(t, []int{1, 3, 4}, withRemoved(base, 1))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, withInserted(base, -5, 0))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, withInserted(base, 99, 5))
	assert.Equal(t, []int{2, 3, 1, 4}, moved(base, 0, 2))
	assert.Equal(t, []int{4, 1, 2, 3}, moved(base, 3, 0))
	assert.Equal(t, orig, base)

	// Appending to a slice with spare capacity must not touch the shared array.
	spare := make([]int, 2, 8)
	grown := withAppended(spare, 7)
	grown[0] = 42
	assert.Equal(t, []int{0, 0}, spare)
}

func TestIndexOf(t *testing.T) {
	jobs := []domain.Job{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, 1, indexOf(jobs, "b"))
	assert.Equal(t, -1, indexOf(jobs, "z"))
}

func TestSequencer_CollectionWaitsForEntities(t *testing.T) {
	s := newSequencer()
	ctx := context.Background()

	_, release, err := s.entity(ctx, domain.KindJob, "j1")
	require.NoError(t, err)

	// Other ids of the same kind proceed.
	_, other, err := s.entity(ctx, domain.KindJob, "j2")
	require.NoError(t, err)
	other()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = s.collection(waitCtx, domain.KindJob)
	require.ErrorIs(t, err, api.ErrAborted)

	// Another kind is independent.
	cand, err := s.collection(ctx, domain.KindCandidate)
	require.NoError(t, err)
	cand()

	release()
	all, err := s.collection(ctx, domain.KindJob)
	require.NoError(t, err)
	all()

	assert.Empty(t, s.keys)
}

func TestSequencer_WaiterFollowsRename(t *testing.T) {
	s := newSequencer()
	ctx := context.Background()

	id, release, err := s.entity(ctx, domain.KindJob, "local-1")
	require.NoError(t, err)
	assert.Equal(t, "local-1", id)

	got := make(chan string, 1)
	go func() {
		id, done, err := s.entity(ctx, domain.KindJob, "local-1")
		if err != nil {
			got <- err.Error()
			return
		}
		done()
		got <- id
	}()

	require.Eventually(t, func() bool { return s.refs(domain.KindJob, "local-1") == 2 }, time.Second, time.Millisecond)
	s.rename(domain.KindJob, "local-1", "srv-1")
	release()

	assert.Equal(t, "srv-1", <-got)
	assert.Empty(t, s.keys)
}
