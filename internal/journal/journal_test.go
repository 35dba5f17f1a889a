package journal

import (
	"testing"
	"time"

	"github.com/five82/hireboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendFindRemove(t *testing.T) {
	j := New()
	orig := domain.Job{ID: "j1", Title: "Before"}

	require.NoError(t, j.Append(Entry{ID: "op-1", Entity: domain.KindJob, Op: Create[domain.Job]{New: domain.Job{ID: "j2"}}, Timestamp: time.Now()}))
	require.NoError(t, j.Append(Entry{ID: "op-2", Entity: domain.KindJob, Op: Update[domain.Job]{New: domain.Job{ID: "j1", Title: "After"}, Original: &orig}}))
	assert.Equal(t, 2, j.Len())

	e, ok := j.Find("op-2")
	require.True(t, ok)
	up, ok := e.Op.(Update[domain.Job])
	require.True(t, ok)
	assert.Equal(t, "Before", up.Original.Title)
	assert.Equal(t, OpUpdate, e.Op.Kind())

	assert.True(t, j.Remove("op-1"))
	assert.False(t, j.Remove("op-1"), "second removal must report absence")
	assert.Equal(t, []string{"op-2"}, ids(j.Entries()))

	_, ok = j.Find("op-1")
	assert.False(t, ok)
}

func TestJournal_RejectsEntriesWithoutUndoData(t *testing.T) {
	j := New()

	assert.Error(t, j.Append(Entry{ID: "u", Entity: domain.KindJob, Op: Update[domain.Job]{New: domain.Job{ID: "x"}}}))
	assert.Error(t, j.Append(Entry{ID: "d", Entity: domain.KindCandidate, Op: Delete[domain.Candidate]{}}))
	assert.Error(t, j.Append(Entry{ID: "r", Entity: domain.KindJob, Op: Reorder[domain.Job]{FromIndex: 0, ToIndex: 1}}))
	assert.Error(t, j.Append(Entry{ID: "", Op: Create[domain.Job]{}}))
	assert.Error(t, j.Append(Entry{ID: "nil-op"}))

	require.NoError(t, j.Append(Entry{ID: "r2", Entity: domain.KindJob, Op: Reorder[domain.Job]{Original: []domain.Job{}}}))
	assert.Error(t, j.Append(Entry{ID: "r2", Entity: domain.KindJob, Op: Create[domain.Job]{}}), "duplicate id")
	assert.Equal(t, 1, j.Len())
}

func TestJournal_KeepsAppendOrderAndClears(t *testing.T) {
	j := New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.Append(Entry{ID: id, Entity: domain.KindAssessment, Op: Create[domain.Assessment]{}}))
	}
	require.True(t, j.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, ids(j.Entries()))

	assert.Equal(t, 2, j.Clear())
	assert.Zero(t, j.Len())
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
