package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalLenient(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		zero bool
	}{
		{"rfc3339", `"2024-03-01T10:00:00Z"`, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), false},
		{"epoch millis", `1709287200000`, time.UnixMilli(1709287200000).UTC(), false},
		{"epoch millis string", `"1709287200000"`, time.UnixMilli(1709287200000).UTC(), false},
		{"null", `null`, time.Time{}, true},
		{"garbage string", `"not a date"`, time.Time{}, true},
		{"object", `{"$date":1}`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			if tt.zero {
				assert.True(t, ts.IsZero(), "got %v", ts.Time)
				return
			}
			assert.True(t, ts.Equal(tt.want), "got %v want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestamp_RecordSurvivesBadDate(t *testing.T) {
	raw := `{"id":"j1","title":"Backend","slug":"backend","status":"active","order":0,"createdAt":{"bad":true},"updatedAt":"2024-01-01 08:30:00"}`

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, "Backend", job.Title)
	assert.True(t, job.CreatedAt.IsZero())
	assert.False(t, job.UpdatedAt.IsZero())

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, job.CreatedAt.OrNow(now).Equal(now))
}

func TestTimestamp_MarshalRoundTripsThroughRecords(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 123, time.UTC)
	job := NewJob{Title: "Platform Engineer"}.Build("j1", 3, now)

	data, err := json.Marshal(job)
	require.NoError(t, err)

	var back Job
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.CreatedAt.Equal(now))
	assert.Equal(t, "platform-engineer", back.Slug)
	assert.Equal(t, 3, back.Order)
}

func TestNewJob_BuildDefaults(t *testing.T) {
	now := time.Now()
	job := NewJob{Title: "  Data Scientist  ", Tags: []string{"ml"}}.Build("id-1", 0, now)

	assert.Equal(t, "Data Scientist", job.Title)
	assert.Equal(t, "data-scientist", job.Slug)
	assert.Equal(t, JobActive, job.Status)
	assert.Equal(t, []string{"ml"}, job.Tags)
	require.NoError(t, Validate(job))
}

func TestJobPatch_ApplyOnlyTouchesSetFields(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	job := NewJob{Title: "QA"}.Build("j1", 2, created)

	archived := JobArchived
	later := created.Add(time.Hour)
	patched := JobPatch{Status: &archived}.Apply(job, later)

	assert.Equal(t, JobArchived, patched.Status)
	assert.Equal(t, "QA", patched.Title)
	assert.Equal(t, 2, patched.Order)
	assert.True(t, patched.UpdatedAt.Equal(later))
	assert.True(t, patched.CreatedAt.Equal(created))
	assert.Equal(t, JobActive, job.Status, "original must be untouched")
}

func TestValidate_ReportsFields(t *testing.T) {
	err := Validate(Candidate{ID: "c1", Name: "Ada", Email: "not-an-email", JobID: "j1", Stage: "limbo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
	assert.Contains(t, err.Error(), "Stage")

	err = ValidateAll([]Job{{ID: "j1", Title: "ok", Slug: "ok", Status: JobActive}, {ID: "j2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestNextStage_Clamps(t *testing.T) {
	assert.Equal(t, StageScreen, NextStage(StageApplied, 1))
	assert.Equal(t, StageApplied, NextStage(StageApplied, -1))
	assert.Equal(t, StageRejected, NextStage(StageHired, 5))
	assert.Equal(t, StageApplied, NextStage("unknown", 1))
}

func TestMentions(t *testing.T) {
	got := Mentions("ping @alice and @bob-smith, cc @alice. email me@example.com")
	assert.Equal(t, []string{"alice", "bob-smith"}, got)
	assert.Nil(t, Mentions("no handles here"))
}
