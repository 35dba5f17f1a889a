package store

import (
	"fmt"
	"time"

	"github.com/five82/hireboard/internal/domain"
)

// Jobs is ordered by board position.
var Jobs = NewTable(Schema[domain.Job]{
	Name:    "jobs",
	SortKey: func(j domain.Job) string { return fmt.Sprintf("%010d", j.Order) },
	Indexes: map[string]func(domain.Job) string{
		"status": func(j domain.Job) string { return string(j.Status) },
		"slug":   func(j domain.Job) string { return j.Slug },
	},
	Stamp: func(j domain.Job, created, now time.Time) domain.Job {
		j.CreatedAt, j.UpdatedAt = stamps(j.CreatedAt, created, now)
		return j
	},
	Created: func(j domain.Job) time.Time { return j.CreatedAt.Time },
})

// Candidates is ordered by creation time.
var Candidates = NewTable(Schema[domain.Candidate]{
	Name:    "candidates",
	SortKey: func(c domain.Candidate) string { return sortableTime(c.CreatedAt) },
	Indexes: map[string]func(domain.Candidate) string{
		"jobId": func(c domain.Candidate) string { return c.JobID },
		"stage": func(c domain.Candidate) string { return string(c.Stage) },
		"email": func(c domain.Candidate) string { return c.Email },
	},
	Stamp: func(c domain.Candidate, created, now time.Time) domain.Candidate {
		c.CreatedAt, c.UpdatedAt = stamps(c.CreatedAt, created, now)
		return c
	},
	Created: func(c domain.Candidate) time.Time { return c.CreatedAt.Time },
})

// Assessments is ordered by creation time.
var Assessments = NewTable(Schema[domain.Assessment]{
	Name:    "assessments",
	SortKey: func(a domain.Assessment) string { return sortableTime(a.CreatedAt) },
	Indexes: map[string]func(domain.Assessment) string{
		"jobId": func(a domain.Assessment) string { return a.JobID },
	},
	Stamp: func(a domain.Assessment, created, now time.Time) domain.Assessment {
		a.CreatedAt, a.UpdatedAt = stamps(a.CreatedAt, created, now)
		return a
	},
	Created: func(a domain.Assessment) time.Time { return a.CreatedAt.Time },
})

// stamps keeps the stored creation time on update, keeps the caller's (or
// now) on insert, and always sets updatedAt to now.
func stamps(current domain.Timestamp, stored, now time.Time) (domain.Timestamp, domain.Timestamp) {
	created := current
	if !stored.IsZero() {
		created = domain.At(stored)
	}
	return created.OrNow(now), domain.At(now)
}

func sortableTime(ts domain.Timestamp) string {
	return fmt.Sprintf("%020d", ts.UTC().UnixNano())
}
