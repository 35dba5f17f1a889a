package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Job is an open or archived position.
type Job struct {
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Slug      string    `json:"slug" validate:"required"`
	Status    JobStatus `json:"status" validate:"required,oneof=active archived"`
	Tags      []string  `json:"tags"`
	Order     int       `json:"order" validate:"gte=0"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Key implements Record.
func (j Job) Key() string { return j.ID }

// NewJob is the caller-supplied part of a job before the client assigns
// identity and timestamps.
type NewJob struct {
	Title  string    `json:"title"`
	Slug   string    `json:"slug,omitempty"`
	Status JobStatus `json:"status,omitempty"`
	Tags   []string  `json:"tags,omitempty"`
}

// Build completes a NewJob into a Job positioned at order.
func (n NewJob) Build(id string, order int, now time.Time) Job {
	title := strings.TrimSpace(n.Title)
	s := strings.TrimSpace(n.Slug)
	if s == "" {
		s = slug.Make(title)
	}
	status := n.Status
	if status == "" {
		status = JobActive
	}
	return Job{
		ID:        id,
		Title:     title,
		Slug:      s,
		Status:    status,
		Tags:      slices.Clone(n.Tags),
		Order:     order,
		CreatedAt: At(now),
		UpdatedAt: At(now),
	}
}

// JobPatch is a partial update; nil fields are left untouched.
type JobPatch struct {
	Title  *string    `json:"title,omitempty"`
	Slug   *string    `json:"slug,omitempty"`
	Status *JobStatus `json:"status,omitempty"`
	Tags   *[]string  `json:"tags,omitempty"`
}

// Apply merges the patch into j and refreshes UpdatedAt.
func (p JobPatch) Apply(j Job, now time.Time) Job {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Slug != nil {
		j.Slug = *p.Slug
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Tags != nil {
		j.Tags = slices.Clone(*p.Tags)
	}
	j.UpdatedAt = At(now)
	return j
}

// Positioned returns j stamped with a new board position.
func (j Job) Positioned(order int, now time.Time) Job {
	j.Order = order
	j.UpdatedAt = At(now)
	return j
}

// JobFilter narrows GET /api/jobs.
type JobFilter struct {
	Status   JobStatus
	Search   string
	Page     int
	PageSize int
	Sort     string
}
