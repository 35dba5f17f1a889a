package domain

import (
	"strings"
	"time"
)

// Candidate is a person moving through a job's pipeline.
type Candidate struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	JobID     string    `json:"jobId" validate:"required"`
	Stage     Stage     `json:"stage" validate:"required,oneof=applied screen tech offer hired rejected"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Key implements Record.
func (c Candidate) Key() string { return c.ID }

// NewCandidate is the caller-supplied part of a candidate.
type NewCandidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	JobID string `json:"jobId"`
	Stage Stage  `json:"stage,omitempty"`
}

// Build completes a NewCandidate into a Candidate.
func (n NewCandidate) Build(id string, now time.Time) Candidate {
	stage := n.Stage
	if stage == "" {
		stage = StageApplied
	}
	return Candidate{
		ID:        id,
		Name:      strings.TrimSpace(n.Name),
		Email:     strings.ToLower(strings.TrimSpace(n.Email)),
		JobID:     n.JobID,
		Stage:     stage,
		CreatedAt: At(now),
		UpdatedAt: At(now),
	}
}

// CandidatePatch is a partial update; nil fields are left untouched.
type CandidatePatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	JobID *string `json:"jobId,omitempty"`
	Stage *Stage  `json:"stage,omitempty"`
}

// Apply merges the patch into c and refreshes UpdatedAt.
func (p CandidatePatch) Apply(c Candidate, now time.Time) Candidate {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.JobID != nil {
		c.JobID = *p.JobID
	}
	if p.Stage != nil {
		c.Stage = *p.Stage
	}
	c.UpdatedAt = At(now)
	return c
}

// CandidateFilter narrows GET /api/candidates.
type CandidateFilter struct {
	Stage  Stage
	Search string
	JobID  string
}
