package domain

import (
	"slices"
	"time"
)

// QuestionType selects how a question is answered.
type QuestionType string

const (
	QuestionSingle  QuestionType = "single-choice"
	QuestionMulti   QuestionType = "multi-choice"
	QuestionShort   QuestionType = "short-text"
	QuestionLong    QuestionType = "long-text"
	QuestionNumeric QuestionType = "numeric"
	QuestionFile    QuestionType = "file-upload"
)

// Question is one prompt of an assessment section. The client stores it
// verbatim; rendering and conditional logic live with the caller.
type Question struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Prompt    string       `json:"prompt"`
	Options   []string     `json:"options,omitempty"`
	Required  bool         `json:"required,omitempty"`
	MinValue  *float64     `json:"minValue,omitempty"`
	MaxValue  *float64     `json:"maxValue,omitempty"`
	MaxLength int          `json:"maxLength,omitempty"`
	ShowIf    *Condition   `json:"showIf,omitempty"`
}

// Condition shows a question only when another question has a given answer.
type Condition struct {
	QuestionID string `json:"questionId"`
	Equals     string `json:"equals"`
}

// Section groups questions.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Assessment is the question set attached to a job.
type Assessment struct {
	ID        string    `json:"id" validate:"required"`
	JobID     string    `json:"jobId" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Sections  []Section `json:"sections"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Key implements Record.
func (a Assessment) Key() string { return a.ID }

// NewAssessment is the caller-supplied part of an assessment.
type NewAssessment struct {
	JobID    string    `json:"jobId"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections,omitempty"`
}

// Build completes a NewAssessment.
func (n NewAssessment) Build(id string, now time.Time) Assessment {
	return Assessment{
		ID:        id,
		JobID:     n.JobID,
		Title:     n.Title,
		Sections:  slices.Clone(n.Sections),
		CreatedAt: At(now),
		UpdatedAt: At(now),
	}
}

// Replaced returns next as a full replacement of a, keeping a's identity and
// creation time.
func (a Assessment) Replaced(next Assessment, now time.Time) Assessment {
	next.ID = a.ID
	next.CreatedAt = a.CreatedAt
	next.UpdatedAt = At(now)
	return next
}

// AssessmentResponse is a candidate's submitted answers.
type AssessmentResponse struct {
	ID           string            `json:"id"`
	AssessmentID string            `json:"assessmentId"`
	CandidateID  string            `json:"candidateId"`
	Answers      map[string]string `json:"answers"`
	SubmittedAt  Timestamp         `json:"submittedAt"`
}
