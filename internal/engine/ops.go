package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/state"
)

// Operation names used as LoadingState and ErrorState keys.
const (
	OpCreateJob                = "createJob"
	OpUpdateJob                = "updateJob"
	OpDeleteJob                = "deleteJob"
	OpReorderJobs              = "reorderJobs"
	OpCreateCandidate          = "createCandidate"
	OpUpdateCandidate          = "updateCandidate"
	OpDeleteCandidate          = "deleteCandidate"
	OpCreateAssessment         = "createAssessment"
	OpUpdateAssessment         = "updateAssessment"
	OpDeleteAssessment         = "deleteAssessment"
	OpSubmitAssessmentResponse = "submitAssessmentResponse"
	OpAddNote                  = "addNote"
	OpFetchTimeline            = "fetchTimeline"
)

// CreateJob appends a job at the end of the board.
func (e *Engine) CreateJob(ctx context.Context, in domain.NewJob) (domain.Job, error) {
	var out domain.Job
	err := e.track(OpCreateJob, func() error {
		var err error
		out, err = create(ctx, e, jobBinding,
			func(c *state.Collections, id string, now time.Time) domain.Job {
				return in.Build(id, len(c.Jobs), now)
			},
			e.remote.CreateJob)
		return err
	})
	return out, err
}

// UpdateJob merges patch into the job with id.
func (e *Engine) UpdateJob(ctx context.Context, id string, patch domain.JobPatch) (domain.Job, error) {
	var out domain.Job
	err := e.track(OpUpdateJob, func() error {
		var err error
		out, err = update(ctx, e, jobBinding, id, patch.Apply,
			func(ctx context.Context, next domain.Job) (domain.Job, error) {
				return e.remote.PatchJob(ctx, next.ID, patch)
			})
		return err
	})
	return out, err
}

// DeleteJob removes the job with id.
func (e *Engine) DeleteJob(ctx context.Context, id string) error {
	return e.track(OpDeleteJob, func() error {
		return remove(ctx, e, jobBinding, id, e.remote.DeleteJob)
	})
}

// ReorderJobs moves the job at from to to and renumbers every job's Order.
func (e *Engine) ReorderJobs(ctx context.Context, from, to int) error {
	return e.track(OpReorderJobs, func() error {
		return reorder(ctx, e, jobBinding, from, to, domain.Job.Positioned, e.remote.ReorderJobs)
	})
}

// CreateCandidate adds a candidate.
func (e *Engine) CreateCandidate(ctx context.Context, in domain.NewCandidate) (domain.Candidate, error) {
	var out domain.Candidate
	err := e.track(OpCreateCandidate, func() error {
		var err error
		out, err = create(ctx, e, candidateBinding,
			func(_ *state.Collections, id string, now time.Time) domain.Candidate {
				return in.Build(id, now)
			},
			e.remote.CreateCandidate)
		return err
	})
	return out, err
}

// UpdateCandidate merges patch into the candidate with id.
func (e *Engine) UpdateCandidate(ctx context.Context, id string, patch domain.CandidatePatch) (domain.Candidate, error) {
	var out domain.Candidate
	err := e.track(OpUpdateCandidate, func() error {
		var err error
		out, err = update(ctx, e, candidateBinding, id, patch.Apply,
			func(ctx context.Context, next domain.Candidate) (domain.Candidate, error) {
				return e.remote.PatchCandidate(ctx, next.ID, patch)
			})
		return err
	})
	return out, err
}

// MoveCandidate sets a candidate's pipeline stage.
func (e *Engine) MoveCandidate(ctx context.Context, id string, stage domain.Stage) (domain.Candidate, error) {
	if domain.StageIndex(stage) < 0 {
		err := e.track(OpUpdateCandidate, func() error {
			return fmt.Errorf("%w %q", ErrUnknownStage, stage)
		})
		return domain.Candidate{}, err
	}
	return e.UpdateCandidate(ctx, id, domain.CandidatePatch{Stage: &stage})
}

// DeleteCandidate removes the candidate with id.
func (e *Engine) DeleteCandidate(ctx context.Context, id string) error {
	return e.track(OpDeleteCandidate, func() error {
		return remove(ctx, e, candidateBinding, id, e.remote.DeleteCandidate)
	})
}

// CreateAssessment adds an assessment.
func (e *Engine) CreateAssessment(ctx context.Context, in domain.NewAssessment) (domain.Assessment, error) {
	var out domain.Assessment
	err := e.track(OpCreateAssessment, func() error {
		var err error
		out, err = create(ctx, e, assessmentBinding,
			func(_ *state.Collections, id string, now time.Time) domain.Assessment {
				return in.Build(id, now)
			},
			e.remote.CreateAssessment)
		return err
	})
	return out, err
}

// UpdateAssessment replaces the assessment with id by next, keeping its
// identity and creation time.
func (e *Engine) UpdateAssessment(ctx context.Context, id string, next domain.Assessment) (domain.Assessment, error) {
	var out domain.Assessment
	err := e.track(OpUpdateAssessment, func() error {
		var err error
		out, err = update(ctx, e, assessmentBinding, id,
			func(current domain.Assessment, now time.Time) domain.Assessment {
				return current.Replaced(next, now)
			},
			e.remote.PutAssessment)
		return err
	})
	return out, err
}

// DeleteAssessment removes the assessment with id.
func (e *Engine) DeleteAssessment(ctx context.Context, id string) error {
	return e.track(OpDeleteAssessment, func() error {
		return remove(ctx, e, assessmentBinding, id, e.remote.DeleteAssessment)
	})
}

// SubmitAssessmentResponse sends a candidate's answers. Responses have no
// local collection, so nothing is applied optimistically; on success the
// event is appended to the candidate's cached timeline.
func (e *Engine) SubmitAssessmentResponse(ctx context.Context, resp domain.AssessmentResponse) (domain.AssessmentResponse, error) {
	var out domain.AssessmentResponse
	err := e.track(OpSubmitAssessmentResponse, func() error {
		if resp.AssessmentID == "" || resp.CandidateID == "" {
			return fmt.Errorf("assessment response needs assessment and candidate ids")
		}
		if resp.ID == "" {
			resp.ID = e.newID()
		}
		now := e.now()
		resp.SubmittedAt = resp.SubmittedAt.OrNow(now)

		var err error
		out, err = e.remote.SubmitAssessmentResponse(e.idempotent(ctx), resp)
		if err != nil {
			return err
		}
		if out.ID == "" {
			out = resp
		}
		e.state.AppendTimeline(resp.CandidateID, domain.TimelineEvent{
			ID:          out.ID,
			CandidateID: resp.CandidateID,
			Kind:        domain.TimelineAssessment,
			CreatedAt:   out.SubmittedAt.OrNow(now),
		})
		return nil
	})
	return out, err
}

// AddNote posts a note on a known candidate and appends it to the cached
// timeline.
func (e *Engine) AddNote(ctx context.Context, candidateID, body string) (domain.Note, error) {
	var out domain.Note
	err := e.track(OpAddNote, func() error {
		body := strings.TrimSpace(body)
		if body == "" {
			return fmt.Errorf("note body is empty")
		}
		if indexOf(e.state.Collections().Candidates, candidateID) < 0 {
			return fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
		}
		note := domain.Note{
			ID:          e.newID(),
			CandidateID: candidateID,
			Body:        body,
			Mentions:    domain.Mentions(body),
			CreatedAt:   domain.At(e.now()),
		}

		var err error
		out, err = e.remote.AddNote(e.idempotent(ctx), candidateID, note)
		if err != nil {
			return err
		}
		if out.ID == "" {
			out = note
		}
		e.state.AppendTimeline(candidateID, domain.TimelineEvent{
			ID:          out.ID,
			CandidateID: candidateID,
			Kind:        domain.TimelineNote,
			Note:        out.Body,
			CreatedAt:   out.CreatedAt.OrNow(e.now()),
		})
		return nil
	})
	return out, err
}

// Timeline fetches a candidate's history and caches it in state.
func (e *Engine) Timeline(ctx context.Context, candidateID string) ([]domain.TimelineEvent, error) {
	var out []domain.TimelineEvent
	err := e.track(OpFetchTimeline, func() error {
		var err error
		out, err = e.remote.FetchTimeline(ctx, candidateID)
		if err != nil {
			return err
		}
		e.state.SetTimeline(candidateID, out)
		return nil
	})
	return out, err
}

func (e *Engine) idempotent(ctx context.Context) context.Context {
	return api.WithIdempotencyKey(ctx, e.newID())
}
