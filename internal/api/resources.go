package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/five82/hireboard/internal/domain"
)

// Remote is the set of calls the engine and the reconciliation service make.
// It is implemented by *Client and replaced by fakes in tests.
type Remote interface {
	ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	CreateJob(ctx context.Context, job domain.Job) (domain.Job, error)
	PatchJob(ctx context.Context, id string, patch domain.JobPatch) (domain.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ReorderJobs(ctx context.Context, fromIndex, toIndex int) error

	ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error)
	CreateCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error)
	PatchCandidate(ctx context.Context, id string, patch domain.CandidatePatch) (domain.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error

	ListAssessments(ctx context.Context, jobID string) ([]domain.Assessment, error)
	CreateAssessment(ctx context.Context, a domain.Assessment) (domain.Assessment, error)
	PutAssessment(ctx context.Context, a domain.Assessment) (domain.Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error
	SubmitAssessmentResponse(ctx context.Context, r domain.AssessmentResponse) (domain.AssessmentResponse, error)

	AddNote(ctx context.Context, candidateID string, note domain.Note) (domain.Note, error)
	FetchTimeline(ctx context.Context, candidateID string) ([]domain.TimelineEvent, error)
}

// Ensure Client implements Remote at compile time.
var _ Remote = (*Client)(nil)

// ListJobs fetches jobs matching filter.
func (c *Client) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	values := url.Values{}
	if filter.Status != "" {
		values.Set("status", string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		values.Set("search", search)
	}
	if filter.Page > 0 {
		values.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(filter.PageSize))
	}
	if filter.Sort != "" {
		values.Set("sort", filter.Sort)
	}
	var jobs []domain.Job
	if err := c.Invoke(ctx, http.MethodGet, withQuery("/api/jobs", values), nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CreateJob posts job and returns the server's canonical record.
func (c *Client) CreateJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	var out domain.Job
	err := c.Invoke(ctx, http.MethodPost, "/api/jobs", job, &out)
	return out, err
}

// PatchJob sends a partial update.
func (c *Client) PatchJob(ctx context.Context, id string, patch domain.JobPatch) (domain.Job, error) {
	var out domain.Job
	err := c.Invoke(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id), patch, &out)
	return out, err
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.Invoke(ctx, http.MethodDelete, "/api/jobs/"+url.PathEscape(id), nil, nil)
}

type reorderRequest struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// ReorderJobs moves the job at fromIndex to toIndex on the server's board.
func (c *Client) ReorderJobs(ctx context.Context, fromIndex, toIndex int) error {
	return c.Invoke(ctx, http.MethodPatch, "/api/jobs/reorder", reorderRequest{FromIndex: fromIndex, ToIndex: toIndex}, nil)
}

// ListCandidates fetches candidates matching filter.
func (c *Client) ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error) {
	values := url.Values{}
	if filter.Stage != "" {
		values.Set("stage", string(filter.Stage))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		values.Set("search", search)
	}
	if filter.JobID != "" {
		values.Set("jobId", filter.JobID)
	}
	var candidates []domain.Candidate
	if err := c.Invoke(ctx, http.MethodGet, withQuery("/api/candidates", values), nil, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// CreateCandidate posts a candidate.
func (c *Client) CreateCandidate(ctx context.Context, cand domain.Candidate) (domain.Candidate, error) {
	var out domain.Candidate
	err := c.Invoke(ctx, http.MethodPost, "/api/candidates", cand, &out)
	return out, err
}

// PatchCandidate sends a partial update.
func (c *Client) PatchCandidate(ctx context.Context, id string, patch domain.CandidatePatch) (domain.Candidate, error) {
	var out domain.Candidate
	err := c.Invoke(ctx, http.MethodPatch, "/api/candidates/"+url.PathEscape(id), patch, &out)
	return out, err
}

// DeleteCandidate removes a candidate.
func (c *Client) DeleteCandidate(ctx context.Context, id string) error {
	return c.Invoke(ctx, http.MethodDelete, "/api/candidates/"+url.PathEscape(id), nil, nil)
}

// ListAssessments fetches assessments, optionally for one job.
func (c *Client) ListAssessments(ctx context.Context, jobID string) ([]domain.Assessment, error) {
	values := url.Values{}
	if jobID != "" {
		values.Set("jobId", jobID)
	}
	var assessments []domain.Assessment
	if err := c.Invoke(ctx, http.MethodGet, withQuery("/api/assessments", values), nil, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

// CreateAssessment posts an assessment.
func (c *Client) CreateAssessment(ctx context.Context, a domain.Assessment) (domain.Assessment, error) {
	var out domain.Assessment
	err := c.Invoke(ctx, http.MethodPost, "/api/assessments", a, &out)
	return out, err
}

// PutAssessment replaces an assessment wholesale.
func (c *Client) PutAssessment(ctx context.Context, a domain.Assessment) (domain.Assessment, error) {
	var out domain.Assessment
	err := c.Invoke(ctx, http.MethodPut, "/api/assessments/"+url.PathEscape(a.ID), a, &out)
	return out, err
}

// DeleteAssessment removes an assessment.
func (c *Client) DeleteAssessment(ctx context.Context, id string) error {
	return c.Invoke(ctx, http.MethodDelete, "/api/assessments/"+url.PathEscape(id), nil, nil)
}

// SubmitAssessmentResponse records a candidate's answers.
func (c *Client) SubmitAssessmentResponse(ctx context.Context, r domain.AssessmentResponse) (domain.AssessmentResponse, error) {
	var out domain.AssessmentResponse
	err := c.Invoke(ctx, http.MethodPatch, "/api/assessment-responses/"+url.PathEscape(r.ID), r, &out)
	return out, err
}

// AddNote posts a note on a candidate.
func (c *Client) AddNote(ctx context.Context, candidateID string, note domain.Note) (domain.Note, error) {
	var out domain.Note
	err := c.Invoke(ctx, http.MethodPost, "/api/candidates/"+url.PathEscape(candidateID)+"/notes", note, &out)
	return out, err
}

// FetchTimeline returns a candidate's history, oldest first.
func (c *Client) FetchTimeline(ctx context.Context, candidateID string) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	if err := c.Invoke(ctx, http.MethodGet, "/api/candidates/"+url.PathEscape(candidateID)+"/timeline", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Ping makes the cheapest read the API offers; the connectivity watcher
// uses it as a probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.Invoke(ctx, http.MethodGet, "/api/jobs?pageSize=1", nil, nil)
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
