package domain

// Kind names an entity collection held by the client.
type Kind string

const (
	KindJob        Kind = "job"
	KindCandidate  Kind = "candidate"
	KindAssessment Kind = "assessment"
)

// Kinds lists the collections the mutation engine owns, in load order.
var Kinds = []Kind{KindJob, KindCandidate, KindAssessment}

// Record is implemented by every entity stored in a keyed collection.
type Record interface {
	Key() string
}

// JobStatus is the lifecycle status of a job posting.
type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

// Stage is a candidate's position in the hiring pipeline.
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages is the pipeline order used by boards and stage transitions.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

// StageIndex returns the pipeline position of s, or -1 when unknown.
func StageIndex(s Stage) int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// NextStage steps delta positions along the pipeline, clamped to its ends.
func NextStage(s Stage, delta int) Stage {
	idx := StageIndex(s)
	if idx < 0 {
		return StageApplied
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(Stages) {
		idx = len(Stages) - 1
	}
	return Stages[idx]
}
