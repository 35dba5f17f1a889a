package domain

// Note is a free-text comment on a candidate. Mentions hold the @handles
// found in Body.
type Note struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	Body        string    `json:"body"`
	Mentions    []string  `json:"mentions,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// TimelineKind classifies a timeline event.
type TimelineKind string

const (
	TimelineStageChange TimelineKind = "stage-change"
	TimelineNote        TimelineKind = "note"
	TimelineAssessment  TimelineKind = "assessment"
)

// TimelineEvent is one entry in a candidate's history.
type TimelineEvent struct {
	ID          string       `json:"id"`
	CandidateID string       `json:"candidateId"`
	Kind        TimelineKind `json:"kind"`
	FromStage   Stage        `json:"fromStage,omitempty"`
	ToStage     Stage        `json:"toStage,omitempty"`
	Note        string       `json:"note,omitempty"`
	CreatedAt   Timestamp    `json:"createdAt"`
}

// Mentions extracts @handles from body in order of appearance, without duplicates.
func Mentions(body string) []string {
	var out []string
	seen := make(map[string]bool)
	for i := 0; i < len(body); i++ {
		if body[i] != '@' || (i > 0 && isHandleByte(body[i-1])) {
			continue
		}
		j := i + 1
		for j < len(body) && isHandleByte(body[j]) {
			j++
		}
		if j > i+1 {
			handle := body[i+1 : j]
			if !seen[handle] {
				seen[handle] = true
				out = append(out, handle)
			}
		}
		i = j - 1
	}
	return out
}

func isHandleByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
