package reconcile

import (
	"fmt"
	"time"

	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/state"
)

// normalize replaces missing or unparseable timestamps with now. Decoding
// already turned unparseable values into zero timestamps.
func normalize(cols *state.Collections, now time.Time) {
	for i := range cols.Jobs {
		j := &cols.Jobs[i]
		j.CreatedAt = j.CreatedAt.OrNow(now)
		j.UpdatedAt = j.UpdatedAt.OrNow(now)
	}
	for i := range cols.Candidates {
		c := &cols.Candidates[i]
		c.CreatedAt = c.CreatedAt.OrNow(now)
		c.UpdatedAt = c.UpdatedAt.OrNow(now)
	}
	for i := range cols.Assessments {
		a := &cols.Assessments[i]
		a.CreatedAt = a.CreatedAt.OrNow(now)
		a.UpdatedAt = a.UpdatedAt.OrNow(now)
	}
}

// validate accepts a non-empty, fully valid job list and a candidate list
// that is empty or fully valid. Assessments are not checked.
func validate(cols state.Collections) error {
	if len(cols.Jobs) == 0 {
		return fmt.Errorf("%w: no jobs", ErrStoreInvalid)
	}
	if err := domain.ValidateAll(cols.Jobs); err != nil {
		return fmt.Errorf("%w: jobs: %w", ErrStoreInvalid, err)
	}
	if err := domain.ValidateAll(cols.Candidates); err != nil {
		return fmt.Errorf("%w: candidates: %w", ErrStoreInvalid, err)
	}
	return nil
}
