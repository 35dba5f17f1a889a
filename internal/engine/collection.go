package engine

import (
	"slices"

	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/state"
)

// binding ties a record type to its slot in state.Collections.
type binding[T domain.Record] struct {
	kind domain.Kind
	get  func(c *state.Collections) []T
	set  func(c *state.Collections, items []T)
}

var (
	jobBinding = binding[domain.Job]{
		kind: domain.KindJob,
		get:  func(c *state.Collections) []domain.Job { return c.Jobs },
		set:  func(c *state.Collections, items []domain.Job) { c.Jobs = items },
	}
	candidateBinding = binding[domain.Candidate]{
		kind: domain.KindCandidate,
		get:  func(c *state.Collections) []domain.Candidate { return c.Candidates },
		set:  func(c *state.Collections, items []domain.Candidate) { c.Candidates = items },
	}
	assessmentBinding = binding[domain.Assessment]{
		kind: domain.KindAssessment,
		get:  func(c *state.Collections) []domain.Assessment { return c.Assessments },
		set:  func(c *state.Collections, items []domain.Assessment) { c.Assessments = items },
	}
)

// The helpers below never write into their input; each returns a fresh
// slice so earlier readers keep a consistent view.

func indexOf[T domain.Record](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.Key() == id })
}

func withAppended[T any](items []T, item T) []T {
	return append(slices.Clip(items), item)
}

func withReplaced[T any](items []T, idx int, item T) []T {
	out := slices.Clone(items)
	out[idx] = item
	return out
}

func withRemoved[T any](items []T, idx int) []T {
	return slices.Concat(items[:idx], items[idx+1:])
}

// withInserted puts item at idx, clamped to [0, len(items)].
func withInserted[T any](items []T, idx int, item T) []T {
	idx = max(0, min(idx, len(items)))
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:idx]...)
	out = append(out, item)
	return append(out, items[idx:]...)
}

// moved extracts the element at from and reinserts it at to.
func moved[T any](items []T, from, to int) []T {
	item := items[from]
	rest := withRemoved(items, from)
	return withInserted(rest, to, item)
}
