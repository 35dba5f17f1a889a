package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/domain"
)

// kindWeight is the weight a collection-wide operation takes from a kind's
// semaphore. Entity operations take 1, so a reorder waits for every
// in-flight entity operation of its kind and blocks new ones while it runs.
const kindWeight = 1 << 20

// sequencer serializes operations per entity id. Waiters are served in
// arrival order.
type sequencer struct {
	mu    sync.Mutex
	kinds map[domain.Kind]*semaphore.Weighted
	keys  map[string]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
	// renamed is the server id a create settled under. Waiters that queued
	// on the local id move over to it.
	renamed string
}

func newSequencer() *sequencer {
	return &sequencer{
		kinds: make(map[domain.Kind]*semaphore.Weighted),
		keys:  make(map[string]*keyLock),
	}
}

func (s *sequencer) kind(k domain.Kind) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.kinds[k]
	if !ok {
		sem = semaphore.NewWeighted(kindWeight)
		s.kinds[k] = sem
	}
	return sem
}

func (s *sequencer) ref(key string) *keyLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	kl, ok := s.keys[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		s.keys[key] = kl
	}
	kl.refs++
	return kl
}

func (s *sequencer) unref(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kl := s.keys[key]
	kl.refs--
	if kl.refs == 0 {
		delete(s.keys, key)
	}
}

// entity waits until no other operation holds (k, id) and no collection-wide
// operation holds k. When the holder it waited on was a create that the
// server gave a new id, it follows the rename and returns that id.
func (s *sequencer) entity(ctx context.Context, k domain.Kind, id string) (string, func(), error) {
	for {
		ks := s.kind(k)
		if err := ks.Acquire(ctx, 1); err != nil {
			return "", nil, aborted(err)
		}

		key := entityKey(k, id)
		kl := s.ref(key)
		if err := kl.sem.Acquire(ctx, 1); err != nil {
			s.unref(key)
			ks.Release(1)
			return "", nil, aborted(err)
		}
		release := func() {
			kl.sem.Release(1)
			s.unref(key)
			ks.Release(1)
		}

		s.mu.Lock()
		next := kl.renamed
		s.mu.Unlock()
		if next == "" || next == id {
			return id, release, nil
		}
		release()
		id = next
	}
}

// rename records that the record held under (k, from) now lives under to.
// It is called by the holder of (k, from) before it releases.
func (s *sequencer) rename(k domain.Kind, from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kl, ok := s.keys[entityKey(k, from)]; ok {
		kl.renamed = to
	}
}

// refs reports how many operations hold or wait on (k, id).
func (s *sequencer) refs(k domain.Kind, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kl, ok := s.keys[entityKey(k, id)]; ok {
		return kl.refs
	}
	return 0
}

func entityKey(k domain.Kind, id string) string {
	return string(k) + "/" + id
}

// collection waits for exclusive use of every entity of kind k.
func (s *sequencer) collection(ctx context.Context, k domain.Kind) (func(), error) {
	ks := s.kind(k)
	if err := ks.Acquire(ctx, kindWeight); err != nil {
		return nil, aborted(err)
	}
	return func() { ks.Release(kindWeight) }, nil
}

func aborted(err error) error {
	return fmt.Errorf("%w: waiting for prior operation: %w", api.ErrAborted, err)
}
