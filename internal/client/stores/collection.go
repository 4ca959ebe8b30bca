package stores

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the fetch state of a collection
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// Fetcher loads a whole collection from the server
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Snapshot is a point-in-time copy of a collection store
type Snapshot[T any] struct {
	Items     []T
	State     State
	Err       error
	Resolved  bool // at least one fetch has succeeded
	UpdatedAt time.Time
	Version   uint64
}

// CollectionStore caches a server collection. Data older than the stale time
// is refetched on EnsureFresh; responses to superseded requests are dropped
type CollectionStore[T any] struct {
	name      string
	fetch     Fetcher[T]
	staleTime time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu        sync.RWMutex
	items     []T
	state     State
	err       error
	resolved  bool
	stale     bool
	updatedAt time.Time
	version   uint64
	seq       uint64

	subs listeners
}

// NewCollectionStore creates a store in the loading state
func NewCollectionStore[T any](name string, fetch Fetcher[T], staleTime time.Duration, logger *zap.Logger) *CollectionStore[T] {
	return &CollectionStore[T]{
		name:      name,
		fetch:     fetch,
		staleTime: staleTime,
		now:       time.Now,
		logger:    logger,
		state:     StateLoading,
	}
}

func (s *CollectionStore[T]) Name() string {
	return s.name
}

// Snapshot returns a copy of the current collection
func (s *CollectionStore[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{
		Items:     append([]T(nil), s.items...),
		State:     s.state,
		Err:       s.err,
		Resolved:  s.resolved,
		UpdatedAt: s.updatedAt,
		Version:   s.version,
	}
}

// Count returns the number of cached items. A loading store has none
func (s *CollectionStore[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version returns zero until the first fetch settles
func (s *CollectionStore[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Resolved reports whether the store has loaded at least once
func (s *CollectionStore[T]) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// Subscribe registers fn to run after every settled fetch
func (s *CollectionStore[T]) Subscribe(fn func()) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Refetch loads the collection. If another refetch starts before this one
// returns, this result is discarded
func (s *CollectionStore[T]) Refetch(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	items, err := s.fetch(ctx)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("Discarding superseded fetch", zap.String("store", s.name), zap.Uint64("seq", seq))
		return nil
	}
	if err != nil {
		// previous items stay visible
		s.state = StateError
		s.err = err
	} else {
		s.items = items
		s.state = StateReady
		s.err = nil
		s.resolved = true
		s.stale = false
		s.updatedAt = s.now()
	}
	s.version++
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Failed to fetch collection", zap.String("store", s.name), zap.Error(err))
	}
	s.subs.notify()
	return err
}

// EnsureFresh refetches when the store has never loaded, failed, was
// invalidated or is older than the stale time
func (s *CollectionStore[T]) EnsureFresh(ctx context.Context) error {
	if !s.needsFetch() {
		return nil
	}
	return s.Refetch(ctx)
}

// Invalidate marks the data stale and refetches it
func (s *CollectionStore[T]) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
	return s.Refetch(ctx)
}

// Cancel drops the result of any in-flight fetch
func (s *CollectionStore[T]) Cancel() {
	s.mu.Lock()
	s.seq++
	s.mu.Unlock()
}

func (s *CollectionStore[T]) needsFetch() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady || s.stale {
		return true
	}
	return s.now().Sub(s.updatedAt) > s.staleTime
}
