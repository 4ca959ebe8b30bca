// Package setupstate mirrors the client's setup state into local storage and
// the setup-state cookie read by the route gate
package setupstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/client"
	"perfsuite/dashboard/dashboard-backend/internal/client/stores"
	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

// Runtime describes where the synchronizer runs. Without a browser context
// (server-side rendering) there is no storage or cookie to write
type Runtime struct {
	Browser bool
	Secure  bool
}

// Synchronizer is the only writer of the setup-state projection
type Synchronizer struct {
	config     *stores.ConfigStore
	teams      *stores.CollectionStore[client.Team]
	performers *stores.CollectionStore[client.Performer]
	storage    LocalStorage
	cookies    CookieWriter
	runtime    Runtime
	reconciler *setup.Reconciler
	logger     *zap.Logger
	now        func() time.Time

	dirty           chan struct{}
	refreshInterval time.Duration

	mu        sync.Mutex
	last      string
	lastWrite time.Time
	writes    int
}

// NewSynchronizer creates a synchronizer over the given stores
func NewSynchronizer(
	config *stores.ConfigStore,
	teams *stores.CollectionStore[client.Team],
	performers *stores.CollectionStore[client.Performer],
	storage LocalStorage,
	cookies CookieWriter,
	runtime Runtime,
	logger *zap.Logger,
) *Synchronizer {
	return &Synchronizer{
		config:     config,
		teams:      teams,
		performers: performers,
		storage:    storage,
		cookies:    cookies,
		runtime:    runtime,
		reconciler: setup.NewReconciler(),
		logger:     logger,
		now:        time.Now,
		dirty:      make(chan struct{}, 1),

		refreshInterval: time.Hour,
	}
}

// refreshAfter is the age after which an unchanged projection is rewritten
// so the cookie does not expire under a long-lived session
const refreshAfter = setup.CookieLifetime / 2

// storeSnapshot is one read of every input store. Each store is read under
// its own lock, so an update landing between the reads can still mix two
// states; the change notification it raises triggers another sync
type storeSnapshot struct {
	config     stores.ConfigSnapshot
	teams      stores.Snapshot[client.Team]
	performers stores.Snapshot[client.Performer]
}

func (s *Synchronizer) snapshot() storeSnapshot {
	return storeSnapshot{
		config:     s.config.Snapshot(),
		teams:      s.teams.Snapshot(),
		performers: s.performers.Snapshot(),
	}
}

func (snap storeSnapshot) projection() setup.Projection {
	return setup.Projection{
		OrganizationName: snap.config.OrganizationName,
		HasActivities:    snap.config.Activities.HasSelection(),
		HasTeams:         len(snap.teams.Items) > 0,
		HasPerformers:    len(snap.performers.Items) > 0,
	}
}

// Status derives the setup status from the current stores
func (s *Synchronizer) Status() setup.SetupStatus {
	cfg := s.config.Snapshot()
	teams := s.teams.Snapshot()
	return s.reconciler.Status(setup.Input{
		OrganizationName: cfg.OrganizationName,
		Activities:       cfg.Activities,
		TeamCount:        len(teams.Items),
		ConfigVersion:    cfg.Version,
		TeamsVersion:     teams.Version,
	})
}

// Projection builds the projection from the current stores
func (s *Synchronizer) Projection() setup.Projection {
	return s.snapshot().projection()
}

// Writes reports how many projection writes were attempted
func (s *Synchronizer) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Sync writes the current projection to local storage and the cookie
// Failures are logged and never returned; a failed write is retried on the
// next sync
func (s *Synchronizer) Sync() {
	if !s.runtime.Browser {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	// Collections that never loaded would write a false "no teams"
	if !snap.teams.Resolved || !snap.performers.Resolved {
		return
	}

	projection := snap.projection()
	value, err := projection.Marshal()
	if err != nil {
		s.logger.Warn("Failed to encode setup state", zap.Error(err))
		return
	}
	now := s.now()
	if value == s.last && now.Sub(s.lastWrite) < refreshAfter {
		return
	}

	ok := true
	if err := s.storage.SetItem(setup.StorageKey, value); err != nil {
		s.logger.Warn("Failed to write setup state to local storage", zap.Error(err))
		ok = false
	}

	cookie, err := setup.NewCookie(projection, s.runtime.Secure, now)
	if err == nil {
		err = s.cookies.SetCookie(cookie)
	}
	if err != nil {
		s.logger.Warn("Failed to write setup state cookie", zap.Error(err))
		ok = false
	}

	if ok {
		s.last = value
		s.lastWrite = now
	}
	s.writes++
}

// Start subscribes to the stores and syncs after each batch of changes
// until ctx is done. Changes that arrive while a write runs are coalesced
// A periodic sync keeps an unchanged projection from expiring
func (s *Synchronizer) Start(ctx context.Context) {
	unsubscribers := []func(){
		s.config.Subscribe(s.markDirty),
		s.teams.Subscribe(s.markDirty),
		s.performers.Subscribe(s.markDirty),
	}
	defer func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	s.Sync()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
			s.Sync()
		case <-ticker.C:
			s.Sync()
		}
	}
}

func (s *Synchronizer) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}
