package setupstate

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"perfsuite/dashboard/dashboard-backend/internal/client"
	"perfsuite/dashboard/dashboard-backend/internal/client/stores"
	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

type fixture struct {
	config     *stores.ConfigStore
	teams      *stores.CollectionStore[client.Team]
	performers *stores.CollectionStore[client.Performer]
	teamItems  []client.Team
	jar        http.CookieJar
	origin     *url.URL
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{config: stores.NewConfigStore(nil)}
	f.teams = stores.NewCollectionStore("teams", func(context.Context) ([]client.Team, error) {
		return f.teamItems, nil
	}, time.Minute, zap.NewNop())
	f.performers = stores.NewCollectionStore("performers", func(context.Context) ([]client.Performer, error) {
		return []client.Performer{{ID: "p1"}}, nil
	}, time.Minute, zap.NewNop())

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.jar = jar
	f.origin, err = url.Parse("http://localhost:8080")
	require.NoError(t, err)
	return f
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	require.NoError(t, f.teams.Refetch(context.Background()))
	require.NoError(t, f.performers.Refetch(context.Background()))
}

func (f *fixture) synchronizer(storage LocalStorage, runtime Runtime, logger *zap.Logger) *Synchronizer {
	return NewSynchronizer(f.config, f.teams, f.performers, storage, JarCookies{Jar: f.jar, Origin: f.origin}, runtime, logger)
}

func (f *fixture) cookie() (setup.Projection, bool) {
	for _, c := range f.jar.Cookies(f.origin) {
		if c.Name == setup.CookieName {
			return setup.DecodeCookieValue(c.Value), true
		}
	}
	return setup.Projection{}, false
}

func TestSyncWritesStorageAndCookie(t *testing.T) {
	f := newFixture(t)
	f.teamItems = []client.Team{{ID: "t1"}}
	f.load(t)
	f.config.SetOrganizationName("Acme")
	f.config.ToggleActivity("sales", "calls")

	storage := NewMemoryStorage(0)
	s := f.synchronizer(storage, Runtime{Browser: true}, zap.NewNop())
	s.Sync()

	want := setup.Projection{OrganizationName: "Acme", HasActivities: true, HasTeams: true, HasPerformers: true}

	got, ok := f.cookie()
	require.True(t, ok)
	assert.Equal(t, want, got)

	raw, ok, err := storage.GetItem(setup.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"organizationName":"Acme","hasActivities":true,"hasTeams":true,"hasPerformers":true}`, raw)
}

func TestSyncSkipsOutsideBrowser(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	storage := NewMemoryStorage(0)

	s := f.synchronizer(storage, Runtime{}, zap.NewNop())
	s.Sync()

	_, ok, _ := storage.GetItem(setup.StorageKey)
	assert.False(t, ok)
	assert.Zero(t, s.Writes())
}

func TestSyncWaitsForCollections(t *testing.T) {
	f := newFixture(t)
	storage := NewMemoryStorage(0)

	s := f.synchronizer(storage, Runtime{Browser: true}, zap.NewNop())
	s.Sync()

	assert.Zero(t, s.Writes())
	_, ok := f.cookie()
	assert.False(t, ok)
}

func TestSyncSkipsIdenticalWrites(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	s := f.synchronizer(NewMemoryStorage(0), Runtime{Browser: true}, zap.NewNop())
	s.Sync()
	s.Sync()
	assert.Equal(t, 1, s.Writes())

	f.config.SetOrganizationName("Acme")
	s.Sync()
	assert.Equal(t, 2, s.Writes())
}

func TestSyncContainsStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	core, logs := observer.New(zapcore.WarnLevel)

	s := f.synchronizer(NewMemoryStorage(8), Runtime{Browser: true}, zap.New(core))
	assert.NotPanics(t, s.Sync)

	require.Equal(t, 1, logs.FilterMessage("Failed to write setup state to local storage").Len())
	_, ok := f.cookie()
	assert.True(t, ok, "cookie is written even when local storage fails")
}

type flakyCookies struct {
	failures int
	next     CookieWriter
}

func (f *flakyCookies) SetCookie(cookie *http.Cookie) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("cookies disabled")
	}
	return f.next.SetCookie(cookie)
}

func TestSyncRetriesAfterCookieFailure(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	core, logs := observer.New(zapcore.WarnLevel)
	cookies := &flakyCookies{failures: 1, next: JarCookies{Jar: f.jar, Origin: f.origin}}

	s := NewSynchronizer(f.config, f.teams, f.performers, NewMemoryStorage(0), cookies, Runtime{Browser: true}, zap.New(core))
	assert.NotPanics(t, s.Sync)

	assert.Equal(t, 1, logs.FilterMessage("Failed to write setup state cookie").Len())
	_, ok := f.cookie()
	assert.False(t, ok)

	s.Sync()

	assert.Equal(t, 2, s.Writes())
	_, ok = f.cookie()
	assert.True(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("Failed to write setup state cookie").Len())
}

func TestSyncRefreshesAgingCookie(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	now := time.Now()

	s := f.synchronizer(NewMemoryStorage(0), Runtime{Browser: true}, zap.NewNop())
	s.now = func() time.Time { return now }
	s.Sync()

	now = now.Add(time.Hour)
	s.Sync()
	assert.Equal(t, 1, s.Writes())

	now = now.Add(setup.CookieLifetime / 2)
	s.Sync()
	assert.Equal(t, 2, s.Writes())
}

func TestStartRefreshesPeriodically(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	var clock atomic.Int64
	clock.Store(time.Now().UnixNano())

	s := f.synchronizer(NewMemoryStorage(0), Runtime{Browser: true}, zap.NewNop())
	s.now = func() time.Time { return time.Unix(0, clock.Load()) }
	s.refreshInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return s.Writes() == 1 }, time.Second, time.Millisecond)

	clock.Add(int64(setup.CookieLifetime))
	require.Eventually(t, func() bool { return s.Writes() == 2 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestStartSyncsOnStoreChanges(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	storage := NewMemoryStorage(0)
	s := f.synchronizer(storage, Runtime{Browser: true}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Writes() == 1 }, time.Second, 5*time.Millisecond)

	f.config.SetOrganizationName("Acme")
	f.teamItems = []client.Team{{ID: "t1"}}
	require.NoError(t, f.teams.Invalidate(ctx))

	require.Eventually(t, func() bool {
		p, ok := f.cookie()
		return ok && p.OrganizationName == "Acme" && p.HasTeams
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestStatusIsMemoized(t *testing.T) {
	f := newFixture(t)
	f.teamItems = []client.Team{{ID: "t1"}}
	f.load(t)
	f.config.Replace("Acme", setup.Activities{"sales": {"calls"}})

	s := f.synchronizer(NewMemoryStorage(0), Runtime{Browser: true}, zap.NewNop())
	first := s.Status()
	second := s.Status()

	assert.Equal(t, first, second)
	assert.True(t, first.IsComplete)
	assert.Equal(t, 1, s.reconciler.Computations())
}

func TestFileStorage(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "state", "storage.json"))

	_, ok, err := storage.GetItem(setup.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, storage.SetItem(setup.StorageKey, `{"hasTeams":true}`))
	value, ok, err := storage.GetItem(setup.StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"hasTeams":true}`, value)
}

func TestProjectionFromOneSnapshot(t *testing.T) {
	snap := storeSnapshot{
		config:     stores.ConfigSnapshot{OrganizationName: "Acme", Activities: setup.Activities{"sales": {"calls"}}},
		teams:      stores.Snapshot[client.Team]{Items: []client.Team{{ID: "t1"}}, Resolved: true},
		performers: stores.Snapshot[client.Performer]{Resolved: true},
	}

	assert.Equal(t, setup.Projection{
		OrganizationName: "Acme",
		HasActivities:    true,
		HasTeams:         true,
	}, snap.projection())
}
