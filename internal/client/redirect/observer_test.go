package redirect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const introPath = "/dashboard/onboarding/intro"

// fixedNavigator never changes its pathname, even on Replace
type fixedNavigator struct {
	mu       sync.Mutex
	path     string
	replaced []string
}

func (f *fixedNavigator) Pathname() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

func (f *fixedNavigator) Replace(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = append(f.replaced, path)
}

func (f *fixedNavigator) Replaced() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.replaced...)
}

func TestNoRedirectOnOnboardingPath(t *testing.T) {
	for _, path := range []string{"/dashboard/onboarding", "/dashboard/onboarding/teams", introPath} {
		nav := &fixedNavigator{path: path}
		o := NewObserver(nav, introPath, zap.NewNop())

		o.Observe(Loading())
		o.Observe(Resolved(false))
		o.Observe(Resolved(false))

		assert.Empty(t, nav.Replaced(), path)
		assert.Equal(t, StateChecking, o.State())
	}
}

func TestIncompleteRedirectsExactlyOnce(t *testing.T) {
	nav := &fixedNavigator{path: "/dashboard"}
	o := NewObserver(nav, introPath, zap.NewNop())

	o.Observe(Loading())
	o.Observe(Resolved(false))
	o.Observe(Resolved(false))
	o.Observe(Resolved(false))

	assert.Equal(t, []string{introPath}, nav.Replaced())
	assert.Equal(t, StateRedirectNeeded, o.State())
}

func TestHistoryReplaceNotPush(t *testing.T) {
	nav := NewHistoryNavigator("/", nil)
	nav.Push("/dashboard")
	o := NewObserver(nav, introPath, zap.NewNop())

	o.Observe(Resolved(false))
	o.Observe(Resolved(false))

	assert.Equal(t, []string{"/", introPath}, nav.Entries())
	assert.Equal(t, 1, nav.Replacements())
	assert.Equal(t, StateChecking, o.State())
}

func TestRedirectsAgainAfterNavigatingBack(t *testing.T) {
	nav := NewHistoryNavigator("/dashboard", nil)
	o := NewObserver(nav, introPath, zap.NewNop())

	o.Observe(Loading())
	o.Observe(Resolved(false))
	require.Equal(t, 1, nav.Replacements())

	nav.Push("/dashboard")
	o.Observe(Resolved(false))
	o.Observe(Resolved(false))
	o.Observe(Resolved(false))

	assert.Equal(t, 2, nav.Replacements())
	assert.Equal(t, introPath, nav.Pathname())
	// later results on the intro page only re-enter checking
	assert.Equal(t, StateChecking, o.State())
}

func TestNoRedirectWhileLoadingOrOnError(t *testing.T) {
	nav := &fixedNavigator{path: "/dashboard"}
	o := NewObserver(nav, introPath, zap.NewNop())

	assert.Equal(t, StateChecking, o.Observe(Loading()))
	assert.Equal(t, StateError, o.Observe(Failed(errors.New("unreachable"))))

	assert.Empty(t, nav.Replaced())
}

func TestCompleteIsSatisfied(t *testing.T) {
	nav := &fixedNavigator{path: "/dashboard"}
	o := NewObserver(nav, introPath, zap.NewNop())

	assert.Equal(t, StateSatisfied, o.Observe(Resolved(true)))
	assert.Empty(t, nav.Replaced())

	// completeness lost later still redirects once
	assert.Equal(t, StateRedirectNeeded, o.Observe(Resolved(false)))
	assert.Equal(t, []string{introPath}, nav.Replaced())
}

type stubSource struct {
	mu       sync.Mutex
	complete bool
	err      error
	calls    int
}

func (s *stubSource) OnboardingStatus(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.complete, s.err
}

func TestPollerChecksOnStart(t *testing.T) {
	nav := &fixedNavigator{path: "/dashboard"}
	o := NewObserver(nav, introPath, zap.NewNop())
	p := NewPoller(&stubSource{}, o, time.Hour, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Equal(t, []string{introPath}, nav.Replaced())
	assert.Error(t, p.Start(context.Background()))
}

func TestPollerErrorDoesNotRedirect(t *testing.T) {
	nav := &fixedNavigator{path: "/dashboard"}
	o := NewObserver(nav, introPath, zap.NewNop())
	p := NewPoller(&stubSource{err: errors.New("503")}, o, time.Hour, zap.NewNop())

	p.Check(context.Background())

	assert.Equal(t, StateError, o.State())
	assert.Empty(t, nav.Replaced())
}

type blockingSource struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingSource) OnboardingStatus(ctx context.Context) (bool, error) {
	close(b.started)
	<-b.release
	return false, nil
}

func TestPollerDropsResultAfterStop(t *testing.T) {
	nav := &fixedNavigator{path: "/dashboard"}
	o := NewObserver(nav, introPath, zap.NewNop())
	source := &blockingSource{release: make(chan struct{}), started: make(chan struct{})}
	p := NewPoller(source, o, time.Hour, zap.NewNop())

	done := make(chan struct{})
	go func() {
		p.Check(context.Background())
		close(done)
	}()
	<-source.started

	p.Stop()
	close(source.release)
	<-done

	assert.Empty(t, nav.Replaced())
	assert.Equal(t, StateChecking, o.State())
}
