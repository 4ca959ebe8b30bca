package redirect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StatusSource answers whether the user's onboarding is complete
type StatusSource interface {
	OnboardingStatus(ctx context.Context) (bool, error)
}

// Poller fetches completeness on start and on a fixed schedule and feeds
// the results to an Observer. Results of superseded or stopped checks are
// dropped
type Poller struct {
	source   StatusSource
	observer *Observer
	interval time.Duration
	logger   *zap.Logger

	seq atomic.Uint64

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

func NewPoller(source StatusSource, observer *Observer, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		source:   source,
		observer: observer,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the first check and schedules the rest
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return errors.New("poller already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), func() { p.Check(ctx) }); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("schedule status check: %w", err)
	}
	p.cron = c
	p.started = true
	p.mu.Unlock()

	p.observer.Observe(Loading())
	p.Check(ctx)
	c.Start()
	return nil
}

// Check fetches completeness once
func (p *Poller) Check(ctx context.Context) {
	seq := p.seq.Add(1)

	complete, err := p.source.OnboardingStatus(ctx)
	if seq != p.seq.Load() || ctx.Err() != nil {
		p.logger.Debug("Dropping stale onboarding status", zap.Uint64("seq", seq))
		return
	}

	if err != nil {
		p.logger.Warn("Onboarding status check failed", zap.Error(err))
		p.observer.Observe(Failed(err))
		return
	}
	p.observer.Observe(Resolved(complete))
}

// Stop cancels the schedule and discards in-flight results
func (p *Poller) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.started = false
	p.mu.Unlock()

	p.seq.Add(1)
	if c != nil {
		<-c.Stop().Done()
	}
}
