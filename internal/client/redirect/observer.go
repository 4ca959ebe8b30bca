// Package redirect re-validates onboarding completeness against the server
// after a page has loaded and sends incomplete sessions to onboarding
package redirect

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/pkg/workflows"
)

// State is the observer state
type State string

const (
	StateChecking       State = "checking"
	StateRedirectNeeded State = "redirect-needed"
	StateSatisfied      State = "satisfied"
	StateError          State = "error"
)

const onboardingSegment = "onboarding"

// Navigator is the client-side history. Replace swaps the current entry
type Navigator interface {
	Pathname() string
	Replace(path string)
}

// Result is one state of the completeness query
type Result struct {
	Loading  bool
	Complete bool
	Err      error
}

func Loading() Result               { return Result{Loading: true} }
func Resolved(complete bool) Result { return Result{Complete: complete} }
func Failed(err error) Result       { return Result{Err: err} }

var transitions = map[State][]State{
	StateChecking:       {StateChecking, StateRedirectNeeded, StateSatisfied, StateError},
	StateRedirectNeeded: {StateRedirectNeeded, StateChecking},
	StateSatisfied:      {StateSatisfied, StateChecking},
	StateError:          {StateError, StateChecking},
}

// Observer is driven by completeness query results. The only transition with
// a side effect is checking -> redirect-needed, which replaces the current
// history entry with the onboarding intro page
type Observer struct {
	machine   *workflows.StateMachine[State]
	navigator Navigator
	introPath string
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	landedOn string // pathname right after the last redirect
}

func NewObserver(navigator Navigator, introPath string, logger *zap.Logger) *Observer {
	return &Observer{
		machine:   workflows.NewStateMachine(transitions),
		navigator: navigator,
		introPath: introPath,
		logger:    logger,
		state:     StateChecking,
	}
}

func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Observe feeds one query result into the observer
func (o *Observer) Observe(result Result) State {
	o.mu.Lock()
	defer o.mu.Unlock()

	// navigating away from the redirect target starts a new check
	if o.state == StateRedirectNeeded && o.navigator.Pathname() != o.landedOn {
		o.move(StateChecking)
	}

	next := o.next(result)
	if next == o.state {
		return o.state
	}

	// every settled result is evaluated from checking
	if o.state != StateChecking && next != StateChecking {
		o.move(StateChecking)
	}
	o.move(next)

	if o.state == StateRedirectNeeded {
		o.logger.Info("Onboarding incomplete, redirecting", zap.String("target", o.introPath))
		o.navigator.Replace(o.introPath)
		o.landedOn = o.navigator.Pathname()
	}
	return o.state
}

func (o *Observer) next(result Result) State {
	switch {
	case result.Loading:
		return StateChecking
	case result.Err != nil:
		return StateError
	case result.Complete:
		return StateSatisfied
	case strings.Contains(o.navigator.Pathname(), onboardingSegment):
		// already onboarding
		return StateChecking
	default:
		return StateRedirectNeeded
	}
}

func (o *Observer) move(to State) {
	next, err := o.machine.Transition(o.state, to)
	if err != nil {
		o.logger.Error("Rejected redirect state change", zap.Error(err))
		return
	}
	o.state = next
}
