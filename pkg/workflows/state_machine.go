package workflows

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// StateMachine enforces transitions between states of type S
type StateMachine[S comparable] struct {
	allowedTransitions map[S][]S
}

// NewStateMachine creates a new state machine with allowed transitions
func NewStateMachine[S comparable](transitions map[S][]S) *StateMachine[S] {
	allowed := make(map[S][]S, len(transitions))
	for from, to := range transitions {
		allowed[from] = append([]S(nil), to...)
	}
	return &StateMachine[S]{allowedTransitions: allowed}
}

// CanTransition checks if a transition is allowed
func (sm *StateMachine[S]) CanTransition(from, to S) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// Transition returns to when the move is allowed
func (sm *StateMachine[S]) Transition(from, to S) (S, error) {
	if !sm.CanTransition(from, to) {
		return from, fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// GetAllowedTransitions returns the allowed next states for a given state
func (sm *StateMachine[S]) GetAllowedTransitions(from S) []S {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []S{}
	}
	return append([]S(nil), allowed...)
}
