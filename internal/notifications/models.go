// Package notifications pushes change events to connected dashboard clients
package notifications

import "time"

// Message types
const (
	MessageTypeInvalidate = "invalidate"
)

// Resources a client keeps in a data store
const (
	ResourceOrganization = "organization"
	ResourceTeams        = "teams"
	ResourcePerformers   = "performers"
)

// Message is the websocket payload sent to clients
type Message struct {
	Type      string    `json:"type"`
	Resource  string    `json:"resource"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher tells a user's clients that a resource changed
type Publisher interface {
	Invalidate(userID, resource string)
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Invalidate(string, string) {}
