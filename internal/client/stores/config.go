package stores

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"perfsuite/dashboard/dashboard-backend/internal/client"
	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

// OrganizationSource loads the persisted organization
type OrganizationSource interface {
	Organization(ctx context.Context) (*client.Organization, error)
}

// ConfigSnapshot is a point-in-time copy of the config store
type ConfigSnapshot struct {
	OrganizationName string
	Activities       setup.Activities
	Version          uint64
}

// ConfigStore holds the organization name and activity selection entered
// during onboarding. It is local to one client runtime
type ConfigStore struct {
	mu               sync.RWMutex
	organizationName string
	activities       setup.Activities
	version          uint64
	source           OrganizationSource
	subs             listeners
}

// NewConfigStore creates an empty config store. source may be nil, in which
// case Invalidate keeps the local values
func NewConfigStore(source OrganizationSource) *ConfigStore {
	return &ConfigStore{
		activities: setup.Activities{},
		version:    1,
		source:     source,
	}
}

// Snapshot returns a copy of the current values
func (s *ConfigStore) Snapshot() ConfigSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ConfigSnapshot{
		OrganizationName: s.organizationName,
		Activities:       s.activities.Clone(),
		Version:          s.version,
	}
}

// Version returns the snapshot version; it changes on every effective update
func (s *ConfigStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn to run after every change
func (s *ConfigStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *ConfigStore) SetOrganizationName(name string) {
	s.update(func() bool {
		if s.organizationName == name {
			return false
		}
		s.organizationName = name
		return true
	})
}

func (s *ConfigStore) SetActivities(activities setup.Activities) {
	s.update(func() bool {
		next := cloneActivities(activities)
		if reflect.DeepEqual(s.activities, next) {
			return false
		}
		s.activities = next
		return true
	})
}

// ToggleActivity selects item in category, or deselects it if already selected
func (s *ConfigStore) ToggleActivity(category, item string) {
	s.update(func() bool {
		next := cloneActivities(s.activities)
		items := next[category]
		for i, existing := range items {
			if existing == item {
				next[category] = append(items[:i:i], items[i+1:]...)
				if len(next[category]) == 0 {
					delete(next, category)
				}
				s.activities = next
				return true
			}
		}
		next[category] = append(items, item)
		s.activities = next
		return true
	})
}

// Replace sets both values at once
func (s *ConfigStore) Replace(name string, activities setup.Activities) {
	s.update(func() bool {
		next := cloneActivities(activities)
		if s.organizationName == name && reflect.DeepEqual(s.activities, next) {
			return false
		}
		s.organizationName = name
		s.activities = next
		return true
	})
}

// Invalidate reloads the values from the server
func (s *ConfigStore) Invalidate(ctx context.Context) error {
	if s.source == nil {
		return nil
	}
	org, err := s.source.Organization(ctx)
	if err != nil {
		return fmt.Errorf("reload organization: %w", err)
	}
	s.Replace(org.Name, org.Activities)
	return nil
}

func (s *ConfigStore) update(apply func() bool) {
	s.mu.Lock()
	changed := apply()
	if changed {
		s.version++
	}
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
}

func cloneActivities(a setup.Activities) setup.Activities {
	if a == nil {
		return setup.Activities{}
	}
	return a.Clone()
}
