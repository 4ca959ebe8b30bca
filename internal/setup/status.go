// Package setup holds the onboarding completeness model shared by the server
// status endpoint, the route gate and the dashboard client
package setup

import "strings"

// Facts are the three signals that decide whether onboarding is complete
type Facts struct {
	HasOrganization bool
	HasActivities   bool
	HasTeams        bool
}

// Complete is the one completeness rule used everywhere in the system
func (f Facts) Complete() bool {
	return f.HasOrganization && f.HasActivities && f.HasTeams
}

// SetupStatus is the derived onboarding status. It is rebuilt from inputs on
// every change and never mutated in place
type SetupStatus struct {
	HasOrganization bool `json:"hasOrganization"`
	HasActivities   bool `json:"hasActivities"`
	HasTeams        bool `json:"hasTeams"`
	IsComplete      bool `json:"isComplete"`
}

// NewStatus builds a SetupStatus from facts
func NewStatus(f Facts) SetupStatus {
	return SetupStatus{
		HasOrganization: f.HasOrganization,
		HasActivities:   f.HasActivities,
		HasTeams:        f.HasTeams,
		IsComplete:      f.Complete(),
	}
}

// Facts returns the facts the status was derived from
func (s SetupStatus) Facts() Facts {
	return Facts{
		HasOrganization: s.HasOrganization,
		HasActivities:   s.HasActivities,
		HasTeams:        s.HasTeams,
	}
}

// HasOrganizationName reports whether name is non-empty once trimmed
func HasOrganizationName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// Activities maps an activity category to the items selected in it
type Activities map[string][]string

// HasSelection reports whether any category has at least one selected item
func (a Activities) HasSelection() bool {
	for _, items := range a {
		if len(items) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so snapshots never share backing arrays
func (a Activities) Clone() Activities {
	if a == nil {
		return nil
	}
	out := make(Activities, len(a))
	for category, items := range a {
		out[category] = append([]string(nil), items...)
	}
	return out
}
