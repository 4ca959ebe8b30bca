package onboarding

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

// Status is the body of the onboarding status endpoint
type Status struct {
	IsOnboardingComplete bool `json:"isOnboardingComplete"`
}

// Service computes onboarding completeness from canonical facts
type Service struct {
	repo   FactsRepository
	logger *zap.Logger
}

// NewService creates a new onboarding service
func NewService(repo FactsRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Facts maps canonical facts onto the shared completeness facts. A team
// membership implies a team, so either signal counts as having teams
func (f *CanonicalFacts) Facts() setup.Facts {
	return setup.Facts{
		HasOrganization: setup.HasOrganizationName(f.OrganizationName),
		HasActivities:   f.Activities.HasSelection(),
		HasTeams:        f.HasTeams || f.HasTeamMembers,
	}
}

// Status returns whether the user's onboarding is complete
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	facts, err := s.repo.LoadFacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := setup.NewStatus(facts.Facts())
	s.logger.Debug("Onboarding status computed",
		zap.String("user_id", userID.String()),
		zap.Bool("has_organization", status.HasOrganization),
		zap.Bool("has_activities", status.HasActivities),
		zap.Bool("has_teams", status.HasTeams),
	)
	return &Status{IsOnboardingComplete: status.IsComplete}, nil
}
