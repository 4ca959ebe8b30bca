package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

// MockFactsRepository is a mock implementation of the FactsRepository interface
type MockFactsRepository struct {
	mock.Mock
}

func (m *MockFactsRepository) LoadFacts(ctx context.Context, userID uuid.UUID) (*CanonicalFacts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CanonicalFacts), args.Error(1)
}

func TestStatusUsesCanonicalRule(t *testing.T) {
	cases := []struct {
		name  string
		facts CanonicalFacts
		want  bool
	}{
		{"nothing", CanonicalFacts{}, false},
		{"name only", CanonicalFacts{OrganizationName: "Acme"}, false},
		{"blank name", CanonicalFacts{OrganizationName: "  ", Activities: setup.Activities{"sales": {"calls"}}, HasTeams: true}, false},
		{"no activities", CanonicalFacts{OrganizationName: "Acme", HasTeams: true}, false},
		{"teams", CanonicalFacts{OrganizationName: "Acme", Activities: setup.Activities{"sales": {"calls"}}, HasTeams: true}, true},
		{"members only", CanonicalFacts{OrganizationName: "Acme", Activities: setup.Activities{"sales": {"calls"}}, HasTeamMembers: true}, true},
		{"no teams", CanonicalFacts{OrganizationName: "Acme", Activities: setup.Activities{"sales": {"calls"}}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockFactsRepository)
			service := NewService(repo, zap.NewNop())
			ctx := context.Background()
			userID := uuid.New()
			facts := tc.facts

			repo.On("LoadFacts", ctx, userID).Return(&facts, nil)

			status, err := service.Status(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, status.IsOnboardingComplete)
		})
	}
}

func TestStatusPropagatesErrors(t *testing.T) {
	repo := new(MockFactsRepository)
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	repo.On("LoadFacts", ctx, userID).Return(nil, errors.New("connection refused"))

	_, err := service.Status(ctx, userID)
	assert.EqualError(t, err, "connection refused")
}
