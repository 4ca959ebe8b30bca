package organizations

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetOrganizationByOwner(ctx context.Context, ownerID uuid.UUID) (*Organization, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Organization), args.Error(1)
}

func (m *MockRepository) SaveOrganization(ctx context.Context, org *Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockRepository) ListTeams(ctx context.Context, organizationID uuid.UUID) ([]Team, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).([]Team), args.Error(1)
}

func (m *MockRepository) GetTeam(ctx context.Context, organizationID, teamID uuid.UUID) (*Team, error) {
	args := m.Called(ctx, organizationID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Team), args.Error(1)
}

func (m *MockRepository) CreateTeam(ctx context.Context, team *Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockRepository) DeleteTeam(ctx context.Context, organizationID, teamID uuid.UUID) error {
	args := m.Called(ctx, organizationID, teamID)
	return args.Error(0)
}

func (m *MockRepository) AddTeamMember(ctx context.Context, member *TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockRepository) ListPerformers(ctx context.Context, organizationID uuid.UUID) ([]Performer, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).([]Performer), args.Error(1)
}

func (m *MockRepository) GetPerformer(ctx context.Context, organizationID, performerID uuid.UUID) (*Performer, error) {
	args := m.Called(ctx, organizationID, performerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Performer), args.Error(1)
}

func (m *MockRepository) CreatePerformer(ctx context.Context, performer *Performer) error {
	args := m.Called(ctx, performer)
	return args.Error(0)
}

// MockPublisher records invalidations
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Invalidate(userID, resource string) {
	m.Called(userID, resource)
}
