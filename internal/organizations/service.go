package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/notifications"
	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrOrganizationRequired = errors.New("organization must be set up first")
)

// Service exposes the canonical onboarding facts to the API. Every operation
// is scoped to the organization owned by the calling user
type Service struct {
	repo      Repository
	publisher notifications.Publisher
	logger    *zap.Logger
}

// NewService creates a new organizations service
func NewService(repo Repository, publisher notifications.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// GetOrganization returns the caller's organization, empty when none exists yet
func (s *Service) GetOrganization(ctx context.Context, userID uuid.UUID) (*OrganizationView, error) {
	org, err := s.repo.GetOrganizationByOwner(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &OrganizationView{Activities: setup.Activities{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return toView(org), nil
}

// UpdateOrganization creates or updates the caller's organization
func (s *Service) UpdateOrganization(ctx context.Context, userID uuid.UUID, req UpdateOrganizationRequest) (*OrganizationView, error) {
	org, err := s.repo.GetOrganizationByOwner(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		org = &Organization{OwnerID: userID}
	} else if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Activities != nil {
		if err := org.SetActivities(*req.Activities); err != nil {
			return nil, fmt.Errorf("%w: activities: %v", ErrInvalidInput, err)
		}
	}
	org.UpdatedAt = time.Now()

	if err := s.repo.SaveOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.publisher.Invalidate(userID.String(), notifications.ResourceOrganization)
	return toView(org), nil
}

// ListTeams returns the teams of the caller's organization
func (s *Service) ListTeams(ctx context.Context, userID uuid.UUID) ([]Team, error) {
	org, err := s.repo.GetOrganizationByOwner(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return []Team{}, nil
	}
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.ListTeams(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []Team{}
	}
	return teams, nil
}

// CreateTeam adds a team to the caller's organization
func (s *Service) CreateTeam(ctx context.Context, userID uuid.UUID, req CreateTeamRequest) (*Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	org, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return nil, err
	}

	team := &Team{OrganizationID: org.ID, Name: name}
	if err := s.repo.CreateTeam(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("Team created", zap.String("user_id", userID.String()), zap.String("team_id", team.ID.String()))
	s.publisher.Invalidate(userID.String(), notifications.ResourceTeams)
	return team, nil
}

// DeleteTeam removes a team and its memberships
func (s *Service) DeleteTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	org, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTeam(ctx, org.ID, teamID); err != nil {
		return err
	}
	s.publisher.Invalidate(userID.String(), notifications.ResourceTeams)
	return nil
}

// AddTeamMember puts a performer of the caller's organization on a team
func (s *Service) AddTeamMember(ctx context.Context, userID, teamID uuid.UUID, req AddTeamMemberRequest) (*TeamMember, error) {
	if req.PerformerID == uuid.Nil {
		return nil, fmt.Errorf("%w: performer_id is required", ErrInvalidInput)
	}
	org, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTeam(ctx, org.ID, teamID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPerformer(ctx, org.ID, req.PerformerID); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "member"
	}
	member := &TeamMember{
		TeamID:      teamID,
		PerformerID: req.PerformerID,
		Role:        role,
		JoinedAt:    time.Now(),
	}
	if err := s.repo.AddTeamMember(ctx, member); err != nil {
		return nil, err
	}

	s.publisher.Invalidate(userID.String(), notifications.ResourceTeams)
	return member, nil
}

// ListPerformers returns the performers of the caller's organization
func (s *Service) ListPerformers(ctx context.Context, userID uuid.UUID) ([]Performer, error) {
	org, err := s.repo.GetOrganizationByOwner(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return []Performer{}, nil
	}
	if err != nil {
		return nil, err
	}
	performers, err := s.repo.ListPerformers(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	if performers == nil {
		performers = []Performer{}
	}
	return performers, nil
}

// CreatePerformer adds a performer to the caller's organization
func (s *Service) CreatePerformer(ctx context.Context, userID uuid.UUID, req CreatePerformerRequest) (*Performer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	org, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return nil, err
	}

	performer := &Performer{
		OrganizationID: org.ID,
		Name:           name,
		Email:          strings.TrimSpace(req.Email),
		Tags:           req.Tags,
	}
	if err := s.repo.CreatePerformer(ctx, performer); err != nil {
		return nil, err
	}

	s.publisher.Invalidate(userID.String(), notifications.ResourcePerformers)
	return performer, nil
}

func (s *Service) requireOrganization(ctx context.Context, userID uuid.UUID) (*Organization, error) {
	org, err := s.repo.GetOrganizationByOwner(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrOrganizationRequired
	}
	return org, err
}

func toView(org *Organization) *OrganizationView {
	return &OrganizationView{
		ID:         org.ID,
		Name:       org.Name,
		Activities: org.SelectedActivities(),
	}
}
