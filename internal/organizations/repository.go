package organizations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	GetOrganizationByOwner(ctx context.Context, ownerID uuid.UUID) (*Organization, error)
	SaveOrganization(ctx context.Context, org *Organization) error

	ListTeams(ctx context.Context, organizationID uuid.UUID) ([]Team, error)
	GetTeam(ctx context.Context, organizationID, teamID uuid.UUID) (*Team, error)
	CreateTeam(ctx context.Context, team *Team) error
	DeleteTeam(ctx context.Context, organizationID, teamID uuid.UUID) error
	AddTeamMember(ctx context.Context, member *TeamMember) error

	ListPerformers(ctx context.Context, organizationID uuid.UUID) ([]Performer, error)
	GetPerformer(ctx context.Context, organizationID, performerID uuid.UUID) (*Performer, error)
	CreatePerformer(ctx context.Context, performer *Performer) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed repository. The db must be opened with
// TranslateError so unique violations surface as ErrConflict
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

func (r *gormRepository) CreateUser(ctx context.Context, user *User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormRepository) GetOrganizationByOwner(ctx context.Context, ownerID uuid.UUID) (*Organization, error) {
	var org Organization
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&org).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

func (r *gormRepository) SaveOrganization(ctx context.Context, org *Organization) error {
	return translate(r.db.WithContext(ctx).Save(org).Error)
}

func (r *gormRepository) ListTeams(ctx context.Context, organizationID uuid.UUID) ([]Team, error) {
	var teams []Team
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&teams).Error
	return teams, translate(err)
}

func (r *gormRepository) GetTeam(ctx context.Context, organizationID, teamID uuid.UUID) (*Team, error) {
	var team Team
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, teamID).
		First(&team).Error
	if err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (r *gormRepository) CreateTeam(ctx context.Context, team *Team) error {
	return translate(r.db.WithContext(ctx).Create(team).Error)
}

func (r *gormRepository) DeleteTeam(ctx context.Context, organizationID, teamID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("organization_id = ? AND id = ?", organizationID, teamID).Delete(&Team{})
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return translate(tx.Where("team_id = ?", teamID).Delete(&TeamMember{}).Error)
	})
}

func (r *gormRepository) AddTeamMember(ctx context.Context, member *TeamMember) error {
	return translate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *gormRepository) ListPerformers(ctx context.Context, organizationID uuid.UUID) ([]Performer, error) {
	var performers []Performer
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&performers).Error
	return performers, translate(err)
}

func (r *gormRepository) GetPerformer(ctx context.Context, organizationID, performerID uuid.UUID) (*Performer, error) {
	var performer Performer
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, performerID).
		First(&performer).Error
	if err != nil {
		return nil, translate(err)
	}
	return &performer, nil
}

func (r *gormRepository) CreatePerformer(ctx context.Context, performer *Performer) error {
	return translate(r.db.WithContext(ctx).Create(performer).Error)
}
