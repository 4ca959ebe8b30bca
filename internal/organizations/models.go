package organizations

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

// User is the account record behind an authenticated identity
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Organization is the tenant a user sets up during onboarding
type Organization struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	Name       string         `gorm:"not null;default:''" json:"name"`
	Activities datatypes.JSON `json:"activities"` // category -> selected items
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Team groups performers inside an organization
type Team struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TeamMember links a performer to a team
type TeamMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_performer" json:"team_id"`
	PerformerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_performer" json:"performer_id"`
	Role        string    `gorm:"not null;default:'member'" json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	Team        Team      `gorm:"foreignKey:TeamID" json:"-"`
}

// Performer is a person whose performance is tracked
type Performer struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string         `gorm:"not null" json:"name"`
	Email          string         `json:"email"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error         { assignID(&u.ID); return nil }
func (o *Organization) BeforeCreate(tx *gorm.DB) error { assignID(&o.ID); return nil }
func (t *Team) BeforeCreate(tx *gorm.DB) error         { assignID(&t.ID); return nil }
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error   { assignID(&m.ID); return nil }
func (p *Performer) BeforeCreate(tx *gorm.DB) error    { assignID(&p.ID); return nil }

// SelectedActivities decodes the activities column; bad JSON reads as no selection
func (o *Organization) SelectedActivities() setup.Activities {
	if o == nil || len(o.Activities) == 0 {
		return setup.Activities{}
	}
	var activities setup.Activities
	if err := json.Unmarshal(o.Activities, &activities); err != nil {
		return setup.Activities{}
	}
	return activities
}

// SetActivities encodes the selection into the activities column
func (o *Organization) SetActivities(activities setup.Activities) error {
	if activities == nil {
		activities = setup.Activities{}
	}
	data, err := json.Marshal(activities)
	if err != nil {
		return err
	}
	o.Activities = datatypes.JSON(data)
	return nil
}

// Models lists every table for auto-migration
func Models() []any {
	return []any{&User{}, &Organization{}, &Team{}, &TeamMember{}, &Performer{}}
}

// Requests

type UpdateOrganizationRequest struct {
	Name       *string           `json:"name"`
	Activities *setup.Activities `json:"activities"`
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type AddTeamMemberRequest struct {
	PerformerID uuid.UUID `json:"performer_id"`
	Role        string    `json:"role"`
}

type CreatePerformerRequest struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Tags  []string `json:"tags"`
}

// OrganizationView is the organization as returned by the API
type OrganizationView struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Activities setup.Activities `json:"activities"`
}
