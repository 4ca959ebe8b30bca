package onboarding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

var ErrUserNotFound = errors.New("user not found")

// CanonicalFacts are the persisted onboarding facts of one user, read fresh
// from the database on every call
type CanonicalFacts struct {
	OrganizationName string
	Activities       setup.Activities
	HasTeams         bool
	HasTeamMembers   bool
}

// FactsRepository reads canonical onboarding facts
type FactsRepository interface {
	LoadFacts(ctx context.Context, userID uuid.UUID) (*CanonicalFacts, error)
}

type postgresFactsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewFactsRepository creates a repository reading facts with a single query
func NewFactsRepository(db *sqlx.DB, logger *zap.Logger) FactsRepository {
	return &postgresFactsRepository{db: db, logger: logger}
}

type factsRow struct {
	OrganizationName string         `db:"organization_name"`
	Activities       sql.NullString `db:"activities"`
	HasTeams         bool           `db:"has_teams"`
	HasTeamMembers   bool           `db:"has_team_members"`
}

const factsQuery = `
	SELECT
		COALESCE(o.name, '') AS organization_name,
		o.activities::text AS activities,
		EXISTS (
			SELECT 1 FROM teams t
			WHERE t.organization_id = o.id AND t.deleted_at IS NULL
		) AS has_teams,
		EXISTS (
			SELECT 1 FROM team_members m
			JOIN teams t ON t.id = m.team_id
			WHERE t.organization_id = o.id AND t.deleted_at IS NULL
		) AS has_team_members
	FROM users u
	LEFT JOIN organizations o ON o.owner_id = u.id AND o.deleted_at IS NULL
	WHERE u.id = $1`

func (r *postgresFactsRepository) LoadFacts(ctx context.Context, userID uuid.UUID) (*CanonicalFacts, error) {
	var row factsRow
	err := r.db.GetContext(ctx, &row, factsQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load onboarding facts: %w", err)
	}

	return &CanonicalFacts{
		OrganizationName: row.OrganizationName,
		Activities:       r.activities(userID, row.Activities),
		HasTeams:         row.HasTeams,
		HasTeamMembers:   row.HasTeamMembers,
	}, nil
}

// activities decodes the activities column. A corrupt column reads as no
// selection and is logged
func (r *postgresFactsRepository) activities(userID uuid.UUID, raw sql.NullString) setup.Activities {
	if !raw.Valid || raw.String == "" {
		return setup.Activities{}
	}
	var activities setup.Activities
	if err := json.Unmarshal([]byte(raw.String), &activities); err != nil {
		r.logger.Warn("Corrupt organization activities, treating as no selection",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return setup.Activities{}
	}
	if activities == nil {
		return setup.Activities{}
	}
	return activities
}
