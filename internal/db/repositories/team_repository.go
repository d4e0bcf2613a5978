// team_repository.go implements database access for teams and memberships.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/skills-hub/skills-hub/internal/db/models"
)

// TeamRepository handles team and membership database operations.
// Membership writes that must be atomic with other changes (subscription
// cascades, admin guards) take a *sql.Tx so the service layer controls the
// transaction boundary.
type TeamRepository struct {
	db *sql.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// CreateTeam creates a new team
func (r *TeamRepository) CreateTeam(ctx context.Context, team *models.Team) error {
	team.ID = uuid.New().String()
	team.CreatedAt = time.Now()

	query := `
		INSERT INTO teams (id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		team.ID,
		team.Name,
		team.Slug,
		team.Description,
		team.CreatedAt,
	)

	return err
}

// GetTeamByID retrieves a team by ID with its member count
func (r *TeamRepository) GetTeamByID(ctx context.Context, teamID string) (*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.description, t.created_at,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id) AS member_count
		FROM teams t
		WHERE t.id = $1
	`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, teamID))
}

// GetTeamBySlug retrieves a team by its URL slug
func (r *TeamRepository) GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.description, t.created_at,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id) AS member_count
		FROM teams t
		WHERE t.slug = $1
	`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, slug))
}

func (r *TeamRepository) scanTeam(row *sql.Row) (*models.Team, error) {
	team := &models.Team{}
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.Description,
		&team.CreatedAt,
		&team.MemberCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

// ListTeams retrieves all teams ordered by name, with member counts
func (r *TeamRepository) ListTeams(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.description, t.created_at,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id) AS member_count
		FROM teams t
		ORDER BY t.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Slug,
			&team.Description,
			&team.CreatedAt,
			&team.MemberCount,
		)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// UpdateTeam updates a team's name and description
func (r *TeamRepository) UpdateTeam(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, team.ID, team.Name, team.Description, time.Now())
	return err
}

// DeleteTeam deletes a team. Memberships are removed by cascade; skills owned
// by the team keep existing with team_id set NULL.
func (r *TeamRepository) DeleteTeam(ctx context.Context, teamID string) error {
	query := `DELETE FROM teams WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, teamID)
	return err
}

// ListMembers retrieves all members of a team with usernames
func (r *TeamRepository) ListMembers(ctx context.Context, teamID string) ([]*models.TeamMember, error) {
	query := `
		SELECT tm.team_id, tm.user_id, tm.role, tm.joined_at, u.username
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		m := &models.TeamMember{}
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt, &m.Username); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// GetMember retrieves a single membership, or nil when the user is not a member
func (r *TeamRepository) GetMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	query := `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2
	`

	m := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AddMember adds a user to a team with the given role. Adding an existing
// member updates their role instead.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID, role string) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.ExecContext(ctx, query, teamID, userID, role, time.Now())
	return err
}

// CountAdmins returns the number of team-admin members in a team
func (r *TeamRepository) CountAdmins(ctx context.Context, teamID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`
	err := r.db.QueryRowContext(ctx, query, teamID, models.TeamRoleAdmin).Scan(&count)
	return count, err
}

// RemoveMemberTx deletes a membership inside an existing transaction so the
// caller can cascade subscription changes atomically.
func (r *TeamRepository) RemoveMemberTx(ctx context.Context, tx *sql.Tx, teamID, userID string) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	_, err := tx.ExecContext(ctx, query, teamID, userID)
	return err
}
