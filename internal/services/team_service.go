// team_service.go implements team lifecycle and membership management,
// including the subscription cascade applied when a user loses membership.
package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/validation"
)

// TeamService handles team and membership operations
type TeamService struct {
	db       *sqlx.DB
	teamRepo *repositories.TeamRepository
	subRepo  *repositories.SubscriptionRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(db *sqlx.DB, teamRepo *repositories.TeamRepository, subRepo *repositories.SubscriptionRepository) *TeamService {
	return &TeamService{db: db, teamRepo: teamRepo, subRepo: subRepo}
}

// canManage reports whether the user may administer the team
func canManage(user *models.UserWithMemberships, teamID string) bool {
	return user.IsAdmin() || user.TeamRole(teamID) == models.TeamRoleAdmin
}

// CreateTeamInput carries the fields accepted on team creation
type CreateTeamInput struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Description *string `json:"description"`
}

// CreateTeam creates a team and makes the creator its first team admin
func (s *TeamService) CreateTeam(ctx context.Context, user *models.UserWithMemberships, input CreateTeamInput) (*models.Team, error) {
	if err := validation.ValidateTeamSlug(input.Slug); err != nil {
		return nil, Invalidf("%v", err)
	}

	existing, err := s.teamRepo.GetTeamBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflictf("team %q already exists", input.Slug)
	}

	team := &models.Team{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
	}
	if err := s.teamRepo.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	if err := s.teamRepo.AddMember(ctx, team.ID, user.ID, models.TeamRoleAdmin); err != nil {
		return nil, err
	}
	team.MemberCount = 1
	return team, nil
}

// GetTeam fetches a team by slug
func (s *TeamService) GetTeam(ctx context.Context, slug string) (*models.Team, error) {
	team, err := s.teamRepo.GetTeamBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, NotFoundf("team %q not found", slug)
	}
	return team, nil
}

// ListTeams lists all teams. Teams are not secret; only their skills are.
func (s *TeamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return s.teamRepo.ListTeams(ctx)
}

// ListMembers lists a team's members
func (s *TeamService) ListMembers(ctx context.Context, slug string) ([]*models.TeamMember, error) {
	team, err := s.GetTeam(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.teamRepo.ListMembers(ctx, team.ID)
}

// AddMember adds a user to the team. Requires team admin or site admin.
// Adding an existing member is a conflict; role changes go through a removal
// and re-add by an admin.
func (s *TeamService) AddMember(ctx context.Context, actor *models.UserWithMemberships, slug, userID, role string) error {
	team, err := s.GetTeam(ctx, slug)
	if err != nil {
		return err
	}
	if !canManage(actor, team.ID) {
		return Forbiddenf("team admin required")
	}
	if role != models.TeamRoleAdmin && role != models.TeamRoleMember {
		return Invalidf("invalid team role: %s", role)
	}

	existing, err := s.teamRepo.GetMember(ctx, team.ID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return Conflictf("user is already a member of this team")
	}

	return s.teamRepo.AddMember(ctx, team.ID, userID, role)
}

// RemoveMember removes a user from the team and disables their subscriptions
// to the team's team-visible skills in the same transaction. A user may
// always remove themselves; removing anyone else requires team admin or site
// admin. The last team admin cannot be removed while the team has members.
// Removing someone who is not a member is a successful no-op, which makes
// the cascade idempotent.
func (s *TeamService) RemoveMember(ctx context.Context, actor *models.UserWithMemberships, slug, userID string) error {
	team, err := s.GetTeam(ctx, slug)
	if err != nil {
		return err
	}
	if actor.ID != userID && !canManage(actor, team.ID) {
		return Forbiddenf("team admin required")
	}

	member, err := s.teamRepo.GetMember(ctx, team.ID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}

	if member.Role == models.TeamRoleAdmin {
		admins, err := s.teamRepo.CountAdmins(ctx, team.ID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return Conflictf("cannot remove the last admin of a team")
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.teamRepo.RemoveMemberTx(ctx, tx.Tx, team.ID, userID); err != nil {
		return err
	}
	if _, err := s.subRepo.DisableForTeamTx(ctx, tx, userID, team.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// Leave removes the calling user from the team
func (s *TeamService) Leave(ctx context.Context, user *models.UserWithMemberships, slug string) error {
	return s.RemoveMember(ctx, user, slug, user.ID)
}

// UpdateTeam updates team name and description. Requires team admin.
func (s *TeamService) UpdateTeam(ctx context.Context, actor *models.UserWithMemberships, slug string, name string, description *string) (*models.Team, error) {
	team, err := s.GetTeam(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, team.ID) {
		return nil, Forbiddenf("team admin required")
	}

	if name != "" {
		team.Name = name
	}
	if description != nil {
		team.Description = description
	}
	if err := s.teamRepo.UpdateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam deletes a team. Site admin only; team skills survive with their
// team reference cleared.
func (s *TeamService) DeleteTeam(ctx context.Context, actor *models.UserWithMemberships, slug string) error {
	team, err := s.GetTeam(ctx, slug)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return Forbiddenf("site admin required")
	}
	return s.teamRepo.DeleteTeam(ctx, team.ID)
}
