// Package services implements the business logic that coordinates across
// repositories: skill lifecycle, version publishing, team membership with its
// subscription cascade, the machine resolution engine, and usage statistics.
// Services enforce authorization through the policy package; handlers only
// translate HTTP to service calls.
package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/policy"
	"github.com/skills-hub/skills-hub/internal/validation"
)

// SkillService handles skill CRUD and version publishing
type SkillService struct {
	db        *sqlx.DB
	skillRepo *repositories.SkillRepository
	subRepo   *repositories.SubscriptionRepository
}

// NewSkillService creates a new SkillService
func NewSkillService(db *sqlx.DB, skillRepo *repositories.SkillRepository, subRepo *repositories.SubscriptionRepository) *SkillService {
	return &SkillService{db: db, skillRepo: skillRepo, subRepo: subRepo}
}

// CreateSkillInput carries the fields accepted on skill creation
type CreateSkillInput struct {
	Name        string   `json:"name" binding:"required"`
	DisplayName string   `json:"display_name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
	TeamID      *string  `json:"team_id"`
}

// CreateSkill creates a skill owned by the calling user and auto-subscribes
// the author so their own machines can resolve it immediately.
func (s *SkillService) CreateSkill(ctx context.Context, user *models.UserWithMemberships, input CreateSkillInput) (*models.Skill, error) {
	if err := validation.ValidateSkillName(input.Name); err != nil {
		return nil, Invalidf("%v", err)
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	switch visibility {
	case models.VisibilityPublic, models.VisibilityTeam, models.VisibilityPrivate:
	default:
		return nil, Invalidf("invalid visibility: %s", visibility)
	}
	if visibility == models.VisibilityTeam {
		if input.TeamID == nil {
			return nil, Invalidf("team visibility requires a team")
		}
		if !user.IsAdmin() && !user.MemberOf(*input.TeamID) {
			return nil, Forbiddenf("not a member of the owning team")
		}
	} else {
		input.TeamID = nil
	}

	existing, err := s.skillRepo.GetSkillByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflictf("skill %q already exists", input.Name)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Name
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	skill := &models.Skill{
		Name:        input.Name,
		DisplayName: displayName,
		Description: input.Description,
		Tags:        tags,
		Visibility:  visibility,
		TeamID:      input.TeamID,
		AuthorID:    user.ID,
	}
	// The skill and the author's subscription commit together; a skill whose
	// author holds no subscription would be unresolvable by their own keys
	// under the subscription-gated policies.
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.skillRepo.CreateSkillTx(ctx, tx.Tx, skill); err != nil {
		return nil, err
	}
	if _, err := s.subRepo.SubscribeTx(ctx, tx, user.ID, skill.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return skill, nil
}

// GetSkill fetches one skill by name for a human caller. Missing skills are
// NotFound; existing but invisible skills are Forbidden.
func (s *SkillService) GetSkill(ctx context.Context, user *models.UserWithMemberships, name string) (*models.Skill, error) {
	skill, err := s.skillRepo.GetSkillByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, NotFoundf("skill %q not found", name)
	}
	if !policy.CanView(user, skill) {
		return nil, Forbiddenf("not allowed to view this skill")
	}
	return skill, nil
}

// ListSkills lists the skills the user may see. Invisible skills are omitted,
// never an error.
func (s *SkillService) ListSkills(ctx context.Context, user *models.UserWithMemberships, search, tag string, limit, offset int) ([]*models.Skill, int, error) {
	teamIDs := make([]string, 0, len(user.Memberships))
	for _, m := range user.Memberships {
		teamIDs = append(teamIDs, m.TeamID)
	}

	return s.skillRepo.ListSkills(ctx, repositories.SkillFilter{
		UserID:  user.ID,
		TeamIDs: teamIDs,
		Admin:   user.IsAdmin(),
		Search:  search,
		Tag:     tag,
		Limit:   limit,
		Offset:  offset,
	})
}

// UpdateSkillInput carries the mutable skill fields. Nil pointers leave the
// current value unchanged.
type UpdateSkillInput struct {
	DisplayName *string   `json:"display_name"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Visibility  *string   `json:"visibility"`
	TeamID      *string   `json:"team_id"`
}

// UpdateSkill applies metadata changes. Only the author or an admin may edit.
func (s *SkillService) UpdateSkill(ctx context.Context, user *models.UserWithMemberships, name string, input UpdateSkillInput) (*models.Skill, error) {
	skill, err := s.GetSkill(ctx, user, name)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(user, skill) {
		return nil, Forbiddenf("only the author or an admin may edit a skill")
	}

	if input.DisplayName != nil {
		skill.DisplayName = *input.DisplayName
	}
	if input.Description != nil {
		skill.Description = input.Description
	}
	if input.Tags != nil {
		skill.Tags = *input.Tags
	}
	if input.Visibility != nil {
		switch *input.Visibility {
		case models.VisibilityPublic, models.VisibilityTeam, models.VisibilityPrivate:
			skill.Visibility = *input.Visibility
		default:
			return nil, Invalidf("invalid visibility: %s", *input.Visibility)
		}
	}
	if input.TeamID != nil {
		skill.TeamID = input.TeamID
	}
	if skill.Visibility == models.VisibilityTeam {
		if skill.TeamID == nil {
			return nil, Invalidf("team visibility requires a team")
		}
		if !user.IsAdmin() && !user.MemberOf(*skill.TeamID) {
			return nil, Forbiddenf("not a member of the owning team")
		}
	} else {
		skill.TeamID = nil
	}

	if err := s.skillRepo.UpdateSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// DeleteSkill removes a skill and all its versions
func (s *SkillService) DeleteSkill(ctx context.Context, user *models.UserWithMemberships, name string) error {
	skill, err := s.GetSkill(ctx, user, name)
	if err != nil {
		return err
	}
	if !policy.CanEdit(user, skill) {
		return Forbiddenf("only the author or an admin may delete a skill")
	}
	return s.skillRepo.DeleteSkill(ctx, skill.ID)
}

// PublishVersionInput carries a new version's content and attachments
type PublishVersionInput struct {
	Version   string            `json:"version" binding:"required"`
	Content   string            `json:"content" binding:"required"`
	Changelog *string           `json:"changelog"`
	Files     map[string]string `json:"files"`
}

// PublishVersion creates a new immutable version of a skill. The SKILL.md
// front matter is parsed into version metadata; attachment paths are
// normalized and rejected when they escape the bundle root.
func (s *SkillService) PublishVersion(ctx context.Context, user *models.UserWithMemberships, name string, input PublishVersionInput) (*models.SkillVersion, error) {
	skill, err := s.GetSkill(ctx, user, name)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(user, skill) {
		return nil, Forbiddenf("only the author or an admin may publish versions")
	}

	if err := validation.ValidateSemver(input.Version); err != nil {
		return nil, Invalidf("%v", err)
	}

	existing, err := s.skillRepo.GetVersion(ctx, skill.ID, input.Version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflictf("version %s of %q already exists", input.Version, name)
	}

	parsed, err := validation.ParseSkillMD(input.Content)
	if err != nil {
		return nil, Invalidf("invalid SKILL.md front matter: %v", err)
	}

	files := make([]*models.SkillFile, 0, len(input.Files))
	for path, content := range input.Files {
		normalized, err := validation.NormalizeFilePath(path)
		if err != nil {
			return nil, Invalidf("invalid file path %q: %v", path, err)
		}
		fileType := validation.FileType(normalized)
		var ft *string
		if fileType != "" {
			ft = &fileType
		}
		files = append(files, &models.SkillFile{
			Path:     normalized,
			Content:  content,
			FileType: ft,
		})
	}

	version := &models.SkillVersion{
		SkillID:   skill.ID,
		Version:   input.Version,
		Content:   input.Content,
		Changelog: input.Changelog,
		Metadata:  parsed.Metadata,
		CreatedBy: user.ID,
	}
	if err := s.skillRepo.CreateVersion(ctx, version, files); err != nil {
		return nil, err
	}
	return version, nil
}

// ListVersions lists a skill's versions, newest first
func (s *SkillService) ListVersions(ctx context.Context, user *models.UserWithMemberships, name string) ([]*models.SkillVersion, error) {
	skill, err := s.GetSkill(ctx, user, name)
	if err != nil {
		return nil, err
	}
	return s.skillRepo.ListVersions(ctx, skill.ID)
}

// GetVersion fetches one exact version of a skill with its files
func (s *SkillService) GetVersion(ctx context.Context, user *models.UserWithMemberships, name, version string) (*models.SkillVersion, []*models.SkillFile, error) {
	skill, err := s.GetSkill(ctx, user, name)
	if err != nil {
		return nil, nil, err
	}

	v, err := s.skillRepo.GetVersion(ctx, skill.ID, version)
	if err != nil {
		return nil, nil, err
	}
	if v == nil {
		return nil, nil, NotFoundf("version %s of %q not found", version, name)
	}

	files, err := s.skillRepo.ListFiles(ctx, v.ID)
	if err != nil {
		return nil, nil, err
	}
	return v, files, nil
}
