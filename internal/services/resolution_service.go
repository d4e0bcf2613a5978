// resolution_service.go implements the machine-facing resolution engine:
// catalog enumeration, batch skill resolution, and raw content fetch. Every
// operation runs as an API-key principal and records its usage in the ledger.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/skills-hub/skills-hub/internal/auth"
	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/policy"
	"github.com/skills-hub/skills-hub/internal/telemetry"
)

// Resolve batch size bounds
const (
	MinResolveSpecs = 1
	MaxResolveSpecs = 50
)

// ResolutionService applies the visibility, subscription and tag-scope gates
// and serves version content to machine callers
type ResolutionService struct {
	skillRepo  *repositories.SkillRepository
	subRepo    *repositories.SubscriptionRepository
	usageRepo  *repositories.UsageRepository
	policyName string
}

// NewResolutionService creates a ResolutionService enforcing the given
// resolution policy ("open", "subscribed" or "tag_scoped")
func NewResolutionService(skillRepo *repositories.SkillRepository, subRepo *repositories.SubscriptionRepository, usageRepo *repositories.UsageRepository, policyName string) *ResolutionService {
	return &ResolutionService{
		skillRepo:  skillRepo,
		subRepo:    subRepo,
		usageRepo:  usageRepo,
		policyName: policyName,
	}
}

// CatalogItem is one entry of the machine catalog
type CatalogItem struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Version     string   `json:"version"`
	Tags        []string `json:"tags"`
}

// ResolvedSkill is one successfully resolved spec
type ResolvedSkill struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description *string           `json:"description,omitempty"`
	Content     string            `json:"content"`
	Files       map[string]string `json:"files"`
}

// RawSkill is the raw-content response shape
type RawSkill struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Content string `json:"content"`
}

// subscriptions loads the key owner's enabled subscription set. The open
// policy never consults it, so skip the query there.
func (s *ResolutionService) subscriptions(ctx context.Context, userID string) (map[string]bool, error) {
	if s.policyName == policy.PolicyOpen {
		return nil, nil
	}
	return s.subRepo.EnabledSkillIDs(ctx, userID)
}

// Catalog enumerates the skills the caller may resolve under the active
// policy. One wildcard usage entry is recorded per call, even when the
// catalog comes back empty.
func (s *ResolutionService) Catalog(ctx context.Context, principal *auth.Principal) ([]CatalogItem, error) {
	user := principal.User

	teamIDs := make([]string, 0, len(user.Memberships))
	for _, m := range user.Memberships {
		teamIDs = append(teamIDs, m.TeamID)
	}

	skills, _, err := s.skillRepo.ListSkills(ctx, repositories.SkillFilter{
		UserID:        user.ID,
		TeamIDs:       teamIDs,
		Admin:         user.IsAdmin(),
		PublishedOnly: true,
		Limit:         1000,
	})
	if err != nil {
		return nil, err
	}

	subscribed, err := s.subscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(skills))
	for _, skill := range skills {
		in := policy.ResolveInput{User: user, Key: principal.Key, Skill: skill, Subscribed: subscribed}
		if !policy.CanResolve(s.policyName, in) {
			continue
		}
		version := ""
		if skill.LatestVersion != nil {
			version = *skill.LatestVersion
		}
		items = append(items, CatalogItem{
			Name:        skill.Name,
			Description: skill.Description,
			Version:     version,
			Tags:        skill.Tags,
		})
	}

	entry := &models.UsageLog{
		SkillName: models.WildcardSkillName,
		UserID:    &user.ID,
		APIKeyID:  &principal.Key.ID,
		Action:    models.ActionCatalog,
	}
	if err := s.usageRepo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	telemetry.UsageEntriesTotal.WithLabelValues(models.ActionCatalog).Inc()

	return items, nil
}

// parseSpec splits "name" or "name@version" into its parts
func parseSpec(spec string) (name, version string) {
	if i := strings.IndexByte(spec, '@'); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}

// lookup finds the skill and the requested (or latest) version, applying the
// active policy. Denials and misses come back as typed service errors so
// Resolve can skip them and Raw can surface them.
func (s *ResolutionService) lookup(ctx context.Context, principal *auth.Principal, subscribed map[string]bool, name, versionStr string) (*models.Skill, *models.SkillVersion, error) {
	skill, err := s.skillRepo.GetSkillByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if skill == nil || !skill.IsPublished {
		return nil, nil, NotFoundf("skill %q not found", name)
	}

	in := policy.ResolveInput{User: principal.User, Key: principal.Key, Skill: skill, Subscribed: subscribed}
	if !policy.CanResolve(s.policyName, in) {
		return nil, nil, Forbiddenf("skill %q is not resolvable with this key", name)
	}

	var version *models.SkillVersion
	if versionStr == "" {
		version, err = s.skillRepo.GetLatestVersion(ctx, skill.ID)
	} else {
		version, err = s.skillRepo.GetVersion(ctx, skill.ID, versionStr)
	}
	if err != nil {
		return nil, nil, err
	}
	if version == nil {
		return nil, nil, NotFoundf("version %q of skill %q not found", versionStr, name)
	}

	return skill, version, nil
}

// skippable reports whether a lookup failure degrades a batch silently
// rather than aborting it
func skippable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}

// Resolve processes a batch of specs ("name" or "name@version"). Unresolvable
// specs are skipped silently; the response holds only the successes. All
// usage entries for the batch commit in one transaction after every spec has
// been processed, so a mid-batch failure leaves no partial audit trail.
func (s *ResolutionService) Resolve(ctx context.Context, principal *auth.Principal, specs []string) ([]ResolvedSkill, error) {
	if len(specs) < MinResolveSpecs || len(specs) > MaxResolveSpecs {
		return nil, Invalidf("between %d and %d skills per request", MinResolveSpecs, MaxResolveSpecs)
	}

	user := principal.User
	subscribed, err := s.subscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedSkill, 0, len(specs))
	entries := make([]*models.UsageLog, 0, len(specs))

	for _, spec := range specs {
		name, versionStr := parseSpec(spec)
		skill, version, err := s.lookup(ctx, principal, subscribed, name, versionStr)
		if err != nil {
			if skippable(err) {
				telemetry.SkillResolutionsTotal.WithLabelValues("skipped").Inc()
				continue
			}
			return nil, err
		}

		files, err := s.skillRepo.ListFiles(ctx, version.ID)
		if err != nil {
			return nil, err
		}
		fileMap := make(map[string]string, len(files))
		for _, f := range files {
			fileMap[f.Path] = f.Content
		}

		resolved = append(resolved, ResolvedSkill{
			Name:        skill.Name,
			Version:     version.Version,
			Description: skill.Description,
			Content:     version.Content,
			Files:       fileMap,
		})
		entries = append(entries, &models.UsageLog{
			SkillID:      &skill.ID,
			SkillName:    skill.Name,
			SkillVersion: &version.Version,
			UserID:       &user.ID,
			APIKeyID:     &principal.Key.ID,
			Action:       models.ActionResolve,
		})
		telemetry.SkillResolutionsTotal.WithLabelValues("resolved").Inc()
	}

	if err := s.usageRepo.InsertBatch(ctx, entries); err != nil {
		return nil, err
	}
	for range entries {
		telemetry.UsageEntriesTotal.WithLabelValues(models.ActionResolve).Inc()
	}

	return resolved, nil
}

// Raw fetches one skill's content without the files map. Unlike Resolve there
// is no batch to degrade into, so denials surface as Forbidden and misses as
// NotFound. A usage entry is recorded on success only.
func (s *ResolutionService) Raw(ctx context.Context, principal *auth.Principal, name, versionStr string) (*RawSkill, error) {
	user := principal.User
	subscribed, err := s.subscriptions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	skill, version, err := s.lookup(ctx, principal, subscribed, name, versionStr)
	if err != nil {
		return nil, err
	}

	entry := &models.UsageLog{
		SkillID:      &skill.ID,
		SkillName:    skill.Name,
		SkillVersion: &version.Version,
		UserID:       &user.ID,
		APIKeyID:     &principal.Key.ID,
		Action:       models.ActionRaw,
	}
	if err := s.usageRepo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	telemetry.UsageEntriesTotal.WithLabelValues(models.ActionRaw).Inc()

	return &RawSkill{Name: skill.Name, Version: version.Version, Content: version.Content}, nil
}
