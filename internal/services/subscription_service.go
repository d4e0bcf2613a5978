// subscription_service.go implements the subscription ledger operations
// exposed to human callers.
package services

import (
	"context"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/policy"
)

// SubscriptionService handles subscribing and unsubscribing users to skills
type SubscriptionService struct {
	skillRepo *repositories.SkillRepository
	subRepo   *repositories.SubscriptionRepository
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(skillRepo *repositories.SkillRepository, subRepo *repositories.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{skillRepo: skillRepo, subRepo: subRepo}
}

// Subscribe opts the user in to a skill they can view. Repeat subscribes
// re-enable a previously disabled subscription.
func (s *SubscriptionService) Subscribe(ctx context.Context, user *models.UserWithMemberships, skillName string) (*models.SkillSubscription, error) {
	skill, err := s.skillRepo.GetSkillByName(ctx, skillName)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, NotFoundf("skill %q not found", skillName)
	}
	if !policy.CanView(user, skill) {
		return nil, Forbiddenf("not allowed to view this skill")
	}

	return s.subRepo.Subscribe(ctx, user.ID, skill.ID)
}

// Unsubscribe disables the user's subscription. Unsubscribing a skill that
// was never subscribed is a successful no-op; no record is created.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, user *models.UserWithMemberships, skillName string) error {
	skill, err := s.skillRepo.GetSkillByName(ctx, skillName)
	if err != nil {
		return err
	}
	if skill == nil {
		return NotFoundf("skill %q not found", skillName)
	}

	_, err = s.subRepo.Unsubscribe(ctx, user.ID, skill.ID)
	return err
}

// List returns all of the user's subscription rows, including disabled ones,
// so the UI can show "previously subscribed" state
func (s *SubscriptionService) List(ctx context.Context, user *models.UserWithMemberships) ([]*models.SkillSubscription, error) {
	return s.subRepo.ListByUser(ctx, user.ID)
}
