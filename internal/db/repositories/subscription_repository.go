// subscription_repository.go implements database access for the subscription
// ledger. Subscriptions are upserted and disabled, never deleted: a disabled
// row preserves the fact that the user subscribed before.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skills-hub/skills-hub/internal/db/models"
)

// SubscriptionRepository handles subscription ledger operations
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscribeQuery = `
	INSERT INTO skill_subscriptions (id, user_id, skill_id, enabled, subscribed_at, updated_at)
	VALUES ($1, $2, $3, TRUE, $4, $4)
	ON CONFLICT (user_id, skill_id)
	DO UPDATE SET enabled = TRUE, updated_at = $4
	RETURNING id, user_id, skill_id, enabled, subscribed_at, updated_at
`

// Subscribe enables a subscription, creating the row on first subscribe and
// re-enabling it on repeat subscribes. Idempotent.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, userID, skillID string) (*models.SkillSubscription, error) {
	sub := &models.SkillSubscription{}
	err := r.db.GetContext(ctx, sub, subscribeQuery, uuid.New().String(), userID, skillID, time.Now())
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// SubscribeTx enables a subscription inside an existing transaction so it
// commits or rolls back together with the skill creation that triggered it.
func (r *SubscriptionRepository) SubscribeTx(ctx context.Context, tx *sqlx.Tx, userID, skillID string) (*models.SkillSubscription, error) {
	sub := &models.SkillSubscription{}
	err := tx.GetContext(ctx, sub, subscribeQuery, uuid.New().String(), userID, skillID, time.Now())
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe disables a subscription. The row is kept so history survives.
// Returns false when no subscription row exists.
func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, userID, skillID string) (bool, error) {
	query := `
		UPDATE skill_subscriptions
		SET enabled = FALSE, updated_at = $3
		WHERE user_id = $1 AND skill_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, skillID, time.Now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByUser retrieves all of a user's subscription rows, enabled or not,
// with the skill name joined for display
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*models.SkillSubscription, error) {
	query := `
		SELECT ss.id, ss.user_id, ss.skill_id, ss.enabled, ss.subscribed_at, ss.updated_at,
		       s.name AS skill_name
		FROM skill_subscriptions ss
		JOIN skills s ON ss.skill_id = s.id
		WHERE ss.user_id = $1
		ORDER BY s.name
	`

	subs := make([]*models.SkillSubscription, 0)
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, err
	}
	return subs, nil
}

// EnabledSkillIDs returns the set of skill IDs the user is actively
// subscribed to, for subscription-gated resolution
func (r *SubscriptionRepository) EnabledSkillIDs(ctx context.Context, userID string) (map[string]bool, error) {
	query := `SELECT skill_id FROM skill_subscriptions WHERE user_id = $1 AND enabled = TRUE`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// IsEnabled reports whether the user holds an enabled subscription to the skill
func (r *SubscriptionRepository) IsEnabled(ctx context.Context, userID, skillID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM skill_subscriptions WHERE user_id = $1 AND skill_id = $2 AND enabled = TRUE)`

	var enabled bool
	if err := r.db.GetContext(ctx, &enabled, query, userID, skillID); err != nil {
		return false, err
	}
	return enabled, nil
}

// DisableForTeamTx disables the user's subscriptions to team-visible skills
// owned by the given team. Runs inside the caller's transaction so it commits
// or rolls back together with the membership removal that triggered it.
func (r *SubscriptionRepository) DisableForTeamTx(ctx context.Context, tx *sqlx.Tx, userID, teamID string) (int64, error) {
	query := `
		UPDATE skill_subscriptions ss
		SET enabled = FALSE, updated_at = $3
		FROM skills s
		WHERE ss.skill_id = s.id
		  AND ss.user_id = $1
		  AND ss.enabled = TRUE
		  AND s.team_id = $2
		  AND s.visibility = 'team'
	`
	res, err := tx.ExecContext(ctx, query, userID, teamID, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
