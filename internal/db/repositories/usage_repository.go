// usage_repository.go implements the append-only usage ledger and the
// aggregate queries behind the stats endpoints.
package repositories

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skills-hub/skills-hub/internal/db/models"
)

// UsageRepository handles usage ledger writes and statistics aggregation.
// Rows are never updated or deleted; stats are computed on read.
type UsageRepository struct {
	db *sqlx.DB
}

// NewUsageRepository creates a new UsageRepository
func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

const insertUsageQuery = `
	INSERT INTO skill_usage_logs (id, api_key_id, user_id, skill_id, skill_name, skill_version, action, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Insert appends a single usage entry
func (r *UsageRepository) Insert(ctx context.Context, entry *models.UsageLog) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, insertUsageQuery,
		entry.ID,
		entry.APIKeyID,
		entry.UserID,
		entry.SkillID,
		entry.SkillName,
		entry.SkillVersion,
		entry.Action,
		entry.CreatedAt,
	)
	return err
}

// InsertBatch appends all entries in one transaction so a batch resolution
// records either all of its usage or none of it.
func (r *UsageRepository) InsertBatch(ctx context.Context, entries []*models.UsageLog) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, entry := range entries {
		entry.ID = uuid.New().String()
		entry.CreatedAt = now
		_, err := tx.ExecContext(ctx, insertUsageQuery,
			entry.ID,
			entry.APIKeyID,
			entry.UserID,
			entry.SkillID,
			entry.SkillName,
			entry.SkillVersion,
			entry.Action,
			entry.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Overview aggregates one user's activity: all-time totals plus counts since
// the caller's local midnight and the trailing week. Both cutoffs are
// parameters so no timezone assumption is baked into the SQL.
func (r *UsageRepository) Overview(ctx context.Context, userID string, todayStart, weekStart time.Time) (*models.UsageOverview, error) {
	overview := &models.UsageOverview{}

	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE created_at >= $2) AS today,
		       COUNT(*) FILTER (WHERE created_at >= $3) AS week,
		       COUNT(DISTINCT skill_name) FILTER (WHERE skill_name <> '*') AS active_skills
		FROM skill_usage_logs
		WHERE user_id = $1
	`
	row := r.db.QueryRowxContext(ctx, query, userID, todayStart, weekStart)
	if err := row.Scan(&overview.TotalCalls, &overview.TodayCalls, &overview.WeekCalls, &overview.ActiveSkills); err != nil {
		return nil, err
	}

	return overview, nil
}

// Popular returns the user's most used skills since the cutoff. Wildcard
// catalog entries are excluded from the ranking but counted in the total the
// percentages are computed against.
func (r *UsageRepository) Popular(ctx context.Context, userID string, since time.Time, limit int) ([]*models.PopularSkill, error) {
	var total int
	totalQuery := `SELECT COUNT(*) FROM skill_usage_logs WHERE user_id = $1 AND created_at >= $2`
	if err := r.db.GetContext(ctx, &total, totalQuery, userID, since); err != nil {
		return nil, err
	}

	query := `
		SELECT skill_name, COUNT(*) AS call_count
		FROM skill_usage_logs
		WHERE user_id = $1 AND created_at >= $2 AND skill_name <> '*'
		GROUP BY skill_name
		ORDER BY call_count DESC, skill_name
		LIMIT $3
	`

	popular := make([]*models.PopularSkill, 0)
	if err := r.db.SelectContext(ctx, &popular, query, userID, since, limit); err != nil {
		return nil, err
	}

	if total > 0 {
		for _, p := range popular {
			p.Percentage = math.Round(float64(p.CallCount)*1000/float64(total)) / 10
		}
	}
	return popular, nil
}

// DailyCounts returns per-day call counts between since and now, keyed by
// local date string. Zero-filling to a continuous series happens in the
// stats service.
func (r *UsageRepository) DailyCounts(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	query := `
		SELECT created_at
		FROM skill_usage_logs
		WHERE user_id = $1 AND created_at >= $2
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, err
		}
		counts[createdAt.Local().Format("2006-01-02")]++
	}

	return counts, rows.Err()
}

// CountForSkill returns total non-wildcard usage of one skill across all
// users, for the admin stats view
func (r *UsageRepository) CountForSkill(ctx context.Context, skillID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM skill_usage_logs WHERE skill_id = $1`
	err := r.db.GetContext(ctx, &count, query, skillID)
	return count, err
}
