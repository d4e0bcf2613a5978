// skill_repository.go implements database access for skills, their immutable
// versions, and per-version attached files.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/validation"
)

// latestVersionOrder picks the newest version of a skill. Ties on created_at
// break toward the numerically greatest core version so that "10.0.0" beats
// "9.0.0" despite sorting lower as a string; at an equal core, a release
// outranks its pre-releases, and remaining pre-release ties fall back to a
// deterministic string comparison.
const latestVersionOrder = `ORDER BY sv.created_at DESC, string_to_array(split_part(split_part(sv.version, '+', 1), '-', 1), '.')::int[] DESC, (sv.version LIKE '%-%') ASC, sv.version DESC`

// SkillRepository handles skill, version and file database operations
type SkillRepository struct {
	db *sql.DB
}

// NewSkillRepository creates a new SkillRepository
func NewSkillRepository(db *sql.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// CreateSkill creates a new skill record
func (r *SkillRepository) CreateSkill(ctx context.Context, skill *models.Skill) error {
	return createSkill(ctx, r.db, skill)
}

// CreateSkillTx creates a skill inside an existing transaction so the caller
// can pair it atomically with the author's subscription.
func (r *SkillRepository) CreateSkillTx(ctx context.Context, tx *sql.Tx, skill *models.Skill) error {
	return createSkill(ctx, tx, skill)
}

func createSkill(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, skill *models.Skill) error {
	skill.ID = uuid.New().String()
	skill.CreatedAt = time.Now()
	skill.UpdatedAt = skill.CreatedAt

	query := `
		INSERT INTO skills (id, name, display_name, description, tags, visibility, team_id, author_id, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := execer.ExecContext(ctx, query,
		skill.ID,
		skill.Name,
		skill.DisplayName,
		skill.Description,
		pq.Array(skill.Tags),
		skill.Visibility,
		skill.TeamID,
		skill.AuthorID,
		skill.IsPublished,
		skill.CreatedAt,
		skill.UpdatedAt,
	)

	return err
}

const skillColumns = `s.id, s.name, s.display_name, s.description, s.tags, s.visibility, s.team_id, s.author_id, s.is_published, s.created_at, s.updated_at`

func scanSkill(scanner interface{ Scan(...any) error }) (*models.Skill, error) {
	skill := &models.Skill{}
	var tags pq.StringArray
	err := scanner.Scan(
		&skill.ID,
		&skill.Name,
		&skill.DisplayName,
		&skill.Description,
		&tags,
		&skill.Visibility,
		&skill.TeamID,
		&skill.AuthorID,
		&skill.IsPublished,
		&skill.CreatedAt,
		&skill.UpdatedAt,
		&skill.LatestVersion,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	skill.Tags = tags
	return skill, nil
}

// GetSkillByID retrieves a skill by ID together with its latest version
func (r *SkillRepository) GetSkillByID(ctx context.Context, skillID string) (*models.Skill, error) {
	query := `
		SELECT ` + skillColumns + `, lv.version
		FROM skills s
		LEFT JOIN LATERAL (
			SELECT sv.version FROM skill_versions sv WHERE sv.skill_id = s.id ` + latestVersionOrder + ` LIMIT 1
		) lv ON true
		WHERE s.id = $1
	`
	return scanSkill(r.db.QueryRowContext(ctx, query, skillID))
}

// GetSkillByName retrieves a skill by its unique kebab-case name
func (r *SkillRepository) GetSkillByName(ctx context.Context, name string) (*models.Skill, error) {
	query := `
		SELECT ` + skillColumns + `, lv.version
		FROM skills s
		LEFT JOIN LATERAL (
			SELECT sv.version FROM skill_versions sv WHERE sv.skill_id = s.id ` + latestVersionOrder + ` LIMIT 1
		) lv ON true
		WHERE s.name = $1
	`
	return scanSkill(r.db.QueryRowContext(ctx, query, name))
}

// SkillFilter restricts ListSkills to what one principal may see.
// Admin bypasses the visibility clause entirely.
type SkillFilter struct {
	UserID        string
	TeamIDs       []string
	Admin         bool
	Search        string
	Tag           string
	PublishedOnly bool
	Limit         int
	Offset        int
}

// ListSkills retrieves skills matching the filter with the total count.
// Visibility is enforced in SQL: public skills, the caller's own skills,
// and team skills for teams the caller belongs to.
func (r *SkillRepository) ListSkills(ctx context.Context, filter SkillFilter) ([]*models.Skill, int, error) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.Admin {
		clauses = append(clauses, fmt.Sprintf(
			`(s.visibility = 'public' OR s.author_id = %s OR (s.visibility = 'team' AND s.team_id = ANY(%s)))`,
			arg(filter.UserID), arg(pq.Array(filter.TeamIDs)),
		))
	}
	if filter.PublishedOnly {
		clauses = append(clauses, "s.is_published = TRUE")
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(s.name ILIKE %s OR s.display_name ILIKE %s OR s.description ILIKE %s)", p, p, p))
	}
	if filter.Tag != "" {
		clauses = append(clauses, fmt.Sprintf("%s = ANY(s.tags)", arg(filter.Tag)))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM skills s %s`, where)
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL := fmt.Sprintf(`
		SELECT %s, lv.version
		FROM skills s
		LEFT JOIN LATERAL (
			SELECT sv.version FROM skill_versions sv WHERE sv.skill_id = s.id %s LIMIT 1
		) lv ON true
		%s
		ORDER BY s.name
		LIMIT %s OFFSET %s
	`, skillColumns, latestVersionOrder, where, arg(filter.Limit), arg(filter.Offset))

	rows, err := r.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	skills := make([]*models.Skill, 0)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, 0, err
		}
		skills = append(skills, skill)
	}

	return skills, total, rows.Err()
}

// UpdateSkill updates a skill's mutable metadata. Name and author are fixed
// at creation.
func (r *SkillRepository) UpdateSkill(ctx context.Context, skill *models.Skill) error {
	skill.UpdatedAt = time.Now()

	query := `
		UPDATE skills
		SET display_name = $2, description = $3, tags = $4, visibility = $5, team_id = $6, updated_at = $7
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		skill.ID,
		skill.DisplayName,
		skill.Description,
		pq.Array(skill.Tags),
		skill.Visibility,
		skill.TeamID,
		skill.UpdatedAt,
	)

	return err
}

// DeleteSkill deletes a skill and, by cascade, all its versions and files
func (r *SkillRepository) DeleteSkill(ctx context.Context, skillID string) error {
	query := `DELETE FROM skills WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, skillID)
	return err
}

// CreateVersion inserts a new immutable version with its files and flips the
// skill's is_published flag, all in one transaction.
func (r *SkillRepository) CreateVersion(ctx context.Context, version *models.SkillVersion, files []*models.SkillFile) error {
	version.ID = uuid.New().String()
	version.CreatedAt = time.Now()

	metadataJSON, err := json.Marshal(version.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode version metadata: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO skill_versions (id, skill_id, version, content, metadata, changelog, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		version.ID,
		version.SkillID,
		version.Version,
		version.Content,
		metadataJSON,
		version.Changelog,
		version.CreatedBy,
		version.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, f := range files {
		f.ID = uuid.New().String()
		f.SkillVersionID = version.ID
		f.CreatedAt = version.CreatedAt
		_, err = tx.ExecContext(ctx, `
			INSERT INTO skill_files (id, version_id, file_path, content, file_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, f.ID, f.SkillVersionID, f.Path, f.Content, f.FileType, f.CreatedAt)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE skills SET is_published = TRUE, updated_at = $2 WHERE id = $1`,
		version.SkillID, version.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const versionColumns = `sv.id, sv.skill_id, sv.version, sv.content, sv.metadata, sv.changelog, sv.created_by, sv.created_at`

func scanVersion(scanner interface{ Scan(...any) error }) (*models.SkillVersion, error) {
	v := &models.SkillVersion{}
	var metadataJSON []byte
	err := scanner.Scan(
		&v.ID,
		&v.SkillID,
		&v.Version,
		&v.Content,
		&metadataJSON,
		&v.Changelog,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &v.Metadata); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// GetVersion retrieves one exact version of a skill
func (r *SkillRepository) GetVersion(ctx context.Context, skillID, version string) (*models.SkillVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM skill_versions sv WHERE sv.skill_id = $1 AND sv.version = $2`
	return scanVersion(r.db.QueryRowContext(ctx, query, skillID, version))
}

// GetLatestVersion retrieves the newest version of a skill, or nil when the
// skill has no versions yet
func (r *SkillRepository) GetLatestVersion(ctx context.Context, skillID string) (*models.SkillVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM skill_versions sv WHERE sv.skill_id = $1 ` + latestVersionOrder + ` LIMIT 1`
	return scanVersion(r.db.QueryRowContext(ctx, query, skillID))
}

// ListVersions retrieves all versions of a skill, newest first
func (r *SkillRepository) ListVersions(ctx context.Context, skillID string) ([]*models.SkillVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM skill_versions sv WHERE sv.skill_id = $1`

	rows, err := r.db.QueryContext(ctx, query, skillID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]*models.SkillVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest first; creation-time ties break toward the greater semver.
	sort.Slice(versions, func(i, j int) bool {
		if !versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].CreatedAt.After(versions[j].CreatedAt)
		}
		cmp, err := validation.CompareSemver(versions[i].Version, versions[j].Version)
		if err != nil {
			return versions[i].Version > versions[j].Version
		}
		return cmp > 0
	})

	return versions, nil
}

// ListFiles retrieves all files attached to a version, ordered by path
func (r *SkillRepository) ListFiles(ctx context.Context, versionID string) ([]*models.SkillFile, error) {
	query := `
		SELECT id, version_id, file_path, content, file_type, created_at
		FROM skill_files
		WHERE version_id = $1
		ORDER BY file_path
	`

	rows, err := r.db.QueryContext(ctx, query, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]*models.SkillFile, 0)
	for rows.Next() {
		f := &models.SkillFile{}
		if err := rows.Scan(&f.ID, &f.SkillVersionID, &f.Path, &f.Content, &f.FileType, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// GetFile retrieves a single file of a version by its normalized path
func (r *SkillRepository) GetFile(ctx context.Context, versionID, path string) (*models.SkillFile, error) {
	query := `
		SELECT id, version_id, file_path, content, file_type, created_at
		FROM skill_files
		WHERE version_id = $1 AND file_path = $2
	`

	f := &models.SkillFile{}
	err := r.db.QueryRowContext(ctx, query, versionID, path).Scan(
		&f.ID, &f.SkillVersionID, &f.Path, &f.Content, &f.FileType, &f.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
