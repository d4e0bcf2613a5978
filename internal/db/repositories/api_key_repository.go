// api_key_repository.go implements database access for machine API keys.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/skills-hub/skills-hub/internal/db/models"
)

// APIKeyRepository handles API key database operations.
//
// Authentication looks keys up by the SHA-256 hash of the presented secret
// with a single indexed equality match. There is no prefix scan and no
// candidate-set verification step; the hash column is unique.
type APIKeyRepository struct {
	db *sql.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// CreateAPIKey creates a new API key record
func (r *APIKeyRepository) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	key.ID = uuid.New().String()
	key.IsActive = true
	key.CreatedAt = time.Now()

	query := `
		INSERT INTO api_keys (id, user_id, name, key_hash, key_encrypted, scopes, allowed_tags, is_active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	// allowed_tags is NOT NULL; a key scoped to nothing stores an empty array.
	allowedTags := key.AllowedTags
	if allowedTags == nil {
		allowedTags = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.UserID,
		key.Name,
		key.KeyHash,
		key.KeyEncrypted,
		pq.Array(key.Scopes),
		pq.Array(allowedTags),
		key.IsActive,
		key.ExpiresAt,
		key.CreatedAt,
	)

	return err
}

const apiKeyColumns = `id, user_id, name, key_hash, key_encrypted, scopes, allowed_tags, is_active, expires_at, last_used_at, created_at`

func scanAPIKey(scanner interface{ Scan(...any) error }) (*models.APIKey, error) {
	key := &models.APIKey{}
	var scopes, allowedTags pq.StringArray

	err := scanner.Scan(
		&key.ID,
		&key.UserID,
		&key.Name,
		&key.KeyHash,
		&key.KeyEncrypted,
		&scopes,
		&allowedTags,
		&key.IsActive,
		&key.ExpiresAt,
		&key.LastUsedAt,
		&key.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	key.Scopes = scopes
	// Rows predating the NOT NULL constraint may scan a NULL allow-list.
	// Normalize to an empty slice so the tag scope denies, never widens.
	key.AllowedTags = allowedTags
	if key.AllowedTags == nil {
		key.AllowedTags = []string{}
	}
	return key, nil
}

// GetByHash retrieves an API key by the SHA-256 hex digest of its secret.
// Returns nil when no key matches.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1`
	return scanAPIKey(r.db.QueryRowContext(ctx, query, keyHash))
}

// GetByID retrieves an API key by ID
func (r *APIKeyRepository) GetByID(ctx context.Context, keyID string) (*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`
	return scanAPIKey(r.db.QueryRowContext(ctx, query, keyID))
}

// ListByUser retrieves all API keys belonging to a user, newest first
func (r *APIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]*models.APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// UpdateAllowedTags replaces a key's tag scope allow-list
func (r *APIKeyRepository) UpdateAllowedTags(ctx context.Context, keyID string, allowedTags []string) error {
	if allowedTags == nil {
		allowedTags = []string{}
	}
	query := `UPDATE api_keys SET allowed_tags = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, keyID, pq.Array(allowedTags))
	return err
}

// Deactivate revokes a key without deleting its usage history linkage
func (r *APIKeyRepository) Deactivate(ctx context.Context, keyID string) error {
	query := `UPDATE api_keys SET is_active = FALSE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, keyID)
	return err
}

// DeleteAPIKey permanently deletes a key. Usage rows keep their history with
// the key reference nulled by the schema.
func (r *APIKeyRepository) DeleteAPIKey(ctx context.Context, keyID string) error {
	query := `DELETE FROM api_keys WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, keyID)
	return err
}

// TouchLastUsed records that a key was just used for authentication.
// Called off the request path; failures are logged, not surfaced.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, keyID string) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, keyID, time.Now())
	return err
}

// DeleteExpired removes keys whose expiry has passed and returns how many
// were deleted. Run periodically by the cleanup job.
func (r *APIKeyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM api_keys WHERE expires_at IS NOT NULL AND expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
