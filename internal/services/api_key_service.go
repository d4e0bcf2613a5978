// api_key_service.go implements API key issuance and management. The raw
// secret is returned exactly once at creation; afterwards only the SHA-256
// hash exists, plus an optional encrypted copy when a cipher is configured.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/skills-hub/skills-hub/internal/auth"
	"github.com/skills-hub/skills-hub/internal/crypto"
	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
)

// APIKeyService handles API key lifecycle for human callers
type APIKeyService struct {
	keyRepo *repositories.APIKeyRepository
	cipher  *crypto.KeyCipher // nil when no encryption secret is configured
}

// NewAPIKeyService creates a new APIKeyService. cipher may be nil, in which
// case no recoverable key copy is stored and reveal is unavailable.
func NewAPIKeyService(keyRepo *repositories.APIKeyRepository, cipher *crypto.KeyCipher) *APIKeyService {
	return &APIKeyService{keyRepo: keyRepo, cipher: cipher}
}

// CreateKeyInput carries the fields accepted on key creation
type CreateKeyInput struct {
	Name        string   `json:"name" binding:"required"`
	Scopes      []string `json:"scopes"`
	AllowedTags []string `json:"allowed_tags"`
	ExpiresIn   *int     `json:"expires_in_days"`
}

// CreateKey issues a new API key for the user and returns the record together
// with the raw secret, which is never retrievable by hash afterwards.
func (s *APIKeyService) CreateKey(ctx context.Context, user *models.UserWithMemberships, input CreateKeyInput) (*models.APIKey, string, error) {
	scopes := input.Scopes
	if len(scopes) == 0 {
		scopes = []string{models.ScopeRead}
	}
	for _, scope := range scopes {
		if scope != models.ScopeRead && scope != models.ScopeWrite {
			return nil, "", Invalidf("invalid scope: %s", scope)
		}
	}

	rawKey, hash, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}

	// Tag scopes deny by default; a key with no configured allow-list stores
	// an empty list and resolves nothing under the tag_scoped policy.
	allowedTags := input.AllowedTags
	if allowedTags == nil {
		allowedTags = []string{}
	}

	key := &models.APIKey{
		UserID:      user.ID,
		Name:        input.Name,
		KeyHash:     hash,
		Scopes:      scopes,
		AllowedTags: allowedTags,
	}
	if input.ExpiresIn != nil {
		if *input.ExpiresIn <= 0 {
			return nil, "", Invalidf("expiry must be a positive number of days")
		}
		expires := time.Now().AddDate(0, 0, *input.ExpiresIn)
		key.ExpiresAt = &expires
	}

	if s.cipher != nil {
		encrypted, err := s.cipher.Seal(rawKey)
		if err != nil {
			return nil, "", err
		}
		key.KeyEncrypted = &encrypted
	}

	if err := s.keyRepo.CreateAPIKey(ctx, key); err != nil {
		return nil, "", err
	}

	slog.Info("api key created", "key_id", key.ID, "user_id", user.ID, "scopes", scopes)
	return key, rawKey, nil
}

// ListKeys lists the user's keys, newest first
func (s *APIKeyService) ListKeys(ctx context.Context, user *models.UserWithMemberships) ([]*models.APIKey, error) {
	return s.keyRepo.ListByUser(ctx, user.ID)
}

// getOwned loads a key and verifies the caller owns it. Other users' keys
// read as NotFound, not Forbidden, to avoid confirming they exist.
func (s *APIKeyService) getOwned(ctx context.Context, user *models.UserWithMemberships, keyID string) (*models.APIKey, error) {
	key, err := s.keyRepo.GetByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if key == nil || key.UserID != user.ID {
		return nil, NotFoundf("api key not found")
	}
	return key, nil
}

// RevealKey decrypts the stored copy of the secret for display. Available
// only when an encryption secret is configured and the key stored a copy.
func (s *APIKeyService) RevealKey(ctx context.Context, user *models.UserWithMemberships, keyID string) (string, error) {
	if s.cipher == nil {
		return "", NotFoundf("key recovery is not enabled")
	}
	key, err := s.getOwned(ctx, user, keyID)
	if err != nil {
		return "", err
	}
	if key.KeyEncrypted == nil {
		return "", NotFoundf("no recoverable copy stored for this key")
	}
	return s.cipher.Open(*key.KeyEncrypted)
}

// UpdateAllowedTags replaces the key's tag scope allow-list. An empty list
// configures deny-all.
func (s *APIKeyService) UpdateAllowedTags(ctx context.Context, user *models.UserWithMemberships, keyID string, allowedTags []string) (*models.APIKey, error) {
	key, err := s.getOwned(ctx, user, keyID)
	if err != nil {
		return nil, err
	}
	if allowedTags == nil {
		allowedTags = []string{}
	}
	if err := s.keyRepo.UpdateAllowedTags(ctx, key.ID, allowedTags); err != nil {
		return nil, err
	}
	key.AllowedTags = allowedTags
	return key, nil
}

// DeleteKey permanently deletes one of the user's keys
func (s *APIKeyService) DeleteKey(ctx context.Context, user *models.UserWithMemberships, keyID string) error {
	key, err := s.getOwned(ctx, user, keyID)
	if err != nil {
		return err
	}
	return s.keyRepo.DeleteAPIKey(ctx, key.ID)
}
