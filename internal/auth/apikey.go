// Package auth provides authentication primitives for the Skills Hub backend:
// API key generation/hashing, session JWT creation/verification, password
// hashing, and the Principal type produced by request authentication.
// See internal/middleware/auth.go for the request-time logic that uses these.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// APIKeyLength is the length of the random part of the API key in bytes
	APIKeyLength = 32

	// APIKeyPrefix marks Skills Hub API keys so they are recognizable in
	// configuration files and secret scanners
	APIKeyPrefix = "skh_"
)

// GenerateAPIKey creates a new random API key.
// Returns the full key (shown to the owner once) and its SHA-256 hex hash
// (the stored credential). The hash is deterministic so authentication is a
// single exact-equality lookup on the hash column; keys are never looked up
// by prefix or substring.
func GenerateAPIKey() (key string, hash string, err error) {
	randomBytes := make([]byte, APIKeyLength)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	fullKey := APIKeyPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	return fullKey, HashAPIKey(fullKey), nil
}

// HashAPIKey returns the SHA-256 hex digest of a raw API key
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// ExtractBearerToken extracts the credential from an Authorization header.
// Expected format: "Bearer skh_abc123..." or "Bearer <session-jwt>"
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is empty")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", errors.New("credential is empty after Bearer prefix")
	}

	return token, nil
}
