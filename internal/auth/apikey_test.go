package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	key, hash, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(key, APIKeyPrefix) {
		t.Errorf("key %q missing %q prefix", key, APIKeyPrefix)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if HashAPIKey(key) != hash {
		t.Error("returned hash does not match HashAPIKey(key)")
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	k1, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	k2, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if k1 == k2 {
		t.Error("two generated keys are identical")
	}
}

func TestHashAPIKey_Deterministic(t *testing.T) {
	if HashAPIKey("skh_example") != HashAPIKey("skh_example") {
		t.Error("hash is not deterministic")
	}
	if HashAPIKey("skh_example") == HashAPIKey("skh_other") {
		t.Error("distinct keys hash identically")
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer skh_abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "skh_abc123" {
		t.Errorf("token = %q", token)
	}

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer    "} {
		if _, err := ExtractBearerToken(header); err == nil {
			t.Errorf("ExtractBearerToken(%q) = nil error, want failure", header)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("hunter22", hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
