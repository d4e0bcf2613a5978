// Package crypto provides AES-256-GCM authenticated encryption for the
// recoverable copy of API key secrets (api_keys.key_encrypted). The one-way
// SHA-256 hash remains the only credential consulted during authentication;
// the encrypted copy exists solely so an owner can re-display their key, and
// is only written when an encryption secret is configured.
//
// KeyCipher is an explicitly constructed dependency, built once at startup
// from configuration and passed to the components that need it. There is no
// package-level lazily initialized cipher state.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrKeyLengthInvalid is returned when a master key is not exactly 32 bytes (required for AES-256).
	ErrKeyLengthInvalid = errors.New("crypto: key must be exactly 32 bytes for AES-256")
	// ErrCiphertextCorrupted is returned when the ciphertext fails base64 decoding or is too short to contain a valid nonce.
	ErrCiphertextCorrupted = errors.New("crypto: ciphertext is corrupted or tampered")
	// ErrDecryptionFailed is returned when AES-GCM authentication or decryption fails, indicating tampering or a wrong key.
	ErrDecryptionFailed = errors.New("crypto: decryption operation failed")
	// ErrPassphraseEmpty is returned when deriving a cipher from an empty passphrase.
	ErrPassphraseEmpty = errors.New("crypto: passphrase must not be empty")
)

// pbkdf2Iterations is the PBKDF2-SHA256 work factor for passphrase-derived keys
const pbkdf2Iterations = 100000

// keyDerivationSalt is a fixed application salt. The passphrase is a
// high-entropy deployment secret, not a user password, so a per-value random
// salt is not required; the salt only domain-separates this derivation.
var keyDerivationSalt = []byte("skills-hub/api-key-cipher/v1")

// KeyCipher encrypts and decrypts stored API key copies
type KeyCipher struct {
	masterKey []byte
}

// NewKeyCipher creates a cipher with a 32-byte master key
func NewKeyCipher(masterKey []byte) (*KeyCipher, error) {
	if len(masterKey) != 32 {
		return nil, ErrKeyLengthInvalid
	}
	keyCopy := make([]byte, 32)
	copy(keyCopy, masterKey)
	return &KeyCipher{masterKey: keyCopy}, nil
}

// DeriveKeyCipher creates a cipher by deriving a key from a passphrase
// (the auth.encryption_secret configuration value)
func DeriveKeyCipher(passphrase string) (*KeyCipher, error) {
	if passphrase == "" {
		return nil, ErrPassphraseEmpty
	}
	derivedKey := pbkdf2.Key([]byte(passphrase), keyDerivationSalt, pbkdf2Iterations, 32, sha256.New)
	return NewKeyCipher(derivedKey)
}

// Seal encrypts plaintext and returns a base64-encoded ciphertext
func (kc *KeyCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	blockCipher, err := aes.NewCipher(kc.masterKey)
	if err != nil {
		return "", err
	}

	aead, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a base64-encoded ciphertext and returns the plaintext
func (kc *KeyCipher) Open(encodedCiphertext string) (string, error) {
	if encodedCiphertext == "" {
		return "", nil
	}

	ciphertext, err := base64.URLEncoding.DecodeString(encodedCiphertext)
	if err != nil {
		return "", ErrCiphertextCorrupted
	}

	blockCipher, err := aes.NewCipher(kc.masterKey)
	if err != nil {
		return "", err
	}

	aead, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return "", err
	}

	nonceLen := aead.NonceSize()
	if len(ciphertext) < nonceLen {
		return "", ErrCiphertextCorrupted
	}

	nonce := ciphertext[:nonceLen]
	actualCiphertext := ciphertext[nonceLen:]

	plaintext, err := aead.Open(nil, nonce, actualCiphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
