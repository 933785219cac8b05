package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	APIKeyTag       = "sk_ini_"
	apiKeyBytes     = 32
	apiKeyPrefixLen = 10
)

// ErrMalformedAPIKey is returned for keys that do not carry the tag
var ErrMalformedAPIKey = errors.New("malformed api key")

// APIKeyManager issues API keys and checks them against stored bcrypt digests
type APIKeyManager struct {
	cost int
}

// NewAPIKeyManager creates a manager hashing with the given bcrypt cost.
// A non-positive cost uses bcrypt.DefaultCost.
func NewAPIKeyManager(cost int) *APIKeyManager {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &APIKeyManager{cost: cost}
}

// Generate returns a raw key (shown once), its display prefix and its digest
func (m *APIKeyManager) Generate() (raw, prefix, hash string, err error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	raw = APIKeyTag + base64.RawURLEncoding.EncodeToString(buf)

	digest, err := bcrypt.GenerateFromPassword([]byte(raw), m.cost)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return raw, raw[:apiKeyPrefixLen], string(digest), nil
}

// Verify reports whether raw matches the stored digest
func (m *APIKeyManager) Verify(raw, hash string) bool {
	if raw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// Prefix extracts the display prefix used to look a key up
func (m *APIKeyManager) Prefix(raw string) (string, error) {
	if !strings.HasPrefix(raw, APIKeyTag) || len(raw) <= apiKeyPrefixLen {
		return "", ErrMalformedAPIKey
	}
	return raw[:apiKeyPrefixLen], nil
}
