package shared

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrAPIKeyMismatch indicates the presented key does not match the configured hash.
var ErrAPIKeyMismatch = errors.New("api key mismatch")

// APIKeyVerifier checks presented API keys against a stored bcrypt hash.
type APIKeyVerifier struct {
	hash []byte
}

// NewAPIKeyVerifier builds a verifier. An empty hash disables verification,
// which is only acceptable in development.
func NewAPIKeyVerifier(hash string) *APIKeyVerifier {
	return &APIKeyVerifier{hash: []byte(hash)}
}

// Enabled reports whether a hash is configured.
func (v *APIKeyVerifier) Enabled() bool {
	return v != nil && len(v.hash) > 0
}

// Verify compares the presented key against the configured hash.
func (v *APIKeyVerifier) Verify(key string) error {
	if !v.Enabled() {
		return nil
	}
	if key == "" {
		return ErrAPIKeyMismatch
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		return ErrAPIKeyMismatch
	}
	return nil
}

// HashAPIKey produces a bcrypt hash for provisioning new API keys.
func HashAPIKey(key string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
