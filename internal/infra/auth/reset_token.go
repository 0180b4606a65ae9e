package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"jobconnect/internal/domain/service"

	"github.com/pkg/errors"
)

// resetTokenBytes is the entropy of a raw reset token before hex encoding.
const resetTokenBytes = 32

type resetTokenGenerator struct{}

// NewResetTokenGenerator returns the crypto/rand backed generator.
func NewResetTokenGenerator() service.ResetTokenGenerator {
	return resetTokenGenerator{}
}

// Generate returns a raw token to mail out and the digest to store.
func (resetTokenGenerator) Generate() (raw, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Wrap(err, "failed to read random bytes")
	}

	raw = hex.EncodeToString(buf)

	return raw, HashResetToken(raw), nil
}

// Digest maps a raw token to its lookup key.
func (resetTokenGenerator) Digest(raw string) string {
	return HashResetToken(raw)
}

// HashResetToken returns the SHA-256 hex digest of raw.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
