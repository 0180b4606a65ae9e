package service

// ResetTokenGenerator creates password reset secrets. Only the digest is ever persisted.
type ResetTokenGenerator interface {
	// Generate returns a fresh unguessable raw token and its storage digest.
	Generate() (raw, digest string, err error)

	// Digest maps a raw token received from a user to its storage digest.
	Digest(raw string) string
}
