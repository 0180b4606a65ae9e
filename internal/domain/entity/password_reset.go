package entity

import "time"

// DefaultPasswordResetTTL is how long a reset link stays redeemable.
const DefaultPasswordResetTTL = time.Hour

// PasswordResetToken authorizes exactly one password change for one account.
type PasswordResetToken struct {
	ID          int64     // Surrogate key used by the conditional redeem update.
	TokenHash   string    // SHA-256 hex of the raw value mailed to the user. The raw value is never stored.
	ExpiresAt   time.Time // The token is dead at and after this instant.
	Used        bool      // Flipped to true exactly once, on successful redemption.
	Role        Role      // Which account table the binding refers to.
	ApplicantID *int64    // Set when Role is RoleApplicant.
	EmployerID  *int64    // Set when Role is RoleEmployer.
	CreatedAt   time.Time
}

// NewPasswordResetToken binds a fresh token to account.
func NewPasswordResetToken(tokenHash string, account *Account, expiresAt time.Time) *PasswordResetToken {
	token := &PasswordResetToken{
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		Role:      account.Role,
	}

	id := account.ID
	switch account.Role {
	case RoleApplicant:
		token.ApplicantID = &id
	case RoleEmployer:
		token.EmployerID = &id
	}

	return token
}

// AccountID returns the id of the bound account, or false when the binding does not match Role.
func (t *PasswordResetToken) AccountID() (int64, bool) {
	switch t.Role {
	case RoleApplicant:
		if t.ApplicantID != nil {
			return *t.ApplicantID, true
		}
	case RoleEmployer:
		if t.EmployerID != nil {
			return *t.EmployerID, true
		}
	}

	return 0, false
}

// IsRedeemable reports whether the token may still authorize a password change at now.
func (t *PasswordResetToken) IsRedeemable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
