package service

import (
	"errors"
	"fmt"
	"time"

	"jobconnect/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenRejected is the single outcome callers see for any unusable session token.
var ErrTokenRejected = errors.New("session token rejected")

// Rejection reasons. All of them match ErrTokenRejected; the distinction is kept for logs.
var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrTokenRejected)
	ErrTokenSignature = fmt.Errorf("%w: signature invalid", ErrTokenRejected)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrTokenRejected)
)

// Claims defines the custom claims for the session token.
// The registered subject holds the account email.
type Claims struct {
	AccountID int64       `json:"aid"`
	Role      entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal projects the claims onto the request identity.
func (c *Claims) Principal() entity.Principal {
	return entity.Principal{
		AccountID: c.AccountID,
		Email:     c.Subject,
		Role:      c.Role,
	}
}

// TokenService issues and verifies signed, time-bounded session tokens.
type TokenService interface {
	// Issue signs a token for principal and returns it with its expiry.
	Issue(principal entity.Principal) (token string, expiresAt time.Time, err error)

	// Verify checks signature, structure and expiry. Any failure wraps ErrTokenRejected.
	Verify(token string) (*Claims, error)
}
