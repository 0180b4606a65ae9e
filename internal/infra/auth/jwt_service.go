package auth

import (
	"time"

	"jobconnect/config"
	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte        // HS256 key, fixed for the process lifetime.
	ttl    time.Duration // Lifetime of a session token.
	clock  service.Clock
	parser *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config, clock service.Clock) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := 24 * time.Hour
	if cfg.Auth != nil && cfg.Auth.AccessTokenTTL > 0 {
		ttl = cfg.Auth.AccessTokenTTL
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		ttl:    ttl,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// Issue signs a session token for principal. JWT dates have whole-second
// precision, so the lifetime starts at the second the token was issued in and
// the returned expiry is the exact instant verification starts failing.
func (s *jwtService) Issue(principal entity.Principal) (string, time.Time, error) {
	now := s.clock.Now().Truncate(time.Second)
	claims := &service.Claims{
		AccountID: principal.AccountID,
		Role:      principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

// Verify parses tokenString and returns its claims. The returned error always
// matches service.ErrTokenRejected and one of the specific reasons.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	if _, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		return nil, errors.Wrap(rejectionReason(err), err.Error())
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, errors.Wrap(service.ErrTokenMalformed, "token is missing identity claims")
	}

	return claims, nil
}

func (s *jwtService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrSignatureInvalid
	}

	return s.secret, nil
}

func rejectionReason(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return service.ErrTokenSignature
	default:
		return service.ErrTokenMalformed
	}
}
