package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
)

// HSValidator verifies provider-minted HS256 access tokens locally using the
// shared signing secret. It only validates tokens the identity provider
// issued; it never mints them.
//
// Any token claim that looks like a role is deliberately not surfaced as an
// authorization decision: the guard re-reads the role from the store on every
// request.
type HSValidator struct {
	secret []byte
	now    func() time.Time
}

// NewHSValidator constructs a validator for the provider's HS256 secret.
func NewHSValidator(secret string) (*HSValidator, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("identity: signing secret is required")
	}
	return &HSValidator{secret: []byte(secret), now: time.Now}, nil
}

// WithClock overrides the time source used for expiry checks (test use).
func (v *HSValidator) WithClock(now func() time.Time) *HSValidator {
	if now != nil {
		v.now = now
	}
	return v
}

// Validate implements port.TokenValidator via local signature verification.
func (v *HSValidator) Validate(_ context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, port.ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, port.ErrInvalidToken
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, port.ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return domain.Principal{}, port.ErrInvalidToken
	}

	email, _ := claims["email"].(string)

	return domain.Principal{
		ID:     subject,
		Email:  email,
		Claims: map[string]any(claims),
	}, nil
}

var _ port.TokenValidator = (*HSValidator)(nil)
