package port

import (
	"context"
	"errors"

	"github.com/arklim/neighborhood-market/internal/core/domain"
)

// ErrInvalidToken indicates the bearer token could not be exchanged for a
// principal. Missing, malformed and expired tokens, provider errors and
// timeouts all collapse to this error so the caller fails closed.
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator exchanges an opaque bearer token for an authenticated
// principal. Implementations cross a process boundary (or verify a provider
// signature locally) and must honor context cancellation.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (domain.Principal, error)
}
