package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/infra/config"
)

const (
	userinfoPath      = "/auth/v1/user"
	defaultTimeout    = 5 * time.Second
	maxResponseBytes  = 1 << 20
	authorizationName = "Authorization"
)

// Client exchanges bearer tokens for principals against the identity
// provider's userinfo endpoint. This is the low-privilege verification path:
// the provider sees only the caller's own token, never service credentials.
//
// Every failure mode (missing token, provider rejection, network error,
// timeout) collapses to port.ErrInvalidToken so authorization fails closed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a userinfo client with a bounded request timeout.
func NewClient(cfg config.IdentitySettings, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type userinfoResponse struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Validate implements port.TokenValidator over the provider's userinfo endpoint.
func (c *Client) Validate(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, port.ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+userinfoPath, nil)
	if err != nil {
		c.logger.Warn("build userinfo request failed", zap.Error(err))
		return domain.Principal{}, port.ErrInvalidToken
	}
	req.Header.Set(authorizationName, "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("identity provider unreachable", zap.Error(err))
		return domain.Principal{}, port.ErrInvalidToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Principal{}, port.ErrInvalidToken
	}

	var payload userinfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		c.logger.Warn("malformed userinfo response", zap.Error(err))
		return domain.Principal{}, port.ErrInvalidToken
	}

	if strings.TrimSpace(payload.ID) == "" {
		return domain.Principal{}, port.ErrInvalidToken
	}

	return domain.Principal{
		ID:     payload.ID,
		Email:  payload.Email,
		Claims: payload.Metadata,
	}, nil
}

var _ port.TokenValidator = (*Client)(nil)
