package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/identity-service/internal/domain"
)

// ExternalIdentity is the normalized output of one provider login attempt.
// It is transient and never persisted as-is.
type ExternalIdentity struct {
	ProviderUserID string
	Email          string
	DisplayName    string
	AvatarURL      string
	RefreshToken   string
}

// Provider normalizes a provider-specific authorization flow. The credential
// is an access token for Kakao and an authorization code for Apple and
// Google.
type Provider interface {
	Type() domain.SocialType
	Exchange(ctx context.Context, credential string) (*ExternalIdentity, error)
}

// TokenRefresher mints a short-lived provider access token from a stored
// refresh token. Apple and Google need this before revocation.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// Revoker revokes the application's grant at the provider using a provider
// access token.
type Revoker interface {
	Revoke(ctx context.Context, accessToken string) error
}

// Registry resolves a provider adapter by social type.
type Registry map[domain.SocialType]Provider

func (r Registry) Get(socialType domain.SocialType) (Provider, error) {
	p, ok := r[socialType]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %s", socialType)
	}
	return p, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func drainError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("provider responded %d: %s", resp.StatusCode, string(body))
}
