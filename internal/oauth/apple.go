package oauth

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/identity-service/internal/domain"
)

// AppleClient implements Sign in with Apple. Exchange trades an authorization
// code for token material and decodes the identity token for the stable
// subject and email. Unlink needs a fresh access token minted from the stored
// refresh token before calling the revoke endpoint.
type AppleClient struct {
	teamID      string
	clientID    string
	keyID       string
	signingKey  *ecdsa.PrivateKey
	authBaseURL string
	client      *http.Client
}

func NewAppleClient(teamID, clientID, keyID, privateKeyPEM string) (*AppleClient, error) {
	c := &AppleClient{
		teamID:      teamID,
		clientID:    clientID,
		keyID:       keyID,
		authBaseURL: "https://appleid.apple.com",
		client:      newHTTPClient(10 * time.Second),
	}
	if privateKeyPEM != "" {
		key, err := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse apple private key: %w", err)
		}
		c.signingKey = key
	}
	return c, nil
}

func (c *AppleClient) Type() domain.SocialType {
	return domain.SocialApple
}

// clientSecret builds the ES256 assertion Apple requires instead of a static
// client secret. Valid for five minutes, which covers a single call.
func (c *AppleClient) clientSecret() (string, error) {
	if c.signingKey == nil {
		return "", errors.New("apple signing key not configured")
	}
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": c.teamID,
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "https://appleid.apple.com",
		"sub": c.clientID,
	})
	token.Header["kid"] = c.keyID
	return token.SignedString(c.signingKey)
}

type appleTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
}

func (c *AppleClient) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	if code == "" {
		return nil, errors.New("apple authorization code is empty")
	}
	tokenRes, err := c.tokenRequest(ctx, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
	if err != nil {
		return nil, err
	}
	if tokenRes.IDToken == "" {
		return nil, errors.New("apple response missing id_token")
	}

	sub, email, err := decodeAppleIdentityToken(tokenRes.IDToken)
	if err != nil {
		return nil, err
	}
	return &ExternalIdentity{
		ProviderUserID: sub,
		Email:          email,
		RefreshToken:   tokenRes.RefreshToken,
	}, nil
}

func (c *AppleClient) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	tokenRes, err := c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return "", err
	}
	if tokenRes.AccessToken == "" {
		return "", errors.New("apple refresh returned empty access token")
	}
	return tokenRes.AccessToken, nil
}

func (c *AppleClient) Revoke(ctx context.Context, accessToken string) error {
	secret, err := c.clientSecret()
	if err != nil {
		return err
	}
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", secret)
	data.Set("token", accessToken)
	data.Set("token_type_hint", "access_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+"/auth/revoke", strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return drainError(resp)
	}
	return nil
}

func (c *AppleClient) tokenRequest(ctx context.Context, data url.Values) (*appleTokenResponse, error) {
	secret, err := c.clientSecret()
	if err != nil {
		return nil, err
	}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+"/auth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp)
	}

	var tokenRes appleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenRes); err != nil {
		return nil, err
	}
	return &tokenRes, nil
}

// decodeAppleIdentityToken extracts sub and email from the identity token.
// The token arrives over TLS directly from Apple's token endpoint in the same
// exchange, so the payload is read without a JWKS signature check.
func decodeAppleIdentityToken(idToken string) (sub, email string, err error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return "", "", fmt.Errorf("decode apple id_token: %w", err)
	}
	sub, _ = claims["sub"].(string)
	if sub == "" {
		return "", "", errors.New("apple id_token missing sub")
	}
	email, _ = claims["email"].(string)
	return sub, email, nil
}
