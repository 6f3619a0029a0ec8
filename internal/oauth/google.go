package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/identity-service/internal/domain"
)

// GoogleClient exchanges an authorization code for profile data and a refresh
// token. Unlink mirrors Apple: refresh to an access token, then revoke.
type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	tokenBaseURL string
	apiBaseURL   string
	client       *http.Client
}

func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		tokenBaseURL: "https://oauth2.googleapis.com",
		apiBaseURL:   "https://www.googleapis.com",
		client:       newHTTPClient(10 * time.Second),
	}
}

func (c *GoogleClient) Type() domain.SocialType {
	return domain.SocialGoogle
}

type googleTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (c *GoogleClient) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	if code == "" {
		return nil, errors.New("google authorization code is empty")
	}
	data := url.Values{}
	data.Set("code", code)
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("redirect_uri", c.redirectURL)
	data.Set("grant_type", "authorization_code")

	var tokenRes googleTokenResponse
	if err := c.postForm(ctx, c.tokenBaseURL+"/token", data, &tokenRes); err != nil {
		return nil, err
	}
	if tokenRes.AccessToken == "" {
		return nil, errors.New("google response missing access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tokenRes.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp)
	}

	var user googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("google response missing user id")
	}
	return &ExternalIdentity{
		ProviderUserID: user.ID,
		Email:          strings.ToLower(user.Email),
		DisplayName:    user.Name,
		AvatarURL:      user.Picture,
		RefreshToken:   tokenRes.RefreshToken,
	}, nil
}

func (c *GoogleClient) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("refresh_token", refreshToken)

	var tokenRes googleTokenResponse
	if err := c.postForm(ctx, c.tokenBaseURL+"/token", data, &tokenRes); err != nil {
		return "", err
	}
	if tokenRes.AccessToken == "" {
		return "", errors.New("google refresh returned empty access token")
	}
	return tokenRes.AccessToken, nil
}

func (c *GoogleClient) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{}
	data.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenBaseURL+"/revoke", strings.NewReader(data.Encode()))
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

func (c *GoogleClient) postForm(ctx context.Context, endpoint string, data url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
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
	return json.NewDecoder(resp.Body).Decode(out)
}
