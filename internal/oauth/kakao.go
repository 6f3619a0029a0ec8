package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/identity-service/internal/domain"
)

// KakaoClient talks to the Kakao user API. Login exchange takes a
// pre-obtained provider access token; unlink is an admin-key call keyed by
// the member's social id, no refresh token involved.
type KakaoClient struct {
	adminKey   string
	apiBaseURL string
	client     *http.Client
}

func NewKakaoClient(adminKey string) *KakaoClient {
	return &KakaoClient{
		adminKey:   adminKey,
		apiBaseURL: "https://kapi.kakao.com",
		client:     newHTTPClient(10 * time.Second),
	}
}

func (c *KakaoClient) Type() domain.SocialType {
	return domain.SocialKakao
}

type kakaoUserResponse struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

func (c *KakaoClient) Exchange(ctx context.Context, accessToken string) (*ExternalIdentity, error) {
	if accessToken == "" {
		return nil, errors.New("kakao access token is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/v2/user/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, drainError(resp)
	}

	var user kakaoUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("kakao response missing user id")
	}
	return &ExternalIdentity{
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          user.KakaoAccount.Email,
		DisplayName:    user.Properties.Nickname,
		AvatarURL:      user.Properties.ProfileImage,
	}, nil
}

// UnlinkByUserID severs the app grant for the given social id via the admin
// API.
func (c *KakaoClient) UnlinkByUserID(ctx context.Context, socialID string) error {
	data := url.Values{}
	data.Set("target_id_type", "user_id")
	data.Set("target_id", socialID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/v1/user/unlink", strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.adminKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

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
