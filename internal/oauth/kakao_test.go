package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/identity-service/internal/domain"
)

func newTestKakaoClient(serverURL string) *KakaoClient {
	c := NewKakaoClient("admin-key")
	c.apiBaseURL = serverURL
	return c
}

func TestKakaoExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/user/me", r.URL.Path)
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 123456789,
			"properties": {"nickname": "kim", "profile_image": "https://img.kakao.example/p.jpg"},
			"kakao_account": {"email": "kim@kakao.example"}
		}`))
	}))
	defer server.Close()

	identity, err := newTestKakaoClient(server.URL).Exchange(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "123456789", identity.ProviderUserID)
	assert.Equal(t, "kim@kakao.example", identity.Email)
	assert.Equal(t, "kim", identity.DisplayName)
	assert.Equal(t, "https://img.kakao.example/p.jpg", identity.AvatarURL)
	assert.Empty(t, identity.RefreshToken)
}

func TestKakaoExchange_EmptyToken(t *testing.T) {
	_, err := NewKakaoClient("admin-key").Exchange(context.Background(), "")
	require.Error(t, err)
}

func TestKakaoExchange_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"this access token does not exist","code":-401}`))
	}))
	defer server.Close()

	_, err := newTestKakaoClient(server.URL).Exchange(context.Background(), "expired-token")
	require.Error(t, err)
}

func TestKakaoExchange_MissingUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestKakaoClient(server.URL).Exchange(context.Background(), "provider-token")
	require.Error(t, err)
}

func TestKakaoUnlinkByUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/unlink", r.URL.Path)
		assert.Equal(t, "KakaoAK admin-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user_id", r.PostForm.Get("target_id_type"))
		assert.Equal(t, "123456789", r.PostForm.Get("target_id"))
		_, _ = w.Write([]byte(`{"id":123456789}`))
	}))
	defer server.Close()

	err := newTestKakaoClient(server.URL).UnlinkByUserID(context.Background(), "123456789")
	require.NoError(t, err)
}

func TestKakaoType(t *testing.T) {
	assert.Equal(t, domain.SocialKakao, NewKakaoClient("k").Type())
}
