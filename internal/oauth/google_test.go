package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleClient(serverURL string) *GoogleClient {
	c := NewGoogleClient("client-id", "client-secret", "https://app.example.com/callback")
	c.tokenBaseURL = serverURL
	c.apiBaseURL = serverURL
	return c
}

func TestGoogleExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "auth-code", r.PostForm.Get("code"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			_, _ = w.Write([]byte(`{"access_token":"g-access","refresh_token":"g-refresh"}`))
		case "/oauth2/v2/userinfo":
			assert.Equal(t, "Bearer g-access", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"id":"g-777","email":"User@Gmail.Example","name":"lee","picture":"https://img.google.example/p.jpg"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	identity, err := newTestGoogleClient(server.URL).Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "g-777", identity.ProviderUserID)
	assert.Equal(t, "user@gmail.example", identity.Email, "email is normalized to lower case")
	assert.Equal(t, "lee", identity.DisplayName)
	assert.Equal(t, "g-refresh", identity.RefreshToken)
}

func TestGoogleExchange_EmptyCode(t *testing.T) {
	_, err := NewGoogleClient("id", "secret", "url").Exchange(context.Background(), "")
	require.Error(t, err)
}

func TestGoogleExchange_TokenEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	_, err := newTestGoogleClient(server.URL).Exchange(context.Background(), "used-code")
	require.Error(t, err)
}

func TestGoogleRefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "g-refresh", r.PostForm.Get("refresh_token"))
		_, _ = w.Write([]byte(`{"access_token":"g-access-2"}`))
	}))
	defer server.Close()

	accessToken, err := newTestGoogleClient(server.URL).RefreshAccessToken(context.Background(), "g-refresh")
	require.NoError(t, err)
	assert.Equal(t, "g-access-2", accessToken)
}

func TestGoogleRevoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/revoke", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "g-access", r.PostForm.Get("token"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestGoogleClient(server.URL).Revoke(context.Background(), "g-access")
	require.NoError(t, err)
}
