package oauth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplePrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func appleIdentityToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return token
}

func newTestAppleClient(t *testing.T, serverURL string) *AppleClient {
	t.Helper()
	c, err := NewAppleClient("team-id", "com.example.app", "key-id", testApplePrivateKeyPEM(t))
	require.NoError(t, err)
	c.authBaseURL = serverURL
	return c
}

func TestAppleExchange(t *testing.T) {
	idToken := appleIdentityToken(t, jwt.MapClaims{
		"sub":   "001234.abcdef",
		"email": "user@privaterelay.appleid.example",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "com.example.app", r.PostForm.Get("client_id"))
		assert.NotEmpty(t, r.PostForm.Get("client_secret"), "client secret assertion must be attached")
		_, _ = w.Write([]byte(`{"access_token":"a-access","refresh_token":"a-refresh","id_token":"` + idToken + `"}`))
	}))
	defer server.Close()

	identity, err := newTestAppleClient(t, server.URL).Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "001234.abcdef", identity.ProviderUserID)
	assert.Equal(t, "user@privaterelay.appleid.example", identity.Email)
	assert.Equal(t, "a-refresh", identity.RefreshToken)
}

func TestAppleExchange_MissingIDToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"a-access"}`))
	}))
	defer server.Close()

	_, err := newTestAppleClient(t, server.URL).Exchange(context.Background(), "auth-code")
	require.Error(t, err)
}

func TestAppleExchange_WithoutSigningKey(t *testing.T) {
	c, err := NewAppleClient("team-id", "com.example.app", "key-id", "")
	require.NoError(t, err)

	_, err = c.Exchange(context.Background(), "auth-code")
	require.Error(t, err, "exchange needs the signing key to build the client secret")
}

func TestAppleRefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "a-refresh", r.PostForm.Get("refresh_token"))
		_, _ = w.Write([]byte(`{"access_token":"a-access-2"}`))
	}))
	defer server.Close()

	accessToken, err := newTestAppleClient(t, server.URL).RefreshAccessToken(context.Background(), "a-refresh")
	require.NoError(t, err)
	assert.Equal(t, "a-access-2", accessToken)
}

func TestAppleRevoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/revoke", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a-access", r.PostForm.Get("token"))
		assert.Equal(t, "access_token", r.PostForm.Get("token_type_hint"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestAppleClient(t, server.URL).Revoke(context.Background(), "a-access")
	require.NoError(t, err)
}

func TestDecodeAppleIdentityToken_MissingSub(t *testing.T) {
	idToken := appleIdentityToken(t, jwt.MapClaims{"email": "x@example.com"})
	_, _, err := decodeAppleIdentityToken(idToken)
	require.Error(t, err)
}
