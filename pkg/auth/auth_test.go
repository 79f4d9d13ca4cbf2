package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong password"))
}

func TestTokenServiceIssueAndParse(t *testing.T) {
	ts := NewTokenService("super-secret", time.Hour)
	token, err := ts.Issue("user-123")
	require.NoError(t, err)

	userID, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	ts := NewTokenService("super-secret", -time.Hour)
	token, err := ts.Issue("user-123")
	require.NoError(t, err)

	_, err = ts.Parse(token)
	require.Error(t, err)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.Error(t, err)
}

func TestRequireBearerRejectsMissingHeader(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	handler := RequireBearer(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/servers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireBearerAcceptsValidToken(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	token, err := ts.Issue("user-123")
	require.NoError(t, err)

	var seenUserID string
	handler := RequireBearer(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/servers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", seenUserID)
}
