package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/vmctrl/pkg/app"
	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/config"
)

func testApp() app.App {
	return app.App{
		Tokens: auth.NewTokenService("test-secret", time.Hour),
		Config: &config.Config{CORS: config.CORS{Origin: "*", Methods: "GET,POST", Headers: "Authorization,Content-Type"}},
	}
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	router := NewRouter(testApp())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestProtectedRouteRejectsMissingBearer(t *testing.T) {
	router := NewRouter(testApp())

	req := httptest.NewRequest(http.MethodGet, "/servers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	assert.JSONEq(t, `{"error":"Authorization token is missing or invalid!"}`, w.Body.String())
}

func TestServerActionRejectsUnsupportedActionBeforeTouchingStore(t *testing.T) {
	a := testApp()
	router := NewRouter(a)
	token, err := a.Tokens.Issue("11111111-1111-1111-1111-111111111111")
	assert.NoError(t, err)

	body := strings.NewReader(`{"action":"explode"}`)
	req := httptest.NewRequest(http.MethodPost, "/servers/some-id/actions", body)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
}
