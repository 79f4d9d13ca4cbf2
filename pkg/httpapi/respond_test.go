package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/store"
)

func TestRespondErrorMapsNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, store.ErrNotFound)

	assert.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"error":"Not found!"}`, w.Body.String())
}

func TestRespondErrorMapsAuthToken(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, apperr.NewAuth(apperr.AuthToken, "bad token"))

	assert.Equal(t, 401, w.Code)
	assert.JSONEq(t, `{"error":"Authorization token is missing or invalid!"}`, w.Body.String())
}

func TestRespondErrorMapsAuthLogin(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, apperr.NewAuth(apperr.AuthLogin, "nope"))

	assert.Equal(t, 401, w.Code)
	assert.JSONEq(t, `{"error":"Incorrect email or password!"}`, w.Body.String())
}

func TestRespondErrorCollapsesEverythingElseTo500(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, apperr.NewNotSupported("nope"))

	assert.Equal(t, 500, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error!"}`, w.Body.String())
}

func TestRespondResultWrapsInResultEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	respondResult(w, map[string]string{"id": "abc"})

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"result":{"id":"abc"}}`, w.Body.String())
}

func TestRespondAcceptedWritesEmptyBody(t *testing.T) {
	w := httptest.NewRecorder()
	respondAccepted(w)

	assert.Equal(t, 202, w.Code)
	assert.Empty(t, w.Body.String())
}
