package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/store"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondResult writes the 200 `{"result": ...}` envelope spec §6.1
// uses for every synchronous success response.
func respondResult(w http.ResponseWriter, result interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

// respondAccepted writes the empty 202 body spec §6.1 specifies for
// every fire-and-forget mutating endpoint.
func respondAccepted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusAccepted)
}

// respondError applies spec §6.3's collapse rule: Auth{Token} and
// Auth{Login} each carry their own literal body, ownership-check misses
// become 404, and everything else becomes the generic 500 body.
func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found!"})
		return
	}

	if e, ok := apperr.As(err); ok && e.Kind == apperr.KindAuth {
		switch e.AuthSub {
		case apperr.AuthLogin:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Incorrect email or password!"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization token is missing or invalid!"})
		}
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error!"})
}
