package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/store"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// handleRegister implements spec §4.12/§6.1 `POST /register`: hashes
// the password, inserts the user, issues a token. A duplicate email is
// a persistence unique-constraint violation, folded into the generic
// 500 per §6.3.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := store.InsertUser(r.Context(), s.app.Store.Pool, req.Email, hash, req.FirstName, req.LastName)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := s.app.Tokens.Issue(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondResult(w, tokenResponse{Token: token})
}

// handleLogin implements spec §4.12/§6.1 `POST /login`: a constant-shape
// failure for both "no such email" and "wrong password" (Auth{Login}).
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.NewAuth(apperr.AuthLogin, "malformed login request"))
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.app.Store.Pool, req.Email)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		respondError(w, apperr.NewAuth(apperr.AuthLogin, "incorrect email or password"))
		return
	}

	token, err := s.app.Tokens.Issue(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondResult(w, tokenResponse{Token: token})
}

// handleMe implements spec §6.1 `GET /user/me`.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := store.GetUserByID(r.Context(), s.app.Store.Pool, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondResult(w, user)
}
