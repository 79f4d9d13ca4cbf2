package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/orchestrator"
	"github.com/cuemby/vmctrl/pkg/store"
	"github.com/cuemby/vmctrl/pkg/types"
)

type newServerRequest struct {
	ProductID  string `json:"product_id"`
	HostName   string `json:"host_name"`
	CPUCores   int64  `json:"cpu_cores"`
	RAMGB      int64  `json:"ram_gb"`
	OS         string `json:"os"`
	Datacenter string `json:"datacenter"`
}

type actionRequest struct {
	Action types.Action `json:"action"`
}

// handleListServers implements spec §6.1 `GET /servers`.
func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	servers, err := store.ListServersForUser(r.Context(), s.app.Store.Pool, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if servers == nil {
		servers = []types.ServerView{}
	}
	respondResult(w, servers)
}

// handleGetServer implements spec §6.1 `GET /servers/{id}`: a 404 if
// the server doesn't exist or isn't owned by the caller.
func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	serverID := chi.URLParam(r, "id")

	view, err := store.GetServerForUser(r.Context(), s.app.Store.Pool, userID, serverID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondResult(w, view)
}

// handleCreateServer implements spec §4.7.1/§6.1 `POST /servers`: spawn
// the setup orchestration detached from the request and return 202
// immediately (spec §4.8/§5 — cancelling this request must not cancel
// the orchestration, so it runs against context.Background()).
func (s *Server) handleCreateServer(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req newServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err)
		return
	}

	params := orchestrator.SetupParams{
		HostName:  req.HostName,
		ProductID: req.ProductID,
		Config: types.NewServerConfig{
			CPUCores:   req.CPUCores,
			RAMGB:      req.RAMGB,
			OS:         req.OS,
			Datacenter: req.Datacenter,
		},
	}

	handle := s.app.Clone()
	go orchestrator.Setup(context.Background(), handle, userID, params)

	respondAccepted(w)
}

// handleDeleteServer implements spec §4.7.3/§6.1 `DELETE /servers/{id}`.
// Ownership is checked synchronously before spawning, so a mismatched
// tenant gets 404 instead of a misleading 202 (spec §8 Testable
// Property "Ownership").
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	serverID := chi.URLParam(r, "id")

	if _, err := store.GetServerStatusForUser(r.Context(), s.app.Store.Pool, userID, serverID); err != nil {
		respondError(w, err)
		return
	}

	handle := s.app.Clone()
	go orchestrator.Delete(context.Background(), handle, userID, serverID)

	respondAccepted(w)
}

// handleServerAction implements spec §4.7.2/§6.1
// `POST /servers/{id}/actions`.
func (s *Server) handleServerAction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	serverID := chi.URLParam(r, "id")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Action.Valid() {
		respondError(w, apperr.NewNotSupported("unsupported action"))
		return
	}

	if _, err := store.GetServerStatusForUser(r.Context(), s.app.Store.Pool, userID, serverID); err != nil {
		respondError(w, err)
		return
	}

	handle := s.app.Clone()
	go orchestrator.Action(context.Background(), handle, userID, serverID, req.Action)

	respondAccepted(w)
}
