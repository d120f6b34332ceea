package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
)

// connectionResponse never carries raw credentials
type connectionResponse struct {
	ID           int64          `json:"id"`
	OwnerID      string         `json:"ownerId"`
	Provider     string         `json:"provider"`
	DisplayName  string         `json:"displayName"`
	Active       bool           `json:"active"`
	Credentials  map[string]any `json:"credentials"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	LastSyncedAt *time.Time     `json:"lastSyncedAt"`
}

func toConnectionResponse(conn *model.Connection) connectionResponse {
	var creds map[string]any
	if conn.Credentials != nil {
		creds = conn.Credentials.Redacted()
	}
	return connectionResponse{
		ID:           int64(conn.ID),
		OwnerID:      conn.OwnerID,
		Provider:     string(conn.Provider),
		DisplayName:  conn.DisplayName,
		Active:       conn.Active,
		Credentials:  creds,
		CreatedAt:    conn.CreatedAt,
		UpdatedAt:    conn.UpdatedAt,
		LastSyncedAt: conn.LastSyncedAt,
	}
}

type createConnectionRequest struct {
	OwnerID     string          `json:"ownerId"`
	Provider    string          `json:"provider"`
	DisplayName string          `json:"displayName"`
	Active      *bool           `json:"active"`
	Credentials json.RawMessage `json:"credentials"`
}

type updateConnectionRequest struct {
	Provider    *string         `json:"provider"`
	DisplayName *string         `json:"displayName"`
	Active      *bool           `json:"active"`
	Credentials json.RawMessage `json:"credentials"`
}

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	conns, err := s.uc.Connection.List(r.Context(), ownerID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := make([]connectionResponse, len(conns))
	for i, conn := range conns {
		resp[i] = toConnectionResponse(conn)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createConnection(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	provider, err := model.ParseProvider(req.Provider)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	if len(req.Credentials) == 0 {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(model.ErrValidation, "credentials are required"))
		return
	}
	creds, err := model.DecodeCredentials(provider, req.Credentials)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	conn, err := s.uc.Connection.Create(r.Context(), &model.Connection{
		OwnerID:     req.OwnerID,
		Provider:    provider,
		DisplayName: req.DisplayName,
		Active:      active,
		Credentials: creds,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toConnectionResponse(conn))
}

func (s *Server) getConnection(w http.ResponseWriter, r *http.Request) {
	id, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	conn, err := s.uc.Connection.Get(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toConnectionResponse(conn))
}

func (s *Server) updateConnection(w http.ResponseWriter, r *http.Request) {
	id, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	var req updateConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	current, err := s.uc.Connection.Get(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	update := &model.ConnectionUpdate{
		DisplayName: req.DisplayName,
		Active:      req.Active,
	}
	if req.Provider != nil {
		provider := model.Provider(*req.Provider)
		update.Provider = &provider
	}
	if len(req.Credentials) > 0 {
		creds, err := model.DecodeCredentials(current.Provider, req.Credentials)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err)
			return
		}
		update.Credentials = creds
	}

	conn, err := s.uc.Connection.Update(r.Context(), id, update)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toConnectionResponse(conn))
}

func (s *Server) deleteConnection(w http.ResponseWriter, r *http.Request) {
	id, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	if err := s.uc.Connection.Delete(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
