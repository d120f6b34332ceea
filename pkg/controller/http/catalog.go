package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
)

type activityResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type providerEndpointsResponse struct {
	Provider  string                     `json:"provider"`
	Endpoints []model.DiscoveredEndpoint `json:"endpoints"`
}

func (s *Server) listEndpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.uc.Endpoint.All(r.Context()))
}

func (s *Server) providerEndpoints(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))
	endpoints, err := s.uc.Endpoint.ByProvider(r.Context(), provider)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, providerEndpointsResponse{
		Provider:  string(provider),
		Endpoints: endpoints,
	})
}

func (s *Server) providerInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.uc.Endpoint.ServiceInfo(model.Provider(chi.URLParam(r, "provider")))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

func (s *Server) environmentServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.uc.Environment.Services())
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var limit int
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(model.ErrValidation, "invalid limit", goerr.V("limit", raw)))
			return
		}
		limit = n
	}

	activities, err := s.uc.Activity.List(r.Context(), query.Get("userId"), limit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	resp := make([]activityResponse, len(activities))
	for i, a := range activities {
		resp[i] = activityResponse{
			ID:          string(a.ID),
			UserID:      a.UserID,
			Type:        string(a.Type),
			Description: a.Description,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}
