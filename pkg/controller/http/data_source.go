package http

import (
	"net/http"
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
)

type dataSourceResponse struct {
	ID           int64          `json:"id"`
	ConnectionID int64          `json:"connectionId"`
	Name         string         `json:"name"`
	SourceType   string         `json:"sourceType"`
	SourceID     string         `json:"sourceId"`
	Config       map[string]any `json:"config,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func toDataSourceResponse(ds *model.DataSource) dataSourceResponse {
	return dataSourceResponse{
		ID:           int64(ds.ID),
		ConnectionID: int64(ds.ConnectionID),
		Name:         ds.Name,
		SourceType:   ds.SourceType,
		SourceID:     ds.SourceID,
		Config:       ds.Config,
		CreatedAt:    ds.CreatedAt,
	}
}

type createDataSourceRequest struct {
	Name       string         `json:"name"`
	SourceType string         `json:"sourceType"`
	SourceID   string         `json:"sourceId"`
	Config     map[string]any `json:"config"`
}

func (s *Server) listDataSources(w http.ResponseWriter, r *http.Request) {
	connID, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	sources, err := s.uc.DataSource.List(r.Context(), connID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := make([]dataSourceResponse, len(sources))
	for i, ds := range sources {
		resp[i] = toDataSourceResponse(ds)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createDataSource(w http.ResponseWriter, r *http.Request) {
	connID, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	var req createDataSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	ds, err := s.uc.DataSource.Create(r.Context(), &model.DataSource{
		ConnectionID: connID,
		Name:         req.Name,
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		Config:       req.Config,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toDataSourceResponse(ds))
}

func (s *Server) deleteDataSource(w http.ResponseWriter, r *http.Request) {
	connID, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	dsID, err := parseID(r, "dsId")
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	if err := s.uc.DataSource.Delete(r.Context(), connID, model.DataSourceID(dsID)); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	connID, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	sources, err := s.uc.DataSource.Discover(r.Context(), connID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sources)
}

func (s *Server) fetchData(w http.ResponseWriter, r *http.Request) {
	connID, err := connectionID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	data, err := s.uc.Data.Fetch(r.Context(), connID, r.URL.Query().Get("sourceId"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, data)
}
