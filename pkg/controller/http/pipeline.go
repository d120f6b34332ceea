package http

import (
	"net/http"
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/usecase"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
)

type pipelineResponse struct {
	ID            int64          `json:"id"`
	OwnerID       string         `json:"ownerId"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	DataSourceIDs []int64        `json:"dataSourceIds"`
	Config        map[string]any `json:"config,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func toPipelineResponse(p *model.Pipeline) pipelineResponse {
	ids := make([]int64, len(p.DataSourceIDs))
	for i, id := range p.DataSourceIDs {
		ids[i] = int64(id)
	}
	return pipelineResponse{
		ID:            int64(p.ID),
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Description:   p.Description,
		DataSourceIDs: ids,
		Config:        p.Config,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type pipelineRequest struct {
	OwnerID       string         `json:"ownerId"`
	Name          *string        `json:"name"`
	Description   *string        `json:"description"`
	DataSourceIDs []int64        `json:"dataSourceIds"`
	Config        map[string]any `json:"config"`
}

func (req *pipelineRequest) dataSourceIDs() []model.DataSourceID {
	if req.DataSourceIDs == nil {
		return nil
	}
	ids := make([]model.DataSourceID, len(req.DataSourceIDs))
	for i, id := range req.DataSourceIDs {
		ids[i] = model.DataSourceID(id)
	}
	return ids
}

func pipelineID(r *http.Request) (model.PipelineID, error) {
	id, err := parseID(r, "id")
	return model.PipelineID(id), err
}

func (s *Server) listPipelines(w http.ResponseWriter, r *http.Request) {
	pipelines, err := s.uc.Pipeline.List(r.Context(), r.URL.Query().Get("ownerId"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := make([]pipelineResponse, len(pipelines))
	for i, p := range pipelines {
		resp[i] = toPipelineResponse(p)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createPipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	pipeline := &model.Pipeline{
		OwnerID:       req.OwnerID,
		DataSourceIDs: req.dataSourceIDs(),
		Config:        req.Config,
	}
	if req.Name != nil {
		pipeline.Name = *req.Name
	}
	if req.Description != nil {
		pipeline.Description = *req.Description
	}

	created, err := s.uc.Pipeline.Create(r.Context(), pipeline)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toPipelineResponse(created))
}

func (s *Server) getPipeline(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	pipeline, err := s.uc.Pipeline.Get(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPipelineResponse(pipeline))
}

func (s *Server) updatePipeline(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	var req pipelineRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	updated, err := s.uc.Pipeline.Update(r.Context(), id, &usecase.PipelineUpdate{
		Name:          req.Name,
		Description:   req.Description,
		DataSourceIDs: req.dataSourceIDs(),
		Config:        req.Config,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPipelineResponse(updated))
}

func (s *Server) deletePipeline(w http.ResponseWriter, r *http.Request) {
	id, err := pipelineID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	if err := s.uc.Pipeline.Delete(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
