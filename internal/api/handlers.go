package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mediaharvest/mediaharvest/internal/store"
)

type recordListResponse struct {
	Records []store.MediaRecord `json:"records"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	st, err := s.siteStore(chi.URLParam(r, "site"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	q := store.Query{
		Status:         r.URL.Query().Get("status"),
		WorkflowStatus: r.URL.Query().Get("workflow_status"),
		Tag:            r.URL.Query().Get("tag"),
		Search:         r.URL.Query().Get("search"),
		SortBy:         r.URL.Query().Get("sort_by"),
		SortDesc:       r.URL.Query().Get("sort_desc") == "true",
		Page:           intQuery(r, "page", 1),
		PerPage:        intQuery(r, "per_page", store.DefaultPerPage),
	}

	records, total, err := st.ListRecords(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.MediaRecord{}
	}
	writeJSON(w, http.StatusOK, recordListResponse{
		Records: records,
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	st, err := s.siteStore(chi.URLParam(r, "site"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	tags, err := st.ListTagNames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

type batchStatusRequest struct {
	IDs            []uint `json:"ids"`
	WorkflowStatus string `json:"workflow_status"`
}

func (s *Server) batchStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.siteStore(chi.URLParam(r, "site"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var req batchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 || req.WorkflowStatus == "" {
		writeError(w, http.StatusBadRequest, "ids and workflow_status are required")
		return
	}

	affected, err := st.BatchSetWorkflowStatus(r.Context(), req.IDs, req.WorkflowStatus)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

type batchDeleteRequest struct {
	IDs []uint `json:"ids"`
}

func (s *Server) batchDelete(w http.ResponseWriter, r *http.Request) {
	st, err := s.siteStore(chi.URLParam(r, "site"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	affected, err := st.BatchDelete(r.Context(), req.IDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
