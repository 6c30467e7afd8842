package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"goancova/domain/core"
	"goancova/domain/dataset"
	apperrors "goancova/internal/errors"
	"goancova/internal/report"

	"github.com/go-chi/chi/v5"
)

// AnovaRequest selects the factors and dependent variable of an ANOVA
type AnovaRequest struct {
	Factors   []string `json:"factors"`
	Dependent string   `json:"dependent"`
}

// BatchRequest runs one ANOVA per dependent variable over the same factors
type BatchRequest struct {
	Factors    []string `json:"factors"`
	Dependents []string `json:"dependents"`
}

// WideRequest compares numerical columns as groups
type WideRequest struct {
	Columns []string `json:"columns"`
}

// AncovaRequest selects the factor, covariates and dependent of an ANCOVA
type AncovaRequest struct {
	Factor     string   `json:"factor"`
	Covariates []string `json:"covariates"`
	Dependent  string   `json:"dependent"`
}

// ColumnInfo describes one stored column
type ColumnInfo struct {
	Name    string           `json:"name"`
	Kind    dataset.Kind     `json:"kind"`
	Len     int              `json:"len"`
	Summary *dataset.Summary `json:"summary,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"columns": s.service.Store().Len(),
	})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	columns := s.service.Store().Columns()
	infos := make([]ColumnInfo, 0, len(columns))
	for _, c := range columns {
		info := ColumnInfo{Name: c.Name(), Kind: c.Kind(), Len: c.Len()}
		if c.Kind() == dataset.Numerical {
			if summary, err := c.Describe(); err == nil && finite(summary) {
				info.Summary = &summary
			}
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleAnova(w http.ResponseWriter, r *http.Request) {
	var req AnovaRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Dependent == "" || len(req.Factors) == 0 {
		writeError(w, apperrors.InvalidInput("factors and dependent are required"))
		return
	}

	record, err := s.service.Anova(r.Context(), req.Factors, req.Dependent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Factors) == 0 {
		writeError(w, apperrors.InvalidInput("factors are required"))
		return
	}

	records, err := s.service.Batch(r.Context(), req.Factors, req.Dependents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, records)
}

func (s *Server) handleAnovaWide(w http.ResponseWriter, r *http.Request) {
	var req WideRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Columns) == 0 {
		writeError(w, apperrors.InvalidInput("columns are required"))
		return
	}

	record, err := s.service.AnovaWide(r.Context(), req.Columns)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleAncova(w http.ResponseWriter, r *http.Request) {
	var req AncovaRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Dependent == "" || req.Factor == "" {
		writeError(w, apperrors.InvalidInput("factor and dependent are required"))
		return
	}

	record, err := s.service.Ancova(r.Context(), req.Factor, req.Covariates, req.Dependent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleAssumptions(w http.ResponseWriter, r *http.Request) {
	var req AnovaRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Dependent == "" || len(req.Factors) == 0 {
		writeError(w, apperrors.InvalidInput("factors and dependent are required"))
		return
	}

	result, err := s.service.Assumptions(r.Context(), req.Factors, req.Dependent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	record, err := s.service.Result(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	dependent := r.URL.Query().Get("dependent")
	if dependent == "" {
		writeError(w, apperrors.InvalidInput("dependent query parameter is required"))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperrors.InvalidInput("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := s.service.History(r.Context(), dependent, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	record, err := s.service.Result(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	md := report.Markdown(record)
	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(report.HTML(md)))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(md))
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func finite(s dataset.Summary) bool {
	for _, v := range []float64{s.Mean, s.Variance, s.StdDev, s.Median, s.Min, s.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
