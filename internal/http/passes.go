package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
	"github.com/Clark-Hu/mytv-catalog/internal/repository"
)

type passListResponse struct {
	Items []passResponse `json:"items"`
}

type passResponse struct {
	ID         string                 `json:"id"`
	StartedAt  time.Time              `json:"startedAt"`
	FinishedAt time.Time              `json:"finishedAt"`
	DurationMS int64                  `json:"durationMs"`
	GenreCount int                    `json:"genreCount"`
	Total      int                    `json:"total"`
	Sections   []domain.SectionReport `json:"sections"`
}

func (s *Server) handleListPasses(w http.ResponseWriter, r *http.Request) {
	if s.passes == nil {
		s.respondPassesDisabled(w)
		return
	}
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	passes, err := s.passes.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list passes failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list passes")
		return
	}

	items := make([]passResponse, 0, len(passes))
	for _, p := range passes {
		items = append(items, toPassResponse(p))
	}
	s.respondJSON(w, http.StatusOK, passListResponse{Items: items})
}

func (s *Server) handleGetPass(w http.ResponseWriter, r *http.Request) {
	if s.passes == nil {
		s.respondPassesDisabled(w)
		return
	}
	id, err := parsePassID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	pass, err := s.passes.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Pass not found")
			return
		}
		s.logger.Error("get pass failed", zap.String("pass_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load pass")
		return
	}
	s.respondJSON(w, http.StatusOK, toPassResponse(pass))
}

func (s *Server) respondPassesDisabled(w http.ResponseWriter) {
	s.respondError(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Pass history requires DB_URL")
}

func toPassResponse(p domain.Pass) passResponse {
	sections := p.Sections
	if sections == nil {
		sections = []domain.SectionReport{}
	}
	return passResponse{
		ID:         p.ID,
		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,
		DurationMS: p.Duration().Milliseconds(),
		GenreCount: p.GenreCount,
		Total:      p.Total,
		Sections:   sections,
	}
}
