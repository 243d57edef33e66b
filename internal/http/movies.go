package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/catalog"
	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

const maxQueryLength = 200

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type sectionsResponse struct {
	PassID   string                 `json:"passId,omitempty"`
	Sections []domain.SectionReport `json:"sections"`
	Items    []movieResponse        `json:"items"`
}

type searchResponse struct {
	Query string          `json:"query"`
	Items []movieResponse `json:"items"`
}

type genreListResponse struct {
	Items []genreResponse `json:"items"`
}

type genreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type movieResponse struct {
	ID                   int      `json:"id"`
	Title                string   `json:"title"`
	Overview             string   `json:"overview"`
	PosterURL            *string  `json:"posterUrl,omitempty"`
	ReleaseDate          *string  `json:"releaseDate,omitempty"`
	FormattedReleaseDate string   `json:"formattedReleaseDate"`
	VoteAverage          *float64 `json:"voteAverage,omitempty"`
	GenreIDs             []int    `json:"genreIds"`
	Genres               []string `json:"genres"`
	GenresText           string   `json:"genresText"`
	Section              string   `json:"section,omitempty"`
	StorefrontURL        string   `json:"storefrontUrl"`
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	pass, listing := s.catalog.Browse(r.Context())

	resp := toSectionsResponse(listing)
	resp.PassID = pass.ID
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "section")
	listing, err := s.catalog.Section(r.Context(), key)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownSection) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown section "+key)
			return
		}
		s.logger.Error("fetch section failed", zap.String("section", key), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load section")
		return
	}
	s.respondJSON(w, http.StatusOK, toSectionsResponse(listing))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movies, err := s.catalog.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "q is required")
			return
		}
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Search is unavailable")
		return
	}

	genres := s.catalog.Genres(r.Context())
	items := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		items = append(items, toMovieResponse(m, "", genres))
	}
	s.respondJSON(w, http.StatusOK, searchResponse{Query: query, Items: items})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	sorted := s.catalog.Genres(r.Context()).Sorted()
	items := make([]genreResponse, 0, len(sorted))
	for _, g := range sorted {
		items = append(items, genreResponse{ID: g.ID, Name: g.Name})
	}
	s.respondJSON(w, http.StatusOK, genreListResponse{Items: items})
}

func toSectionsResponse(listing catalog.Listing) sectionsResponse {
	items := make([]movieResponse, 0, len(listing.Movies))
	for _, m := range listing.Movies {
		items = append(items, toMovieResponse(m.Movie, m.Section, listing.Genres))
	}
	sections := listing.Sections
	if sections == nil {
		sections = []domain.SectionReport{}
	}
	return sectionsResponse{Sections: sections, Items: items}
}

func toMovieResponse(m domain.Movie, section string, genres domain.GenreTable) movieResponse {
	resp := movieResponse{
		ID:                   m.ID,
		Title:                m.Title,
		Overview:             m.Overview,
		ReleaseDate:          m.ReleaseDate,
		FormattedReleaseDate: m.FormattedReleaseDate(),
		VoteAverage:          m.VoteAverage,
		GenreIDs:             m.GenreIDs,
		Genres:               m.GenreNames(genres),
		GenresText:           m.GenresText(genres),
		Section:              section,
		StorefrontURL:        m.StorefrontURL(),
	}
	if poster, ok := m.PosterURL(); ok {
		resp.PosterURL = &poster
	}
	if resp.GenreIDs == nil {
		resp.GenreIDs = []int{}
	}
	return resp
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Warn("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
