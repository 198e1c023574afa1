package server

import (
	"context"
	"io"
	"net/http"

	"github.com/bobmcallan/folio/internal/models"
)

// handlePortfolios handles GET/POST /api/portfolios.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePortfolioList(w, r)
	case http.MethodPost:
		s.handlePortfolioCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.app.PortfolioService.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolios": portfolios,
		"count":      len(portfolios),
	})
}

func (s *Server) handlePortfolioCreate(w http.ResponseWriter, r *http.Request) {
	var portfolio models.Portfolio
	if !DecodeJSON(w, r, &portfolio) {
		return
	}

	created, err := s.app.PortfolioService.Create(r.Context(), &portfolio)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.triggerRefresh(created.ID)
	WriteJSON(w, http.StatusCreated, created)
}

// handlePortfolioImport handles POST /api/portfolios/import. The portfolio
// file is sent as multipart form data under "file", with client_id, name
// and currency as form fields.
func (s *Server) handlePortfolioImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	opts := models.ImportOptions{
		ClientID: r.FormValue("client_id"),
		Name:     r.FormValue("name"),
		Currency: r.FormValue("currency"),
	}

	portfolio, err := s.app.PortfolioService.Import(r.Context(), header.Filename, data, opts)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.triggerRefresh(portfolio.ID)
	WriteJSON(w, http.StatusCreated, portfolio)
}

// handlePortfolioByID handles GET/DELETE /api/portfolios/{id}.
func (s *Server) handlePortfolioByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		portfolio, err := s.app.PortfolioService.Get(r.Context(), id)
		if err != nil {
			if isNotFoundError(err) {
				WriteError(w, http.StatusNotFound, err.Error())
			} else {
				WriteError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		WriteJSON(w, http.StatusOK, portfolio)
	case http.MethodDelete:
		if err := s.app.PortfolioService.Delete(r.Context(), id); err != nil {
			if isNotFoundError(err) {
				WriteError(w, http.StatusNotFound, err.Error())
			} else {
				WriteError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handlePortfolioAnalysis handles GET /api/portfolios/{id}/analysis. A cache
// miss returns a processing placeholder and kicks off a background refresh.
func (s *Server) handlePortfolioAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cached, err := s.app.Scheduler.GetAnalysis(r.Context(), id)
	if err != nil {
		if isNotFoundError(err) {
			WriteError(w, http.StatusNotFound, err.Error())
		} else {
			WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	WriteJSON(w, http.StatusOK, cached)
}

// handlePortfolioNews handles GET /api/portfolios/{id}/news.
func (s *Server) handlePortfolioNews(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cached, err := s.app.Scheduler.GetNews(r.Context(), id)
	if err != nil {
		if isNotFoundError(err) {
			WriteError(w, http.StatusNotFound, err.Error())
		} else {
			WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	WriteJSON(w, http.StatusOK, cached)
}

// handlePortfolioRefresh handles POST /api/portfolios/{id}/refresh. The
// refresh runs synchronously and the fresh analysis status is returned.
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.Scheduler.RefreshPortfolio(r.Context(), id); err != nil {
		if isNotFoundError(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		// Refresh failures are recorded against the portfolio; report
		// them without a 5xx so clients can read the cached error state.
		WriteJSON(w, http.StatusOK, map[string]string{
			"status": models.StatusError,
			"id":     id,
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": models.StatusCompleted,
		"id":     id,
	})
}

// triggerRefresh starts a background analysis refresh for a newly stored
// portfolio. Failures are recorded by the scheduler, not surfaced here.
func (s *Server) triggerRefresh(portfolioID string) {
	go func() {
		if err := s.app.Scheduler.RefreshPortfolio(context.Background(), portfolioID); err != nil {
			s.logger.Warn().Err(err).Str("portfolio", portfolioID).Msg("Background refresh after import failed")
		}
	}()
}
