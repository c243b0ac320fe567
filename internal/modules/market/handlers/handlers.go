// Package handlers provides HTTP handlers for market view operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/modules/market"
)

// Handler handles market HTTP requests
type Handler struct {
	repo *market.Repository
	log  zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(repo *market.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetTrending handles GET /api/market/trending
func (h *Handler) HandleGetTrending(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 || parsed > 100 {
			http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	trending, err := h.repo.GetTrendingCompanies(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trending companies")
		http.Error(w, "Failed to fetch trending companies", http.StatusInternalServerError)
		return
	}
	if trending == nil {
		trending = []market.TrendingCompany{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"trending_companies": trending,
		},
		"metadata": map[string]interface{}{
			"count":     len(trending),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetSectors handles GET /api/market/sectors
func (h *Handler) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.repo.GetSectorAnalysis()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch sector analysis")
		http.Error(w, "Failed to fetch sector analysis", http.StatusInternalServerError)
		return
	}
	if sectors == nil {
		sectors = []market.SectorSummary{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"sector_analysis": sectors,
		},
		"metadata": map[string]interface{}{
			"count":     len(sectors),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetCompanies handles GET /api/market/companies
func (h *Handler) HandleGetCompanies(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.repo.GetCompanyOverviews()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch company overviews")
		http.Error(w, "Failed to fetch company overviews", http.StatusInternalServerError)
		return
	}
	if overviews == nil {
		overviews = []market.CompanyOverview{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"companies": overviews,
		},
		"metadata": map[string]interface{}{
			"count":     len(overviews),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetPortfolio handles GET /api/portfolio?symbols=AAPL,MSFT
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		http.Error(w, "symbols query parameter is required", http.StatusBadRequest)
		return
	}

	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		http.Error(w, "symbols query parameter is required", http.StatusBadRequest)
		return
	}

	portfolio, err := h.repo.GetPortfolio(symbols)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch portfolio analysis")
		http.Error(w, "Failed to fetch portfolio analysis", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": portfolio,
		"metadata": map[string]interface{}{
			"requested": len(symbols),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetIndices handles GET /api/market/indices
func (h *Handler) HandleGetIndices(w http.ResponseWriter, r *http.Request) {
	indices, err := h.repo.GetLatestIndices()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch indices")
		http.Error(w, "Failed to fetch indices", http.StatusInternalServerError)
		return
	}
	if indices == nil {
		indices = []market.Index{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"indices": indices,
		},
		"metadata": map[string]interface{}{
			"count":     len(indices),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
