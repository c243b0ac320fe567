package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/verdantlabs/esgboard/internal/clients/alphavantage"
	"github.com/verdantlabs/esgboard/internal/database"
)

// SystemHandlers serves process and database status endpoints
type SystemHandlers struct {
	db        *database.DB
	av        *alphavantage.Client
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system status handlers
func NewSystemHandlers(db *database.DB, av *alphavantage.Client, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:        db,
		av:        av,
		startTime: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()

	status := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"timestamp":      time.Now().Format(time.RFC3339),
	}

	if h.av != nil {
		status["alpha_vantage_requests_remaining"] = h.av.GetRemainingRequests()
	}

	h.writeJSON(w, status)
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"path": h.db.Path(),
	}

	if info, err := os.Stat(h.db.Path()); err == nil {
		stats["size_mb"] = float64(info.Size()) / 1024 / 1024
	}

	for name, query := range map[string]string{
		"companies":      "SELECT COUNT(*) FROM companies",
		"analyses":       "SELECT COUNT(*) FROM esg_analyses",
		"news_sentiment": "SELECT COUNT(*) FROM news_sentiment",
		"index_points":   "SELECT COUNT(*) FROM market_indices",
	} {
		var count int64
		if err := h.db.Conn().QueryRow(query).Scan(&count); err != nil {
			h.log.Warn().Err(err).Str("table", name).Msg("Failed to count rows")
			continue
		}
		stats[name] = count
	}

	h.writeJSON(w, stats)
}

// systemStats returns CPU and RAM usage percentages. The short CPU sampling
// interval keeps the status endpoint responsive.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
