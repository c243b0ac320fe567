package analysis

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/events"
)

// RefreshJob re-analyzes a fixed watchlist of symbols so dashboards have a
// fresh score every day without anyone clicking "analyze". Intended to run
// nightly, after the API rate limit counters reset.
type RefreshJob struct {
	service *Service
	symbols []string
	events  *events.Manager
	log     zerolog.Logger
}

// NewRefreshJob creates a refresh job for the given watchlist.
func NewRefreshJob(service *Service, symbols []string, eventManager *events.Manager, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		symbols: symbols,
		events:  eventManager,
		log:     log.With().Str("job", "watchlist_refresh").Logger(),
	}
}

// Run analyzes every watchlist symbol. One failing symbol does not abort the
// rest; the job fails only when nothing could be refreshed.
func (j *RefreshJob) Run() error {
	if len(j.symbols) == 0 {
		j.log.Debug().Msg("No tracked symbols configured, skipping refresh")
		return nil
	}

	var refreshed int
	var lastErr error

	for _, symbol := range j.symbols {
		result, err := j.service.Analyze(Request{Symbol: symbol})
		if err != nil {
			j.log.Warn().Err(err).Str("symbol", symbol).Msg("Watchlist refresh failed for symbol")
			lastErr = err
			continue
		}

		j.events.EmitTyped(events.CompanyRefreshed, "analysis", &events.CompanyRefreshedData{
			Symbol: symbol,
			Source: "watchlist_refresh",
		})
		j.log.Debug().
			Str("symbol", symbol).
			Str("analysis_id", result.Record.ID).
			Msg("Symbol refreshed")
		refreshed++
	}

	j.log.Info().
		Int("refreshed", refreshed).
		Int("total", len(j.symbols)).
		Msg("Watchlist refresh finished")

	if refreshed == 0 && lastErr != nil {
		return fmt.Errorf("watchlist refresh failed: %w", lastErr)
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *RefreshJob) Name() string {
	return "watchlist_refresh"
}
