package market

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clients/fundamentals"
	"github.com/verdantlabs/esgboard/internal/events"
)

// IndicesSyncJob refreshes the tracked market index snapshots.
// It should be scheduled to run hourly during market hours.
type IndicesSyncJob struct {
	market fundamentals.Provider
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewIndicesSyncJob creates a new indices sync job.
func NewIndicesSyncJob(market fundamentals.Provider, repo *Repository, eventManager *events.Manager, log zerolog.Logger) *IndicesSyncJob {
	return &IndicesSyncJob{
		market: market,
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("job", "indices_sync").Logger(),
	}
}

// Run fetches and stores a snapshot of every tracked index. A single failing
// index does not abort the rest.
func (j *IndicesSyncJob) Run() error {
	var synced int
	var lastErr error

	for symbol, name := range TrackedIndices {
		quote, err := j.market.GetQuote(symbol)
		if err != nil {
			j.log.Warn().Err(err).Str("index", symbol).Msg("Failed to fetch index quote")
			lastErr = err
			continue
		}

		idx := Index{
			Symbol:        symbol,
			Name:          name,
			Price:         quote.Price,
			Change:        quote.Price - quote.PreviousClose,
			ChangePercent: quote.ChangePercent,
			Timestamp:     time.Now().UTC(),
		}
		if err := j.repo.StoreIndex(idx); err != nil {
			j.log.Error().Err(err).Str("index", symbol).Msg("Failed to store index snapshot")
			lastErr = err
			continue
		}
		synced++
	}

	if synced > 0 {
		j.events.EmitTyped(events.IndicesSynced, "market", &events.IndicesSyncedData{Count: synced})
		j.log.Info().Int("synced", synced).Msg("Market indices synced")
	}

	if synced == 0 && lastErr != nil {
		return fmt.Errorf("indices sync failed: %w", lastErr)
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *IndicesSyncJob) Name() string {
	return "indices_sync"
}
