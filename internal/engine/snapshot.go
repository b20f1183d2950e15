// Package engine runs the periodic background jobs of the catwatch ops
// server. The only job today is the snapshot refresh, which mirrors entity
// counts into Prometheus gauges.
package engine

import (
	"context"
	"log/slog"

	"github.com/awharton/catwatch/internal/metrics"
	"github.com/awharton/catwatch/internal/store"
)

// Snapshot refreshes entity-count gauges from the store.
type Snapshot struct {
	store store.Store
	log   *slog.Logger
}

// NewSnapshot creates a snapshot job bound to a store.
func NewSnapshot(s store.Store, log *slog.Logger) *Snapshot {
	return &Snapshot{store: s, log: log}
}

// Refresh reads current entity totals and publishes them as gauges.
func (s *Snapshot) Refresh(ctx context.Context) error {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return err
	}

	metrics.ListingsTotal.Set(float64(counts.Listings))
	metrics.ListsTotal.Set(float64(counts.Lists))
	metrics.LinksTotal.Set(float64(counts.Links))
	metrics.LinksScoredTotal.Set(float64(counts.LinksScored))
	metrics.WatchesTotal.Set(float64(counts.Watches))
	metrics.ObservationsTotal.Set(float64(counts.Observations))

	s.log.Debug("snapshot refreshed",
		"listings", counts.Listings,
		"lists", counts.Lists,
		"links", counts.Links,
		"watches", counts.Watches,
		"observations", counts.Observations,
	)
	return nil
}
