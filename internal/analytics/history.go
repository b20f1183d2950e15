// Package analytics derives sale signals from a listing's salesrank history.
// A falling salesrank means rising sales; a steep enough drop between two
// consecutive observations is treated as evidence of a sale.
package analytics

import (
	"context"
	"log/slog"

	"github.com/awharton/catwatch/internal/metrics"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

// saleSlope is the steepest salesrank-per-second slope still considered
// organic drift. Anything below it flags a sale.
const saleSlope = -0.3

// avgWindowDays bounds the recent-average query.
const avgWindowDays = 90

// History computes salesrank statistics for a single listing within a
// caller-owned transaction.
type History struct {
	tx        store.Tx
	listingID int64
	log       *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *History) { h.log = log }
}

// NewHistory returns a History bound to a listing and transaction.
func NewHistory(tx store.Tx, listingID int64, opts ...Option) *History {
	h := &History{
		tx:        tx,
		listingID: listingID,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// DataPoints returns the listing's full rank history, newest first.
func (h *History) DataPoints(ctx context.Context) ([]domain.RankObservation, error) {
	return h.tx.Observations(ctx, h.listingID)
}

// AvgSalesrank returns the mean salesrank over the listing's entire history,
// or nil when no observations exist.
func (h *History) AvgSalesrank(ctx context.Context) (*float64, error) {
	return h.tx.AvgSalesrank(ctx, h.listingID, nil)
}

// Avg90DaySalesrank returns the mean salesrank over observations strictly
// newer than 90 days before the transaction clock, or nil when none qualify.
func (h *History) Avg90DaySalesrank(ctx context.Context) (*float64, error) {
	since := h.tx.Now().AddDate(0, 0, -avgWindowDays)
	return h.tx.AvgSalesrank(ctx, h.listingID, &since)
}

// SalesPoints sweeps the history oldest to newest and returns every
// observation whose rank dropped steeply enough from its predecessor to flag
// a sale. Consecutive steep drops yield consecutive points.
func (h *History) SalesPoints(ctx context.Context) ([]domain.RankObservation, error) {
	obs, err := h.tx.Observations(ctx, h.listingID)
	if err != nil {
		return nil, err
	}

	// Observations arrive newest first; the sweep wants chronological order.
	var points []domain.RankObservation
	for i := len(obs) - 1; i > 0; i-- {
		prev, cur := obs[i], obs[i-1]
		if slope(prev, cur) < saleSlope {
			points = append(points, cur)
			metrics.SalesDetectedTotal.Inc()
		}
	}
	return points, nil
}

// IsSale reports whether the given observation represents a sale relative to
// its predecessor. An observation with no predecessor is never a sale. A zero
// time delta between the pair is logged and treated as no sale rather than
// dividing by zero.
func (h *History) IsSale(ctx context.Context, obs *domain.RankObservation) (bool, error) {
	prev, err := h.tx.ObservationBefore(ctx, h.listingID, obs.ID)
	if err != nil {
		return false, err
	}
	if prev == nil {
		return false, nil
	}

	if obs.Timestamp.Equal(prev.Timestamp) {
		h.log.Warn("zero time delta between rank observations",
			"listing_id", h.listingID,
			"observation_id", obs.ID,
			"previous_id", prev.ID,
		)
		metrics.ZeroDeltaObservationsTotal.Inc()
		return false, nil
	}

	return slope(*prev, *obs) < saleSlope, nil
}

// slope is the salesrank change per second from prev to cur. Negative means
// the rank fell, i.e. the listing sold better.
func slope(prev, cur domain.RankObservation) float64 {
	dt := cur.Timestamp.Sub(prev.Timestamp)
	return float64(cur.Salesrank-prev.Salesrank) / dt.Seconds()
}
