// Package repository provides read-only snapshot sources for analysis.
//
// Sources fetch the working set of one colony at the boundary; the engine
// never writes back.
package repository

import (
	"context"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// Window bounds the observation time range. Zero values are unbounded.
type Window struct {
	Since time.Time
	Until time.Time
}

// Last returns a window covering d before now. d <= 0 is unbounded.
func Last(now time.Time, d time.Duration) Window {
	if d <= 0 {
		return Window{}
	}
	return Window{Since: now.Add(-d)}
}

// Contains reports whether t falls in the window. Zero timestamps are
// always kept; the normalizer defaults them.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && t.After(w.Until) {
		return false
	}
	return true
}

// Source provides read-only access to colony snapshots.
type Source interface {
	// Colonies lists the colonies known to the source, sorted.
	Colonies(ctx context.Context) ([]string, error)

	// Load returns the roster, behavior records and samples of a colony
	// inside the window. Returns ErrNotFound if the colony is unknown.
	Load(ctx context.Context, colony string, w Window) (model.Snapshot, error)

	// Close releases the source.
	Close() error
}

// filter returns a copy of snap restricted to w.
func filter(snap model.Snapshot, w Window) model.Snapshot { //nolint:gocritic // hugeParam: snapshots are values
	out := snap
	out.Records = make([]model.LogRecord, 0, len(snap.Records))
	for i := range snap.Records {
		if w.Contains(snap.Records[i].Timestamp) {
			out.Records = append(out.Records, snap.Records[i])
		}
	}
	out.Stress = make([]model.StressSample, 0, len(snap.Stress))
	for i := range snap.Stress {
		if w.Contains(snap.Stress[i].Timestamp) {
			out.Stress = append(out.Stress, snap.Stress[i])
		}
	}
	out.Enrichment = make([]model.EnrichmentSample, 0, len(snap.Enrichment))
	for _, e := range snap.Enrichment {
		if w.Contains(e.Timestamp) {
			out.Enrichment = append(out.Enrichment, e)
		}
	}
	return out
}
