// Package calibration provides the population score-history used by the
// overall band aggregator to keep the band distribution honest.
//
// The history is the only shared mutable state in the scoring core. It is
// modelled as an explicit, injectable [Store] owned by the caller's process
// rather than hidden package state, so it is testable and thread-safe by
// construction. Calibration is a soft statistical guard: stale percentile
// reads are acceptable, and an empty or small history simply means the
// guard does not fire.
package calibration

import (
	"context"
	"sync"
)

// MinHistory is the number of recorded bands required before any
// calibration threshold activates.
const MinHistory = 100

// Store records awarded overall bands and answers population queries.
//
// Implementations must be safe for concurrent use: analyses running in
// parallel serialise on the store, not on each other.
type Store interface {
	// Append records one awarded overall band.
	Append(ctx context.Context, band float64) error

	// Len returns the number of recorded bands.
	Len(ctx context.Context) (int, error)

	// FractionAtOrAbove returns the fraction of recorded bands ≥ threshold,
	// in [0, 1]. With an empty history it returns 0.
	FractionAtOrAbove(ctx context.Context, threshold float64) (float64, error)
}

// MemoryStore is the in-process [Store]: a mutex-guarded append-only slice.
// The zero value is ready to use.
type MemoryStore struct {
	mu    sync.Mutex
	bands []float64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append records band. It never fails.
func (s *MemoryStore) Append(_ context.Context, band float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bands = append(s.bands, band)
	return nil
}

// Len returns the number of recorded bands.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bands), nil
}

// FractionAtOrAbove returns the fraction of recorded bands ≥ threshold.
func (s *MemoryStore) FractionAtOrAbove(_ context.Context, threshold float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bands) == 0 {
		return 0, nil
	}
	n := 0
	for _, b := range s.bands {
		if b >= threshold {
			n++
		}
	}
	return float64(n) / float64(len(s.bands)), nil
}
