package calibration_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fluentia-ai/cadence/internal/calibration"
)

func TestMemoryStore_AppendAndQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := calibration.NewMemoryStore()

	for _, b := range []float64{5.0, 6.5, 8.0, 8.5, 9.0} {
		if err := s.Append(ctx, b); err != nil {
			t.Fatalf("Append(%f): %v", b, err)
		}
	}

	n, err := s.Len(ctx)
	if err != nil || n != 5 {
		t.Fatalf("Len = %d, %v; want 5", n, err)
	}

	frac, err := s.FractionAtOrAbove(ctx, 8.0)
	if err != nil {
		t.Fatalf("FractionAtOrAbove: %v", err)
	}
	if frac != 0.6 {
		t.Errorf("FractionAtOrAbove(8.0) = %f, want 0.6 (3 of 5)", frac)
	}
}

func TestMemoryStore_EmptyHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := calibration.NewMemoryStore()

	n, err := s.Len(ctx)
	if err != nil || n != 0 {
		t.Errorf("Len = %d, %v; want 0", n, err)
	}
	frac, err := s.FractionAtOrAbove(ctx, 8.0)
	if err != nil || frac != 0 {
		t.Errorf("FractionAtOrAbove on empty = %f, %v; want 0", frac, err)
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := calibration.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, 7.0)
		}()
	}
	wg.Wait()

	n, _ := s.Len(ctx)
	if n != 50 {
		t.Errorf("Len after 50 concurrent appends = %d, want 50", n)
	}
}
