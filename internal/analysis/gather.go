package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fluentia-ai/cadence/pkg/timeline"
)

// Suppliers holds the four upstream fetch functions for one utterance. The
// detectors are data-independent, so they run concurrently; scoring starts
// only after all four have resolved. Nil suppliers yield zero-valued inputs.
type Suppliers struct {
	Words    func(ctx context.Context) ([]timeline.Word, error)
	Segments func(ctx context.Context) ([]timeline.Segment, error)
	Tokens   func(ctx context.Context) ([]timeline.AcousticToken, error)
	Spans    func(ctx context.Context) (timeline.SpanCounts, error)
}

// Gather runs all suppliers concurrently and collects their outputs into an
// [Input]. The first supplier error cancels the rest and is returned.
//
// TotalDuration and Context are not gathered; the caller sets them on the
// returned Input. Cancellation and timeouts are the caller's responsibility
// via ctx.
func Gather(ctx context.Context, s Suppliers) (Input, error) {
	var in Input
	g, ctx := errgroup.WithContext(ctx)

	if s.Words != nil {
		g.Go(func() error {
			words, err := s.Words(ctx)
			if err != nil {
				return fmt.Errorf("analysis: gather words: %w", err)
			}
			in.Words = words
			return nil
		})
	}
	if s.Segments != nil {
		g.Go(func() error {
			segments, err := s.Segments(ctx)
			if err != nil {
				return fmt.Errorf("analysis: gather segments: %w", err)
			}
			in.Segments = segments
			return nil
		})
	}
	if s.Tokens != nil {
		g.Go(func() error {
			tokens, err := s.Tokens(ctx)
			if err != nil {
				return fmt.Errorf("analysis: gather tokens: %w", err)
			}
			in.Tokens = tokens
			return nil
		})
	}
	if s.Spans != nil {
		g.Go(func() error {
			spans, err := s.Spans(ctx)
			if err != nil {
				return fmt.Errorf("analysis: gather spans: %w", err)
			}
			in.Spans = spans
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Input{}, err
	}
	return in, nil
}
