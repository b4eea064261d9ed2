package csvresync

import (
	"context"

	"github.com/dsvtools/csvresync/internal/tokenizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Span is a resolved half-open byte range [Start, End) that one parallel
// worker parses independently. Named Span rather than Segment to avoid
// colliding with the record-count Segment type in scanner.go; the two
// partitioning strategies are unrelated.
type Span struct {
	Index     int
	Start     int64
	End       int64
	EndOfFile bool
}

// ResolveSpans turns candidate offsets into resolved Spans: the first
// candidate is fixed to byte 0, every other candidate is resolved via the
// oracle, a terminal EndOfFile verdict is appended, and any Fail or
// premature EndOfFile verdict is merged into the preceding span rather
// than surfaced as an error.
func ResolveSpans(oracle *Oracle, fileLen int64, candidates []int64, logger *zap.Logger) ([]Span, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	starts := []int64{0} // v_0 == Start, always byte 0
	for i := 1; i < len(candidates); i++ {
		verdict, err := oracle.Resync(candidates[i])
		if err != nil {
			return nil, err
		}
		switch verdict.Kind {
		case VerdictOffset:
			starts = append(starts, int64(verdict.Byte))
		case VerdictFail:
			logger.Warn("resync failed; merging segment boundary",
				zap.Int64("candidate", candidates[i]))
		case VerdictEndOfFile:
			logger.Warn("probe landed past last record; merging segment boundary",
				zap.Int64("candidate", candidates[i]))
		case VerdictStart:
			starts = append(starts, 0)
		}
	}
	starts = append(starts, fileLen)

	spans := make([]Span, 0, len(starts)-1)
	for i := 0; i < len(starts)-1; i++ {
		spans = append(spans, Span{
			Index:     i,
			Start:     starts[i],
			End:       starts[i+1],
			EndOfFile: i == len(starts)-2,
		})
	}
	return spans, nil
}

// Reducer is the user-supplied monoid a worker folds its span's records
// into: Zero produces the identity accumulator, Apply folds one record
// in, and Combine merges two partials. Combine must be associative;
// worker ordering is not guaranteed.
type Reducer[T any] struct {
	Zero    func() T
	Apply   func(acc T, rec tokenizer.Record) T
	Combine func(a, b T) T
}

// Run resolves spans into per-worker partials and reduces them. Each
// worker opens its own reader via open — no reader state is shared across
// workers. A fatal error from any worker cancels the remaining workers
// and is returned in segment order.
func Run[T any](ctx context.Context, open Opener, opts Options, spans []Span, reducer Reducer[T], logger *zap.Logger) (T, error) {
	opts.Normalize()
	if logger == nil {
		logger = zap.NewNop()
	}

	partials := make([]T, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	for _, span := range spans {
		span := span
		g.Go(func() error {
			acc, err := runSpan(gctx, open, opts, span, reducer)
			if err != nil {
				return err
			}
			partials[span.Index] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var zero T
		return zero, err
	}

	acc := reducer.Zero()
	for _, partial := range partials {
		acc = reducer.Combine(acc, partial)
	}
	return acc, nil
}

// runSpan parses exactly one span with its own tokenizer over its own
// reader, applying reducer.Apply to every record observed until the
// span's end boundary (or true EOF, for the final span).
func runSpan[T any](ctx context.Context, open Opener, opts Options, span Span, reducer Reducer[T]) (T, error) {
	var zero T
	rc, err := open(span.Start)
	if err != nil {
		return zero, &Error{Kind: IoError, Segment: span.Index, Err: err}
	}
	defer rc.Close()

	tok := tokenizer.New(rc, opts.Delimiter, opts.Quote)
	acc := reducer.Zero()

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		rec, ok, err := tok.Next()
		if err != nil {
			return zero, &Error{Kind: TokenizerError, Segment: span.Index, Err: err}
		}
		if !ok {
			break
		}
		acc = reducer.Apply(acc, rec)
		if !span.EndOfFile && rec.Pos >= span.End {
			break
		}
	}
	return acc, nil
}

// RunCount is a convenience Run wrapper implementing the default
// application: counting records.
func RunCount(ctx context.Context, open Opener, opts Options, spans []Span, logger *zap.Logger) (int64, error) {
	return Run(ctx, open, opts, spans, Reducer[int64]{
		Zero:    func() int64 { return 0 },
		Apply:   func(acc int64, _ tokenizer.Record) int64 { return acc + 1 },
		Combine: func(a, b int64) int64 { return a + b },
	}, logger)
}
