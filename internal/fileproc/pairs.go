package fileproc

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/simfeat/pkg/models"
)

// PairFunc computes a result for one unordered pair of corpus positions.
type PairFunc[T any] func(pair models.Pair) T

// MapPairs evaluates fn for every unordered pair of n items in parallel.
// Results are indexed by pair ordinal, so their order is deterministic.
// Cancellation is checked before each pair; on cancellation the partial
// results are discarded and the context error is returned.
func MapPairs[T any](ctx context.Context, n, maxWorkers int, fn PairFunc[T], onProgress ProgressFunc) ([]T, error) {
	total := models.PairCount(n)
	results := make([]T, total)
	if total == 0 {
		return results, ctx.Err()
	}

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers)).WithContext(ctx).WithCancelOnError()
	for i := range n - 1 {
		p.Go(func(ctx context.Context) error {
			for j := i + 1; j < n; j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				pair := models.Pair{I: i, J: j}
				results[pair.Ordinal(n)] = fn(pair)
				if onProgress != nil {
					onProgress()
				}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ForEachPair calls fn for every unordered pair of n items in parallel.
// fn must be safe for concurrent use.
func ForEachPair(ctx context.Context, n, maxWorkers int, fn func(pair models.Pair), onProgress ProgressFunc) error {
	_, err := MapPairs(ctx, n, maxWorkers, func(pair models.Pair) struct{} {
		fn(pair)
		return struct{}{}
	}, onProgress)
	return err
}
