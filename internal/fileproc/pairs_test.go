package fileproc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/simfeat/pkg/models"
)

func TestMapPairs_Order(t *testing.T) {
	const n = 6
	var ticks atomic.Int32

	results, err := MapPairs(context.Background(), n, 3, func(p models.Pair) models.Pair {
		return p
	}, func() { ticks.Add(1) })
	require.NoError(t, err)
	require.Len(t, results, models.PairCount(n))

	var want []models.Pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			want = append(want, models.Pair{I: i, J: j})
		}
	}
	assert.Equal(t, want, results)
	assert.Equal(t, int32(models.PairCount(n)), ticks.Load())
}

func TestMapPairs_TooFewItems(t *testing.T) {
	for _, n := range []int{0, 1} {
		results, err := MapPairs(context.Background(), n, 0, func(models.Pair) int {
			t.Error("fn must not be called")
			return 0
		}, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestMapPairs_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := MapPairs(ctx, 5, 2, func(models.Pair) int { return 1 }, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)

	_, err = MapPairs(ctx, 1, 2, func(models.Pair) int { return 1 }, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMapPairs_CancelMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	_, err := MapPairs(ctx, 50, 1, func(models.Pair) int {
		if calls.Add(1) == 10 {
			cancel()
		}
		return 0
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int32(models.PairCount(50)))
}

func TestForEachPair(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[models.Pair]int)

	err := ForEachPair(context.Background(), 4, 0, func(p models.Pair) {
		mu.Lock()
		seen[p]++
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	assert.Len(t, seen, 6)
	for p, count := range seen {
		assert.Less(t, p.I, p.J)
		assert.Equal(t, 1, count)
	}
}
