package similarity

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditRatioLargeAlphabet(t *testing.T) {
	a := make([]rune, 300)
	for i := range a {
		a[i] = rune(0x4e00 + i)
	}
	b := slices.Clone(a)
	b[150] = 'x'

	_, _, ok := narrow(string(a), string(b))
	assert.False(t, ok, "more than 256 distinct runes")
	assert.InDelta(t, 0.9967, EditRatio(string(a), string(b)), 1e-9)
	assert.InDelta(t, EditRatio("héllo", "hello"), runeRatio([]rune("héllo"), []rune("hello")), 1e-9)
}

func TestEditRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 1},
		{"", "", 1},
		{"abc", "", 0},
		{"abcd", "abce", 0.75},
		{"kitten", "sitting", 0.6154},
		{"EAMHK", "EAMHK", 1},
		{"héllo", "hello", 0.8},
		{"日本語", "日本", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, EditRatio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, EditRatio(tt.a, tt.b), EditRatio(tt.b, tt.a), 1e-9)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.1235, Round(0.123456, 4))
	assert.Equal(t, 2.0, Round(1.99996, 4))
}

func TestGreedyTilesIdentical(t *testing.T) {
	a := []string{"A", "B", "C", "D"}

	tiles, total := GreedyTiles(a, a, 3)

	assert.Equal(t, []Tile{{PosL: 0, PosR: 0, Length: 4, Score: 4}}, tiles)
	assert.Equal(t, 4, total)
}

func TestGreedyTilesBelowMinimum(t *testing.T) {
	a := []string{"A", "B"}

	tiles, total := GreedyTiles(a, a, 3)

	assert.Empty(t, tiles)
	assert.Equal(t, 0, total)
}

func TestGreedyTilesTransposedBlocks(t *testing.T) {
	a := []byte("ABCDEFGH")
	b := []byte("EFGHABCD")

	tiles, total := GreedyTiles(a, b, 3)

	assert.Equal(t, []Tile{
		{PosL: 0, PosR: 4, Length: 4, Score: 4},
		{PosL: 4, PosR: 0, Length: 4, Score: 4},
	}, tiles)
	assert.Equal(t, 8, total)
}

func TestGreedyTilesOcclusion(t *testing.T) {
	tiles, total := GreedyTiles([]byte("AAAA"), []byte("AA"), 1)

	assert.Equal(t, []Tile{{PosL: 0, PosR: 0, Length: 2, Score: 2}}, tiles)
	assert.Equal(t, 2, total)
}

func TestGreedyTilesTotalIsSumOfLengths(t *testing.T) {
	a := []byte("XABCDYEFGZ")
	b := []byte("EFGQQABCDW")

	tiles, total := GreedyTiles(a, b, 3)

	sum := 0
	for _, tile := range tiles {
		sum += tile.Length
		assert.Equal(t, tile.Length, tile.Score)
		assert.Equal(t, a[tile.PosL:tile.PosL+tile.Length], b[tile.PosR:tile.PosR+tile.Length])
	}
	assert.Equal(t, sum, total)
	assert.Equal(t, 7, total)
}

func TestGreedyTilesDoesNotModifyInputs(t *testing.T) {
	a := []string{"x", "y", "z", "w"}
	b := []string{"w", "x", "y", "z"}
	aCopy, bCopy := slices.Clone(a), slices.Clone(b)

	GreedyTiles(a, b, 1)

	assert.Equal(t, aCopy, a)
	assert.Equal(t, bCopy, b)
}

func TestGreedyTilesMinMatchFloor(t *testing.T) {
	_, total := GreedyTiles([]byte("ab"), []byte("ba"), 0)
	assert.Equal(t, 2, total)
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"xyz", "abc", "abc"}

	idx, score := BestMatch("abc", candidates, EditRatio)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1.0, score)

	idx, score = BestMatch("abc", nil, EditRatio)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0.0, score)
}

func TestBestMatchIn(t *testing.T) {
	candidates := []string{"abc", "abd", "zzz"}
	only := func(yield func(int) bool) {
		for _, i := range []int{1, 2} {
			if !yield(i) {
				return
			}
		}
	}

	idx, score := BestMatchIn("abc", candidates, only, EditRatio)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.6667, score, 1e-9)
}
