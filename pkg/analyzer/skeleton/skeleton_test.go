package skeleton

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/models"
)

var shared = []string{"EAMHK", "CKEAMHKAOBKAPK", "BKAKMHK", "DKAOHK", "FK"}

func withShared(prefix []string, suffix ...string) []string {
	lines := append([]string{}, prefix...)
	lines = append(lines, shared...)
	return append(lines, suffix...)
}

func corpusLines() [][]string {
	return [][]string{
		withShared([]string{"RRFEA"}, "QQ"),
		withShared([]string{"GGK", "IIK"}),
		withShared(nil, "JJK"),
	}
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{100, 0.25, 300},
		{220, 0.25, 1485},
		{8, 0.25, 1},
		{7, 0.25, 0},
		{3, 1.0, 3},
		{0, 0.25, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%v", tt.n, tt.fraction), func(t *testing.T) {
			assert.Equal(t, tt.want, Threshold(tt.n, tt.fraction))
		})
	}
}

func TestSelectGroupsStrictlyAboveThreshold(t *testing.T) {
	ranked := []*entry{
		{lines: []string{"A"}, count: 301},
		{lines: []string{"B"}, count: 300},
		{lines: []string{"C"}, count: 299},
	}
	groups := selectGroups(ranked, Threshold(100, 0.25), 20)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A"}, groups[0].Lines)
	assert.Equal(t, 301, groups[0].Count)
}

func TestSelectGroupsCapsCandidates(t *testing.T) {
	var ranked []*entry
	for i := range 25 {
		ranked = append(ranked, &entry{lines: []string{fmt.Sprint(i)}, count: 100 - i})
	}
	assert.Len(t, selectGroups(ranked, 0, 20), 20)
	assert.Len(t, selectGroups(ranked, 0, 0), 25)
}

func TestSelectGroupsLongestFirstStable(t *testing.T) {
	ranked := []*entry{
		{lines: []string{"A"}, count: 9},
		{lines: []string{"B", "C"}, count: 8},
		{lines: []string{"D"}, count: 7},
		{lines: []string{"E", "F", "G"}, count: 6},
	}
	groups := selectGroups(ranked, 0, 20)
	var firsts []string
	for _, g := range groups {
		firsts = append(firsts, g.Lines[0])
	}
	assert.Equal(t, []string{"E", "B", "A", "D"}, firsts)
}

func TestCounterRanksTiesByDiscovery(t *testing.T) {
	c := newGroupCounter()
	c.add([]string{"late"}, discovery{pair: 5, tile: 0})
	c.add([]string{"early"}, discovery{pair: 2, tile: 1})
	c.add([]string{"late"}, discovery{pair: 1, tile: 0})
	c.add([]string{"early"}, discovery{pair: 3, tile: 0})
	c.add([]string{"top"}, discovery{pair: 9, tile: 0})
	c.add([]string{"top"}, discovery{pair: 9, tile: 1})
	c.add([]string{"top"}, discovery{pair: 9, tile: 2})

	ranked := c.ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"top"}, ranked[0].lines)
	assert.Equal(t, 3, ranked[0].count)
	assert.Equal(t, []string{"late"}, ranked[1].lines)
	assert.Equal(t, []string{"early"}, ranked[2].lines)
}

func TestMineFindsSharedGroup(t *testing.T) {
	m := New(WithMinParticipation(0.25), WithWorkers(2))
	set, err := m.Mine(context.Background(), corpusLines())
	require.NoError(t, err)

	assert.Equal(t, 0, set.Threshold)
	assert.Equal(t, 3, set.Files)
	assert.Equal(t, 3, set.Pairs)
	require.Len(t, set.Groups, 1)
	assert.Equal(t, shared, set.Groups[0].Lines)
	assert.Equal(t, 3, set.Groups[0].Count)
	assert.True(t, set.Contains(shared))
	assert.False(t, set.Contains(shared[:4]))
}

func TestMineRespectsThreshold(t *testing.T) {
	m := New(WithMinParticipation(1.0))
	set, err := m.Mine(context.Background(), corpusLines())
	require.NoError(t, err)
	assert.Equal(t, 3, set.Threshold)
	assert.Equal(t, 0, set.Len())
}

func TestMineIgnoresShortTiles(t *testing.T) {
	m := New(WithMinTileScore(6))
	set, err := m.Mine(context.Background(), corpusLines())
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 0, set.Candidates)
}

func TestMineReportsProgress(t *testing.T) {
	var calls int
	m := New(WithWorkers(1), WithProgress(func() { calls++ }))
	_, err := m.Mine(context.Background(), corpusLines())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestMineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Mine(ctx, corpusLines())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMineCorpusUsesRepresentation(t *testing.T) {
	records := []*models.Record{
		{Filename: "a.java", Sequence: "x", Lines: corpusLines()[0], Raw: "a\nb"},
		{Filename: "b.java", Sequence: "y", Lines: corpusLines()[1], Raw: "c\nd"},
	}
	corpus := models.NewCorpus(records)

	set, err := New().MineCorpus(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	set, err = New(WithCanonical(false)).MineCorpus(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Skeleton.MinParticipation = 0.5
	cfg.Skeleton.MinTileScore = 7
	cfg.Scoring.UseCanonical = false
	cfg.Workers = 3

	m := New(WithConfig(cfg))
	assert.Equal(t, 0.5, m.Config().MinParticipation)
	assert.Equal(t, 7, m.Config().MinTileScore)
	assert.Equal(t, 20, m.Config().MaxCandidates)
	assert.False(t, m.Config().UseCanonical)
	assert.Equal(t, 3, m.workers)
}

func TestOverlap(t *testing.T) {
	set := &SuppressionSet{Groups: []Group{
		{Lines: []string{"AB", "CD"}},
		{Lines: []string{"ABCD"}},
		{Lines: []string{"ZZ"}},
	}}

	tests := []struct {
		name        string
		left, right string
		want        Overlap
	}{
		{"absent from one side", "ABCDxx", "xxAB", Overlap{}},
		{"first occurrence only", "ABCDABCD", "ABCD", Overlap{Lines: 2, Chars: 4}},
		{"repeated on both sides", "ABCDABCD", "xABCDABCDx", Overlap{Lines: 3, Chars: 8}},
		{"independent groups", "ZZABCD", "ABCDZZ", Overlap{Lines: 3, Chars: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Overlap(tt.left, tt.right))
		})
	}
}

func TestOverlapEmptySet(t *testing.T) {
	var set *SuppressionSet
	assert.Equal(t, Overlap{}, set.Overlap("ABC", "ABC"))
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Contains([]string{"ABC"}))

	blank := &SuppressionSet{Groups: []Group{{Lines: []string{" ", ""}}}}
	assert.Equal(t, Overlap{}, blank.Overlap("ABC", "ABC"))
}

func TestGroupText(t *testing.T) {
	g := Group{Lines: []string{"  int x = 1;", "return x; "}}
	assert.Equal(t, "int x = 1;return x;", g.Text())
	assert.Equal(t, 2, g.Len())
}
