package features

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/simfeat/pkg/analyzer/skeleton"
	"github.com/panbanda/simfeat/pkg/similarity"
	"github.com/panbanda/simfeat/pkg/stats"
)

// lineSet is the set of distinct lines of a file.
type lineSet map[string]struct{}

func newLineSet(lines []string) lineSet {
	s := make(lineSet, len(lines))
	for _, line := range lines {
		s[line] = struct{}{}
	}
	return s
}

// common counts the lines present in both sets.
func (s lineSet) common(o lineSet) int {
	small, large := s, o
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for line := range small {
		if _, ok := large[line]; ok {
			n++
		}
	}
	return n
}

// BigramLines joins each line with its successor. Inputs with at most one
// line are returned unchanged.
func BigramLines(lines []string) []string {
	if len(lines) <= 1 {
		return lines
	}
	out := make([]string, len(lines)-1)
	for i := range out {
		out[i] = lines[i] + lines[i+1]
	}
	return out
}

// structureSimilarity is the edit ratio of the two texts, less the share of
// characters taken by suppressed groups.
func structureSimilarity(left, right string, nerf bool, ov skeleton.Overlap) float64 {
	css := similarity.EditRatio(left, right)
	if nerf {
		css -= stats.Ratio(float64(2*ov.Chars), float64(len(left)+len(right)))
	}
	return stats.Clamp01(css)
}

// lineTiles tiles the line groups and returns the kept tiles with the
// normalized tiled length. In nerf mode tiles that cover exactly a
// suppressed group are dropped and the suppressed line count is subtracted.
func lineTiles(left, right []string, minMatch int, set *skeleton.SuppressionSet, nerf bool, ov skeleton.Overlap) ([]similarity.Tile, float64) {
	tiles, total := similarity.GreedyTiles(left, right, minMatch)
	if nerf {
		kept := tiles[:0:0]
		total = 0
		for _, tile := range tiles {
			if set.Contains(left[tile.PosL : tile.PosL+tile.Length]) {
				continue
			}
			kept = append(kept, tile)
			total += tile.Length
		}
		tiles = kept
		total = max(total-ov.Lines, 0)
	}
	den := min(len(left), len(right))
	return tiles, stats.Clamp01(stats.Ratio(float64(total), float64(den)))
}

// commonLines is the number of shared distinct lines over the smaller
// distinct line count, less suppressed lines in nerf mode.
func commonLines(left, right lineSet, suppressed int) float64 {
	shared := max(left.common(right)-suppressed, 0)
	den := min(len(left), len(right))
	return stats.Clamp01(stats.Ratio(float64(shared), float64(den)))
}

// fuzzyBigramLines pairs each left bigram with its best unused right bigram
// and counts the pairs whose edit ratio exceeds threshold.
func fuzzyBigramLines(left, right []string, threshold float64, suppressed int) float64 {
	if len(left) == 0 {
		return 0
	}
	pool := roaring.New()
	pool.AddRange(0, uint64(len(right)))

	count := 0
	for _, line := range left {
		if pool.IsEmpty() {
			break
		}
		best, score := similarity.BestMatchIn(line, right, remaining(pool), similarity.EditRatio)
		if best >= 0 && score > threshold {
			pool.Remove(uint32(best))
			count++
		}
	}
	count = max(count-suppressed, 0)
	return stats.Clamp01(float64(count) / float64(len(left)))
}

func remaining(pool *roaring.Bitmap) iter.Seq[int] {
	return func(yield func(int) bool) {
		it := pool.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// styleSimilarity is the tiled length of two style sequences over the
// shorter length. The minimum match is capped at that length so a short
// sequence can still be matched whole.
func styleSimilarity(left, right string, minMatch int) float64 {
	den := min(len(left), len(right))
	if den == 0 {
		return 0
	}
	_, total := similarity.GreedyTiles([]byte(left), []byte(right), min(minMatch, den))
	return stats.Clamp01(float64(total) / float64(den))
}
