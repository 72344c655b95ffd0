// Package similarity provides the sequence comparison primitives shared by
// the feature scorers: a weighted edit ratio, greedy string tiling and best
// match search.
package similarity

import (
	"iter"
	"math"
	"unicode/utf8"

	"github.com/xrash/smetrics"
)

// Edit costs used by EditRatio. A substitution costs as much as a deletion
// followed by an insertion.
const (
	InsertCost     = 1
	DeleteCost     = 1
	SubstituteCost = 2
)

// RatioPrecision is the number of decimal places EditRatio rounds to.
const RatioPrecision = 4

// EditRatio returns (len(a)+len(b)-distance)/(len(a)+len(b)) rounded to four
// decimals, counting characters rather than bytes. Two empty strings are
// identical and score 1.
func EditRatio(a, b string) float64 {
	if !isASCII(a) || !isASCII(b) {
		var ok bool
		if a, b, ok = narrow(a, b); !ok {
			return runeRatio([]rune(a), []rune(b))
		}
	}
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	dist := smetrics.WagnerFischer(a, b, InsertCost, DeleteCost, SubstituteCost)
	return Round(float64(total-dist)/float64(total), RatioPrecision)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// narrow re-encodes a and b with one byte per distinct rune so the byte
// distance equals the character distance. It fails when the two strings
// use more than 256 distinct runes.
func narrow(a, b string) (string, string, bool) {
	codes := make(map[rune]byte)
	encode := func(s string) ([]byte, bool) {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			c, seen := codes[r]
			if !seen {
				if len(codes) == 256 {
					return nil, false
				}
				c = byte(len(codes))
				codes[r] = c
			}
			out = append(out, c)
		}
		return out, true
	}
	na, ok := encode(a)
	if !ok {
		return a, b, false
	}
	nb, ok := encode(b)
	if !ok {
		return a, b, false
	}
	return string(na), string(nb), true
}

// runeRatio is EditRatio over rune slices, for alphabets too large to
// narrow.
func runeRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j * InsertCost
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i * DeleteCost
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub += SubstituteCost
			}
			cur[j] = min(prev[j]+DeleteCost, cur[j-1]+InsertCost, sub)
		}
		prev, cur = cur, prev
	}
	return Round(float64(total-prev[len(b)])/float64(total), RatioPrecision)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Scorer compares two items and returns a similarity score.
type Scorer[T any] func(a, b T) float64

// BestMatch returns the index and score of the highest scoring candidate.
// Ties go to the earliest candidate. It returns -1 when there are no candidates.
func BestMatch[T any](item T, candidates []T, score Scorer[T]) (int, float64) {
	return BestMatchIn(item, candidates, allIndices(len(candidates)), score)
}

// BestMatchIn is BestMatch restricted to the candidate indices yielded by idx,
// visited in the order they are yielded.
func BestMatchIn[T any](item T, candidates []T, idx iter.Seq[int], score Scorer[T]) (int, float64) {
	best, bestScore := -1, 0.0
	for i := range idx {
		s := score(item, candidates[i])
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

func allIndices(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range n {
			if !yield(i) {
				return
			}
		}
	}
}
