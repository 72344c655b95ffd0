package models

import (
	"sort"
	"strings"

	"github.com/panbanda/simfeat/pkg/style"
)

// Record is the canonical form of one submission. Records are built once
// per run and shared read-only by every scorer.
type Record struct {
	Filename    string          `json:"filename"`
	Path        string          `json:"path"`
	Language    string          `json:"language"`
	Raw         string          `json:"raw"`
	Sequence    string          `json:"sequence"`
	Lines       []string        `json:"lines"`
	LineNumbers []int           `json:"line_numbers"`
	Style       style.Sequences `json:"style"`
	Declared    []string        `json:"declared,omitempty"`
}

// TokenCount is the number of canonical symbols in the file.
func (r *Record) TokenCount() int {
	return len(r.Sequence)
}

// LineCount is the number of canonical line groups in the file.
func (r *Record) LineCount() int {
	return len(r.Lines)
}

// RawLines splits the raw text on newlines.
func (r *Record) RawLines() []string {
	return strings.Split(r.Raw, "\n")
}

// Corpus is the ordered set of records compared pairwise.
type Corpus struct {
	Records []*Record
}

// NewCorpus orders records by filename, then path, so pair enumeration is
// deterministic regardless of how the records were produced.
func NewCorpus(records []*Record) *Corpus {
	sorted := make([]*Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Filename != sorted[j].Filename {
			return sorted[i].Filename < sorted[j].Filename
		}
		return sorted[i].Path < sorted[j].Path
	})
	return &Corpus{Records: sorted}
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	return len(c.Records)
}

// PairCount returns the number of unordered pairs.
func (c *Corpus) PairCount() int {
	return PairCount(c.Len())
}

// TokenCounts returns every record's token count in corpus order.
func (c *Corpus) TokenCounts() []float64 {
	out := make([]float64, len(c.Records))
	for i, r := range c.Records {
		out[i] = float64(r.TokenCount())
	}
	return out
}

// PairCount returns n choose 2.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Pair identifies two corpus positions with I < J.
type Pair struct {
	I, J int
}

// PairAt returns the pair with the given ordinal in the enumeration
// (0,1), (0,2), ..., (0,n-1), (1,2), ...
func PairAt(n, ordinal int) Pair {
	i := 0
	for remaining := n - 1; ordinal >= remaining; remaining-- {
		ordinal -= remaining
		i++
	}
	return Pair{I: i, J: i + 1 + ordinal}
}

// Ordinal is the inverse of PairAt.
func (p Pair) Ordinal(n int) int {
	return p.I*(2*n-p.I-1)/2 + (p.J - p.I - 1)
}

// Text returns the sequence compared by whole-file scorers: the canonical
// symbols, or the raw text when canonical is false.
func (r *Record) Text(canonical bool) string {
	if canonical {
		return r.Sequence
	}
	return r.Raw
}

// LineGroups returns the lines compared by line scorers: the canonical line
// groups, or the raw lines when canonical is false.
func (r *Record) LineGroups(canonical bool) []string {
	if canonical {
		return r.Lines
	}
	return r.RawLines()
}

// Lines returns every record's line groups in corpus order.
func (c *Corpus) Lines(canonical bool) [][]string {
	out := make([][]string, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.LineGroups(canonical)
	}
	return out
}
