package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/panbanda/simfeat/pkg/analyzer/skeleton"
	"github.com/panbanda/simfeat/pkg/models"
)

// FeatureTable renders a pairwise feature table in its fixed column order.
// Structured formats receive one object per pair keyed by column name.
func FeatureTable(t *models.FeatureTable) *Table {
	headers := t.Columns()
	rows := make([][]string, len(t.Rows))
	for i := range t.Rows {
		rows[i] = t.Cells(i)
	}

	scoreCols := make(map[int]bool)
	flagCols := make(map[int]bool)
	for i, h := range headers {
		switch {
		case isFeatureColumn(t.Schema, h):
			scoreCols[i] = true
		case strings.Contains(h, "_less_") || strings.Contains(h, "_more_"):
			flagCols[i] = true
		}
	}

	return &Table{
		Title:   "Pairwise Features",
		Headers: headers,
		Rows:    rows,
		Data:    featureRecords(t),
		Highlight: func(col int, cell string) string {
			switch {
			case flagCols[col]:
				return FlagColor(cell)
			case scoreCols[col]:
				if v, err := strconv.ParseFloat(cell, 64); err == nil && v <= 1 {
					return ScoreColor(v, cell)
				}
			}
			return cell
		},
	}
}

func isFeatureColumn(s models.Schema, name string) bool {
	for _, f := range s.Features {
		if f.String() == name && !f.IsTokenStat() {
			return true
		}
	}
	return false
}

// featureRecords converts rows into column-keyed maps with typed values.
func featureRecords(t *models.FeatureTable) []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := map[string]any{
			models.ColFilename1:     row.File1,
			models.ColFilename2:     row.File2,
			models.ColLinePos1:      row.LinePos1,
			models.ColLinePos2:      row.LinePos2,
			models.ColShortestToken: row.ShortestTokens,
		}
		if t.Schema.Tiles {
			rec[models.ColTiles] = row.Tiles
		}
		for _, f := range t.Schema.Features {
			rec[f.String()] = row.Scores[f]
		}
		for _, name := range t.Schema.TokenFlags {
			rec[name] = row.Flags[name]
		}
		for _, name := range t.Schema.FeatureFlags {
			rec[name] = row.Flags[name]
		}
		out[i] = rec
	}
	return out
}

// Skeleton renders a mined suppression set.
func Skeleton(set *skeleton.SuppressionSet) *Report {
	summary := &Section{
		Title: "Skeleton Mining",
		Content: fmt.Sprintf("Files: %d\nPairs: %d\nCandidate groups: %d\nThreshold (pairs): %d\nSuppressed groups: %d",
			set.Files, set.Pairs, set.Candidates, set.Threshold, set.Len()),
	}

	rows := make([][]string, len(set.Groups))
	for i, g := range set.Groups {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(g.Len()),
			strconv.Itoa(g.Count),
			g.Text(),
		}
	}
	groups := &Table{
		Title:   "Suppressed Groups",
		Headers: []string{"Rank", "Lines", "Pairs", "Text"},
		Rows:    rows,
	}

	return &Report{
		Sections: []Renderable{summary, groups},
		Data:     set,
	}
}

// CorpusEntry summarizes one canonical record.
type CorpusEntry struct {
	Filename string   `json:"filename" yaml:"filename"`
	Path     string   `json:"path" yaml:"path"`
	Language string   `json:"language" yaml:"language"`
	Tokens   int      `json:"tokens" yaml:"tokens"`
	Lines    int      `json:"lines" yaml:"lines"`
	Declared []string `json:"declared,omitempty" yaml:"declared,omitempty"`
	Sequence string   `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// Corpus renders per-file token statistics. With sequences set, the
// canonical sequence of every file is included.
func Corpus(corpus *models.Corpus, sequences bool) *Table {
	entries := make([]CorpusEntry, corpus.Len())
	rows := make([][]string, corpus.Len())
	total := 0
	for i, r := range corpus.Records {
		entries[i] = CorpusEntry{
			Filename: r.Filename,
			Path:     r.Path,
			Language: r.Language,
			Tokens:   r.TokenCount(),
			Lines:    r.LineCount(),
			Declared: r.Declared,
		}
		if sequences {
			entries[i].Sequence = r.Sequence
		}
		total += r.TokenCount()
		rows[i] = []string{r.Filename, r.Language, strconv.Itoa(r.TokenCount()), strconv.Itoa(r.LineCount()), strings.Join(r.Declared, " ")}
		if sequences {
			rows[i] = append(rows[i], r.Sequence)
		}
	}

	headers := []string{"Filename", "Language", "Tokens", "Lines", "Declared"}
	footer := []string{fmt.Sprintf("%d files", corpus.Len()), "", strconv.Itoa(total), "", ""}
	if sequences {
		headers = append(headers, "Sequence")
		footer = append(footer, "")
	}
	return &Table{
		Title:   "Corpus",
		Headers: headers,
		Rows:    rows,
		Footer:  footer,
		Data:    entries,
	}
}
