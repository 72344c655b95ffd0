package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/panbanda/simfeat/pkg/similarity"
)

// Fixed leading column names.
const (
	ColFilename1     = "Filename 1"
	ColFilename2     = "Filename 2"
	ColLinePos1      = "Line Pos 1"
	ColLinePos2      = "Line Pos 2"
	ColShortestToken = "Shortest Token Length"
	ColTiles         = "CLTS Tiles"
)

// PairFeatures is one row of the feature table.
type PairFeatures struct {
	File1          string              `json:"file_1" yaml:"file_1"`
	File2          string              `json:"file_2" yaml:"file_2"`
	LinePos1       []int               `json:"line_pos_1" yaml:"line_pos_1"`
	LinePos2       []int               `json:"line_pos_2" yaml:"line_pos_2"`
	ShortestTokens int                 `json:"shortest_token_length" yaml:"shortest_token_length"`
	Tiles          []similarity.Tile   `json:"clts_tiles,omitempty" yaml:"clts_tiles,omitempty"`
	Scores         map[Feature]float64 `json:"scores" yaml:"scores"`
	Flags          map[string]bool     `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Schema fixes the columns of a feature table.
type Schema struct {
	Features     []Feature
	Tiles        bool
	TokenFlags   []string
	FeatureFlags []string
}

// Columns returns the column names in output order.
func (s Schema) Columns() []string {
	cols := []string{ColFilename1, ColFilename2, ColLinePos1, ColLinePos2, ColShortestToken}
	if s.Tiles {
		cols = append(cols, ColTiles)
	}
	for _, f := range s.Features {
		cols = append(cols, f.String())
	}
	cols = append(cols, s.TokenFlags...)
	cols = append(cols, s.FeatureFlags...)
	return cols
}

// FeatureTable holds one row per unordered pair under a fixed schema.
type FeatureTable struct {
	Schema Schema         `json:"-" yaml:"-"`
	Rows   []PairFeatures `json:"pairs" yaml:"pairs"`
}

// NewFeatureTable creates a table with room for n rows.
func NewFeatureTable(schema Schema, n int) *FeatureTable {
	return &FeatureTable{
		Schema: schema,
		Rows:   make([]PairFeatures, 0, n),
	}
}

// Columns returns the table's column names.
func (t *FeatureTable) Columns() []string {
	return t.Schema.Columns()
}

// ScoreColumn returns the score of feature f in each row.
func ScoreColumn(rows []PairFeatures, f Feature) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row.Scores[f]
	}
	return out
}

// Cells renders row i as strings in column order.
func (t *FeatureTable) Cells(i int) []string {
	row := t.Rows[i]
	cells := []string{
		row.File1,
		row.File2,
		formatInts(row.LinePos1),
		formatInts(row.LinePos2),
		strconv.Itoa(row.ShortestTokens),
	}
	if t.Schema.Tiles {
		cells = append(cells, formatTiles(row.Tiles))
	}
	for _, f := range t.Schema.Features {
		cells = append(cells, FormatScore(row.Scores[f]))
	}
	for _, name := range t.Schema.TokenFlags {
		cells = append(cells, strconv.FormatBool(row.Flags[name]))
	}
	for _, name := range t.Schema.FeatureFlags {
		cells = append(cells, strconv.FormatBool(row.Flags[name]))
	}
	return cells
}

// FormatScore renders a score with the fewest digits that round-trip.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatTiles(tiles []similarity.Tile) string {
	if len(tiles) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tiles)
	if err != nil {
		return "[]"
	}
	return string(data)
}
