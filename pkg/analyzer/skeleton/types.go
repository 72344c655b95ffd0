package skeleton

import "strings"

// Config holds the mining parameters.
type Config struct {
	// MinParticipation is the fraction of submissions that must share a
	// line group before it counts as skeleton code.
	MinParticipation float64 `json:"min_participation"`
	// MinTileScore is the smallest tile score that is counted.
	MinTileScore int `json:"min_tile_score"`
	// MaxCandidates bounds how many of the most frequent groups are considered.
	MaxCandidates int `json:"max_candidates"`
	// MinMatch is the tiling minimum match length in lines.
	MinMatch int `json:"min_match"`
	// UseCanonical mines canonical line groups; false mines raw lines.
	UseCanonical bool `json:"use_canonical"`
}

// DefaultConfig returns the default mining parameters.
func DefaultConfig() Config {
	return Config{
		MinParticipation: 0.25,
		MinTileScore:     5,
		MaxCandidates:    20,
		MinMatch:         3,
		UseCanonical:     true,
	}
}

// Group is a run of consecutive lines shared by many pairs.
type Group struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

// Text is the group's lines concatenated, trimmed of surrounding space.
func (g Group) Text() string {
	return strings.TrimSpace(strings.Join(g.Lines, ""))
}

// Len is the number of lines in the group.
func (g Group) Len() int {
	return len(g.Lines)
}

// SuppressionSet is the ordered list of skeleton groups, longest first.
// A nil or empty set suppresses nothing.
type SuppressionSet struct {
	Groups     []Group `json:"groups"`
	Threshold  int     `json:"threshold"`
	Candidates int     `json:"candidates"`
	Files      int     `json:"files"`
	Pairs      int     `json:"pairs"`
}

// Len returns the number of suppressed groups.
func (s *SuppressionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Groups)
}

// Contains reports whether lines is exactly one of the suppressed groups.
func (s *SuppressionSet) Contains(lines []string) bool {
	if s == nil {
		return false
	}
	for _, g := range s.Groups {
		if equalLines(g.Lines, lines) {
			return true
		}
	}
	return false
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Overlap counts what suppression removed from one pair.
type Overlap struct {
	Lines int `json:"lines"`
	Chars int `json:"chars"`
}
