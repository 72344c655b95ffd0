package models

import (
	"fmt"
	"strings"
)

// Feature names a per-pair similarity measure.
type Feature string

const (
	CSS    Feature = "CSS"
	CLTS   Feature = "CLTS"
	CSA    Feature = "CSA"
	CSSA   Feature = "CSSA"
	CLN    Feature = "CLN"
	CBLN   Feature = "CBLN"
	CBLN80 Feature = "CBLN80"
	TCA    Feature = "TCA"
	TCD    Feature = "TCD"
	BS     Feature = "BS"
	WS     Feature = "WS"
	CS     Feature = "CS"
)

func (f Feature) String() string { return string(f) }

// MainFeatures are computed from canonical sequences and token counts.
var MainFeatures = []Feature{CSS, CLTS, CSA, CSSA, CLN, CBLN, CBLN80, TCA, TCD}

// StyleFeatures are computed from style sequences.
var StyleFeatures = []Feature{BS, WS, CS}

// ColumnOrder is the fixed output order of feature columns.
var ColumnOrder = []Feature{CSS, CLTS, CSA, CSSA, CLN, CBLN, CBLN80, BS, WS, CS, TCA, TCD}

// IsStyle reports whether f is a style feature.
func (f Feature) IsStyle() bool {
	return f == BS || f == WS || f == CS
}

// IsTokenStat reports whether f comes from token counts rather than scoring.
func (f Feature) IsTokenStat() bool {
	return f == TCA || f == TCD
}

// ParseFeatures validates feature names against allowed.
func ParseFeatures(names []string, allowed []Feature) ([]Feature, error) {
	out := make([]Feature, 0, len(names))
	for _, name := range names {
		f := Feature(strings.ToUpper(strings.TrimSpace(name)))
		if !containsFeature(allowed, f) {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}

func containsFeature(list []Feature, f Feature) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

// FeatureSet is a set of enabled features.
type FeatureSet map[Feature]bool

// NewFeatureSet builds a set from features.
func NewFeatureSet(features ...Feature) FeatureSet {
	s := make(FeatureSet, len(features))
	for _, f := range features {
		s[f] = true
	}
	return s
}

// Ordered returns the enabled features in ColumnOrder.
func (s FeatureSet) Ordered() []Feature {
	var out []Feature
	for _, f := range ColumnOrder {
		if s[f] {
			out = append(out, f)
		}
	}
	return out
}

// TokenFlagName returns the column name of a token-count percentile flag.
func TokenFlagName(percentile int) string {
	return fmt.Sprintf("tokens_less_%02d", percentile)
}

// FeatureFlagName returns the column name of a feature percentile flag.
func FeatureFlagName(f Feature, percentile int) string {
	return fmt.Sprintf("%s_more_%d", f, percentile)
}
