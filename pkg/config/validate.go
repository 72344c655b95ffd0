package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/panbanda/simfeat/pkg/lexer"
	"github.com/panbanda/simfeat/pkg/models"
	"github.com/panbanda/simfeat/pkg/parser"
	"github.com/panbanda/simfeat/pkg/stats"
)

// ConfigError reports an invalid configuration. It is fatal: nothing is
// scored until the configuration is fixed.
type ConfigError struct {
	Source   string
	Problems []string
	Err      error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// OutputFormats lists the accepted output.format values.
var OutputFormats = []string{"csv", "json", "yaml", "toon", "markdown", "text"}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	main, err := models.ParseFeatures(c.Features.Main, models.MainFeatures)
	if err != nil {
		addf("features.main: %v", err)
	}
	style, err := models.ParseFeatures(c.Features.Style, models.StyleFeatures)
	if err != nil {
		addf("features.style: %v", err)
	}
	enabled := models.NewFeatureSet(append(main, style...)...)

	if c.Stats.Enabled {
		for _, p := range c.Stats.TokenPercentiles {
			if p < 0 || p > 100 {
				addf("stats.token_percentiles: %d is outside [0, 100]", p)
			}
		}
		for _, p := range c.Stats.FeaturePercentiles {
			if p < 0 || p > 100 {
				addf("stats.feature_percentiles: %d is outside [0, 100]", p)
			}
		}
		names, err := models.ParseFeatures(c.Stats.FeatureNames, scoredFeatures())
		if err != nil {
			addf("stats.feature_names: %v", err)
		}
		for _, f := range names {
			if !enabled[f] {
				addf("stats.feature_names: %s is not an enabled feature", f)
			}
		}
		if _, err := stats.ParseMethod(c.Stats.Method); err != nil {
			addf("stats.method: %v", err)
		}
	}

	if c.Skeleton.MinParticipation <= 0 || c.Skeleton.MinParticipation > 1 {
		addf("skeleton.min_participation: %v is outside (0, 1]", c.Skeleton.MinParticipation)
	}
	if c.Skeleton.MinTileScore < 1 {
		addf("skeleton.min_tile_score must be at least 1")
	}
	if c.Skeleton.MaxCandidates < 1 {
		addf("skeleton.max_candidates must be at least 1")
	}
	if c.Skeleton.MinMatch < 1 {
		addf("skeleton.min_match must be at least 1")
	}

	if c.Scoring.LineMinMatch < 1 {
		addf("scoring.line_min_match must be at least 1")
	}
	if c.Scoring.StyleMinMatch < 1 {
		addf("scoring.style_min_match must be at least 1")
	}
	if c.Scoring.CBLNThreshold < 0 || c.Scoring.CBLNThreshold > 1 {
		addf("scoring.cbln_threshold: %v is outside [0, 1]", c.Scoring.CBLNThreshold)
	}

	if _, err := parser.ParseLanguage(c.Lexer.Language); err != nil {
		addf("lexer.language: %v", err)
	}
	if _, err := lexer.CompilePatterns(c.Lexer.StripPatterns); err != nil {
		addf("lexer.strip_patterns: %v", err)
	}

	if !containsString(OutputFormats, c.Output.Format) {
		addf("output.format: unknown format %q", c.Output.Format)
	}
	if c.Workers < 0 {
		addf("workers must not be negative")
	}
	if c.Cache.TTL < 0 {
		addf("cache.ttl must not be negative")
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			addf("log_level: %v", err)
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// scoredFeatures are the features that can carry percentile flags.
func scoredFeatures() []models.Feature {
	var out []models.Feature
	for _, f := range models.ColumnOrder {
		if !f.IsTokenStat() {
			out = append(out, f)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
