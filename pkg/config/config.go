package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for simfeat.
type Config struct {
	// Feature selection
	Features FeaturesConfig `koanf:"features" toml:"features"`

	// Corpus-wide percentile flags
	Stats StatsConfig `koanf:"stats" toml:"stats"`

	// Skeleton code suppression
	Skeleton SkeletonConfig `koanf:"skeleton" toml:"skeleton"`

	// Scoring parameters
	Scoring ScoringConfig `koanf:"scoring" toml:"scoring"`

	// Tokenization
	Lexer LexerConfig `koanf:"lexer" toml:"lexer"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Worker goroutines; 0 means twice the CPU count
	Workers int `koanf:"workers" toml:"workers"`

	LogLevel string `koanf:"log_level" toml:"log_level"`
}

// FeaturesConfig selects which features are computed.
type FeaturesConfig struct {
	Main      []string `koanf:"main" toml:"main"`
	Style     []string `koanf:"style" toml:"style"`
	CLTSTiles bool     `koanf:"clts_tiles" toml:"clts_tiles"`
}

// StatsConfig controls percentile outlier flags.
type StatsConfig struct {
	Enabled            bool     `koanf:"enabled" toml:"enabled"`
	TokenPercentiles   []int    `koanf:"token_percentiles" toml:"token_percentiles"`
	FeatureNames       []string `koanf:"feature_names" toml:"feature_names"`
	FeaturePercentiles []int    `koanf:"feature_percentiles" toml:"feature_percentiles"`
	Method             string   `koanf:"method" toml:"method"` // linear, empirical, lininterp, nearest
}

// SkeletonConfig controls mining and suppression of shared skeleton code.
type SkeletonConfig struct {
	Enabled          bool    `koanf:"enabled" toml:"enabled"`
	MinParticipation float64 `koanf:"min_participation" toml:"min_participation"`
	MinTileScore     int     `koanf:"min_tile_score" toml:"min_tile_score"`
	MaxCandidates    int     `koanf:"max_candidates" toml:"max_candidates"`
	MinMatch         int     `koanf:"min_match" toml:"min_match"`
}

// ScoringConfig holds scoring parameters.
type ScoringConfig struct {
	// Compare canonical symbols; false compares raw text and raw lines.
	UseCanonical  bool    `koanf:"use_canonical" toml:"use_canonical"`
	LineMinMatch  int     `koanf:"line_min_match" toml:"line_min_match"`
	StyleMinMatch int     `koanf:"style_min_match" toml:"style_min_match"`
	CBLNThreshold float64 `koanf:"cbln_threshold" toml:"cbln_threshold"`
}

// LexerConfig controls tokenization.
type LexerConfig struct {
	Language      string   `koanf:"language" toml:"language"` // auto, java, c, cpp
	StripTemplate bool     `koanf:"strip_template" toml:"strip_template"`
	StripPatterns []string `koanf:"strip_patterns" toml:"strip_patterns"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // csv, json, yaml, toon, markdown, text
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Features: FeaturesConfig{
			Main:  []string{"CSS", "CLTS", "CSA", "CSSA", "CLN", "CBLN", "CBLN80", "TCA", "TCD"},
			Style: []string{"BS", "WS", "CS"},
		},
		Stats: StatsConfig{
			Enabled:            true,
			TokenPercentiles:   []int{5, 10, 15},
			FeatureNames:       []string{"CSS", "CLTS", "CSA", "BS", "WS", "CS", "CSSA", "CLN", "CBLN", "CBLN80"},
			FeaturePercentiles: []int{85, 90, 95},
			Method:             "linear",
		},
		Skeleton: SkeletonConfig{
			Enabled:          false,
			MinParticipation: 0.25,
			MinTileScore:     5,
			MaxCandidates:    20,
			MinMatch:         3,
		},
		Scoring: ScoringConfig{
			UseCanonical:  true,
			LineMinMatch:  3,
			StyleMinMatch: 3,
			CBLNThreshold: 0.8,
		},
		Lexer: LexerConfig{
			Language:      "auto",
			StripTemplate: true,
			StripPatterns: []string{
				`package .*`,
				`public class .*`,
				`public .* main.*`,
			},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*Test.java",
				"*_test.c",
			},
			Extensions: []string{
				".class",
				".o",
			},
			Dirs: []string{
				".git",
				".simfeat",
				"build",
				"target",
				"out",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".simfeat/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "csv",
			Color:   true,
			Verbose: false,
		},
		Workers:  0,
		LogLevel: "info",
	}
}

// parsers maps config file extensions to koanf parsers. Anything else is
// read as TOML.
var parsers = map[string]func() koanf.Parser{
	".yaml": func() koanf.Parser { return yaml.Parser() },
	".yml":  func() koanf.Parser { return yaml.Parser() },
	".json": func() koanf.Parser { return json.Parser() },
}

func parserFor(path string) koanf.Parser {
	if mk, ok := parsers[strings.ToLower(filepath.Ext(path))]; ok {
		return mk()
	}
	return toml.Parser()
}

// Load reads one config file over the defaults. The raw document is
// checked against the JSON schema before decoding, and the decoded config
// against Validate after. Both failures are *ConfigError naming path.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := validateSchema(k.Raw()); err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	err := cfg.Validate()
	if cfgErr := (*ConfigError)(nil); errors.As(err, &cfgErr) {
		cfgErr.Source = path
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// configNames are searched, in order, by LoadConfig.
var configNames = []string{
	"simfeat.toml",
	"simfeat.yaml",
	"simfeat.yml",
	"simfeat.json",
	".simfeat.toml",
	".simfeat.yaml",
	".simfeat.yml",
	".simfeat.json",
}

// LoadResult is a loaded configuration and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption customizes LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs replaces the directories searched for config files.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig loads an explicit config file, or the first config file found
// in the search directories, or the defaults when none exists.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: []string{".", ".simfeat"}}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range o.dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}
