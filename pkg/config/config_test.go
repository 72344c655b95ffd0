package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	assert.Equal(t, []string{"CSS", "CLTS", "CSA", "CSSA", "CLN", "CBLN", "CBLN80", "TCA", "TCD"}, cfg.Features.Main)
	assert.Equal(t, []string{"BS", "WS", "CS"}, cfg.Features.Style)
	assert.Equal(t, []int{5, 10, 15}, cfg.Stats.TokenPercentiles)
	assert.Equal(t, []int{85, 90, 95}, cfg.Stats.FeaturePercentiles)
	assert.Len(t, cfg.Stats.FeatureNames, 10)
	assert.Equal(t, 0.25, cfg.Skeleton.MinParticipation)
	assert.Equal(t, 5, cfg.Skeleton.MinTileScore)
	assert.Equal(t, 20, cfg.Skeleton.MaxCandidates)
	assert.False(t, cfg.Skeleton.Enabled)
	assert.True(t, cfg.Scoring.UseCanonical)
	assert.Equal(t, 3, cfg.Scoring.LineMinMatch)
	assert.Equal(t, 3, cfg.Scoring.StyleMinMatch)
	assert.Equal(t, 0.8, cfg.Scoring.CBLNThreshold)
	assert.True(t, cfg.Lexer.StripTemplate)
	assert.Equal(t, "csv", cfg.Output.Format)

	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}
	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "simfeat.toml", `
workers = 4

[features]
main = ["CSS", "CLTS"]
style = ["BS"]
clts_tiles = true

[stats]
feature_names = ["CSS", "BS"]
feature_percentiles = [90]

[skeleton]
enabled = true
min_participation = 0.5

[output]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"CSS", "CLTS"}, cfg.Features.Main)
	assert.Equal(t, []string{"BS"}, cfg.Features.Style)
	assert.True(t, cfg.Features.CLTSTiles)
	assert.Equal(t, []int{90}, cfg.Stats.FeaturePercentiles)
	assert.True(t, cfg.Skeleton.Enabled)
	assert.Equal(t, 0.5, cfg.Skeleton.MinParticipation)
	assert.Equal(t, 5, cfg.Skeleton.MinTileScore, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "simfeat.yaml", `
scoring:
  use_canonical: false
  style_min_match: 4
lexer:
  language: c
  strip_template: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Scoring.UseCanonical)
	assert.Equal(t, 4, cfg.Scoring.StyleMinMatch)
	assert.Equal(t, "c", cfg.Lexer.Language)
	assert.False(t, cfg.Lexer.StripTemplate)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "simfeat.json", `{"cache": {"enabled": false}, "log_level": "debug"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownFeature(t *testing.T) {
	path := writeConfig(t, "simfeat.toml", `
[features]
main = ["CSS", "XYZ"]
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Source)
}

func TestLoadRejectsMalformedPercentiles(t *testing.T) {
	path := writeConfig(t, "simfeat.json", `{"stats": {"token_percentiles": [5, "ten"]}}`)

	_, err := Load(path)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "simfeat.toml", `
[scoring]
min_mtach = 3
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"unknown style", func(c *Config) { c.Features.Style = []string{"XS"} }, "features.style"},
		{"percentile range", func(c *Config) { c.Stats.TokenPercentiles = []int{101} }, "token_percentiles"},
		{"stats feature disabled", func(c *Config) { c.Features.Style = nil }, "BS is not an enabled feature"},
		{"stats token feature", func(c *Config) { c.Stats.FeatureNames = []string{"TCD"} }, "stats.feature_names"},
		{"method", func(c *Config) { c.Stats.Method = "median" }, "stats.method"},
		{"participation", func(c *Config) { c.Skeleton.MinParticipation = 0 }, "min_participation"},
		{"threshold", func(c *Config) { c.Scoring.CBLNThreshold = 1.5 }, "cbln_threshold"},
		{"language", func(c *Config) { c.Lexer.Language = "cobol" }, "lexer.language"},
		{"pattern", func(c *Config) { c.Lexer.StripPatterns = []string{"("} }, "strip_patterns"},
		{"format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateStatsDisabledSkipsStatsChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stats.Enabled = false
	cfg.Features.Style = nil
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigSearch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".simfeat"), 0o755))
	path := filepath.Join(dir, ".simfeat", "simfeat.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 2\n"), 0o644))

	result, err := LoadConfig(WithSearchDirs(dir, filepath.Join(dir, ".simfeat")))
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.Equal(t, 2, result.Config.Workers)

	result, err = LoadConfig(WithSearchDirs(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, result.Source)
	assert.Equal(t, DefaultConfig(), result.Config)
}

func TestLoadConfigWithPath(t *testing.T) {
	path := writeConfig(t, "custom.toml", "workers = 3\n")

	result, err := LoadConfig(WithPath(path))
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.Equal(t, 3, result.Config.Workers)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Source: "simfeat.toml", Problems: []string{"a", "b"}}
	assert.Equal(t, "invalid configuration in simfeat.toml: a; b", err.Error())
}
