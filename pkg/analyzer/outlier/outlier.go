// Package outlier adds token statistics and percentile flags to scored pairs.
//
// Flags are advisory: a pair whose file is unusually short, or whose score
// sits in the top percentiles of the corpus, is marked but never dropped.
package outlier

import (
	"fmt"
	"math"

	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/models"
	"github.com/panbanda/simfeat/pkg/stats"
)

// Config selects which statistics and flags are added.
type Config struct {
	TCA                bool
	TCD                bool
	Flags              bool
	TokenPercentiles   []int
	Features           []models.Feature
	FeaturePercentiles []int
	Method             stats.Method
}

// DefaultConfig mirrors config.DefaultConfig.
func DefaultConfig() Config {
	return Config{
		TCA:                true,
		TCD:                true,
		Flags:              true,
		TokenPercentiles:   []int{5, 10, 15},
		Features:           []models.Feature{models.CSS, models.CLTS, models.CSA, models.BS, models.WS, models.CS, models.CSSA, models.CLN, models.CBLN, models.CBLN80},
		FeaturePercentiles: []int{85, 90, 95},
		Method:             stats.Linear,
	}
}

// ConfigFrom derives builder settings from the loaded configuration.
func ConfigFrom(cfg *config.Config) (Config, error) {
	main, err := models.ParseFeatures(cfg.Features.Main, models.MainFeatures)
	if err != nil {
		return Config{}, fmt.Errorf("main features: %w", err)
	}
	enabled := models.NewFeatureSet(main...)

	out := Config{
		TCA:   enabled[models.TCA],
		TCD:   enabled[models.TCD],
		Flags: cfg.Stats.Enabled,
	}
	if !cfg.Stats.Enabled {
		return out, nil
	}

	out.Method, err = stats.ParseMethod(cfg.Stats.Method)
	if err != nil {
		return Config{}, err
	}
	out.Features, err = models.ParseFeatures(cfg.Stats.FeatureNames, models.ColumnOrder)
	if err != nil {
		return Config{}, fmt.Errorf("stats features: %w", err)
	}
	out.TokenPercentiles = cfg.Stats.TokenPercentiles
	out.FeaturePercentiles = cfg.Stats.FeaturePercentiles
	return out, nil
}

// Builder computes corpus-wide statistics over a scored table.
type Builder struct {
	config Config
}

// Option is a functional option for configuring Builder.
type Option func(*Builder)

// WithConfig replaces the builder settings.
func WithConfig(cfg Config) Option {
	return func(b *Builder) {
		b.config = cfg
	}
}

// WithMethod sets the percentile interpolation method.
func WithMethod(m stats.Method) Option {
	return func(b *Builder) {
		b.config.Method = m
	}
}

// WithoutFlags disables percentile flags, keeping TCA and TCD.
func WithoutFlags() Option {
	return func(b *Builder) {
		b.config.Flags = false
	}
}

// New creates a builder with default config.
func New(opts ...Option) *Builder {
	b := &Builder{config: DefaultConfig()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Schema extends a scorer schema with the builder's flag columns.
func (b *Builder) Schema(base models.Schema) models.Schema {
	schema := base
	schema.TokenFlags = nil
	schema.FeatureFlags = nil
	if !b.config.Flags {
		return schema
	}
	for _, p := range b.config.TokenPercentiles {
		schema.TokenFlags = append(schema.TokenFlags, models.TokenFlagName(p))
	}
	for _, f := range b.config.Features {
		for _, p := range b.config.FeaturePercentiles {
			schema.FeatureFlags = append(schema.FeatureFlags, models.FeatureFlagName(f, p))
		}
	}
	return schema
}

// TokenThresholds returns the token count at each configured percentile.
func (b *Builder) TokenThresholds(corpus *models.Corpus) []float64 {
	return stats.Percentiles(corpus.TokenCounts(), b.config.TokenPercentiles, b.config.Method)
}

// FeatureThresholds returns, per flagged feature, the score at each
// configured percentile over all rows.
func (b *Builder) FeatureThresholds(rows []models.PairFeatures) map[models.Feature][]float64 {
	out := make(map[models.Feature][]float64, len(b.config.Features))
	for _, f := range b.config.Features {
		out[f] = stats.Percentiles(models.ScoreColumn(rows, f), b.config.FeaturePercentiles, b.config.Method)
	}
	return out
}

// Build assembles the final table. rows must hold one row per corpus pair
// in pair enumeration order; they are updated in place.
func (b *Builder) Build(corpus *models.Corpus, rows []models.PairFeatures, base models.Schema) (*models.FeatureTable, error) {
	n := corpus.Len()
	if len(rows) != models.PairCount(n) {
		return nil, fmt.Errorf("expected %d rows for %d files, got %d", models.PairCount(n), n, len(rows))
	}

	schema := b.Schema(base)
	table := models.NewFeatureTable(schema, len(rows))

	var (
		tokenThresholds   []float64
		featureThresholds map[models.Feature][]float64
	)
	if b.config.Flags {
		tokenThresholds = b.TokenThresholds(corpus)
		featureThresholds = b.FeatureThresholds(rows)
	}

	for k := range rows {
		row := &rows[k]
		pair := models.PairAt(n, k)
		left := float64(corpus.Records[pair.I].TokenCount())
		right := float64(corpus.Records[pair.J].TokenCount())

		if row.Scores == nil {
			row.Scores = make(map[models.Feature]float64)
		}
		if b.config.TCA {
			row.Scores[models.TCA] = stats.Mean(left, right)
		}
		if b.config.TCD {
			row.Scores[models.TCD] = math.Abs(left - right)
		}

		if b.config.Flags {
			row.Flags = make(map[string]bool, len(schema.TokenFlags)+len(schema.FeatureFlags))
			for i, p := range b.config.TokenPercentiles {
				row.Flags[models.TokenFlagName(p)] = left <= tokenThresholds[i] || right <= tokenThresholds[i]
			}
			for _, f := range b.config.Features {
				for i, p := range b.config.FeaturePercentiles {
					row.Flags[models.FeatureFlagName(f, p)] = row.Scores[f] >= featureThresholds[f][i]
				}
			}
		}
		table.Rows = append(table.Rows, *row)
	}
	return table, nil
}
