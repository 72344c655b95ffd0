// Package features computes the per-pair similarity feature vector.
package features

import (
	"context"
	"fmt"

	"github.com/panbanda/simfeat/internal/fileproc"
	"github.com/panbanda/simfeat/pkg/analyzer/skeleton"
	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/models"
	"github.com/panbanda/simfeat/pkg/similarity"
	"github.com/panbanda/simfeat/pkg/stats"
)

// Config selects the features to compute and how to compute them.
type Config struct {
	Features      models.FeatureSet
	Tiles         bool
	UseCanonical  bool
	LineMinMatch  int
	StyleMinMatch int
	CBLNThreshold float64
}

// DefaultConfig computes every feature over canonical sequences.
func DefaultConfig() Config {
	all := append(append([]models.Feature{}, models.MainFeatures...), models.StyleFeatures...)
	return Config{
		Features:      models.NewFeatureSet(all...),
		UseCanonical:  true,
		LineMinMatch:  similarity.DefaultMinMatch,
		StyleMinMatch: similarity.DefaultMinMatch,
		CBLNThreshold: 0.8,
	}
}

// ConfigFrom derives scorer settings from the loaded configuration.
func ConfigFrom(cfg *config.Config) (Config, error) {
	main, err := models.ParseFeatures(cfg.Features.Main, models.MainFeatures)
	if err != nil {
		return Config{}, fmt.Errorf("main features: %w", err)
	}
	style, err := models.ParseFeatures(cfg.Features.Style, models.StyleFeatures)
	if err != nil {
		return Config{}, fmt.Errorf("style features: %w", err)
	}
	return Config{
		Features:      models.NewFeatureSet(append(main, style...)...),
		Tiles:         cfg.Features.CLTSTiles,
		UseCanonical:  cfg.Scoring.UseCanonical,
		LineMinMatch:  cfg.Scoring.LineMinMatch,
		StyleMinMatch: cfg.Scoring.StyleMinMatch,
		CBLNThreshold: cfg.Scoring.CBLNThreshold,
	}, nil
}

// Scorer computes feature vectors for pairs of records.
type Scorer struct {
	config      Config
	suppression *skeleton.SuppressionSet
	nerf        bool
	workers     int
	onProgress  fileproc.ProgressFunc
}

// Option is a functional option for configuring Scorer.
type Option func(*Scorer)

// WithConfig replaces the scorer settings.
func WithConfig(cfg Config) Option {
	return func(s *Scorer) {
		s.config = cfg
	}
}

// WithFeatures restricts scoring to the given features.
func WithFeatures(features ...models.Feature) Option {
	return func(s *Scorer) {
		s.config.Features = models.NewFeatureSet(features...)
	}
}

// WithTiles includes the kept CLTS tiles in each row.
func WithTiles(enabled bool) Option {
	return func(s *Scorer) {
		s.config.Tiles = enabled
	}
}

// WithCanonical selects canonical (true) or raw (false) comparison.
func WithCanonical(canonical bool) Option {
	return func(s *Scorer) {
		s.config.UseCanonical = canonical
	}
}

// WithSuppression enables skeleton suppression with the mined set. A nil
// set leaves suppression off.
func WithSuppression(set *skeleton.SuppressionSet) Option {
	return func(s *Scorer) {
		s.suppression = set
		s.nerf = set != nil
	}
}

// WithWorkers sets the number of concurrent pair scorers (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		s.workers = n
	}
}

// WithProgress sets a callback invoked after each scored pair.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(s *Scorer) {
		s.onProgress = fn
	}
}

// New creates a scorer with default config.
func New(opts ...Option) *Scorer {
	s := &Scorer{config: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the scorer settings.
func (s *Scorer) Config() Config {
	return s.config
}

// Schema returns the table schema for the scored columns. Flag columns are
// added by the outlier builder.
func (s *Scorer) Schema() models.Schema {
	return models.Schema{
		Features: s.config.Features.Ordered(),
		Tiles:    s.config.Tiles && s.config.Features[models.CLTS],
	}
}

// view is a record prepared for repeated comparison.
type view struct {
	record    *models.Record
	text      string
	lines     []string
	bigrams   []string
	lineSet   lineSet
	bigramSet lineSet
}

func (s *Scorer) prepare(r *models.Record) *view {
	lines := r.LineGroups(s.config.UseCanonical)
	bigrams := BigramLines(lines)
	return &view{
		record:    r,
		text:      r.Text(s.config.UseCanonical),
		lines:     lines,
		bigrams:   bigrams,
		lineSet:   newLineSet(lines),
		bigramSet: newLineSet(bigrams),
	}
}

// ScorePair computes the enabled features for one pair of records.
func (s *Scorer) ScorePair(left, right *models.Record) models.PairFeatures {
	return s.score(s.prepare(left), s.prepare(right))
}

// ScoreCorpus scores every unordered pair of the corpus in parallel. Rows
// follow pair enumeration order.
func (s *Scorer) ScoreCorpus(ctx context.Context, corpus *models.Corpus) ([]models.PairFeatures, error) {
	views := make([]*view, corpus.Len())
	for i, r := range corpus.Records {
		views[i] = s.prepare(r)
	}
	rows, err := fileproc.MapPairs(ctx, len(views), s.workers, func(pair models.Pair) models.PairFeatures {
		return s.score(views[pair.I], views[pair.J])
	}, s.onProgress)
	if err != nil {
		return nil, fmt.Errorf("scoring pairs: %w", err)
	}
	return rows, nil
}

func (s *Scorer) score(l, r *view) models.PairFeatures {
	enabled := s.config.Features
	row := models.PairFeatures{
		File1:          l.record.Filename,
		File2:          r.record.Filename,
		LinePos1:       l.record.LineNumbers,
		LinePos2:       r.record.LineNumbers,
		ShortestTokens: min(len(l.text), len(r.text)),
		Scores:         make(map[models.Feature]float64, len(enabled)),
	}

	var ov skeleton.Overlap
	if s.nerf {
		ov = s.suppression.Overlap(l.text, r.text)
	}

	needCSS := enabled[models.CSS] || enabled[models.CSA]
	needCLTS := enabled[models.CLTS] || enabled[models.CSA]

	var css, clts float64
	if needCSS {
		css = structureSimilarity(l.text, r.text, s.nerf, ov)
	}
	if needCLTS {
		var tiles []similarity.Tile
		tiles, clts = lineTiles(l.lines, r.lines, s.config.LineMinMatch, s.suppression, s.nerf, ov)
		if s.config.Tiles && enabled[models.CLTS] {
			row.Tiles = tiles
		}
	}
	s.set(row, models.CSS, css)
	s.set(row, models.CLTS, clts)
	s.set(row, models.CSA, stats.Mean(css, clts))

	suppressed := 0
	if s.nerf {
		suppressed = ov.Lines
	}
	if enabled[models.CLN] {
		row.Scores[models.CLN] = commonLines(l.lineSet, r.lineSet, suppressed)
	}
	if enabled[models.CBLN] {
		row.Scores[models.CBLN] = commonLines(l.bigramSet, r.bigramSet, suppressed)
	}
	if enabled[models.CBLN80] {
		row.Scores[models.CBLN80] = fuzzyBigramLines(l.bigrams, r.bigrams, s.config.CBLNThreshold, max(suppressed-1, 0))
	}

	if enabled[models.BS] || enabled[models.WS] || enabled[models.CS] || enabled[models.CSSA] {
		ls, rs := l.record.Style, r.record.Style
		bs := styleSimilarity(ls.Brace, rs.Brace, s.config.StyleMinMatch)
		ws := styleSimilarity(ls.Indent, rs.Indent, s.config.StyleMinMatch)
		cs := styleSimilarity(ls.Comment, rs.Comment, s.config.StyleMinMatch)
		s.set(row, models.BS, bs)
		s.set(row, models.WS, ws)
		s.set(row, models.CS, cs)
		s.set(row, models.CSSA, stats.Mean(bs, ws, cs))
	}
	return row
}

func (s *Scorer) set(row models.PairFeatures, f models.Feature, v float64) {
	if s.config.Features[f] {
		row.Scores[f] = stats.Clamp01(v)
	}
}
