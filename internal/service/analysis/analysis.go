// Package analysis runs the feature extraction pipeline: canonicalize every
// file, optionally mine skeleton code, score every pair, then add corpus
// statistics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/panbanda/simfeat/internal/cache"
	"github.com/panbanda/simfeat/internal/fileproc"
	"github.com/panbanda/simfeat/internal/progress"
	"github.com/panbanda/simfeat/pkg/analyzer/features"
	"github.com/panbanda/simfeat/pkg/analyzer/outlier"
	"github.com/panbanda/simfeat/pkg/analyzer/skeleton"
	"github.com/panbanda/simfeat/pkg/canonical"
	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/lexer"
	"github.com/panbanda/simfeat/pkg/models"
	"github.com/panbanda/simfeat/pkg/parser"
	"github.com/panbanda/simfeat/pkg/style"
)

// Service orchestrates feature extraction over a corpus of files.
type Service struct {
	config   *config.Config
	cache    *cache.Cache
	progress []progress.Option
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache stores and reuses canonical records.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithProgress draws per-phase progress bars. Bars are off by default.
func WithProgress(opts ...progress.Option) Option {
	return func(s *Service) {
		s.progress = opts
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config:   config.LoadOrDefault(),
		progress: []progress.Option{progress.Silent(true)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// CorpusResult is a canonicalized corpus and the files left out of it.
type CorpusResult struct {
	Corpus  *models.Corpus
	Skipped []fileproc.FileError
}

// Corpus lexes and canonicalizes files in parallel. Files that cannot be
// read or tokenized, or that contain no tokens, are logged and skipped.
// Records are ordered by filename.
func (s *Service) Corpus(ctx context.Context, files []string) (*CorpusResult, error) {
	lx, err := s.lexer()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tracker := progress.Start("Canonicalizing", len(files), s.progress...)
	records, errs := fileproc.MapFilesN(ctx, files, s.config.Workers,
		func(ctx context.Context, psr *parser.Parser, path string) (*models.Record, error) {
			return s.record(ctx, lx, psr, path)
		},
		tracker.Func(),
		func(path string, err error) {
			switch {
			case ctx.Err() != nil:
			case IsSkippable(err):
				log.Warn().Str("path", path).Err(err).Msg("skipping file")
			default:
				log.Error().Str("path", path).Err(err).Msg("skipping unreadable file")
			}
		},
	)
	if err := ctx.Err(); err != nil {
		tracker.Fail(err)
		return nil, err
	}
	tracker.Done()

	result := &CorpusResult{Corpus: models.NewCorpus(records)}
	result.Skipped = errs.List()
	if err := errs.Err(); err != nil {
		log.Debug().Err(err).Msg("files left out of corpus")
	}
	log.Info().
		Int("files", result.Corpus.Len()).
		Int("skipped", len(result.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("canonicalized corpus")
	return result, nil
}

func (s *Service) lexer() (*lexer.Lexer, error) {
	lang, err := parser.ParseLanguage(s.config.Lexer.Language)
	if err != nil {
		return nil, &config.ConfigError{Err: fmt.Errorf("lexer.language: %w", err)}
	}
	opts := []lexer.Option{lexer.WithLanguage(lang)}
	if s.config.Lexer.StripTemplate {
		patterns, err := lexer.CompilePatterns(s.config.Lexer.StripPatterns)
		if err != nil {
			return nil, &config.ConfigError{Err: fmt.Errorf("lexer.strip_patterns: %w", err)}
		}
		opts = append(opts, lexer.WithTemplateStripping(patterns))
	}
	return lexer.New(opts...), nil
}

// record builds the canonical record of one file, consulting the cache first.
func (s *Service) record(ctx context.Context, lx *lexer.Lexer, psr *parser.Parser, path string) (*models.Record, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if rec, ok := s.cache.GetRecord(path, src); ok {
		return rec, nil
	}

	rec, err := BuildRecord(ctx, lx, psr, path, src)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetRecord(path, src, rec); err != nil {
		log.Debug().Str("path", path).Err(err).Msg("cache write failed")
	}
	return rec, nil
}

// BuildRecord tokenizes src and derives its canonical and style sequences.
func BuildRecord(ctx context.Context, lx *lexer.Lexer, psr *parser.Parser, path string, src []byte) (*models.Record, error) {
	tokens, err := lx.Tokenize(ctx, psr, path, src)
	if err != nil {
		return nil, err
	}
	res, err := canonical.Run(tokens)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	raw := string(src)
	return &models.Record{
		Filename:    filepath.Base(path),
		Path:        path,
		Language:    string(lx.LanguageFor(path)),
		Raw:         raw,
		Sequence:    res.Sequence,
		Lines:       res.LineTexts(),
		LineNumbers: res.LineNumbers(),
		Style:       style.Extract(raw),
		Declared:    res.DeclaredNames(),
	}, nil
}

// Skeleton canonicalizes files and mines the skeleton groups shared across
// the corpus.
func (s *Service) Skeleton(ctx context.Context, files []string) (*skeleton.SuppressionSet, error) {
	result, err := s.Corpus(ctx, files)
	if err != nil {
		return nil, err
	}
	return s.MineSkeleton(ctx, result.Corpus)
}

// MineSkeleton mines skeleton groups from an already canonicalized corpus.
func (s *Service) MineSkeleton(ctx context.Context, corpus *models.Corpus) (*skeleton.SuppressionSet, error) {
	start := time.Now()
	tracker := s.pairTracker("Mining skeleton", corpus)
	miner := skeleton.New(
		skeleton.WithConfig(s.config),
		skeleton.WithProgress(tracker.Func()),
	)
	set, err := miner.MineCorpus(ctx, corpus)
	if err != nil {
		tracker.Fail(err)
		return nil, err
	}
	tracker.Done()

	log.Info().
		Int("groups", set.Len()).
		Int("candidates", set.Candidates).
		Int("threshold", set.Threshold).
		Dur("elapsed", time.Since(start)).
		Msg("mined skeleton groups")
	return set, nil
}

// pairTracker starts a bar over the corpus pairs. A corpus without pairs
// is reported as skipped at once and gets a nil tracker.
func (s *Service) pairTracker(label string, corpus *models.Corpus) *progress.Tracker {
	n := corpus.PairCount()
	if n == 0 {
		progress.Start(label, 1, s.progress...).Skip("no pairs")
		return nil
	}
	return progress.Start(label, n, s.progress...)
}

// FeatureResult is a scored feature table with the pipeline's side outputs.
type FeatureResult struct {
	Table    *models.FeatureTable
	Skeleton *skeleton.SuppressionSet
	Skipped  []fileproc.FileError
}

// Features runs the whole pipeline over files.
func (s *Service) Features(ctx context.Context, files []string) (*FeatureResult, error) {
	// Bad scoring settings fail before any file is read.
	if _, _, err := s.analyzerConfigs(); err != nil {
		return nil, err
	}

	result, err := s.Corpus(ctx, files)
	if err != nil {
		return nil, err
	}
	if result.Corpus.Len() < 2 {
		log.Warn().Int("files", result.Corpus.Len()).Msg("fewer than two files, no pairs to score")
	}

	out, err := s.FeaturesFor(ctx, result.Corpus)
	if err != nil {
		return nil, err
	}
	out.Skipped = result.Skipped
	return out, nil
}

// FeaturesFor scores an already canonicalized corpus.
func (s *Service) FeaturesFor(ctx context.Context, corpus *models.Corpus) (*FeatureResult, error) {
	scoring, stats, err := s.analyzerConfigs()
	if err != nil {
		return nil, err
	}
	return s.score(ctx, corpus, scoring, stats)
}

func (s *Service) analyzerConfigs() (features.Config, outlier.Config, error) {
	scoring, err := features.ConfigFrom(s.config)
	if err != nil {
		return features.Config{}, outlier.Config{}, &config.ConfigError{Err: err}
	}
	stats, err := outlier.ConfigFrom(s.config)
	if err != nil {
		return features.Config{}, outlier.Config{}, &config.ConfigError{Err: err}
	}
	return scoring, stats, nil
}

func (s *Service) score(ctx context.Context, corpus *models.Corpus, scoring features.Config, stats outlier.Config) (*FeatureResult, error) {
	out := &FeatureResult{}
	if s.config.Skeleton.Enabled {
		set, err := s.MineSkeleton(ctx, corpus)
		if err != nil {
			return nil, err
		}
		out.Skeleton = set
	}

	start := time.Now()
	tracker := s.pairTracker("Scoring pairs", corpus)
	scorer := features.New(
		features.WithConfig(scoring),
		features.WithSuppression(out.Skeleton),
		features.WithWorkers(s.config.Workers),
		features.WithProgress(tracker.Func()),
	)
	rows, err := scorer.ScoreCorpus(ctx, corpus)
	if err != nil {
		tracker.Fail(err)
		return nil, err
	}
	tracker.Done()
	log.Info().
		Int("pairs", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("scored pairs")

	table, err := outlier.New(outlier.WithConfig(stats)).Build(corpus, rows, scorer.Schema())
	if err != nil {
		return nil, fmt.Errorf("building statistics: %w", err)
	}
	out.Table = table
	return out, nil
}

// IsSkippable reports whether err marks a single unusable file rather than
// a pipeline failure.
func IsSkippable(err error) bool {
	var lexErr *lexer.LexError
	return errors.As(err, &lexErr) || errors.Is(err, canonical.ErrEmptyInput) || errors.Is(err, os.ErrNotExist)
}
