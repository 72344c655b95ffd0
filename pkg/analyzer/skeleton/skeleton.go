// Package skeleton finds code shared by a large share of a corpus, such as
// starter templates handed out with an assignment, so that pairwise scores
// can discount it.
package skeleton

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/panbanda/simfeat/internal/fileproc"
	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/models"
	"github.com/panbanda/simfeat/pkg/similarity"
)

// Miner scans every pair of a corpus for frequently shared line groups.
type Miner struct {
	config     Config
	workers    int
	onProgress fileproc.ProgressFunc
}

// Option is a functional option for configuring Miner.
type Option func(*Miner)

// WithMinParticipation sets the fraction of submissions a group must appear in.
func WithMinParticipation(fraction float64) Option {
	return func(m *Miner) {
		m.config.MinParticipation = fraction
	}
}

// WithMinTileScore sets the smallest tile score counted.
func WithMinTileScore(score int) Option {
	return func(m *Miner) {
		m.config.MinTileScore = score
	}
}

// WithCanonical selects canonical (true) or raw (false) line groups.
func WithCanonical(canonical bool) Option {
	return func(m *Miner) {
		m.config.UseCanonical = canonical
	}
}

// WithConfig sets all mining parameters from the loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(m *Miner) {
		m.config = Config{
			MinParticipation: cfg.Skeleton.MinParticipation,
			MinTileScore:     cfg.Skeleton.MinTileScore,
			MaxCandidates:    cfg.Skeleton.MaxCandidates,
			MinMatch:         cfg.Skeleton.MinMatch,
			UseCanonical:     cfg.Scoring.UseCanonical,
		}
		m.workers = cfg.Workers
	}
}

// WithWorkers sets the number of concurrent pair scans (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(m *Miner) {
		m.workers = n
	}
}

// WithProgress sets a callback invoked after each scanned pair.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(m *Miner) {
		m.onProgress = fn
	}
}

// New creates a miner with default config.
func New(opts ...Option) *Miner {
	m := &Miner{config: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the miner's parameters.
func (m *Miner) Config() Config {
	return m.config
}

// MineCorpus mines the corpus's line groups in the configured representation.
func (m *Miner) MineCorpus(ctx context.Context, corpus *models.Corpus) (*SuppressionSet, error) {
	return m.Mine(ctx, corpus.Lines(m.config.UseCanonical))
}

// Mine tiles every unordered pair of files and returns the groups shared by
// more pairs than the participation threshold allows.
func (m *Miner) Mine(ctx context.Context, files [][]string) (*SuppressionSet, error) {
	n := len(files)
	counter := newGroupCounter()

	err := fileproc.ForEachPair(ctx, n, m.workers, func(pair models.Pair) {
		left := files[pair.I]
		tiles, _ := similarity.GreedyTiles(left, files[pair.J], m.config.MinMatch)
		ordinal := pair.Ordinal(n)
		for k, tile := range tiles {
			if tile.Score < m.config.MinTileScore {
				continue
			}
			counter.add(left[tile.PosL:tile.PosL+tile.Length], discovery{pair: ordinal, tile: k})
		}
	}, m.onProgress)
	if err != nil {
		return nil, fmt.Errorf("mining skeleton groups: %w", err)
	}

	ranked := counter.ranked()
	threshold := Threshold(n, m.config.MinParticipation)
	return &SuppressionSet{
		Groups:     selectGroups(ranked, threshold, m.config.MaxCandidates),
		Threshold:  threshold,
		Candidates: len(ranked),
		Files:      n,
		Pairs:      models.PairCount(n),
	}, nil
}

// Threshold is the number of pairs a group must exceed: C(floor(fraction*n), 2).
func Threshold(n int, fraction float64) int {
	k := int(math.Floor(fraction * float64(n)))
	return models.PairCount(k)
}

// selectGroups keeps the leading run of the top maxCandidates groups whose
// count exceeds threshold, then orders them longest first.
func selectGroups(ranked []*entry, threshold, maxCandidates int) []Group {
	if maxCandidates > 0 && len(ranked) > maxCandidates {
		ranked = ranked[:maxCandidates]
	}
	var groups []Group
	for _, e := range ranked {
		if e.count <= threshold {
			break
		}
		groups = append(groups, Group{Lines: e.lines, Count: e.count})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Len() > groups[j].Len()
	})
	return groups
}

// Overlap removes each suppressed group found in both texts, longest group
// first, and reports how many lines and characters were removed. Only the
// first occurrence in each text is removed.
func (s *SuppressionSet) Overlap(left, right string) Overlap {
	var ov Overlap
	if s == nil {
		return ov
	}
	for _, g := range s.Groups {
		text := g.Text()
		if text == "" {
			continue
		}
		if !strings.Contains(left, text) || !strings.Contains(right, text) {
			continue
		}
		left = strings.Replace(left, text, "", 1)
		right = strings.Replace(right, text, "", 1)
		ov.Lines += g.Len()
		ov.Chars += len(text)
	}
	return ov
}
