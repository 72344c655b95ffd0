package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/simfeat/internal/cache"
	"github.com/panbanda/simfeat/pkg/canonical"
	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/lexer"
	"github.com/panbanda/simfeat/pkg/models"
	"github.com/panbanda/simfeat/pkg/parser"
)

const sumSource = `class Sum {
    int total(int[] xs) {
        int s = 0;
        for (int x : xs) {
            s += x;
        }
        return s;
    }
}
`

const renamedSource = `class Other {
    int acc(int[] values) {
        int r = 0;
        for (int v : values) {
            r += v;
        }
        return r;
    }
}
`

const greetSource = `class Greeter {
    void greet(String name) {
        System.out.println("hello " + name);
    }
}
`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Lexer.StripTemplate = false
	cfg.Workers = 2
	return cfg
}

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	svc := New(WithConfig(cfg))
	assert.Same(t, cfg, svc.Config())
	assert.Nil(t, svc.cache)
	assert.NotEmpty(t, svc.progress)
}

func TestCorpus(t *testing.T) {
	files := writeFiles(t, map[string]string{
		"C.java": greetSource,
		"A.java": sumSource,
		"B.java": renamedSource,
		"E.java": "",
	})
	files = append(files, filepath.Join(t.TempDir(), "Missing.java"))

	result, err := New(WithConfig(testConfig())).Corpus(context.Background(), files)
	require.NoError(t, err)

	require.Equal(t, 3, result.Corpus.Len())
	names := []string{}
	for _, r := range result.Corpus.Records {
		names = append(names, r.Filename)
	}
	assert.Equal(t, []string{"A.java", "B.java", "C.java"}, names)
	assert.Len(t, result.Skipped, 2)

	a, b := result.Corpus.Records[0], result.Corpus.Records[1]
	assert.Equal(t, a.Sequence, b.Sequence, "renaming does not change the canonical form")
	assert.Equal(t, "java", a.Language)
	assert.Equal(t, sumSource, a.Raw)
	assert.Len(t, a.LineNumbers, a.LineCount())
	assert.NotEmpty(t, a.Style.Indent)
}

func TestCorpusSkippedErrors(t *testing.T) {
	files := writeFiles(t, map[string]string{"E.java": "", "A.java": sumSource})
	result, err := New(WithConfig(testConfig())).Corpus(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.True(t, errors.Is(result.Skipped[0], canonical.ErrEmptyInput))
	assert.True(t, IsSkippable(result.Skipped[0].Err))
}

func TestCorpusInvalidLanguage(t *testing.T) {
	cfg := testConfig()
	cfg.Lexer.Language = "cobol"
	_, err := New(WithConfig(cfg)).Corpus(context.Background(), nil)

	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestCorpusInvalidStripPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Lexer.StripTemplate = true
	cfg.Lexer.StripPatterns = []string{"("}
	_, err := New(WithConfig(cfg)).Corpus(context.Background(), nil)

	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestCorpusCancelled(t *testing.T) {
	files := writeFiles(t, map[string]string{"A.java": sumSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithConfig(testConfig())).Corpus(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCorpusUsesCache(t *testing.T) {
	files := writeFiles(t, map[string]string{"A.java": sumSource, "B.java": greetSource})
	cfg := testConfig()
	cfg.Cache.Dir = t.TempDir()

	c, err := cache.FromConfig(cfg)
	require.NoError(t, err)
	svc := New(WithConfig(cfg), WithCache(c))

	first, err := svc.Corpus(context.Background(), files)
	require.NoError(t, err)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)

	for _, path := range files {
		src, err := os.ReadFile(path)
		require.NoError(t, err)
		rec, ok := c.GetRecord(path, src)
		require.True(t, ok)
		assert.NotEmpty(t, rec.Sequence)
	}

	second, err := svc.Corpus(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, first.Corpus.Records[0].Sequence, second.Corpus.Records[0].Sequence)
	assert.Equal(t, first.Corpus.Records[1].Lines, second.Corpus.Records[1].Lines)
}

func TestBuildRecord(t *testing.T) {
	psr := parser.New()
	defer psr.Close()

	rec, err := BuildRecord(context.Background(), lexer.New(), psr, "/tmp/x/Sum.java", []byte(sumSource))
	require.NoError(t, err)
	assert.Equal(t, "Sum.java", rec.Filename)
	assert.Equal(t, "/tmp/x/Sum.java", rec.Path)
	assert.Equal(t, rec.TokenCount(), len(rec.Sequence))
	assert.Contains(t, rec.Declared, "total")
	assert.Contains(t, rec.Declared, "s")

	_, err = BuildRecord(context.Background(), lexer.New(), psr, "Empty.java", nil)
	assert.ErrorIs(t, err, canonical.ErrEmptyInput)
}

func TestFeatures(t *testing.T) {
	files := writeFiles(t, map[string]string{
		"A.java": sumSource,
		"B.java": renamedSource,
		"C.java": greetSource,
	})

	result, err := New(WithConfig(testConfig())).Features(context.Background(), files)
	require.NoError(t, err)
	require.NotNil(t, result.Table)
	assert.Nil(t, result.Skeleton)
	assert.Empty(t, result.Skipped)

	table := result.Table
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "A.java", table.Rows[0].File1)
	assert.Equal(t, "B.java", table.Rows[0].File2)
	assert.Equal(t, "C.java", table.Rows[2].File2)

	assert.Equal(t, 1.0, table.Rows[0].Scores[models.CSS], "renamed copy is structurally identical")
	assert.Less(t, table.Rows[1].Scores[models.CSS], 1.0)

	cols := table.Columns()
	assert.Contains(t, cols, "CBLN80")
	assert.Contains(t, cols, "tokens_less_05")
	assert.Contains(t, cols, "CSS_more_90")
}

func TestFeaturesWithSkeleton(t *testing.T) {
	files := writeFiles(t, map[string]string{
		"A.java": sumSource,
		"B.java": renamedSource,
		"C.java": greetSource,
	})
	cfg := testConfig()
	cfg.Skeleton.Enabled = true

	result, err := New(WithConfig(cfg)).Features(context.Background(), files)
	require.NoError(t, err)
	require.NotNil(t, result.Skeleton)
	assert.Equal(t, 3, result.Skeleton.Files)
	assert.Equal(t, 3, result.Skeleton.Pairs)
	assert.Len(t, result.Table.Rows, 3)
}

func TestFeaturesInvalidFeature(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Main = []string{"CSS", "NOPE"}

	_, err := New(WithConfig(cfg)).Features(context.Background(), nil)
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestFeaturesSingleFile(t *testing.T) {
	files := writeFiles(t, map[string]string{"A.java": sumSource})
	result, err := New(WithConfig(testConfig())).Features(context.Background(), files)
	require.NoError(t, err)
	assert.Empty(t, result.Table.Rows)
}

func TestSkeleton(t *testing.T) {
	files := writeFiles(t, map[string]string{
		"A.java": sumSource,
		"B.java": renamedSource,
	})
	set, err := New(WithConfig(testConfig())).Skeleton(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Files)
	assert.Equal(t, 1, set.Pairs)
}

func TestFeaturesFor(t *testing.T) {
	svc := New(WithConfig(testConfig()))
	files := writeFiles(t, map[string]string{"A.java": sumSource, "B.java": sumSource})
	corpus, err := svc.Corpus(context.Background(), files)
	require.NoError(t, err)

	result, err := svc.FeaturesFor(context.Background(), corpus.Corpus)
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 1)
	for _, f := range []models.Feature{models.CSS, models.CLTS, models.CLN, models.CBLN, models.CBLN80} {
		assert.Equal(t, 1.0, result.Table.Rows[0].Scores[f], f.String())
	}
}
