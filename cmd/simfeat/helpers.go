package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/simfeat/internal/cache"
	"github.com/panbanda/simfeat/internal/logger"
	"github.com/panbanda/simfeat/internal/output"
	"github.com/panbanda/simfeat/internal/progress"
	"github.com/panbanda/simfeat/internal/scanner"
	"github.com/panbanda/simfeat/internal/service/analysis"
	"github.com/panbanda/simfeat/pkg/config"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig loads the config named by --config (or found in the standard
// locations), applies global flag overrides and configures logging.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	cfg := result.Config

	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		cfg.Output.Color = false
	}
	color.NoColor = !cfg.Output.Color

	setupLogging(c, cfg)
	if result.Source != "" {
		log.Debug().Str("path", result.Source).Msg("loaded config")
	}
	return cfg, nil
}

func setupLogging(c *cli.Context, cfg *config.Config) {
	level := c.String("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	if cfg.Output.Verbose {
		level = "debug"
	}
	logger.Init(logger.Options{
		Level:   level,
		Writer:  c.App.ErrWriter,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
}

// scanFiles collects the corpus from paths.
func scanFiles(c *cli.Context, cfg *config.Config) ([]string, error) {
	spinner := progress.Start("Scanning", 0, progressOptions(c)...)
	sc := scanner.NewScanner(cfg)
	files, err := sc.ScanPaths(getPaths(c))
	spinner.Done()
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	groups := sc.GroupByLanguage(files)
	ev := log.Debug().Int("files", len(files))
	for lang, members := range groups {
		ev = ev.Int(string(lang), len(members))
	}
	ev.Msg("scanned corpus")
	if len(groups) > 1 {
		log.Warn().Int("languages", len(groups)).Msg("corpus mixes languages; cross-language pairs share one alphabet")
	}
	return files, nil
}

// newService builds an analysis service with the cache and progress
// settings implied by cfg and the global flags.
func newService(c *cli.Context, cfg *config.Config) *analysis.Service {
	opts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithProgress(progressOptions(c)...),
	}
	rc, err := cache.FromConfig(cfg)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.Cache.Dir).Msg("cache unavailable")
	} else if rc.Enabled() {
		opts = append(opts, analysis.WithCache(rc))
	}
	return analysis.New(opts...)
}

func progressOptions(c *cli.Context) []progress.Option {
	quiet := c.Bool("quiet") || !isatty.IsTerminal(os.Stderr.Fd())
	return []progress.Option{progress.Silent(quiet), progress.WithWriter(c.App.ErrWriter)}
}

// newFormatter opens the output named by --output in the configured format.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
}

// commandContext cancels on SIGINT and SIGTERM.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

// reportSkipped summarizes files left out of the corpus.
func reportSkipped(c *cli.Context, skipped int) {
	if skipped > 0 {
		fmt.Fprintln(c.App.ErrWriter, color.YellowString("Skipped %d file(s) that could not be tokenized", skipped))
	}
}
