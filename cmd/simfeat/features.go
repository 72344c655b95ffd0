package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/simfeat/internal/output"
	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/models"
)

func featuresCmd() *cli.Command {
	return &cli.Command{
		Name:      "features",
		Aliases:   []string{"feat"},
		Usage:     "Score every pair of files and write the feature table",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "feature",
				Usage: "Feature to compute (repeatable); replaces the configured main and style features",
			},
			&cli.BoolFlag{
				Name:  "skeleton",
				Usage: "Mine shared skeleton code and discount it from line features",
			},
			&cli.BoolFlag{
				Name:  "tiles",
				Usage: "Include the CLTS tile column",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Compare raw text instead of canonical symbols",
			},
			&cli.BoolFlag{
				Name:  "no-stats",
				Usage: "Omit percentile outlier flags",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "Percentile method: linear, empirical, lininterp, nearest",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Force a language instead of detecting it per file: java, c, cpp",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker goroutines (0 = 2x NumCPU)",
			},
		},
		Action: runFeaturesCmd,
	}
}

// applyFeatureFlags overrides cfg with the features command's flags and
// revalidates it.
func applyFeatureFlags(c *cli.Context, cfg *config.Config) error {
	if names := c.StringSlice("feature"); len(names) > 0 {
		selected, err := models.ParseFeatures(names, models.ColumnOrder)
		if err != nil {
			return &config.ConfigError{Err: err}
		}
		cfg.Features.Main = nil
		cfg.Features.Style = nil
		for _, f := range selected {
			if f.IsStyle() {
				cfg.Features.Style = append(cfg.Features.Style, f.String())
			} else {
				cfg.Features.Main = append(cfg.Features.Main, f.String())
			}
		}
		// Percentile flags only cover selected features.
		var flagged []string
		for _, name := range cfg.Stats.FeatureNames {
			for _, f := range selected {
				if f.String() == name {
					flagged = append(flagged, name)
				}
			}
		}
		cfg.Stats.FeatureNames = flagged
	}
	if c.Bool("skeleton") {
		cfg.Skeleton.Enabled = true
	}
	if c.Bool("tiles") {
		cfg.Features.CLTSTiles = true
	}
	if c.Bool("raw") {
		cfg.Scoring.UseCanonical = false
	}
	if c.Bool("no-stats") {
		cfg.Stats.Enabled = false
	}
	if method := c.String("method"); method != "" {
		cfg.Stats.Method = method
	}
	if lang := c.String("language"); lang != "" {
		cfg.Lexer.Language = lang
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	return cfg.Validate()
}

func runFeaturesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyFeatureFlags(c, cfg); err != nil {
		return err
	}

	files, err := scanFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	ctx, cancel := commandContext(c)
	defer cancel()

	result, err := newService(c, cfg).Features(ctx, files)
	if err != nil {
		return fmt.Errorf("feature extraction failed: %w", err)
	}
	reportSkipped(c, len(result.Skipped))
	if result.Skeleton != nil {
		log.Debug().Int("groups", result.Skeleton.Len()).Msg("suppressed skeleton groups")
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.FeatureTable(result.Table))
}
