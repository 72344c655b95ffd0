package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/simfeat/internal/output"
)

func skeletonCmd() *cli.Command {
	return &cli.Command{
		Name:      "skeleton",
		Aliases:   []string{"skel"},
		Usage:     "Mine line groups shared by a large fraction of file pairs",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "min-participation",
				Usage: "Fraction of files that must share a group (default from config)",
			},
			&cli.IntFlag{
				Name:  "min-tile-score",
				Usage: "Minimum tile score counted towards a group (default from config)",
			},
			&cli.IntFlag{
				Name:  "max-candidates",
				Usage: "Number of top groups considered (default from config)",
			},
		},
		Action: runSkeletonCmd,
	}
}

func runSkeletonCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("min-participation") {
		cfg.Skeleton.MinParticipation = c.Float64("min-participation")
	}
	if c.IsSet("min-tile-score") {
		cfg.Skeleton.MinTileScore = c.Int("min-tile-score")
	}
	if c.IsSet("max-candidates") {
		cfg.Skeleton.MaxCandidates = c.Int("max-candidates")
	}
	if err := cfg.Validate(); err != nil {
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

	set, err := newService(c, cfg).Skeleton(ctx, files)
	if err != nil {
		return fmt.Errorf("skeleton mining failed: %w", err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.Skeleton(set))
}
