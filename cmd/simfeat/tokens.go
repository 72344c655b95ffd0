package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/simfeat/internal/output"
)

func tokensCmd() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Aliases:   []string{"tok"},
		Usage:     "Canonicalize files and report token statistics",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sequences",
				Usage: "Include each file's canonical sequence",
			},
		},
		Action: runTokensCmd,
	}
}

func runTokensCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
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

	result, err := newService(c, cfg).Corpus(ctx, files)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	reportSkipped(c, len(result.Skipped))

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.Corpus(result.Corpus, c.Bool("sequences")))
}
