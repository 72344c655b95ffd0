package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func newApp() *cli.App {
	return &cli.App{
		Name:     "simfeat",
		Usage:    "Pairwise similarity features for source code plagiarism detection",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `simfeat tokenizes a corpus of submissions, maps every file onto a
canonical symbol alphabet, and scores every unordered pair of files with
structural, line-level and style similarity features.

Supports: Java, C, C++`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"SIMFEAT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv, json, yaml, toon, markdown, text (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the record cache",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: trace, debug, info, warn, error (default from config)",
				EnvVars: []string{"SIMFEAT_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide progress bars",
			},
		},
		Commands: []*cli.Command{
			featuresCmd(),
			tokensCmd(),
			skeletonCmd(),
			initCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Debug().Err(err).Msg("command failed")
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
