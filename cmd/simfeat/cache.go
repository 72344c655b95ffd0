package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/simfeat/internal/cache"
	"github.com/panbanda/simfeat/internal/output"
	"github.com/panbanda/simfeat/pkg/config"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the canonical record cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache statistics",
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached record",
				Action: runCacheClearCmd,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	// Inspecting the cache works even when caching is turned off for runs.
	cfg.Cache.Enabled = true
	rc, err := cache.FromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache %s: %w", cfg.Cache.Dir, err)
	}
	return rc, cfg, nil
}

func runCacheStatsCmd(c *cli.Context) error {
	rc, cfg, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := rc.GetStats()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewTable(
		"Record Cache",
		[]string{"Directory", "Entries", "Size (bytes)", "Oldest", "Newest"},
		[][]string{{
			cfg.Cache.Dir,
			fmt.Sprint(stats.Entries),
			fmt.Sprint(stats.TotalSize),
			stats.OldestAge.Round(time.Second).String(),
			stats.NewestAge.Round(time.Second).String(),
		}},
		nil,
		stats,
	))
}

func runCacheClearCmd(c *cli.Context) error {
	rc, cfg, err := openCache(c)
	if err != nil {
		return err
	}
	if err := rc.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("Cleared %s", cfg.Cache.Dir))
	return nil
}
