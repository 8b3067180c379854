package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/versoapp/verso/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the generated audio cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and entry count",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		fmt.Printf("Location: %s\n", resolveCacheDir(playbackCfg))
		fmt.Printf("Entries:  %d\n", store.Len())
		fmt.Printf("Size:     %s\n", humanize.Bytes(uint64(store.TotalSize()))) //nolint:gosec
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cache entries older than the configured max age",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		removed := store.EvictOlderThan(playbackCfg.CacheMaxAge)
		fmt.Printf("Removed %d entries older than %s.\n", removed, humanize.Time(timeAgo(playbackCfg.CacheMaxAge)))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached audio",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		n := store.Len()
		if err := store.Clear(); err != nil {
			return fmt.Errorf("unable to clear cache: %w", err)
		}
		fmt.Printf("Removed %d entries.\n", n)
		return nil
	},
}

func openCache() (*cache.Cache, error) {
	store, err := cache.Open(resolveCacheDir(playbackCfg), playbackCfg.CacheMaxAge)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache: %w", err)
	}
	return store, nil
}

func timeAgo(age time.Duration) time.Time {
	return time.Now().Add(-age)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheClearCmd)
}
