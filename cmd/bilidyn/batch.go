package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/roster"
	"github.com/qingyue0906/bili-dynamics/pkg/scraper"
)

var (
	// Batch command flags
	rosterFile string
	userDelay  time.Duration
	failFast   bool
	retryMode  bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Harvest every user in the roster file",
	Long: `Run a harvest for every entry in the roster file, one user at a time.

The roster is a plain text file with one name:uid entry per line. A user
whose harvest fails is logged and skipped so the rest of the roster still
runs; --fail-fast aborts on the first failure instead. With --retry, the
failure ledgers are replayed instead of harvesting new dynamics.`,
	Example: `  # Harvest every user in ./user_list.txt
  bilidyn batch

  # Replay failed downloads for the whole roster
  bilidyn batch --retry

  # Stop at the first failing user
  bilidyn batch --fail-fast --delay 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&rosterFile, "roster", "", "roster file, one name:uid per line (default ./user_list.txt)")
	batchCmd.Flags().DurationVar(&userDelay, "delay", 0, "pause between users")
	batchCmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort the batch on the first failing user")
	batchCmd.Flags().BoolVar(&retryMode, "retry", false, "replay failure ledgers instead of harvesting")
}

func runBatch(cmd *cobra.Command) error {
	flags := make(map[string]interface{})
	if rosterFile != "" {
		flags["roster"] = rosterFile
	}
	if userDelay > 0 {
		flags["user-delay"] = userDelay
	}
	if cmd.Flags().Changed("fail-fast") {
		flags["fail-fast"] = failFast
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	entries, err := roster.Load(cfg.Batch.RosterFile)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("roster %s has no entries", cfg.Batch.RosterFile)
	}

	log := logger.GetLogger()
	s := scraper.New(cfg, log)

	var failures int
	for i, entry := range entries {
		if i > 0 && cfg.Batch.UserDelay > 0 {
			time.Sleep(cfg.Batch.UserDelay)
		}

		var summary scraper.Summary
		var err error
		if retryMode {
			summary, err = s.RetryFailed(entry.Name)
		} else {
			summary, err = s.Harvest(entry.Name, entry.UID)
		}
		if err != nil {
			failures++
			if cfg.Batch.FailFast {
				return fmt.Errorf("batch aborted at %s: %w", entry.Name, err)
			}
			log.ErrorWithFields("user failed, continuing batch", map[string]interface{}{
				"user":  entry.Name,
				"error": err.Error(),
			})
			continue
		}

		printSummary(summary)
	}

	if failures > 0 {
		return fmt.Errorf("batch finished with %d failed users out of %d", failures, len(entries))
	}

	fmt.Printf("batch finished: %d users\n", len(entries))
	return nil
}
