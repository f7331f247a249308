package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/scraper"
)

var retryOutputDir string

// retryCmd represents the retry command
var retryCmd = &cobra.Command{
	Use:   "retry <name>",
	Short: "Replay a user's failed downloads",
	Long: `Retry every download recorded in a user's failure ledger.

Assets that download successfully are removed from the ledger; the ledger
file is deleted once it drains. No feed pages are fetched, so this works
entirely from the local folder. Running it again on a clean folder is a
no-op.`,
	Example: `  bilidyn retry painter`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := make(map[string]interface{})
		if retryOutputDir != "" {
			flags["output"] = retryOutputDir
		}

		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}

		s := scraper.New(cfg, logger.GetLogger())
		summary, err := s.RetryFailed(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d of %d failed assets recovered, %d still failing\n",
			summary.User, summary.Downloaded, summary.Fetched, summary.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)

	retryCmd.Flags().StringVarP(&retryOutputDir, "output", "o", "", "base output directory (default ./opus)")
}
