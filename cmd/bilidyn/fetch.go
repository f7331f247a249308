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
	// Fetch command flags
	outputDir       string
	pageDelay       time.Duration
	apiTimeout      time.Duration
	downloadRetries int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <name:uid>",
	Short: "Harvest one user's new dynamics",
	Long: `Harvest the picture dynamics a user posted since the last run.

The argument is a name:uid pair, where name becomes the folder under the
output directory and uid is the numeric Bilibili user ID. Only dynamics
newer than the newest post already in the folder's snapshot are fetched.`,
	Example: `  # Harvest user 43111 into ./opus/painter
  bilidyn fetch painter:43111

  # Custom output directory and a slower page cadence
  bilidyn fetch painter:43111 --output ./archive --page-delay 3s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(args[0])
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base output directory (default ./opus)")
	fetchCmd.Flags().DurationVar(&pageDelay, "page-delay", 0, "pause between feed page requests")
	fetchCmd.Flags().DurationVar(&apiTimeout, "timeout", 0, "HTTP request timeout")
	fetchCmd.Flags().IntVar(&downloadRetries, "download-retries", -1, "retry attempts per asset download")
}

// fetchFlags collects the fetch command flags that were actually set
func fetchFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if pageDelay > 0 {
		flags["page-delay"] = pageDelay
	}
	if apiTimeout > 0 {
		flags["timeout"] = apiTimeout
	}
	if downloadRetries >= 0 {
		flags["download-retries"] = downloadRetries
	}
	return flags
}

func runFetch(arg string) error {
	entry, err := roster.ParseEntry(arg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(fetchFlags())
	if err != nil {
		return err
	}

	s := scraper.New(cfg, logger.GetLogger())
	summary, err := s.Harvest(entry.Name, entry.UID)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

func printSummary(s scraper.Summary) {
	fmt.Printf("%s: %d new posts, %d assets downloaded, %d failed\n",
		s.User, s.Parsed, s.Downloaded, s.Failed)
}
