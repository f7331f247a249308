package main

import (
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/qingyue0906/bili-dynamics/internal/preview"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

var (
	// Serve command flags
	listenAddr     string
	openBrowser    bool
	serveOutputDir string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse the archive in a local web UI",
	Long: `Serve the archive as a local website.

The index lists every user folder with a thumbnail from its newest post.
Each folder renders as a feed of posts with their pictures, preferring
the locally downloaded files and falling back to the remote URLs for
anything not yet downloaded. A search box matches post titles and
descriptions across all folders.`,
	Example: `  # Serve ./opus on the default address
  bilidyn serve

  # Serve another archive and open the browser
  bilidyn serve --output ./archive --addr 127.0.0.1:8080 --open`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default 127.0.0.1:5000)")
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "open the browser once the server is up")
	serveCmd.Flags().StringVarP(&serveOutputDir, "output", "o", "", "base output directory (default ./opus)")
}

func runServe(cmd *cobra.Command) error {
	flags := make(map[string]interface{})
	if listenAddr != "" {
		flags["addr"] = listenAddr
	}
	if cmd.Flags().Changed("open") {
		flags["open"] = openBrowser
	}
	if serveOutputDir != "" {
		flags["output"] = serveOutputDir
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log := logger.GetLogger()

	if cfg.Preview.OpenBrowser {
		go func() {
			time.Sleep(cfg.Preview.BrowserDelay)
			if err := browse("http://" + cfg.Preview.ListenAddr); err != nil {
				log.WithError(err).Warn("failed to open browser")
			}
		}()
	}

	server := preview.NewServer(cfg.Output.BaseDirectory, log)
	return server.ListenAndServe(cfg.Preview.ListenAddr)
}

// browse opens url in the platform's default browser
func browse(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
