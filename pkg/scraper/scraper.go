// Package scraper orchestrates a full harvest for one user: fetch the new
// slice of the dynamics feed, parse it into posts, merge the snapshot,
// download the referenced assets and record any failures in the ledger.
package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/qingyue0906/bili-dynamics/internal/downloader"
	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
	"github.com/qingyue0906/bili-dynamics/pkg/config"
	"github.com/qingyue0906/bili-dynamics/pkg/feed"
	"github.com/qingyue0906/bili-dynamics/pkg/fetcher"
	"github.com/qingyue0906/bili-dynamics/pkg/ledger"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/ratelimit"
	"github.com/qingyue0906/bili-dynamics/pkg/storage"
)

// Scraper harvests Bilibili dynamics feeds into per-user archive folders
type Scraper struct {
	client  FeedClient
	config  *config.Config
	logger  logger.Logger
	limiter ratelimit.Limiter
}

// Summary reports what one harvest or retry pass did
type Summary struct {
	User       string
	Fetched    int
	Parsed     int
	Downloaded int
	Failed     int
}

// New creates a scraper with a real API client built from the configuration
func New(cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	client := bilibili.NewClient(cfg.API.Timeout, cfg.API.DownloadRetries, log)
	if cfg.API.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.API.UserAgent)
	}

	return NewWithClient(cfg, client, log)
}

// NewWithClient creates a scraper around an existing feed client
func NewWithClient(cfg *config.Config, client FeedClient, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scraper{
		client:  client,
		config:  cfg,
		logger:  log,
		limiter: ratelimit.NewFixedInterval(cfg.Fetch.PageDelay),
	}
}

// dynamicsSource adapts the feed client to the pagination loop for one user
type dynamicsSource struct {
	client FeedClient
	uid    int64
}

func (s dynamicsSource) GetPage(offset string) (*bilibili.DynamicsPage, error) {
	return s.client.FetchDynamics(s.uid, offset)
}

// Harvest runs one incremental harvest for a user. The user's folder is
// created on first run; subsequent runs only fetch items above the stored
// watermark. A page fetch fault aborts the harvest before anything is
// written, so the snapshot never gains a gap.
func (s *Scraper) Harvest(name string, uid int64) (Summary, error) {
	summary := Summary{User: name}

	userDir := filepath.Join(s.config.Output.BaseDirectory, name)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create user directory: %w", err)
	}

	store := feed.NewStore(filepath.Join(userDir, feed.SnapshotName), s.logger)
	watermark := store.Watermark()

	s.logger.InfoWithFields("starting harvest", map[string]interface{}{
		"user":      name,
		"uid":       uid,
		"watermark": watermark,
	})

	items, err := fetcher.FetchNew(dynamicsSource{client: s.client, uid: uid}, watermark, s.limiter, s.logger)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch dynamics for %s: %w", name, err)
	}
	summary.Fetched = len(items)

	posts := make([]feed.Post, 0, len(items))
	var tasks []feed.DownloadTask
	for i := range items {
		post, err := feed.ParsePost(&items[i])
		if err != nil {
			logger.LogParseSkip(items[i].IDStr, err)
			continue
		}
		if post == nil {
			continue
		}
		posts = append(posts, *post)
		tasks = append(tasks, feed.ExtractAssets(&items[i])...)
	}
	summary.Parsed = len(posts)

	// Newest first, matching the snapshot's stored order
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })

	if len(posts) > 0 {
		if err := store.MergeAndSave(posts); err != nil {
			return summary, fmt.Errorf("failed to save snapshot for %s: %w", name, err)
		}
	}

	manager, err := storage.NewManager(userDir)
	if err != nil {
		return summary, err
	}

	engine := downloader.New(s.client, manager, s.logger)
	result := engine.DownloadAll(tasks)
	summary.Downloaded = result.Succeeded
	summary.Failed = len(result.Failed)

	led := ledger.New(filepath.Join(userDir, ledger.FileName), s.logger)
	if err := led.Record(result.Failed); err != nil {
		return summary, fmt.Errorf("failed to record download failures for %s: %w", name, err)
	}

	logger.LogHarvestSummary(name, summary.Fetched, summary.Parsed, summary.Downloaded, summary.Failed)
	return summary, nil
}

// RetryFailed replays a user's failure ledger. Recovered assets are removed
// from the ledger and the file is deleted once it drains, so a second pass
// over a clean folder is a no-op.
func (s *Scraper) RetryFailed(name string) (Summary, error) {
	summary := Summary{User: name}

	userDir := filepath.Join(s.config.Output.BaseDirectory, name)
	led := ledger.New(filepath.Join(userDir, ledger.FileName), s.logger)

	if !led.Exists() {
		s.logger.InfoWithFields("no failure ledger, nothing to retry", map[string]interface{}{
			"user": name,
		})
		return summary, nil
	}

	entries := led.Load()
	summary.Fetched = len(entries)

	manager, err := storage.NewManager(userDir)
	if err != nil {
		return summary, err
	}

	engine := downloader.New(s.client, manager, s.logger)
	result := engine.DownloadAll(entries)
	summary.Downloaded = result.Succeeded
	summary.Failed = len(result.Failed)

	if err := led.Rewrite(result.Failed); err != nil {
		return summary, fmt.Errorf("failed to rewrite ledger for %s: %w", name, err)
	}

	return summary, nil
}
