// Package downloader implements the resilient batch asset download engine.
// Tasks are processed one at a time; a failed task is recorded and never
// aborts the batch. The engine is wired through small interfaces so a
// bounded worker pool could replace the sequential loop without touching
// the failure ledger contract: failure merging is idempotent and
// order-independent.
package downloader

import (
	"bytes"
	"io"
	"time"

	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
	"github.com/qingyue0906/bili-dynamics/pkg/feed"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

// AssetFetcher downloads a single asset
type AssetFetcher interface {
	DownloadAsset(url string) ([]byte, error)
}

// AssetStorage persists a downloaded asset with its original timestamp
type AssetStorage interface {
	SaveAsset(r io.Reader, filename string, modTime time.Time) error
}

// Result aggregates the outcome of one download batch. Failed holds the
// tasks to be merged into the failure ledger, recorded with their cleaned
// URLs.
type Result struct {
	Succeeded int
	Failed    []feed.DownloadTask
}

// Engine downloads queued assets into a target directory
type Engine struct {
	client  AssetFetcher
	storage AssetStorage
	logger  logger.Logger
}

// New creates a download engine
func New(client AssetFetcher, storage AssetStorage, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Engine{
		client:  client,
		storage: storage,
		logger:  log,
	}
}

// DownloadAll processes every task, collecting failures instead of
// aborting. A malformed URL with no extractable file name counts as a
// failure like any transport fault.
func (e *Engine) DownloadAll(tasks []feed.DownloadTask) Result {
	var result Result

	for _, task := range tasks {
		cleanURL := bilibili.CleanAssetURL(task.URL)

		if err := e.processTask(cleanURL, task.Timestamp); err != nil {
			e.logger.ErrorWithFields("download failed", map[string]interface{}{
				"url":   cleanURL,
				"error": err.Error(),
			})
			result.Failed = append(result.Failed, feed.DownloadTask{
				URL:       cleanURL,
				Timestamp: task.Timestamp,
			})
			continue
		}

		result.Succeeded++
	}

	e.logger.InfoWithFields("download batch finished", map[string]interface{}{
		"tasks":     len(tasks),
		"succeeded": result.Succeeded,
		"failed":    len(result.Failed),
	})

	return result
}

// processTask downloads one asset and saves it with its publish time
func (e *Engine) processTask(cleanURL string, timestamp int64) error {
	filename, err := bilibili.AssetFileName(cleanURL)
	if err != nil {
		return err
	}

	e.logger.DebugWithFields("downloading", map[string]interface{}{
		"url":  cleanURL,
		"file": filename,
	})

	data, err := e.client.DownloadAsset(cleanURL)
	if err != nil {
		return err
	}

	return e.storage.SaveAsset(bytes.NewReader(data), filename, time.Unix(timestamp, 0))
}
