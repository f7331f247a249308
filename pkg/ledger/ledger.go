// Package ledger maintains the durable record of failed asset downloads.
// Entries are unique by URL; when the same URL is recorded twice, the entry
// with the newer publish timestamp wins. The ledger file is rewritten whole
// on every change, and its absence is the valid "no failures" state.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qingyue0906/bili-dynamics/pkg/feed"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

// FileName is the per-directory failure ledger file
const FileName = "__failed_download.json"

// Ledger is a durable, deduplicated list of failed download tasks
type Ledger struct {
	path   string
	logger logger.Logger
}

// New creates a ledger backed by the file at path
func New(path string, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Ledger{
		path:   path,
		logger: log,
	}
}

// Path returns the ledger file path
func (l *Ledger) Path() string {
	return l.path
}

// Exists reports whether the ledger file is present
func (l *Ledger) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Load reads the current ledger entries. An absent or corrupt file loads as
// empty, never as a fatal error.
func (l *Ledger) Load() []feed.DownloadTask {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.WarnWithFields("failed to read ledger, treating as empty", map[string]interface{}{
				"path":  l.path,
				"error": err.Error(),
			})
		}
		return nil
	}

	var entries []feed.DownloadTask
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.WarnWithFields("corrupt ledger, treating as empty", map[string]interface{}{
			"path":  l.path,
			"error": err.Error(),
		})
		return nil
	}

	return entries
}

// Record merges newly failed tasks into the stored ledger and persists the
// result.
func (l *Ledger) Record(failed []feed.DownloadTask) error {
	if len(failed) == 0 {
		return nil
	}

	merged := Merge(l.Load(), failed)
	if err := l.save(merged); err != nil {
		return err
	}

	l.logger.WarnWithFields("download failures recorded", map[string]interface{}{
		"path":    l.path,
		"new":     len(failed),
		"pending": len(merged),
	})

	return nil
}

// Rewrite replaces the ledger with the still-failing entries. An empty list
// removes the file, restoring the canonical no-failures state.
func (l *Ledger) Rewrite(still []feed.DownloadTask) error {
	if len(still) == 0 {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cleared ledger: %w", err)
		}
		l.logger.InfoWithFields("ledger cleared", map[string]interface{}{
			"path": l.path,
		})
		return nil
	}

	return l.save(Merge(nil, still))
}

// Merge combines two failure lists, collapsing entries with the same URL to
// the one with the larger timestamp. First-seen order is preserved so the
// persisted file diffs cleanly between runs.
func Merge(old, added []feed.DownloadTask) []feed.DownloadTask {
	index := make(map[string]int)
	merged := make([]feed.DownloadTask, 0, len(old)+len(added))

	for _, entry := range append(append([]feed.DownloadTask(nil), old...), added...) {
		if entry.URL == "" {
			continue
		}
		if i, seen := index[entry.URL]; seen {
			if entry.Timestamp > merged[i].Timestamp {
				merged[i] = entry
			}
			continue
		}
		index[entry.URL] = len(merged)
		merged = append(merged, entry)
	}

	return merged
}

// save writes the ledger atomically via a temporary file and rename
func (l *Ledger) save(entries []feed.DownloadTask) error {
	tempPath := l.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(entries); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync ledger file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}

	if err := os.Rename(tempPath, l.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}
