package feed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

// Store persists a user's posts as a single newest-first JSON snapshot. The
// snapshot is always rewritten whole; a corrupt or missing file loads as
// empty rather than failing the crawl.
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a store backed by the snapshot file at path
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		path:   path,
		logger: log,
	}
}

// Load reads the current snapshot. Absent or unreadable snapshots yield an
// empty list.
func (s *Store) Load() []Post {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnWithFields("failed to read snapshot, treating as empty", map[string]interface{}{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return nil
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.logger.WarnWithFields("corrupt snapshot, treating as empty", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil
	}

	return posts
}

// Watermark returns the highest post id in the snapshot, or 0 when the
// snapshot is empty. Only posts with id above the watermark are fetched on
// the next pass.
func (s *Store) Watermark() int64 {
	var watermark int64
	for _, post := range s.Load() {
		if post.ID > watermark {
			watermark = post.ID
		}
	}
	return watermark
}

// MergeAndSave prepends newPosts (already newest-first) to the stored list
// and rewrites the snapshot. No dedup happens here: the watermark filter in
// the fetcher is the sole guard against overlap.
func (s *Store) MergeAndSave(newPosts []Post) error {
	existing := s.Load()

	merged := make([]Post, 0, len(newPosts)+len(existing))
	merged = append(merged, newPosts...)
	merged = append(merged, existing...)

	if err := s.save(merged); err != nil {
		return err
	}

	s.logger.DebugWithFields("snapshot saved", map[string]interface{}{
		"path":  s.path,
		"new":   len(newPosts),
		"total": len(merged),
	})

	return nil
}

// save writes the snapshot atomically via a temporary file and rename
func (s *Store) save(posts []Post) error {
	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(posts); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	return nil
}
