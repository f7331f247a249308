package feed

const (
	// SnapshotName is the per-user snapshot file holding parsed posts,
	// newest first.
	SnapshotName = "__info.json"

	// TimeFormat is the layout used for the human-readable publish time
	// stored in the snapshot.
	TimeFormat = "2006-01-02 15:04:05"
)

// Post is a normalized image/text dynamic. The ID doubles as the incremental
// watermark: ids grow over time, so the highest stored id marks the boundary
// of already-harvested content. Posts are never mutated after creation.
type Post struct {
	ID          int64       `json:"dynamic_id"`
	PublishedAt string      `json:"time"`
	Type        string      `json:"type"`
	Content     PostContent `json:"item"`
}

// PostContent holds the user-visible parts of a post
type PostContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Pictures    []string `json:"pictures"`
}

// DownloadTask pairs an asset URL with the publish epoch of its post. The
// timestamp is restored as the downloaded file's modification time.
type DownloadTask struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"time_stamp"`
}
