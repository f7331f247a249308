package bilibili

import "strconv"

// FeedResponse represents the top-level envelope returned by the dynamics
// feed endpoint. Code is the Bilibili business code; 0 means success.
type FeedResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    DynamicsPage `json:"data"`
}

// DynamicsPage is one page of a user's dynamics feed
type DynamicsPage struct {
	HasMore int           `json:"has_more"`
	Offset  string        `json:"offset"`
	Items   []DynamicItem `json:"items"`
}

// DynamicItem is a single raw feed item as received from the API. It is
// treated as immutable once decoded.
type DynamicItem struct {
	IDStr   string  `json:"id_str"`
	Type    string  `json:"type"`
	Modules Modules `json:"modules"`
}

// Modules wraps the per-item module blocks
type Modules struct {
	Author  ModuleAuthor  `json:"module_author"`
	Dynamic ModuleDynamic `json:"module_dynamic"`
}

// ModuleAuthor carries the author block, including the publish timestamp
type ModuleAuthor struct {
	Mid   int64  `json:"mid"`
	Name  string `json:"name"`
	PubTs int64  `json:"pub_ts"`
}

// ModuleDynamic carries the content block
type ModuleDynamic struct {
	Major *Major `json:"major"`
}

// Major wraps the typed content payload
type Major struct {
	Type string `json:"type"`
	Opus *Opus  `json:"opus"`
}

// Opus is the image/text post payload
type Opus struct {
	Title   string    `json:"title"`
	Summary Summary   `json:"summary"`
	Pics    []Picture `json:"pics"`
}

// Summary holds the post body text
type Summary struct {
	Text string `json:"text"`
}

// Picture is a single image reference inside an opus
type Picture struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DynamicTypeDraw is the discriminator of image/text posts, the only
// variant the harvester accepts.
const DynamicTypeDraw = "DYNAMIC_TYPE_DRAW"

// PostID parses the numeric item identifier. The second return value is
// false when the id is not a numeric string.
func (d *DynamicItem) PostID() (int64, bool) {
	id, err := strconv.ParseInt(d.IDStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
