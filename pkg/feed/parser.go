package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
)

// ErrMissingPublishTime marks an otherwise matching item without the
// mandatory publish timestamp. The item is skipped, not fatal to the batch.
var ErrMissingPublishTime = errors.New("item has no publish timestamp")

// ParsePost normalizes a raw feed item into a Post. Items that are not
// image/text dynamics return (nil, nil); a matching item missing a required
// field returns an error so the caller can log and skip it.
func ParsePost(item *bilibili.DynamicItem) (*Post, error) {
	if item.Type != bilibili.DynamicTypeDraw {
		return nil, nil
	}

	id, ok := item.PostID()
	if !ok {
		return nil, fmt.Errorf("item has non-numeric id %q", item.IDStr)
	}

	pubTs := item.Modules.Author.PubTs
	if pubTs == 0 {
		return nil, fmt.Errorf("item %s: %w", item.IDStr, ErrMissingPublishTime)
	}

	return &Post{
		ID:          id,
		PublishedAt: time.Unix(pubTs, 0).Format(TimeFormat),
		Type:        item.Type,
		Content: PostContent{
			Title:       opusTitle(item),
			Description: opusDescription(item),
			Pictures:    opusPictures(item),
		},
	}, nil
}

// ExtractAssets builds one DownloadTask per picture URL in the item, all
// sharing the item's publish timestamp. Non-matching items and items without
// a usable timestamp yield nil.
func ExtractAssets(item *bilibili.DynamicItem) []DownloadTask {
	if item.Type != bilibili.DynamicTypeDraw {
		return nil
	}

	pubTs := item.Modules.Author.PubTs
	if pubTs == 0 {
		return nil
	}

	pics := opusPictures(item)
	if len(pics) == 0 {
		return nil
	}

	tasks := make([]DownloadTask, 0, len(pics))
	for _, url := range pics {
		tasks = append(tasks, DownloadTask{
			URL:       url,
			Timestamp: pubTs,
		})
	}

	return tasks
}

// The nested opus block is optional in practice; missing pieces degrade to
// empty values rather than faults.

func opus(item *bilibili.DynamicItem) *bilibili.Opus {
	major := item.Modules.Dynamic.Major
	if major == nil {
		return nil
	}
	return major.Opus
}

func opusTitle(item *bilibili.DynamicItem) string {
	o := opus(item)
	if o == nil {
		return ""
	}
	return o.Title
}

func opusDescription(item *bilibili.DynamicItem) string {
	o := opus(item)
	if o == nil {
		return ""
	}
	return o.Summary.Text
}

func opusPictures(item *bilibili.DynamicItem) []string {
	o := opus(item)
	if o == nil {
		return nil
	}

	urls := make([]string, 0, len(o.Pics))
	for _, pic := range o.Pics {
		urls = append(urls, pic.URL)
	}
	return urls
}
