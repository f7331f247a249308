// Package fetcher implements the incremental pagination engine. It walks a
// user's dynamics feed backward in time, one page per request, and stops as
// soon as it crosses the watermark of previously harvested content.
package fetcher

import (
	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/ratelimit"
)

// PageSource yields one page of feed items per call given an opaque cursor.
// An empty cursor requests the newest page.
type PageSource interface {
	GetPage(offset string) (*bilibili.DynamicsPage, error)
}

// FetchNew accumulates feed items newer than the watermark id. Pages are
// requested until either the source is exhausted or a page contains an item
// at or below the watermark; in the latter case the whole accumulator is
// filtered down to items above the watermark and the walk stops, even when
// the source reports more pages.
//
// The watermark check runs against the accumulator as a whole, which is
// correct as long as ids are non-increasing across pages. That ordering is
// assumed, not verified.
//
// Transport faults from the source propagate unchanged: there is no retry
// at the pagination layer. The limiter throttles consecutive page requests.
func FetchNew(source PageSource, watermark int64, limiter ratelimit.Limiter, log logger.Logger) ([]bilibili.DynamicItem, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var items []bilibili.DynamicItem
	offset := ""
	pageNum := 0

	for {
		pageNum++

		page, err := source.GetPage(offset)
		if err != nil {
			log.ErrorWithFields("page fetch failed", map[string]interface{}{
				"page":   pageNum,
				"offset": offset,
				"error":  err.Error(),
			})
			return nil, err
		}

		items = append(items, page.Items...)

		log.DebugWithFields("page fetched", map[string]interface{}{
			"page":        pageNum,
			"items":       len(page.Items),
			"accumulated": len(items),
			"has_more":    page.HasMore,
		})

		if reachesWatermark(page.Items, watermark) {
			before := len(items)
			items = aboveWatermark(items, watermark)
			log.InfoWithFields("watermark reached, stopping early", map[string]interface{}{
				"page":      pageNum,
				"watermark": watermark,
				"dropped":   before - len(items),
			})
			break
		}

		if page.HasMore != 1 {
			break
		}

		offset = page.Offset
		limiter.Wait()
	}

	log.InfoWithFields("feed walk finished", map[string]interface{}{
		"pages": pageNum,
		"items": len(items),
	})

	return items, nil
}

// reachesWatermark reports whether any item in the page is at or below the
// watermark id. Items with non-numeric ids are ignored.
func reachesWatermark(page []bilibili.DynamicItem, watermark int64) bool {
	for i := range page {
		if id, ok := page[i].PostID(); ok && id <= watermark {
			return true
		}
	}
	return false
}

// aboveWatermark filters the accumulator down to items strictly newer than
// the watermark, dropping items from earlier pages as well.
func aboveWatermark(items []bilibili.DynamicItem, watermark int64) []bilibili.DynamicItem {
	kept := items[:0]
	for i := range items {
		if id, ok := items[i].PostID(); ok && id > watermark {
			kept = append(kept, items[i])
		}
	}
	return kept
}
