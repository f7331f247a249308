package fetcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/ratelimit"
)

// fakeSource replays a fixed sequence of pages and records the cursors it
// was asked for
type fakeSource struct {
	pages   []*bilibili.DynamicsPage
	errs    []error
	offsets []string
	calls   int
}

func (f *fakeSource) GetPage(offset string) (*bilibili.DynamicsPage, error) {
	f.offsets = append(f.offsets, offset)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.pages) {
		return nil, errors.New("source exhausted")
	}
	return f.pages[i], nil
}

func drawItem(id string) bilibili.DynamicItem {
	return bilibili.DynamicItem{
		IDStr: id,
		Type:  bilibili.DynamicTypeDraw,
	}
}

func page(hasMore int, offset string, ids ...string) *bilibili.DynamicsPage {
	items := make([]bilibili.DynamicItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, drawItem(id))
	}
	return &bilibili.DynamicsPage{HasMore: hasMore, Offset: offset, Items: items}
}

func itemIDs(items []bilibili.DynamicItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.IDStr)
	}
	return ids
}

func TestFetchNew(t *testing.T) {
	log := logger.NewTestLogger()
	limiter := ratelimit.NewFixedInterval(0)

	t.Run("single exhausted page", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(0, "", "30", "20", "10"),
		}}

		items, err := FetchNew(source, 0, limiter, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"30", "20", "10"}, itemIDs(items))
		assert.Equal(t, 1, source.calls)
	})

	t.Run("follows cursor until exhausted", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(1, "cursor-a", "50", "40"),
			page(1, "cursor-b", "30"),
			page(0, "", "20", "10"),
		}}

		items, err := FetchNew(source, 0, limiter, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"50", "40", "30", "20", "10"}, itemIDs(items))
		assert.Equal(t, []string{"", "cursor-a", "cursor-b"}, source.offsets)
	})

	t.Run("watermark trims the whole accumulator", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(1, "cursor-a", "50", "40"),
			page(1, "cursor-b", "30"),
		}}

		items, err := FetchNew(source, 35, limiter, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"50", "40"}, itemIDs(items))
	})

	t.Run("halts at watermark even when more pages exist", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(1, "cursor-a", "50", "40", "30"),
			page(1, "cursor-b", "20"),
		}}

		items, err := FetchNew(source, 35, limiter, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"50", "40"}, itemIDs(items))
		assert.Equal(t, 1, source.calls, "the page after the boundary must not be requested")
	})

	t.Run("boundary item itself is excluded", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(1, "cursor-a", "50", "40", "35"),
		}}

		items, err := FetchNew(source, 35, limiter, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"50", "40"}, itemIDs(items))
	})

	t.Run("nothing new yields empty result", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(1, "cursor-a", "30", "20"),
		}}

		items, err := FetchNew(source, 30, limiter, log)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("empty feed", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(0, ""),
		}}

		items, err := FetchNew(source, 0, limiter, log)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("first page fault propagates", func(t *testing.T) {
		fault := errors.New("risk control")
		source := &fakeSource{errs: []error{fault}}

		items, err := FetchNew(source, 0, limiter, log)
		require.Error(t, err)
		assert.ErrorIs(t, err, fault)
		assert.Nil(t, items)
	})

	t.Run("later page fault discards partial progress", func(t *testing.T) {
		fault := errors.New("timeout")
		source := &fakeSource{
			pages: []*bilibili.DynamicsPage{page(1, "cursor-a", "50", "40"), nil},
			errs:  []error{nil, fault},
		}

		items, err := FetchNew(source, 0, limiter, log)
		require.Error(t, err)
		assert.Nil(t, items, "partial pages must not leak to the caller")
	})

	t.Run("non-numeric ids neither trigger nor survive the trim", func(t *testing.T) {
		source := &fakeSource{pages: []*bilibili.DynamicsPage{
			page(1, "cursor-a", "50", "not-a-number", "5"),
		}}

		items, err := FetchNew(source, 10, limiter, log)
		require.NoError(t, err)
		assert.Equal(t, []string{"50"}, itemIDs(items))
		assert.Equal(t, 1, source.calls)
	})
}
