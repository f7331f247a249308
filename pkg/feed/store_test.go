package feed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), SnapshotName)
	return NewStore(path, logger.NewTestLogger()), path
}

func post(id int64, title string) Post {
	return Post{
		ID:          id,
		PublishedAt: "2024-01-02 03:04:05",
		Type:        "DYNAMIC_TYPE_DRAW",
		Content:     PostContent{Title: title},
	}
}

func TestStoreLoad(t *testing.T) {
	t.Run("absent snapshot loads empty", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.Empty(t, store.Load())
	})

	t.Run("corrupt snapshot loads empty", func(t *testing.T) {
		store, path := newTestStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		assert.Empty(t, store.Load())
	})

	t.Run("round trip", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.MergeAndSave([]Post{post(30, "b"), post(20, "a")}))

		loaded := store.Load()
		require.Len(t, loaded, 2)
		assert.Equal(t, int64(30), loaded[0].ID)
		assert.Equal(t, "b", loaded[0].Content.Title)
	})
}

func TestStoreWatermark(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.Equal(t, int64(0), store.Watermark())
	})

	t.Run("highest id wins regardless of order", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.MergeAndSave([]Post{post(20, ""), post(50, ""), post(30, "")}))
		assert.Equal(t, int64(50), store.Watermark())
	})

	t.Run("watermark only grows across merges", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.MergeAndSave([]Post{post(30, "")}))
		require.NoError(t, store.MergeAndSave([]Post{post(50, ""), post(40, "")}))
		assert.Equal(t, int64(50), store.Watermark())
	})
}

func TestStoreMergeAndSave(t *testing.T) {
	t.Run("new posts are prepended", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.MergeAndSave([]Post{post(20, "old")}))
		require.NoError(t, store.MergeAndSave([]Post{post(40, "newest"), post(30, "newer")}))

		loaded := store.Load()
		require.Len(t, loaded, 3)
		assert.Equal(t, []int64{40, 30, 20}, []int64{loaded[0].ID, loaded[1].ID, loaded[2].ID})
	})

	t.Run("snapshot keeps the wire field names", func(t *testing.T) {
		store, path := newTestStore(t)
		p := post(42, "names")
		p.Content.Pictures = []string{"https://example.com/a.jpg"}
		require.NoError(t, store.MergeAndSave([]Post{p}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var raw []map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))
		require.Len(t, raw, 1)
		assert.Contains(t, raw[0], "dynamic_id")
		assert.Contains(t, raw[0], "time")
		assert.Contains(t, raw[0], "item")
	})

	t.Run("no stray temp file after save", func(t *testing.T) {
		store, path := newTestStore(t)
		require.NoError(t, store.MergeAndSave([]Post{post(1, "")}))

		_, err := os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})
}
