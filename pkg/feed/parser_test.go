package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
)

func drawItem(id string, pubTs int64, title, text string, pics ...string) bilibili.DynamicItem {
	pictures := make([]bilibili.Picture, 0, len(pics))
	for _, url := range pics {
		pictures = append(pictures, bilibili.Picture{URL: url})
	}

	return bilibili.DynamicItem{
		IDStr: id,
		Type:  bilibili.DynamicTypeDraw,
		Modules: bilibili.Modules{
			Author: bilibili.ModuleAuthor{PubTs: pubTs},
			Dynamic: bilibili.ModuleDynamic{
				Major: &bilibili.Major{
					Type: "MAJOR_TYPE_OPUS",
					Opus: &bilibili.Opus{
						Title:   title,
						Summary: bilibili.Summary{Text: text},
						Pics:    pictures,
					},
				},
			},
		},
	}
}

func TestParsePost(t *testing.T) {
	t.Run("full item", func(t *testing.T) {
		item := drawItem("123456", 1700000000, "sketchbook", "three quick studies",
			"https://i0.hdslb.com/bfs/new_dyn/abc.jpg",
			"https://i0.hdslb.com/bfs/new_dyn/def.png")

		post, err := ParsePost(&item)
		require.NoError(t, err)
		require.NotNil(t, post)

		assert.Equal(t, int64(123456), post.ID)
		assert.Equal(t, bilibili.DynamicTypeDraw, post.Type)
		assert.Equal(t, "sketchbook", post.Content.Title)
		assert.Equal(t, "three quick studies", post.Content.Description)
		assert.Len(t, post.Content.Pictures, 2)
		assert.NotEmpty(t, post.PublishedAt)
	})

	t.Run("other dynamic types are ignored silently", func(t *testing.T) {
		item := bilibili.DynamicItem{IDStr: "123", Type: "DYNAMIC_TYPE_FORWARD"}

		post, err := ParsePost(&item)
		assert.NoError(t, err)
		assert.Nil(t, post)
	})

	t.Run("non-numeric id is an error", func(t *testing.T) {
		item := drawItem("abc", 1700000000, "", "")

		post, err := ParsePost(&item)
		assert.Error(t, err)
		assert.Nil(t, post)
	})

	t.Run("missing publish time is an error", func(t *testing.T) {
		item := drawItem("123456", 0, "", "")

		post, err := ParsePost(&item)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingPublishTime)
		assert.Nil(t, post)
	})

	t.Run("absent opus block degrades to empty content", func(t *testing.T) {
		item := bilibili.DynamicItem{
			IDStr: "123456",
			Type:  bilibili.DynamicTypeDraw,
			Modules: bilibili.Modules{
				Author: bilibili.ModuleAuthor{PubTs: 1700000000},
			},
		}

		post, err := ParsePost(&item)
		require.NoError(t, err)
		require.NotNil(t, post)
		assert.Empty(t, post.Content.Title)
		assert.Empty(t, post.Content.Description)
		assert.Empty(t, post.Content.Pictures)
	})
}

func TestExtractAssets(t *testing.T) {
	t.Run("one task per picture sharing the publish time", func(t *testing.T) {
		item := drawItem("123456", 1700000000, "", "",
			"https://i0.hdslb.com/bfs/new_dyn/abc.jpg",
			"https://i0.hdslb.com/bfs/new_dyn/def.png")

		tasks := ExtractAssets(&item)
		require.Len(t, tasks, 2)
		for _, task := range tasks {
			assert.Equal(t, int64(1700000000), task.Timestamp)
		}
		assert.Equal(t, "https://i0.hdslb.com/bfs/new_dyn/abc.jpg", tasks[0].URL)
	})

	t.Run("nil for other dynamic types", func(t *testing.T) {
		item := bilibili.DynamicItem{IDStr: "123", Type: "DYNAMIC_TYPE_AV"}
		assert.Nil(t, ExtractAssets(&item))
	})

	t.Run("nil without a publish time", func(t *testing.T) {
		item := drawItem("123456", 0, "", "", "https://i0.hdslb.com/bfs/new_dyn/abc.jpg")
		assert.Nil(t, ExtractAssets(&item))
	})

	t.Run("nil without pictures", func(t *testing.T) {
		item := drawItem("123456", 1700000000, "text only", "no images here")
		assert.Nil(t, ExtractAssets(&item))
	})
}
