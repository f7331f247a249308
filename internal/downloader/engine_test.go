package downloader

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyue0906/bili-dynamics/pkg/feed"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

// fakeFetcher serves canned bodies by URL and fails everything else
type fakeFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (f *fakeFetcher) DownloadAsset(url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if body, ok := f.bodies[url]; ok {
		return body, nil
	}
	return nil, errors.New("connection reset")
}

// memStorage records saved assets in memory
type memStorage struct {
	mu    sync.Mutex
	files map[string]savedAsset
}

type savedAsset struct {
	data    []byte
	modTime time.Time
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string]savedAsset)}
}

func (s *memStorage) SaveAsset(r io.Reader, filename string, modTime time.Time) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = savedAsset{data: data, modTime: modTime}
	return nil
}

func TestDownloadAll(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("saves every asset under its file name with the publish time", func(t *testing.T) {
		client := &fakeFetcher{bodies: map[string][]byte{
			"https://cdn.example.com/bfs/abc.jpg": []byte("aaa"),
			"https://cdn.example.com/bfs/def.png": []byte("bbb"),
		}}
		store := newMemStorage()

		result := New(client, store, log).DownloadAll([]feed.DownloadTask{
			{URL: "https://cdn.example.com/bfs/abc.jpg", Timestamp: 1700000000},
			{URL: "https://cdn.example.com/bfs/def.png", Timestamp: 1700000100},
		})

		assert.Equal(t, 2, result.Succeeded)
		assert.Empty(t, result.Failed)

		require.Contains(t, store.files, "abc.jpg")
		assert.Equal(t, []byte("aaa"), store.files["abc.jpg"].data)
		assert.True(t, store.files["abc.jpg"].modTime.Equal(time.Unix(1700000000, 0)))
	})

	t.Run("query strings are stripped before download and naming", func(t *testing.T) {
		client := &fakeFetcher{bodies: map[string][]byte{
			"https://cdn.example.com/bfs/abc.jpg": []byte("aaa"),
		}}
		store := newMemStorage()

		result := New(client, store, log).DownloadAll([]feed.DownloadTask{
			{URL: "https://cdn.example.com/bfs/abc.jpg?width=1024&quality=80", Timestamp: 1},
		})

		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, []string{"https://cdn.example.com/bfs/abc.jpg"}, client.calls)
		assert.Contains(t, store.files, "abc.jpg")
	})

	t.Run("failures are collected, not fatal", func(t *testing.T) {
		client := &fakeFetcher{bodies: map[string][]byte{
			"https://cdn.example.com/bfs/ok.jpg": []byte("aaa"),
		}}
		store := newMemStorage()

		result := New(client, store, log).DownloadAll([]feed.DownloadTask{
			{URL: "https://cdn.example.com/bfs/gone.jpg?x=1", Timestamp: 5},
			{URL: "https://cdn.example.com/bfs/ok.jpg", Timestamp: 6},
		})

		assert.Equal(t, 1, result.Succeeded)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "https://cdn.example.com/bfs/gone.jpg", result.Failed[0].URL,
			"failures must be recorded with the cleaned url")
		assert.Equal(t, int64(5), result.Failed[0].Timestamp)
	})

	t.Run("url without a file name fails without touching the network", func(t *testing.T) {
		client := &fakeFetcher{}
		store := newMemStorage()

		result := New(client, store, log).DownloadAll([]feed.DownloadTask{
			{URL: "https://cdn.example.com/", Timestamp: 1},
		})

		assert.Equal(t, 0, result.Succeeded)
		assert.Len(t, result.Failed, 1)
		assert.Empty(t, client.calls)
	})

	t.Run("empty task list", func(t *testing.T) {
		result := New(&fakeFetcher{}, newMemStorage(), log).DownloadAll(nil)
		assert.Equal(t, 0, result.Succeeded)
		assert.Empty(t, result.Failed)
	})
}
