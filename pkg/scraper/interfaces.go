package scraper

import "github.com/qingyue0906/bili-dynamics/pkg/bilibili"

// FeedClient is the API surface the scraper needs from the Bilibili client
type FeedClient interface {
	// FetchDynamics retrieves one page of a user's dynamics feed
	FetchDynamics(hostMid int64, offset string) (*bilibili.DynamicsPage, error)

	// DownloadAsset fetches a single asset body
	DownloadAsset(url string) ([]byte, error)
}
