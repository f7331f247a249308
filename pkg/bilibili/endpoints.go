package bilibili

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

const (
	// BaseURL is the base URL for the Bilibili API
	BaseURL = "https://api.bilibili.com"

	// DynamicsFeedEndpoint is the endpoint pattern for a user's dynamics feed
	DynamicsFeedEndpoint = "/x/polymer/web-dynamic/v1/feed/space"
)

// GetDynamicsURL constructs the URL for fetching one page of a user's
// dynamics feed. An empty offset requests the first page.
func GetDynamicsURL(hostMid int64, offset string) string {
	params := url.Values{}
	params.Set("host_mid", strconv.FormatInt(hostMid, 10))
	if offset != "" {
		params.Set("offset", offset)
	}

	return fmt.Sprintf("%s%s?%s", BaseURL, DynamicsFeedEndpoint, params.Encode())
}

// GetOpusURL constructs the public web URL for a single dynamic
func GetOpusURL(idStr string) string {
	if idStr == "" {
		return ""
	}
	return fmt.Sprintf("https://www.bilibili.com/opus/%s", idStr)
}

// CleanAssetURL strips the query string from an asset URL. Image CDN URLs
// carry resize parameters after '?' that must not end up in file names.
func CleanAssetURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// AssetFileName derives the local file name for an asset URL: the final
// path segment of the cleaned URL. An error is returned when no file name
// can be extracted.
func AssetFileName(raw string) (string, error) {
	clean := CleanAssetURL(raw)

	u, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("malformed asset url %q: %w", raw, err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("no file name in asset url %q", raw)
	}

	return name, nil
}
