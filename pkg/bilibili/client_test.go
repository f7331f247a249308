package bilibili

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/qingyue0906/bili-dynamics/pkg/errors"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/retry"
)

// newTestClient returns a client with retry delays removed so failure tests
// run instantly
func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := NewClient(5*time.Second, 3, logger.NewTestLogger())
	client.retryCfg.Backoff = &retry.ConstantBackoff{Delay: 0}
	return client
}

func errType(t *testing.T, err error) errs.ErrorType {
	t.Helper()
	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr), "expected a typed error, got %v", err)
	return apiErr.Type
}

func TestNewClient(t *testing.T) {
	client := NewClient(30*time.Second, 3, logger.NewTestLogger())

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotEmpty(t, client.headers["User-Agent"])
	assert.Equal(t, "https://www.bilibili.com/", client.headers["Referer"])
}

func TestFetchDynamics(t *testing.T) {
	t.Run("decodes a feed page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "43111", r.URL.Query().Get("host_mid"))
			assert.Equal(t, "cursor-a", r.URL.Query().Get("offset"))
			assert.NotEmpty(t, r.Header.Get("User-Agent"))

			json.NewEncoder(w).Encode(FeedResponse{
				Code: 0,
				Data: DynamicsPage{
					HasMore: 1,
					Offset:  "cursor-b",
					Items: []DynamicItem{
						{IDStr: "100", Type: DynamicTypeDraw},
					},
				},
			})
		}))
		defer server.Close()

		client := newTestClient(t)
		url := server.URL + "?host_mid=43111&offset=cursor-a"

		var response FeedResponse
		require.NoError(t, client.GetJSON(url, &response))
		require.NoError(t, client.checkBusinessCode(&response, url))

		assert.Equal(t, 1, response.Data.HasMore)
		assert.Equal(t, "cursor-b", response.Data.Offset)
		require.Len(t, response.Data.Items, 1)
		assert.Equal(t, "100", response.Data.Items[0].IDStr)
	})

	t.Run("builds the real feed url", func(t *testing.T) {
		url := GetDynamicsURL(43111, "cursor-a")
		assert.Contains(t, url, BaseURL)
		assert.Contains(t, url, DynamicsFeedEndpoint)
	})
}

func TestCheckBusinessCode(t *testing.T) {
	client := newTestClient(t)

	cases := []struct {
		name string
		code int
		want errs.ErrorType
	}{
		{"risk control", -352, errs.ErrorTypeRateLimit},
		{"too fast", -799, errs.ErrorTypeRateLimit},
		{"not logged in", -101, errs.ErrorTypeAuth},
		{"missing user", -404, errs.ErrorTypeNotFound},
		{"anything else", -400, errs.ErrorTypeAPI},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := client.checkBusinessCode(&FeedResponse{Code: tc.code, Message: "nope"}, "u")
			require.Error(t, err)
			assert.Equal(t, tc.want, errType(t, err))
		})
	}

	t.Run("code zero is success", func(t *testing.T) {
		assert.NoError(t, client.checkBusinessCode(&FeedResponse{Code: 0}, "u"))
	})
}

func TestGetJSONStatusMapping(t *testing.T) {
	serve := func(status int) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
	}

	cases := []struct {
		name   string
		status int
		want   errs.ErrorType
	}{
		{"forbidden", http.StatusForbidden, errs.ErrorTypeAuth},
		{"not found", http.StatusNotFound, errs.ErrorTypeNotFound},
		{"risk control 412", http.StatusPreconditionFailed, errs.ErrorTypeRateLimit},
		{"too many requests", http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{"bad gateway", http.StatusBadGateway, errs.ErrorTypeServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := serve(tc.status)
			defer server.Close()

			var out FeedResponse
			err := newTestClient(t).GetJSON(server.URL, &out)
			require.Error(t, err)
			assert.Equal(t, tc.want, errType(t, err))
		})
	}

	t.Run("non-json body is a parsing error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>geetest challenge</html>"))
		}))
		defer server.Close()

		var out FeedResponse
		err := newTestClient(t).GetJSON(server.URL, &out)
		require.Error(t, err)
		assert.Equal(t, errs.ErrorTypeParsing, errType(t, err))
	})
}

func TestDownloadAsset(t *testing.T) {
	t.Run("returns the body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("image bytes"))
		}))
		defer server.Close()

		data, err := newTestClient(t).DownloadAsset(server.URL + "/pic.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("image bytes"), data)
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			if hits < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("finally"))
		}))
		defer server.Close()

		data, err := newTestClient(t).DownloadAsset(server.URL + "/pic.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("finally"), data)
		assert.Equal(t, 3, hits)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(t).DownloadAsset(server.URL + "/pic.jpg")
		require.Error(t, err)
		assert.Equal(t, 3, hits)
	})

	t.Run("does not retry a missing asset", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newTestClient(t).DownloadAsset(server.URL + "/pic.jpg")
		require.Error(t, err)
		assert.Equal(t, errs.ErrorTypeNotFound, errType(t, err))
		assert.Equal(t, 1, hits)
	})
}
