package bilibili

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "github.com/qingyue0906/bili-dynamics/pkg/errors"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
	"github.com/qingyue0906/bili-dynamics/pkg/retry"
)

// Client represents a Bilibili API client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	retryCfg   *retry.Config
	logger     logger.Logger
}

// NewClient creates a new Bilibili API client. Asset downloads are retried
// up to maxRetries times with exponential backoff; feed page requests are
// made exactly once so that pagination faults surface to the caller.
func NewClient(timeout time.Duration, maxRetries int, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = maxRetries
	retryCfg.Logger = log

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
			"Origin":          "https://www.bilibili.com",
			"Referer":         "https://www.bilibili.com/",
		},
		retryCfg: retryCfg,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests, http.StatusPreconditionFailed:
		// Bilibili risk control answers 412 when requests come too fast
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.String(),
			})
			return &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// checkBusinessCode maps a non-zero Bilibili envelope code to a typed error
func (c *Client) checkBusinessCode(resp *FeedResponse, url string) error {
	if resp.Code == 0 {
		return nil
	}

	c.logger.WarnWithFields("Bilibili API returned error code", map[string]interface{}{
		"url":     url,
		"code":    resp.Code,
		"message": resp.Message,
	})

	errType := errs.ErrorTypeAPI
	switch resp.Code {
	case -101:
		errType = errs.ErrorTypeAuth
	case -352, -799:
		// Risk control / request too fast
		errType = errs.ErrorTypeRateLimit
	case -404:
		errType = errs.ErrorTypeNotFound
	}

	return &errs.Error{
		Type:    errType,
		Message: resp.Message,
		Code:    resp.Code,
	}
}

// FetchDynamics fetches one page of a user's dynamics feed. An empty offset
// requests the newest page. Transport faults are not retried here: the
// incremental fetcher propagates them to the caller.
func (c *Client) FetchDynamics(hostMid int64, offset string) (*DynamicsPage, error) {
	url := GetDynamicsURL(hostMid, offset)

	c.logger.DebugWithFields("fetching dynamics page", map[string]interface{}{
		"host_mid": hostMid,
		"offset":   offset,
	})

	var response FeedResponse
	if err := c.GetJSON(url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch dynamics page", map[string]interface{}{
			"host_mid": hostMid,
			"offset":   offset,
			"error":    err.Error(),
		})
		return nil, err
	}

	if err := c.checkBusinessCode(&response, url); err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("dynamics page fetched", map[string]interface{}{
		"host_mid":   hostMid,
		"item_count": len(response.Data.Items),
		"has_more":   response.Data.HasMore,
	})

	return &response.Data, nil
}

// DownloadAsset downloads a single asset with retry on transient faults
func (c *Client) DownloadAsset(assetURL string) ([]byte, error) {
	return retry.DoWithResult(func() ([]byte, error) {
		return c.downloadOnce(assetURL)
	}, c.retryCfg)
}

// downloadOnce performs a single download attempt
func (c *Client) downloadOnce(assetURL string) ([]byte, error) {
	c.logger.DebugWithFields("downloading asset", map[string]interface{}{
		"url": assetURL,
	})

	resp, err := c.Get(assetURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to download asset: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("asset downloaded", map[string]interface{}{
		"url":  assetURL,
		"size": len(data),
	})

	return data, nil
}
