package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
)

// bodyPreviewLimit caps how much of an undecodable body is logged
const bodyPreviewLimit = 200

// Client is the HTTP client shared by the feed, the hosting APIs and the downloader
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// New creates a client with the given timeout
func New(timeout time.Duration, log logger.Logger) *Client {
	return NewWithHTTPClient(&http.Client{Timeout: timeout}, log)
}

// NewWithHTTPClient wraps an existing *http.Client
func NewWithHTTPClient(hc *http.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		httpClient: hc,
		headers:    make(map[string]string),
		logger:     log,
	}
}

// SetHeader sets a header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// Do sends req with the configured headers. A transport failure is returned
// as a network FetchError; the status code is not inspected.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.FetchError{
			Type:    errs.ErrorTypeNetwork,
			URL:     req.URL.String(),
			Message: "request failed",
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

// Get performs a GET request without checking the status code
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.FetchError{
			Type:    errs.ErrorTypeUnknown,
			URL:     url,
			Message: "failed to create request",
			Err:     err,
		}
	}
	return c.Do(req)
}

// Post performs a POST request without checking the status code
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &errs.FetchError{
			Type:    errs.ErrorTypeUnknown,
			URL:     url,
			Message: "failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}

// GetBytes performs a GET request, requires a 2xx status and returns the body
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp); err != nil {
		return nil, err
	}

	return ReadBody(resp)
}

// GetJSON performs a GET request, requires a 2xx status and decodes the body into target
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}

	return c.DecodeJSON(url, body, target)
}

// DecodeJSON decodes body into target, logging a preview of the body when it is not JSON
func (c *Client) DecodeJSON(url string, body []byte, target interface{}) error {
	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > bodyPreviewLimit {
			bodyPreview = bodyPreview[:bodyPreviewLimit] + "..."
		}

		c.logger.WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.FetchError{
			Type:    errs.ErrorTypeParsing,
			URL:     url,
			Message: "failed to parse JSON",
			Err:     err,
		}
	}
	return nil
}

// ReadBody reads the whole response body
func ReadBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.FetchError{
			Type:    errs.ErrorTypeNetwork,
			URL:     requestURL(resp),
			Code:    resp.StatusCode,
			Message: "failed to read response body",
			Err:     err,
		}
	}
	return data, nil
}

// CheckStatus maps a non-2xx response onto a FetchError
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &errs.FetchError{
		Type:    errs.TypeForStatus(resp.StatusCode),
		URL:     requestURL(resp),
		Code:    resp.StatusCode,
		Message: fmt.Sprintf("HTTP ERROR: Code %d", resp.StatusCode),
	}
}

func requestURL(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}
