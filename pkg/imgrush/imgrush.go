// Package imgrush is a client for the imgrush (formerly mediacru.sh) media host API.
package imgrush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"redditgrab/pkg/client"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
)

const (
	// BaseURL is the public site
	BaseURL = "https://imgrush.com/"

	serviceName = "imgrush"
)

// Remote error codes
const (
	CodeForbidden       = 401
	CodeNotFound        = 404
	CodeAlreadyUploaded = 409
	CodeBadExtension    = 415
	CodeRateLimited     = 420
)

// Status is the processing state of an uploaded file
type Status string

const (
	StatusDone       Status = "done"
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
	StatusTimeout    Status = "timeout"
)

// File is one rendition of an uploaded item
type File struct {
	URL  string `json:"url"`
	File string `json:"file"`
	Type string `json:"type"`
}

// Info describes an uploaded item
type Info struct {
	Hash        string  `json:"hash"`
	Compression float64 `json:"compression"`
	Files       []File  `json:"files"`
	Original    string  `json:"original"`
	Type        string  `json:"type"`
}

// Upload is the answer to an upload request
type Upload struct {
	Hash string `json:"hash"`
}

// Client talks to the imgrush API
type Client struct {
	http    *client.Client
	baseURL string
	logger  logger.Logger
}

// NewClient creates a client for the public site
func NewClient(hc *client.Client, log logger.Logger) *Client {
	return NewClientWithBaseURL(hc, BaseURL, log)
}

// NewClientWithBaseURL creates a client against another host. The API lives under <baseURL>api/.
func NewClientWithBaseURL(hc *client.Client, baseURL string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		http:    hc,
		baseURL: baseURL,
		logger:  log.WithField("service", serviceName),
	}
}

// APIURL returns the API endpoint for path
func (c *Client) APIURL(path string) string {
	return c.baseURL + "api/" + path
}

// PublicURL returns the page of an uploaded item
func (c *Client) PublicURL(hash string) string {
	return c.baseURL + hash
}

// Info returns the details of one item
func (c *Client) Info(ctx context.Context, hash string) (*Info, error) {
	var info Info
	if err := c.call(ctx, http.MethodGet, c.APIURL(hash), "", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// InfoList returns details of several items at once. Unknown hashes map to nil.
func (c *Client) InfoList(ctx context.Context, hashes []string) (map[string]*Info, error) {
	infos := make(map[string]*Info)
	u := c.APIURL("info?list=" + strings.Join(hashes, ","))
	if err := c.call(ctx, http.MethodGet, u, "", nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// Exists reports whether an item is known
func (c *Client) Exists(ctx context.Context, hash string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.call(ctx, http.MethodGet, c.APIURL(hash+"/exists"), "", nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// Delete removes an item uploaded from this address. A refused or unknown
// hash is a RemoteError with code 401 or 404.
func (c *Client) Delete(ctx context.Context, hash string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.call(ctx, http.MethodGet, c.APIURL(hash+"/delete"), "", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// Status returns the processing state of an item
func (c *Client) Status(ctx context.Context, hash string) (Status, error) {
	var out struct {
		Status Status `json:"status"`
	}
	if err := c.call(ctx, http.MethodGet, c.APIURL(hash+"/status"), "", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// UploadURL asks imgrush to fetch address. When the file was uploaded
// before, the existing hash is returned together with a 409 RemoteError.
func (c *Client) UploadURL(ctx context.Context, address string) (*Upload, error) {
	form := url.Values{}
	form.Set("url", address)
	return c.upload(ctx, c.APIURL("upload/url"), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// UploadFile uploads a local file
func (c *Client) UploadFile(ctx context.Context, path string) (*Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	return c.upload(ctx, c.APIURL("upload/file"), mw.FormDataContentType(), &body)
}

func (c *Client) upload(ctx context.Context, u, contentType string, body io.Reader) (*Upload, error) {
	var out Upload
	err := c.call(ctx, http.MethodPost, u, contentType, body, &out)
	if err != nil {
		if out.Hash != "" {
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

// call performs one API request. A JSON body carrying an error code becomes
// a RemoteError whatever the HTTP status; any other non-2xx response is a FetchError.
func (c *Client) call(ctx context.Context, method, u, contentType string, body io.Reader, target interface{}) error {
	c.logger.DebugWithFields("calling imgrush", map[string]interface{}{
		"method": method,
		"url":    u,
	})

	var (
		resp *http.Response
		err  error
	)
	if method == http.MethodPost {
		resp, err = c.http.Post(ctx, u, contentType, body)
	} else {
		resp, err = c.http.Get(ctx, u)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := client.ReadBody(resp)
	if err != nil {
		return err
	}

	var envelope map[string]json.RawMessage
	if jsonErr := json.Unmarshal(data, &envelope); jsonErr != nil {
		if err := client.CheckStatus(resp); err != nil {
			return err
		}
		return c.http.DecodeJSON(u, data, target)
	}

	if raw, ok := envelope["error"]; ok {
		_ = json.Unmarshal(data, target)
		return remoteError(raw, resp.StatusCode)
	}

	if err := client.CheckStatus(resp); err != nil {
		return err
	}
	return c.http.DecodeJSON(u, data, target)
}

func remoteError(raw json.RawMessage, status int) *errs.RemoteError {
	var code int
	if err := json.Unmarshal(raw, &code); err == nil {
		return &errs.RemoteError{Service: serviceName, Code: code, Message: codeMessage(code)}
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &errs.RemoteError{Service: serviceName, Code: status, Message: msg}
	}
	return &errs.RemoteError{Service: serviceName, Code: status, Message: string(raw)}
}

func codeMessage(code int) string {
	switch code {
	case CodeForbidden:
		return "the address does not match the uploader"
	case CodeNotFound:
		return "there is no file with that hash"
	case CodeAlreadyUploaded:
		return "the file was already uploaded"
	case CodeBadExtension:
		return "the file extension is not acceptable"
	case CodeRateLimited:
		return "the rate limit was exceeded"
	default:
		return http.StatusText(code)
	}
}
