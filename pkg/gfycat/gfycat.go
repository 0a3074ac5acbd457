// Package gfycat is a small client for the gfycat transcoding API.
package gfycat

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"

	"redditgrab/pkg/client"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
)

const (
	// UploadBaseURL accepts transcode requests
	UploadBaseURL = "http://upload.gfycat.com"

	// BaseURL serves the query endpoints
	BaseURL = "http://gfycat.com"

	// UserAgent is sent with every request
	UserAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64; rv:31.0) Gecko/20100101 Firefox/31.0"

	serviceName = "gfycat"
	tokenChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength = 5
)

var albumPattern = regexp.MustCompile(`^(?:https?:\/\/[\da-z\.-]+\.[a-z\.]{2,6})\/([\w \.-]*)\/([\/\w \.-]*)`)

// ParseAlbumURL splits an album link into its user and album parts
func ParseAlbumURL(u string) (user, album string, ok bool) {
	m := albumPattern.FindStringSubmatch(u)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// AlbumQuery builds the query string for an album lookup
func AlbumQuery(user, album string) string {
	return "username=" + user + "&albumUrl=" + album
}

// Result is the parsed body of one API call
type Result struct {
	raw  string
	json map[string]interface{}
	data interface{}
}

func newResult(raw []byte, unwrap string) (*Result, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	r := &Result{raw: string(raw), json: parsed, data: parsed}
	if unwrap != "" {
		r.data = parsed[unwrap]
	}
	return r, nil
}

// Raw returns the response body
func (r *Result) Raw() string {
	return r.raw
}

// JSON returns the whole decoded body
func (r *Result) JSON() map[string]interface{} {
	return r.json
}

// Data returns the part of the body the call is about
func (r *Result) Data() interface{} {
	return r.data
}

// Get looks up key in the call's data
func (r *Result) Get(key string) (interface{}, bool) {
	obj, ok := r.data.(map[string]interface{})
	if !ok {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}

// GetString looks up a string field in the call's data
func (r *Result) GetString(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Pretty returns the data as indented JSON without the enclosing braces
func (r *Result) Pretty() (string, error) {
	out, err := json.MarshalIndent(r.data, "", "    ")
	if err != nil {
		return "", err
	}
	return strings.Trim(string(out), "{}\n"), nil
}

// Items returns the entries of an album listing in order
func (r *Result) Items() []map[string]interface{} {
	for _, candidate := range []interface{}{r.data, r.json} {
		if list, ok := firstList(candidate); ok {
			items := make([]map[string]interface{}, 0, len(list))
			for _, entry := range list {
				if obj, ok := entry.(map[string]interface{}); ok {
					items = append(items, obj)
				}
			}
			return items
		}
	}
	return nil
}

// firstList finds v itself if it is a list, or the first list-valued field
// of v in key order
func firstList(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if list, ok := t[k].([]interface{}); ok {
				return list, true
			}
		}
	}
	return nil, false
}

// Client talks to the gfycat API
type Client struct {
	http      *client.Client
	uploadURL string
	baseURL   string
	logger    logger.Logger
}

// NewClient creates a client for the public gfycat endpoints
func NewClient(hc *client.Client, log logger.Logger) *Client {
	return NewClientWithBaseURLs(hc, UploadBaseURL, BaseURL, log)
}

// NewClientWithBaseURLs creates a client against other hosts
func NewClientWithBaseURLs(hc *client.Client, uploadURL, baseURL string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	hc.SetHeader("User-Agent", UserAgent)
	return &Client{
		http:      hc,
		uploadURL: strings.TrimRight(uploadURL, "/"),
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    log.WithField("service", serviceName),
	}
}

// Upload asks gfycat to fetch and transcode sourceURL
func (c *Client) Upload(ctx context.Context, sourceURL string) (*Result, error) {
	u := fmt.Sprintf("%s/transcode/%s?fetchUrl=%s", c.uploadURL, randomToken(), sourceURL)
	return c.fetch(ctx, u, "")
}

// More returns extended metadata for a gfy
func (c *Client) More(ctx context.Context, id string) (*Result, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/cajax/get/%s", c.baseURL, id), "gfyItem")
}

// Album returns the contents of a public album. query is built with AlbumQuery.
func (c *Client) Album(ctx context.Context, query string) (*Result, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/cajax/getPublicAlbumContents?%s", c.baseURL, query), "title")
}

// Check asks whether a link is already known
func (c *Client) Check(ctx context.Context, id string) (*Result, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/cajax/checkUrl/%s", c.baseURL, id), "")
}

func (c *Client) fetch(ctx context.Context, u, unwrap string) (*Result, error) {
	c.logger.DebugWithFields("calling gfycat", map[string]interface{}{"url": u})

	body, err := c.http.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}

	result, err := newResult(body, unwrap)
	if err != nil {
		return nil, &errs.FetchError{
			Type:    errs.ErrorTypeParsing,
			URL:     u,
			Message: "failed to parse gfycat response",
			Err:     err,
		}
	}

	if msg, ok := errorField(result.json); ok {
		return nil, &errs.RemoteError{Service: serviceName, Message: msg}
	}
	if unwrap != "" {
		if msg, ok := errorField(result.data); ok {
			return nil, &errs.RemoteError{Service: serviceName, Message: msg}
		}
	}
	return result, nil
}

func errorField(v interface{}) (string, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	e, ok := obj["error"]
	if !ok {
		return "", false
	}
	if s, ok := e.(string); ok {
		return s, true
	}
	return fmt.Sprint(e), true
}

func randomToken() string {
	b := make([]byte, tokenLength)
	for i := range b {
		b[i] = tokenChars[rand.IntN(len(tokenChars))]
	}
	return string(b)
}
