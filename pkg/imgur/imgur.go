// Package imgur extracts the direct image links behind imgur pages and
// albums.
package imgur

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"redditgrab/pkg/client"
	"redditgrab/pkg/logger"
)

// ImageURLFormat builds a direct image link from an album hash
const ImageURLFormat = "http://i.imgur.com/%s.jpg"

var hashPattern = regexp.MustCompile(`"hash":"(.[^"]*)"`)

// IsAlbumURL reports whether u points at an album or gallery page
func IsAlbumURL(u string) bool {
	return strings.Contains(u, "imgur.com/a/") || strings.Contains(u, "imgur.com/gallery/")
}

// RewriteURL normalises a single-image link. Ambiguous suffixes are mapped
// to the file imgur actually serves and a bare link gets ".jpg".
func RewriteURL(u string) string {
	switch {
	case strings.HasSuffix(u, ".png"):
		return strings.TrimSuffix(u, ".png") + ".jpg"
	case strings.HasSuffix(u, "%2Fgif"):
		return strings.TrimSuffix(u, "%2Fgif") + ".gif"
	case strings.HasSuffix(u, "%2Fjpeg"):
		return strings.TrimSuffix(u, "%2Fjpeg") + ".jpg"
	case strings.HasSuffix(u, ".gifv"):
		return strings.TrimSuffix(u, ".gifv") + ".webm"
	}

	if path.Ext(path.Base(u)) == "" {
		return u + ".jpg"
	}
	return u
}

// ExtractHashes scans an album page line by line and returns the hashes
// found on the last line that has any
func ExtractHashes(page []byte) []string {
	var hashes []string

	for _, line := range bytes.Split(page, []byte("\n")) {
		matches := hashPattern.FindAllSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}
		hashes = make([]string, 0, len(matches))
		for _, m := range matches {
			hashes = append(hashes, string(m[1]))
		}
	}
	return hashes
}

// ImageURLs turns album hashes into direct image links
func ImageURLs(hashes []string) []string {
	urls := make([]string, 0, len(hashes))
	for _, h := range hashes {
		urls = append(urls, fmt.Sprintf(ImageURLFormat, h))
	}
	return urls
}

// AlbumClient fetches album pages
type AlbumClient struct {
	http   *client.Client
	logger logger.Logger
}

// NewAlbumClient creates an album client
func NewAlbumClient(hc *client.Client, log logger.Logger) *AlbumClient {
	if log == nil {
		log = logger.GetLogger()
	}
	return &AlbumClient{http: hc, logger: log}
}

// Extract returns the direct image links of an album. A page that is not
// HTML, or has no hashes, yields an empty list.
func (c *AlbumClient) Extract(ctx context.Context, albumURL string) ([]string, error) {
	if decoded, err := url.PathUnescape(albumURL); err == nil {
		albumURL = decoded
	}

	resp, err := c.http.Get(ctx, albumURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := client.CheckStatus(resp); err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "text/html") {
		c.logger.DebugWithFields("album page is not HTML", map[string]interface{}{
			"url":          albumURL,
			"content_type": contentType,
		})
		return []string{}, nil
	}

	page, err := client.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	urls := ImageURLs(ExtractHashes(page))
	c.logger.DebugWithFields("extracted album images", map[string]interface{}{
		"url":   albumURL,
		"count": len(urls),
	})
	return urls, nil
}
