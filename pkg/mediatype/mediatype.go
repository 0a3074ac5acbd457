// Package mediatype decides whether a response is a file worth saving.
package mediatype

import (
	"net/url"
	"strings"
)

// MediaType is a normalised content type
type MediaType string

const (
	JPEG    MediaType = "image/jpeg"
	PNG     MediaType = "image/png"
	GIF     MediaType = "image/gif"
	WEBM    MediaType = "video/webm"
	MP4     MediaType = "video/mp4"
	Video   MediaType = "video"
	Unknown MediaType = "unknown"
)

// Accepted reports whether files of type t are downloaded
func (t MediaType) Accepted() bool {
	switch t {
	case JPEG, PNG, GIF, WEBM, MP4, Video:
		return true
	default:
		return false
	}
}

func (t MediaType) String() string {
	return string(t)
}

// quirk corrects a content type one host is known to get wrong
type quirk struct {
	host        func(host string) bool
	contentType string
	corrected   string
}

func hostIs(name string) func(string) bool {
	return func(host string) bool { return host == name }
}

func hostContains(name string) func(string) bool {
	return func(host string) bool { return strings.Contains(host, name) }
}

var quirks = []quirk{
	{hostIs("i.minus.com"), "image%2Fgif; charset=ISO-8859-1", "image/gif"},
	{hostIs("i.minus.com"), "image%2Fjpeg; charset=ISO-8859-1", "image/jpeg"},
	{hostIs("imgrush.com"), "text/html; charset=utf-8", "video"},
	{hostContains("imgur.com"), "text/html; charset=utf-8", "video/webm"},
}

// aliases are spellings that name an accepted type
var aliases = map[string]MediaType{
	"image/jpg":  JPEG,
	"video/gifv": WEBM,
}

// Classify decides the media type of a response from its declared content
// type, falling back to the extension of rawURL. host names the server the
// response came from; when empty it is taken from rawURL.
func Classify(contentType, rawURL, host string) (MediaType, bool) {
	if host == "" {
		host = Host(rawURL)
	}

	declared := contentType
	if declared == "" {
		declared = string(FromExtension(rawURL))
	}

	for _, q := range quirks {
		if declared == q.contentType && q.host(host) {
			declared = q.corrected
			break
		}
	}

	t := normalize(declared)
	return t, t.Accepted()
}

// FromExtension infers a media type from the file extension of rawURL
func FromExtension(rawURL string) MediaType {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.ToLower(p)

	switch {
	case strings.HasSuffix(p, ".jpg"), strings.HasSuffix(p, ".jpeg"):
		return JPEG
	case strings.HasSuffix(p, ".png"):
		return PNG
	case strings.HasSuffix(p, ".gif"):
		return GIF
	case strings.HasSuffix(p, ".webm"), strings.HasSuffix(p, ".gifv"):
		return WEBM
	case strings.HasSuffix(p, ".mp4"):
		return MP4
	default:
		return Unknown
	}
}

// Host returns the host name of rawURL, or "" if it has none
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func normalize(contentType string) MediaType {
	base, _, _ := strings.Cut(contentType, ";")
	base = strings.ToLower(strings.TrimSpace(base))

	if t, ok := aliases[base]; ok {
		return t
	}

	switch t := MediaType(base); t {
	case JPEG, PNG, GIF, WEBM, MP4, Video:
		return t
	default:
		return Unknown
	}
}
