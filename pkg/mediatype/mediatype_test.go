package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		url         string
		host        string
		want        MediaType
		accepted    bool
	}{
		{"header wins over extension", "image/png", "http://x.com/a.jpg", "", PNG, true},
		{"header with parameters", "image/jpeg; charset=binary", "http://x.com/a", "", JPEG, true},
		{"extension jpg", "", "http://x.com/a.jpg", "", JPEG, true},
		{"extension jpeg upper case", "", "http://x.com/A.JPEG", "", JPEG, true},
		{"extension png", "", "http://x.com/a.png", "", PNG, true},
		{"extension gif", "", "http://x.com/a.gif", "", GIF, true},
		{"extension webm", "", "http://x.com/a.webm", "", WEBM, true},
		{"extension mp4", "", "http://x.com/a.mp4", "", MP4, true},
		{"extension gifv", "", "http://x.com/a.gifv", "", WEBM, true},
		{"extension with query", "", "http://x.com/a.png?1", "", PNG, true},
		{"no header no extension", "", "http://x.com/a", "", Unknown, false},
		{"html rejected", "text/html; charset=utf-8", "http://example.com/page", "", Unknown, false},
		{"minus gif quirk", "image%2Fgif; charset=ISO-8859-1", "http://i.minus.com/ibXyz.gif", "", GIF, true},
		{"minus jpeg quirk", "image%2Fjpeg; charset=ISO-8859-1", "http://i.minus.com/ibXyz.jpg", "", JPEG, true},
		{"imgrush html quirk", "text/html; charset=utf-8", "https://imgrush.com/abc.mp4", "", Video, true},
		{"imgur html quirk", "text/html; charset=utf-8", "http://i.imgur.com/abc.webm", "", WEBM, true},
		{"imgur quirk needs exact header", "text/html", "http://i.imgur.com/abc.webm", "", Unknown, false},
		{"quirk uses explicit host", "text/html; charset=utf-8", "http://cdn.test/abc", "imgrush.com", Video, true},
		{"quirk ignores other hosts", "text/html; charset=utf-8", "http://other.com/abc.webm", "", Unknown, false},
		{"encoded gif rejected elsewhere", "image%2Fgif; charset=ISO-8859-1", "http://x.com/a.gif", "", Unknown, false},
		{"encoded jpeg rejected elsewhere", "image%2Fjpeg", "http://x.com/a.jpg", "", Unknown, false},
		{"minus quirk needs exact header", "image%2Fgif", "http://i.minus.com/ibXyz.gif", "", Unknown, false},
		{"gifv header", "video/gifv", "http://x.com/a", "", WEBM, true},
		{"generic video", "video", "http://x.com/a", "", Video, true},
		{"octet stream rejected", "application/octet-stream", "http://x.com/a.jpg", "", Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, accepted := Classify(tt.contentType, tt.url, tt.host)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.accepted, accepted)
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	all := []MediaType{JPEG, PNG, GIF, WEBM, MP4, Video, Unknown}
	hosts := []string{"", "i.minus.com", "imgrush.com", "i.imgur.com"}

	for _, mt := range all {
		for _, host := range hosts {
			got, accepted := Classify(string(mt), "http://x.com/file", host)
			assert.Equal(t, mt, got, "type %s on host %q", mt, host)
			assert.Equal(t, mt.Accepted(), accepted)

			again, _ := Classify(string(got), "http://x.com/file", host)
			assert.Equal(t, got, again)
		}
	}
}

func TestFromExtension(t *testing.T) {
	assert.Equal(t, JPEG, FromExtension("http://x.com/a%20b.jpg"))
	assert.Equal(t, Unknown, FromExtension("http://x.com/"))
	assert.Equal(t, GIF, FromExtension("not a url.gif"))
}

func TestHost(t *testing.T) {
	assert.Equal(t, "i.minus.com", Host("http://i.minus.com:8080/x"))
	assert.Empty(t, Host("::bad"))
}
