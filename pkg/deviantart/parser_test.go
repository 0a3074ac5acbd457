package deviantart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageSource(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		wantSrc   string
		wantFound bool
	}{
		{
			name: "image with content class",
			page: `<html><body>
				<img src="//st.deviantart.net/blank.gif" class="avatar">
				<img src="http://orig.deviantart.net/full.jpg" class="dev-content-normal" alt="">
				</body></html>`,
			wantSrc:   "http://orig.deviantart.net/full.jpg",
			wantFound: true,
		},
		{
			name: "first match wins",
			page: `<a class="dev-content-normal" src="http://a/first.jpg"></a>
				<img class="dev-content-normal" src="http://a/second.jpg">`,
			wantSrc:   "http://a/first.jpg",
			wantFound: true,
		},
		{
			name: "class must match exactly",
			page: `<img class="dev-content-normal wide" src="http://a/wide.jpg">
				<img class="dev-content-full" src="http://a/full.jpg">`,
			wantFound: false,
		},
		{
			name: "matching element without src is ignored",
			page: `<a class="dev-content-normal" href="/download"></a>
				<img class="dev-content-normal" src="http://a/img.jpg">`,
			wantSrc:   "http://a/img.jpg",
			wantFound: true,
		},
		{
			name:      "other tags are ignored",
			page:      `<div class="dev-content-normal" src="http://a/div.jpg"></div>`,
			wantFound: false,
		},
		{
			name:      "non utf8 content",
			page:      "<html>\xff\xfe<img class=\"dev-content-normal\" src=\"http://a/x.jpg\"></html>",
			wantSrc:   "http://a/x.jpg",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, found, err := ParseImageSource([]byte(tt.page))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantSrc, src)
		})
	}
}

func TestIsDirectImage(t *testing.T) {
	assert.True(t, IsDirectImage("http://fc00.deviantart.net/x/y.jpg"))
	assert.False(t, IsDirectImage("http://artist.deviantart.com/art/Title-123"))
	assert.False(t, IsDirectImage("jpg"))
}
