package resolver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"redditgrab/pkg/client"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/gfycat"
	"redditgrab/pkg/imgrush"
	"redditgrab/pkg/imgur"
	"redditgrab/pkg/logger"
	"redditgrab/pkg/mediatype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper answers every request in process, keeping the real host names
type mockRoundTripper struct {
	mu       sync.Mutex
	requests []string
	handler  func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req.URL.Host+req.URL.RequestURI())
	m.mu.Unlock()
	return m.handler(req)
}

func (m *mockRoundTripper) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

func newResponse(req *http.Request, statusCode int, contentType, body string) *http.Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
		Request:    req,
	}
}

func newTestResolver(handler func(req *http.Request) (*http.Response, error)) (*Resolver, *mockRoundTripper) {
	rt := &mockRoundTripper{handler: handler}
	log := logger.NewNopLogger()
	newClient := func() *client.Client {
		return client.NewWithHTTPClient(&http.Client{Transport: rt, Timeout: 5 * time.Second}, log)
	}

	r := New(
		newClient(),
		imgur.NewAlbumClient(newClient(), log),
		gfycat.NewClient(newClient(), log),
		imgrush.NewClient(newClient(), log),
		log,
	)
	return r, rt
}

func noNetwork(t *testing.T) func(req *http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request to %s", req.URL)
		return nil, errors.New("no network in this test")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want HostVariant
	}{
		{"https://imgur.com/abcde.png", Imgur},
		{"http://imgur.com/a/abc12", Imgur},
		{"https://imgur.com/gallery/xyz89", Imgur},
		{"http://i.imgur.com/abcde.gifv", Imgur},
		{"http://artist.deviantart.com/art/Title-123", DeviantArt},
		{"https://gfycat.com/SomeGfyName", Gfycat},
		{"https://mediacru.sh/abc123", Mediacrush},
		{"https://imgrush.com/abc123", Imgrush},
		{"http://example.com/picture.jpg", Direct},
		{"", Direct},
		{"not even a url", Direct},
		{"https://gfycat.com/redirect?to=imgur.com/x", Imgur},
		{"imgur.com", Imgur},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
		})
	}
}

func TestHostVariantString(t *testing.T) {
	assert.Equal(t, "imgur", Imgur.String())
	assert.Equal(t, "deviantart", DeviantArt.String())
	assert.Equal(t, "gfycat", Gfycat.String())
	assert.Equal(t, "mediacrush", Mediacrush.String())
	assert.Equal(t, "imgrush", Imgrush.String())
	assert.Equal(t, "direct", Direct.String())
}

func TestResolve_Direct(t *testing.T) {
	r, _ := newTestResolver(noNetwork(t))

	media, err := r.Resolve(context.Background(), "http://example.com/picture.jpg")
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "http://example.com/picture.jpg", media[0].URL)
	assert.Equal(t, mediatype.JPEG, media[0].Type)
}

func TestResolve_ImgurSingle(t *testing.T) {
	r, _ := newTestResolver(noNetwork(t))

	tests := []struct {
		input string
		want  string
	}{
		{"https://imgur.com/abcde.png", "https://imgur.com/abcde.jpg"},
		{"https://i.imgur.com/abcde.gifv", "https://i.imgur.com/abcde.webm"},
		{"https://imgur.com/abcde", "https://imgur.com/abcde.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			media, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, URLs(media))
		})
	}
}

func TestResolve_ImgurAlbum(t *testing.T) {
	page := "<html>\n" +
		`{"hash":"old1"}` + "\n" +
		`{"images":[{"hash":"img1"},{"hash":"img2"}]}` + "\n" +
		"</html>"

	for _, albumURL := range []string{"http://imgur.com/a/abc12", "https://imgur.com/gallery/xyz89"} {
		t.Run(albumURL, func(t *testing.T) {
			r, rt := newTestResolver(func(req *http.Request) (*http.Response, error) {
				return newResponse(req, http.StatusOK, "text/html", page), nil
			})

			media, err := r.Resolve(context.Background(), albumURL)
			require.NoError(t, err)
			assert.Equal(t, []string{"http://i.imgur.com/img1.jpg", "http://i.imgur.com/img2.jpg"}, URLs(media))
			assert.Len(t, rt.Requests(), 1, "album page must be fetched")
		})
	}
}

func TestResolve_ImgurEmptyAlbum(t *testing.T) {
	r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "text/html", "<html>removed</html>"), nil
	})

	media, err := r.Resolve(context.Background(), "http://imgur.com/a/gone1")
	require.NoError(t, err)
	assert.Empty(t, media)
}

func TestResolve_DeviantArt(t *testing.T) {
	t.Run("direct jpg is not fetched", func(t *testing.T) {
		r, _ := newTestResolver(noNetwork(t))

		media, err := r.Resolve(context.Background(), "http://fc01.deviantart.net/fs70/i/art.jpg")
		require.NoError(t, err)
		assert.Equal(t, []string{"http://fc01.deviantart.net/fs70/i/art.jpg"}, URLs(media))
	})

	t.Run("page is scanned for the content image", func(t *testing.T) {
		r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusOK, "text/html",
				`<html><img class="dev-content-normal" src="http://orig.deviantart.net/full.png"></html>`), nil
		})

		media, err := r.Resolve(context.Background(), "http://artist.deviantart.com/art/Title-123")
		require.NoError(t, err)
		assert.Equal(t, []string{"http://orig.deviantart.net/full.png"}, URLs(media))
		assert.Equal(t, mediatype.PNG, media[0].Type)
	})

	t.Run("page without image falls back to the link", func(t *testing.T) {
		r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusOK, "text/html", `<html><p>login required</p></html>`), nil
		})

		media, err := r.Resolve(context.Background(), "http://artist.deviantart.com/art/Title-123")
		require.NoError(t, err)
		assert.Equal(t, []string{"http://artist.deviantart.com/art/Title-123"}, URLs(media))
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusNotFound, "", ""), nil
		})

		_, err := r.Resolve(context.Background(), "http://artist.deviantart.com/art/Gone-1")

		var fetchErr *errs.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusNotFound, fetchErr.Code)
	})
}

func TestResolve_GfycatMore(t *testing.T) {
	r, rt := newTestResolver(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "application/json", `{"gfyItem": {"webmUrl": "http://x/y.webm"}}`), nil
	})

	media, err := r.Resolve(context.Background(), "https://gfycat.com/SomeGfyName")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://x/y.webm"}, URLs(media))
	assert.Equal(t, []string{"gfycat.com/cajax/get/SomeGfyName"}, rt.Requests())
}

func TestResolve_GfycatMoreWithoutWebm(t *testing.T) {
	r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "application/json", `{"gfyItem": {"gfyName": "SomeGfyName"}}`), nil
	})

	_, err := r.Resolve(context.Background(), "https://gfycat.com/SomeGfyName")

	var remoteErr *errs.RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

func TestResolve_GfycatAlbum(t *testing.T) {
	r, rt := newTestResolver(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "application/json", `{"title": {"publishedGfys": [
			{"webmUrl": "http://g/one.webm"},
			{"gfyName": "no-webm"},
			{"webmUrl": "http://g/two.webm"}
		]}}`), nil
	})

	media, err := r.Resolve(context.Background(), "http://gfycat.com/someuser/my-album")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://g/one.webm", "http://g/two.webm"}, URLs(media))
	assert.Equal(t,
		[]string{"gfycat.com/cajax/getPublicAlbumContents?username=someuser&albumUrl=my-album"},
		rt.Requests())
}

func TestResolve_GfycatRemoteError(t *testing.T) {
	r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "application/json", `{"gfyItem": {"error": "not found"}}`), nil
	})

	_, err := r.Resolve(context.Background(), "https://gfycat.com/Missing")

	var remoteErr *errs.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "not found", remoteErr.Message)
}

func TestResolve_Imgrush(t *testing.T) {
	info := `{"files": [{"url": "https://cdn.imgrush.com/abc123.mp4", "type": "video/mp4"}]}`

	for _, link := range []string{"https://imgrush.com/abc123", "https://mediacru.sh/abc123"} {
		t.Run(link, func(t *testing.T) {
			r, rt := newTestResolver(func(req *http.Request) (*http.Response, error) {
				return newResponse(req, http.StatusOK, "application/json", info), nil
			})

			media, err := r.Resolve(context.Background(), link)
			require.NoError(t, err)
			assert.Equal(t, []string{"https://cdn.imgrush.com/abc123.mp4"}, URLs(media))
			assert.Equal(t, mediatype.MP4, media[0].Type)
			assert.Equal(t, []string{"imgrush.com/api/abc123"}, rt.Requests())
		})
	}
}

func TestResolve_ImgrushErrors(t *testing.T) {
	t.Run("error payload", func(t *testing.T) {
		r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusNotFound, "application/json", `{"error": 404}`), nil
		})

		_, err := r.Resolve(context.Background(), "https://imgrush.com/gone")

		var remoteErr *errs.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, 404, remoteErr.Code)
	})

	t.Run("no files", func(t *testing.T) {
		r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
			return newResponse(req, http.StatusOK, "application/json", `{"files": []}`), nil
		})

		_, err := r.Resolve(context.Background(), "https://imgrush.com/empty")

		var remoteErr *errs.RemoteError
		require.ErrorAs(t, err, &remoteErr)
	})

	t.Run("transport failure", func(t *testing.T) {
		r, _ := newTestResolver(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		})

		_, err := r.Resolve(context.Background(), "https://imgrush.com/abc")

		var fetchErr *errs.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, errs.ErrorTypeNetwork, fetchErr.Type)
	})
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "SomeGfyName", lastSegment("https://gfycat.com/SomeGfyName"))
	assert.Equal(t, "", lastSegment("https://gfycat.com/"))
	assert.Equal(t, "plain", lastSegment("plain"))
}
