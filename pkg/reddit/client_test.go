package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"redditgrab/pkg/client"
	"redditgrab/pkg/config"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingJSON(ids ...string) string {
	children := make([]string, 0, len(ids))
	for _, id := range ids {
		children = append(children, fmt.Sprintf(
			`{"kind":"t3","data":{"id":%q,"title":"Post %s","url":"http://i.imgur.com/%s.jpg","score":10,"over_18":false,"domain":"i.imgur.com"}}`,
			id, id, id))
	}
	return fmt.Sprintf(`{"kind":"Listing","data":{"children":[%s]}}`, strings.Join(children, ","))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc := client.New(5*time.Second, logger.NewNopLogger())
	return NewClient(hc, server.URL, config.DefaultUserAgent, nil, logger.NewTestLogger())
}

func TestClient_GetItems(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(listingJSON("abc", "def")))
	})

	posts, err := c.GetItems(context.Background(), "pics", "")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "/r/pics/new/.json", gotPath)
	assert.Empty(t, gotQuery)
	assert.Equal(t, config.DefaultUserAgent, gotUA)

	assert.Equal(t, "abc", posts[0].ID)
	assert.Equal(t, "Post abc", posts[0].Title)
	assert.Equal(t, "http://i.imgur.com/abc.jpg", posts[0].URL)
	assert.Equal(t, 10, posts[0].Score)
	assert.False(t, posts[0].Over18)
	assert.Equal(t, "i.imgur.com", posts[0].Domain)
}

func TestClient_GetItemsAfter(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(listingJSON()))
	})

	posts, err := c.GetItems(context.Background(), "pics", "xyz")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, "after=t3_xyz", gotQuery)
}

func TestClient_GetItemsErrors(t *testing.T) {
	t.Run("http error is a fetch error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := c.GetItems(context.Background(), "private", "")

		var fetchErr *errs.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusForbidden, fetchErr.Code)
	})

	t.Run("non json body means missing subreddit", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>search results</html>"))
		})

		_, err := c.GetItems(context.Background(), "nosuchplace", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `subreddit "nosuchplace" does not exist`)
	})
}

func TestPaginator(t *testing.T) {
	pages := map[string]string{
		"":          listingJSON("a1", "a2"),
		"after=t3_a2": listingJSON("b1"),
		"after=t3_b1": listingJSON(),
	}
	var requests []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		w.Write([]byte(pages[r.URL.RawQuery]))
	})

	p := NewPaginator(c, "pics", "")
	ctx := context.Background()

	page, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, "a2", p.Cursor())

	page, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Equal(t, "b1", p.Cursor())

	page, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.True(t, p.Done())

	page, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, []string{"", "after=t3_a2", "after=t3_b1"}, requests)
}

func TestPaginatorStartsAfterLast(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(listingJSON()))
	})

	_, err := NewPaginator(c, "pics", "last1").Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "after=t3_last1", gotQuery)
}
