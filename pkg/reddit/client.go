package reddit

import (
	"context"
	"fmt"

	"redditgrab/pkg/client"
	"redditgrab/pkg/logger"
	"redditgrab/pkg/ratelimit"
)

// Client fetches subreddit listings
type Client struct {
	http    *client.Client
	baseURL string
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewClient creates a feed client. The user agent is set on hc.
// A nil limiter disables page pacing.
func NewClient(hc *client.Client, baseURL, userAgent string, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent != "" {
		hc.SetHeader("User-Agent", userAgent)
	}
	return &Client{
		http:    hc,
		baseURL: baseURL,
		limiter: limiter,
		logger:  log,
	}
}

// GetItems returns the posts of subreddit that come after the post with id after.
// An empty result means there are no more posts.
func (c *Client) GetItems(ctx context.Context, subreddit, after string) ([]Post, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	url := GetListingURL(c.baseURL, subreddit, after)
	c.logger.DebugWithFields("fetching subreddit listing", map[string]interface{}{
		"subreddit": subreddit,
		"after":     after,
		"url":       url,
	})

	body, err := c.http.GetBytes(ctx, url)
	if err != nil {
		c.logger.ErrorWithFields("failed to fetch subreddit listing", map[string]interface{}{
			"subreddit": subreddit,
			"after":     after,
			"error":     err.Error(),
		})
		return nil, err
	}

	var listing Listing
	if err := c.http.DecodeJSON(url, body, &listing); err != nil {
		return nil, fmt.Errorf("subreddit %q does not exist: %w", subreddit, err)
	}

	posts := listing.Posts()
	c.logger.DebugWithFields("fetched subreddit listing", map[string]interface{}{
		"subreddit": subreddit,
		"count":     len(posts),
	})
	return posts, nil
}

// Paginator walks a subreddit listing page by page, newest first
type Paginator struct {
	client    *Client
	subreddit string
	after     string
	done      bool
}

// NewPaginator starts paging subreddit after the post with id after
func NewPaginator(c *Client, subreddit, after string) *Paginator {
	return &Paginator{
		client:    c,
		subreddit: subreddit,
		after:     after,
	}
}

// Next returns the next page. It returns an empty page once the listing is exhausted.
func (p *Paginator) Next(ctx context.Context) ([]Post, error) {
	if p.done {
		return nil, nil
	}

	posts, err := p.client.GetItems(ctx, p.subreddit, p.after)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		p.done = true
		return nil, nil
	}

	p.after = posts[len(posts)-1].ID
	return posts, nil
}

// Cursor returns the id the next page will start after
func (p *Paginator) Cursor() string {
	return p.after
}

// Done reports whether an empty page has been seen
func (p *Paginator) Done() bool {
	return p.done
}
