package scraper

import (
	"context"

	"redditgrab/internal/downloader"
	"redditgrab/pkg/reddit"
	"redditgrab/pkg/resolver"
)

// Feed yields pages of posts. An empty page ends the run.
type Feed interface {
	Next(ctx context.Context) ([]reddit.Post, error)
}

// Resolver turns a post link into direct media links
type Resolver interface {
	Resolve(ctx context.Context, url string) ([]resolver.Media, error)
}

// Downloader saves one media link under a file name
type Downloader interface {
	Download(ctx context.Context, rawURL, filename string) (*downloader.Result, error)
}

// Pacer spaces out downloads
type Pacer interface {
	Wait(ctx context.Context) error
	Mark()
}

// Reporter receives per-item events for display
type Reporter interface {
	Start(subreddit string)
	Skipped(postID, reason string)
	Downloaded(url, filename string)
	Notice(msg string)
	Failed(postID, url string, err error)
	Summary(downloaded, processed, skipped, exists int)
}
