package scraper

import (
	"context"
	"errors"
	"fmt"

	"redditgrab/internal/downloader"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
	"redditgrab/pkg/ratelimit"
	"redditgrab/pkg/reddit"
	"redditgrab/pkg/resolver"
)

// Reasons a run ends
const (
	StopExhausted    = "feed exhausted"
	StopMaxDownloads = "download limit reached"
	StopUpdated      = "update complete"
	StopInterrupted  = "interrupted"
)

const updateCompleteMessage = "Update complete, exiting."

// Stats counts the outcomes of a run
type Stats struct {
	Processed  int
	Downloaded int
	Exists     int
	Skipped    int
	Failed     int
	StopReason string
}

// Scraper walks a subreddit feed and downloads the media behind each post
type Scraper struct {
	feed       Feed
	resolver   Resolver
	downloader Downloader
	pacer      Pacer
	reporter   Reporter
	opts       Options
	logger     logger.Logger
	stats      Stats
}

// New creates a scraper. Downloads are not paced until SetPacer is called.
func New(feed Feed, res Resolver, dl Downloader, opts Options) *Scraper {
	return &Scraper{
		feed:       feed,
		resolver:   res,
		downloader: dl,
		pacer:      ratelimit.NewPacer(0),
		reporter:   nopReporter{},
		opts:       opts,
		logger:     logger.GetLogger(),
	}
}

// SetPacer sets the delay applied after each successful download
func (s *Scraper) SetPacer(p Pacer) {
	s.pacer = p
}

// SetReporter sets where per-item events are shown
func (s *Scraper) SetReporter(r Reporter) {
	s.reporter = r
}

// SetLogger sets the run logger
func (s *Scraper) SetLogger(l logger.Logger) {
	s.logger = l
}

// Stats returns the counters of the last run
func (s *Scraper) Stats() Stats {
	return s.stats
}

// Run processes the feed until it is exhausted, a stop condition is met or
// ctx is cancelled. Only a failed feed request is returned as an error;
// failures of single posts are counted and the run continues.
func (s *Scraper) Run(ctx context.Context) (Stats, error) {
	s.stats = Stats{}
	log := s.logger.WithField("subreddit", s.opts.Subreddit)

	logger.LogComponentStart(log, "scraper", map[string]interface{}{
		"min_score":       s.opts.MinScore,
		"sfw":             s.opts.SFWOnly,
		"nsfw":            s.opts.NSFWOnly,
		"max_downloads":   s.opts.MaxDownloads,
		"update":          s.opts.Update,
		"resolve_workers": s.opts.ResolveWorkers,
	})
	s.reporter.Start(s.opts.Subreddit)

	reason, err := s.loop(ctx, log)
	s.stats.StopReason = reason
	if err != nil {
		log.WithError(err).Error("Feed request failed")
		logger.LogComponentStop(log, "scraper", "feed error")
		return s.stats, err
	}

	s.reporter.Summary(s.stats.Downloaded, s.stats.Processed, s.stats.Skipped, s.stats.Exists)
	logger.LogSummary(log, s.stats.Processed, s.stats.Downloaded, s.stats.Skipped, s.stats.Exists, s.stats.Failed)
	logger.LogComponentStop(log, "scraper", reason)
	return s.stats, nil
}

func (s *Scraper) loop(ctx context.Context, log logger.Logger) (string, error) {
	page := 0
	for {
		if ctx.Err() != nil {
			return StopInterrupted, nil
		}

		posts, err := s.feed.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return StopInterrupted, nil
			}
			return "", fmt.Errorf("failed to fetch feed page: %w", err)
		}
		if len(posts) == 0 {
			return StopExhausted, nil
		}

		page++
		log.DebugWithFields("Feed page fetched", map[string]interface{}{
			"page":  page,
			"posts": len(posts),
		})

		if reason := s.processPage(ctx, posts); reason != "" {
			return reason, nil
		}
	}
}

type resolution struct {
	media []resolver.Media
	err   error
}

func (s *Scraper) processPage(ctx context.Context, posts []reddit.Post) string {
	prefetched := s.prefetch(ctx, posts)

	for i, post := range posts {
		if ctx.Err() != nil {
			return StopInterrupted
		}
		s.stats.Processed++

		if reason := s.opts.skipReason(post); reason != "" {
			s.stats.Skipped++
			s.reporter.Skipped(post.ID, reason)
			s.logger.DebugWithFields("Post skipped", map[string]interface{}{
				"post_id": post.ID,
				"reason":  reason,
			})
			continue
		}

		var r resolution
		if prefetched != nil {
			r = prefetched[i]
		} else {
			r.media, r.err = s.resolver.Resolve(ctx, post.URL)
		}

		if r.err != nil {
			if ctx.Err() != nil {
				return StopInterrupted
			}
			s.stats.Failed++
			s.reporter.Failed(post.ID, "", r.err)
			s.logger.WithError(r.err).WarnWithFields("Link resolution failed", map[string]interface{}{
				"post_id": post.ID,
				"url":     post.URL,
			})
			continue
		}

		if len(r.media) == 0 {
			s.logger.DebugWithFields("Nothing to download", map[string]interface{}{
				"post_id": post.ID,
				"url":     post.URL,
			})
			continue
		}

		if reason := s.downloadPost(ctx, post, r.media); reason != "" {
			return reason
		}
	}
	return ""
}

// prefetch resolves the links of every post that passes the filters with a
// bounded pool. It returns nil when resolving is sequential.
func (s *Scraper) prefetch(ctx context.Context, posts []reddit.Post) []resolution {
	if s.opts.ResolveWorkers <= 1 {
		return nil
	}

	var (
		jobs    []reddit.Post
		indexes []int
	)
	for i, post := range posts {
		if s.opts.skipReason(post) == "" {
			jobs = append(jobs, post)
			indexes = append(indexes, i)
		}
	}

	pool := downloader.NewPool[reddit.Post, resolution](s.opts.ResolveWorkers, s.logger)
	results, err := pool.Map(ctx, jobs, func(ctx context.Context, post reddit.Post) resolution {
		media, err := s.resolver.Resolve(ctx, post.URL)
		return resolution{media: media, err: err}
	})
	if err != nil {
		return nil
	}

	out := make([]resolution, len(posts))
	for j, i := range indexes {
		out[i] = results[j]
	}
	return out
}

// downloadPost downloads the links of one post in order. Suffix numbers
// only advance on success.
func (s *Scraper) downloadPost(ctx context.Context, post reddit.Post, media []resolver.Media) string {
	multiple := len(media) > 1
	saved := 0

	for _, m := range media {
		if err := s.pacer.Wait(ctx); err != nil {
			return StopInterrupted
		}

		filename := Filename(post.ID, post.Title, saved, multiple, m.URL)
		_, err := s.downloader.Download(ctx, m.URL, filename)
		logger.LogDownload(s.logger, post.ID, m.URL, filename, err)

		if err == nil {
			s.pacer.Mark()
			saved++
			s.stats.Downloaded++
			s.reporter.Downloaded(m.URL, filename)

			if s.opts.MaxDownloads > 0 && s.stats.Downloaded >= s.opts.MaxDownloads {
				return StopMaxDownloads
			}
			continue
		}

		if ctx.Err() != nil {
			return StopInterrupted
		}

		var (
			typeErr   *errs.WrongFileTypeError
			existsErr *errs.AlreadyExistsError
		)
		switch {
		case errors.As(err, &typeErr):
			s.stats.Skipped++
			s.reporter.Notice(typeErr.Error())
		case errors.As(err, &existsErr):
			s.stats.Exists++
			s.reporter.Notice(existsErr.Error())
			if s.opts.Update {
				s.reporter.Notice(updateCompleteMessage)
				s.logger.Info(updateCompleteMessage)
				return StopUpdated
			}
		default:
			s.stats.Failed++
			s.reporter.Failed(post.ID, m.URL, err)
		}
	}
	return ""
}

type nopReporter struct{}

func (nopReporter) Start(string)                 {}
func (nopReporter) Skipped(string, string)       {}
func (nopReporter) Downloaded(string, string)    {}
func (nopReporter) Notice(string)                {}
func (nopReporter) Failed(string, string, error) {}
func (nopReporter) Summary(int, int, int, int)   {}
