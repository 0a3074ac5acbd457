// Package scraper runs the main download loop for one subreddit.
//
// The Scraper pulls pages from a Feed, drops the posts that fail the
// filters, resolves each remaining link to direct media URLs and hands them
// to a Downloader in order.
//
// Architecture:
//
// The Scraper struct is the main component that:
//   - Walks the feed page by page until it is exhausted
//   - Applies the score, sfw/nsfw and title filters in that order
//   - Names files "<id> - <title><suffix><ext>"
//   - Counts processed, downloaded, skipped, existing and failed items
//   - Stops on the download limit, on the first existing file in update
//     mode, or when its context is cancelled
//
// Usage:
//
//	opts, err := scraper.OptionsFromConfig("pics", cfg)
//	if err != nil {
//	    return err
//	}
//
//	s := scraper.New(paginator, resolver, downloader, opts)
//	s.SetPacer(ratelimit.NewPacer(cfg.Download.Delay))
//	s.SetReporter(ui.NewReporter(os.Stdout, verbose))
//
//	stats, err := s.Run(ctx)
//	if err != nil {
//	    return err // the feed could not be read
//	}
//
// Pacing:
//
// After every successful download the next one waits for the pacer delay.
// Failed, skipped and existing items do not wait.
//
// Concurrency:
//
// With ResolveWorkers above 1 the links of a page are resolved by a bounded
// pool before the page is processed. Downloads always run one at a time in
// feed order so that numbering and stop conditions stay deterministic.
package scraper
