// Package ratelimit paces requests made by the subreddit downloader.
//
// Two limiters implement the Limiter interface:
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Used for feed page requests (reddit.requests_per_minute)
//
// Pacer:
//   - Fixed delay after each marked operation
//   - Marked after every successful download (download.delay)
//
// Both honour context cancellation while waiting.
//
// Usage:
//
//	pages := ratelimit.PerMinute(30)
//	if err := pages.Wait(ctx); err != nil {
//	    return err
//	}
//
//	pacer := ratelimit.NewPacer(2 * time.Second)
//	pacer.Wait(ctx) // returns immediately until Mark is called
//	download()
//	pacer.Mark()
package ratelimit
