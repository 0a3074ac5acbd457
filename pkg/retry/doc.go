// Package retry repeats failed requests with a pause chosen by the kind of
// failure.
//
// Only network and server failures are retried by default. Rate limited
// responses, remote API errors, unwanted media types, existing files and
// disk failures are returned on the first attempt.
//
// A dropped connection is tried again after a fixed pause (ConstantBackoff);
// a 5xx response after an increasing one (ExponentialBackoff).
//
// Usage:
//
//	r := retry.NewHTTPRetrier(3, logger.GetLogger())
//	err := r.Do(ctx, func() error {
//		return fetch(url)
//	})
package retry
