// Package logger provides a structured logging interface for redditgrab.
//
// It wraps zerolog behind a small Logger interface with:
//   - leveled methods (Debug, Info, Warn, Error, Fatal) and *WithFields variants
//   - immutable child loggers via WithField, WithFields and WithError
//   - coloured console output, an appended JSON run log, or both
//   - a global instance for code that has no logger injected
//
// Every logger created by New carries app and run_id fields so that several
// runs appended to logs/reddit_update.log can be told apart.
//
// Basic usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("subreddit", "pics").Info("Run started")
//
// Tests of other packages use NewTestLogger to capture and assert on events,
// or NewNopLogger to discard them.
package logger
