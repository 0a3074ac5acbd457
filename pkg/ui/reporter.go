package ui

import (
	"errors"
	"fmt"
	"io"
	"sync"

	errs "redditgrab/pkg/errors"
)

const indent = "    "

// Reporter prints one line per event of a run
type Reporter struct {
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewReporter creates a reporter writing to out. Filter decisions are only
// printed when verbose is set.
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{out: out, verbose: verbose}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Start announces the subreddit being downloaded
func (r *Reporter) Start(subreddit string) {
	r.printf("Downloading images from %s subreddit", Cyan(fmt.Sprintf("%q", subreddit)))
}

// Skipped reports a post rejected by a filter
func (r *Reporter) Skipped(postID, reason string) {
	if !r.verbose {
		return
	}
	r.printf("%s%s", indent, Dim(reason))
}

// Downloaded reports a saved file
func (r *Reporter) Downloaded(url, filename string) {
	r.printf("%sDownloaded URL [%s] as [%s].", indent, url, Green(filename))
}

// Notice prints a message that is not a failure
func (r *Reporter) Notice(msg string) {
	r.printf("%s%s", indent, Yellow(msg))
}

// Failed reports a post or link that could not be downloaded. url is empty
// when the post link itself could not be resolved.
func (r *Reporter) Failed(postID, url string, err error) {
	var fetchErr *errs.FetchError
	switch {
	case errors.As(err, &fetchErr) && fetchErr.Code > 0 && url == "":
		r.printf("%s%s", indent, Red(fmt.Sprintf("HTTP ERROR: Code %d. ID = %s.", fetchErr.Code, postID)))
	case errors.As(err, &fetchErr) && fetchErr.Code > 0:
		r.printf("%s%s", indent, Red(fmt.Sprintf("HTTP ERROR: Code %d for %s. ID = %s", fetchErr.Code, url, postID)))
	case errors.As(err, &fetchErr) && fetchErr.Type == errs.ErrorTypeNetwork && url != "":
		r.printf("%s%s", indent, Red(fmt.Sprintf("URL ERROR: %s!", url)))
	default:
		r.printf("%s%s", indent, Red(fmt.Sprintf("%v. ID = %s", err, postID)))
	}
}

// Summary prints the final counters
func (r *Reporter) Summary(downloaded, processed, skipped, exists int) {
	r.printf("%s", Bold(fmt.Sprintf("Downloaded %d files (Processed %d, Skipped %d, Exists %d)",
		downloaded, processed, skipped, exists)))
}
