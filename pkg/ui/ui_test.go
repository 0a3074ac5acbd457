package ui

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "redditgrab/pkg/errors"
)

func withPlainOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevColor, prevOut := colorEnabled, out
	t.Cleanup(func() {
		colorEnabled, out = prevColor, prevOut
	})

	var buf bytes.Buffer
	SetColor(false)
	SetOutput(&buf)
	return &buf
}

func TestColorDisabled(t *testing.T) {
	withPlainOutput(t)
	assert.False(t, ColorEnabled())
	assert.Equal(t, "text", Cyan("text"))
	assert.Equal(t, "text", Bold(Red("text")))
}

func TestPrintFunctions(t *testing.T) {
	buf := withPlainOutput(t)

	PrintBanner("v1.2.0")
	PrintError("Failed", errors.New("boom"))
	PrintInfo("Subreddit", "pics")
	PrintWarning("careful")
	PrintSuccess("done")

	assert.Equal(t, "redditgrab v1.2.0\nFailed: boom\nSubreddit: pics\ncareful\ndone\n", buf.String())
}

func TestReporter(t *testing.T) {
	withPlainOutput(t)

	tests := []struct {
		name    string
		verbose bool
		report  func(r *Reporter)
		want    string
	}{
		{
			name:   "start",
			report: func(r *Reporter) { r.Start("pics") },
			want:   "Downloading images from \"pics\" subreddit\n",
		},
		{
			name:   "downloaded",
			report: func(r *Reporter) { r.Downloaded("http://i.imgur.com/a.jpg", "abc - t.jpg") },
			want:   "    Downloaded URL [http://i.imgur.com/a.jpg] as [abc - t.jpg].\n",
		},
		{
			name:   "skipped quiet",
			report: func(r *Reporter) { r.Skipped("abc", "Regex match failed") },
			want:   "",
		},
		{
			name:    "skipped verbose",
			verbose: true,
			report:  func(r *Reporter) { r.Skipped("abc", "Regex match failed") },
			want:    "    Regex match failed\n",
		},
		{
			name:   "notice",
			report: func(r *Reporter) { r.Notice("Update complete, exiting.") },
			want:   "    Update complete, exiting.\n",
		},
		{
			name: "http error on link",
			report: func(r *Reporter) {
				r.Failed("abc", "http://x/y.jpg", fmt.Errorf("max retry attempts (3) exceeded: %w",
					&errs.FetchError{Type: errs.ErrorTypeServerError, Code: 503}))
			},
			want: "    HTTP ERROR: Code 503 for http://x/y.jpg. ID = abc\n",
		},
		{
			name: "http error while resolving",
			report: func(r *Reporter) {
				r.Failed("abc", "", &errs.FetchError{Type: errs.ErrorTypeNotFound, Code: 404})
			},
			want: "    HTTP ERROR: Code 404. ID = abc.\n",
		},
		{
			name: "network error",
			report: func(r *Reporter) {
				r.Failed("abc", "http://x/y.jpg", &errs.FetchError{Type: errs.ErrorTypeNetwork, Message: "request failed"})
			},
			want: "    URL ERROR: http://x/y.jpg!\n",
		},
		{
			name: "remote error",
			report: func(r *Reporter) {
				r.Failed("abc", "", &errs.RemoteError{Service: "gfycat", Message: "not found"})
			},
			want: "    gfycat: remote error: not found. ID = abc\n",
		},
		{
			name:   "summary",
			report: func(r *Reporter) { r.Summary(3, 10, 4, 1) },
			want:   "Downloaded 3 files (Processed 10, Skipped 4, Exists 1)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.report(NewReporter(&buf, tt.verbose))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

type recordingSender struct {
	titles   []string
	messages []string
	err      error
}

func (s *recordingSender) Send(title, message string) error {
	s.titles = append(s.titles, title)
	s.messages = append(s.messages, message)
	return s.err
}

func TestNotifier(t *testing.T) {
	withPlainOutput(t)

	var buf bytes.Buffer
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender, &buf)

	assert.NoError(t, n.SendSuccess("r/pics", "Downloaded 3 files"))
	assert.Equal(t, []string{"r/pics"}, sender.titles)
	assert.Equal(t, []string{"Downloaded 3 files"}, sender.messages)
	assert.Equal(t, "\nr/pics: Downloaded 3 files\n", buf.String())

	sender.err = errors.New("notify-send not found")
	assert.EqualError(t, n.SendError("r/pics", "failed"), "notify-send not found")
}

func TestNotifierWithoutSender(t *testing.T) {
	withPlainOutput(t)

	var buf bytes.Buffer
	n := NewNotifierWithSender(nil, &buf)
	assert.NoError(t, n.SendNotification("title", "message"))
	assert.Contains(t, buf.String(), "title: message")
}
