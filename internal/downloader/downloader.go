package downloader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"redditgrab/pkg/client"
	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
	"redditgrab/pkg/mediatype"
	"redditgrab/pkg/retry"
)

// FileWriter stores downloaded bytes under a file name
type FileWriter interface {
	Check(url, filename string) error
	Save(r io.Reader, filename string) (int64, error)
}

// Result describes one completed download
type Result struct {
	URL      string
	Filename string
	Type     mediatype.MediaType
	Size     int64
	Attempts int
	Duration time.Duration
}

// Downloader fetches single media links into a FileWriter
type Downloader struct {
	client  *client.Client
	storage FileWriter
	retrier *retry.Retrier
	logger  logger.Logger
}

// New creates a downloader. A nil retrier makes a single attempt per link.
func New(hc *client.Client, storage FileWriter, retrier *retry.Retrier, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	if retrier == nil {
		retrier = retry.NewHTTPRetrier(1, log)
	}
	return &Downloader{
		client:  hc,
		storage: storage,
		retrier: retrier,
		logger:  log,
	}
}

// Download saves rawURL as filename. It returns *errors.AlreadyExistsError
// when filename is present, *errors.WrongFileTypeError when the response is
// not a downloadable media type, *errors.StorageError when the file cannot
// be written and *errors.FetchError on HTTP failures. Network and server
// failures are retried.
func (d *Downloader) Download(ctx context.Context, rawURL, filename string) (*Result, error) {
	if err := d.storage.Check(rawURL, filename); err != nil {
		return nil, err
	}

	target := unescape(rawURL)
	start := time.Now()
	result := &Result{URL: target, Filename: filename}

	err := d.retrier.Do(ctx, func() error {
		result.Attempts++
		return d.fetch(ctx, target, result)
	})
	result.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}

	d.logger.DebugWithFields("Download completed", map[string]interface{}{
		"url":      target,
		"filename": filename,
		"type":     result.Type.String(),
		"size":     result.Size,
		"attempts": result.Attempts,
		"duration": result.Duration,
	})
	return result, nil
}

func (d *Downloader) fetch(ctx context.Context, target string, result *Result) error {
	resp, err := d.client.Get(ctx, target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := client.CheckStatus(resp); err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	mt, ok := mediatype.Classify(contentType, target, mediatype.Host(target))
	if !ok {
		declared := contentType
		if declared == "" {
			declared = string(mt)
		}
		return &errs.WrongFileTypeError{URL: target, ContentType: declared}
	}
	result.Type = mt

	n, err := d.storage.Save(&bodyReader{r: resp.Body, url: target}, result.Filename)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", result.Filename, err)
	}
	result.Size = n
	return nil
}

// bodyReader reports a connection dropped mid-body as a network failure,
// so the download is attempted again
type bodyReader struct {
	r   io.Reader
	url string
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		err = &errs.FetchError{Type: errs.ErrorTypeNetwork, URL: b.url, Message: "response body interrupted", Err: err}
	}
	return n, err
}

// unescape percent-decodes a link before it is requested. Links that do
// not decode are used as they are.
func unescape(rawURL string) string {
	decoded, err := url.PathUnescape(rawURL)
	if err != nil {
		return rawURL
	}
	return decoded
}
