package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"redditgrab/internal/downloader"
	"redditgrab/pkg/client"
	"redditgrab/pkg/config"
	"redditgrab/pkg/gfycat"
	"redditgrab/pkg/imgrush"
	"redditgrab/pkg/imgur"
	"redditgrab/pkg/logger"
	"redditgrab/pkg/ratelimit"
	"redditgrab/pkg/reddit"
	"redditgrab/pkg/resolver"
	"redditgrab/pkg/retry"
	"redditgrab/pkg/scraper"
	"redditgrab/pkg/storage"
	"redditgrab/pkg/ui"
)

func runDownload(cmd *cobra.Command, args []string) error {
	subreddit := reddit.SanitizeSubreddit(args[0])
	if !reddit.IsValidSubreddit(subreddit) {
		return fmt.Errorf("invalid subreddit name %q", args[0])
	}
	cmd.SilenceUsage = true

	flags := changedFlags(cmd.Flags())
	flags["output"] = strings.TrimSpace(args[1])
	if verbose && !cmd.Flags().Changed("log-level") {
		flags["log-level"] = "debug"
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithFields(map[string]interface{}{
		"version":   version,
		"subreddit": subreddit,
	})
	log.InfoWithFields("redditgrab starting", map[string]interface{}{
		"output": cfg.Output.Directory,
		"last":   cfg.Filter.LastID,
	})

	s, err := newScraper(cfg, subreddit, verbose, os.Stdout, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := s.Run(ctx)
	if cfg.Notifications.Enabled {
		sendNotification(ui.NewNotifier(), subreddit, stats, err, log)
	}
	if err != nil {
		return err
	}

	log.WithField("stop_reason", stats.StopReason).Info("redditgrab finished")
	return nil
}

// newScraper wires the feed, the resolver and the downloader for one run.
// Each service gets its own HTTP client so their headers stay apart.
func newScraper(cfg *config.Config, subreddit string, verbose bool, out io.Writer, log logger.Logger) (*scraper.Scraper, error) {
	newClient := func() *client.Client {
		return client.New(cfg.Download.Timeout, log)
	}

	feedClient := reddit.NewClient(
		newClient(),
		cfg.Reddit.BaseURL,
		cfg.Reddit.UserAgent,
		ratelimit.PerMinute(cfg.Reddit.RequestsPerMinute),
		log,
	)
	feed := reddit.NewPaginator(feedClient, subreddit, cfg.Filter.LastID)

	res := resolver.New(
		newClient(),
		imgur.NewAlbumClient(newClient(), log),
		gfycat.NewClient(newClient(), log),
		imgrush.NewClient(newClient(), log),
		log,
	)

	store, err := storage.NewManager(cfg.Output.Directory, log)
	if err != nil {
		return nil, err
	}
	dl := downloader.New(newClient(), store, retry.NewHTTPRetrier(cfg.Download.RetryAttempts, log), log)

	opts, err := scraper.OptionsFromConfig(subreddit, cfg)
	if err != nil {
		return nil, err
	}

	s := scraper.New(feed, res, dl, opts)
	s.SetLogger(log)
	s.SetPacer(ratelimit.NewPacer(cfg.Download.Delay))
	s.SetReporter(ui.NewReporter(out, verbose))
	return s, nil
}

type notifier interface {
	SendError(title, message string) error
	SendSuccess(title, message string) error
}

func sendNotification(n notifier, subreddit string, stats scraper.Stats, runErr error, log logger.Logger) {
	title := fmt.Sprintf("r/%s", subreddit)

	var err error
	if runErr != nil {
		err = n.SendError(title, runErr.Error())
	} else {
		err = n.SendSuccess(title, fmt.Sprintf("Downloaded %d files (%s)", stats.Downloaded, stats.StopReason))
	}
	if err != nil {
		log.WithError(err).Warn("Failed to send notification")
	}
}
