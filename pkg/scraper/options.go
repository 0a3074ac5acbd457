package scraper

import (
	"fmt"
	"regexp"

	"redditgrab/pkg/config"
	"redditgrab/pkg/reddit"
)

// Options controls which posts are downloaded and when a run stops
type Options struct {
	Subreddit    string
	MinScore     int
	SFWOnly      bool
	NSFWOnly     bool
	TitleRegex   *regexp.Regexp
	MaxDownloads int
	Update       bool

	// ResolveWorkers above 1 resolves the links of a page concurrently
	// before its downloads run in order
	ResolveWorkers int
}

// CompileTitleRegex compiles expr so that it must match at the start of a title
func CompileTitleRegex(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid title regex %q: %w", expr, err)
	}
	return re, nil
}

// OptionsFromConfig builds run options for subreddit from cfg
func OptionsFromConfig(subreddit string, cfg *config.Config) (Options, error) {
	re, err := CompileTitleRegex(cfg.Filter.TitleRegex)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Subreddit:      subreddit,
		MinScore:       cfg.Filter.MinScore,
		SFWOnly:        cfg.Filter.SFWOnly,
		NSFWOnly:       cfg.Filter.NSFWOnly,
		TitleRegex:     re,
		MaxDownloads:   cfg.Filter.MaxDownloads,
		Update:         cfg.Filter.Update,
		ResolveWorkers: cfg.Download.ResolveWorkers,
	}, nil
}

// skipReason returns why post is filtered out, or "" when it is kept.
// Filters are checked in a fixed order and the first one that fails wins.
func (o *Options) skipReason(post reddit.Post) string {
	switch {
	case post.Score < o.MinScore:
		return fmt.Sprintf("SCORE: %s has score of %d which is lower than required score of %d.",
			post.ID, post.Score, o.MinScore)
	case o.SFWOnly && post.Over18:
		return fmt.Sprintf("NSFW: %s is marked as NSFW.", post.ID)
	case o.NSFWOnly && !post.Over18:
		return fmt.Sprintf("Not NSFW, skipping %s", post.ID)
	case o.TitleRegex != nil && !o.TitleRegex.MatchString(post.Title):
		return "Regex match failed"
	default:
		return ""
	}
}
