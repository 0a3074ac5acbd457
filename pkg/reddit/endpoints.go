package reddit

import (
	"fmt"
	"strings"
)

const (
	// BaseURL is the default feed host
	BaseURL = "http://www.reddit.com"

	// ListingEndpoint is the path pattern for a subreddit's newest posts
	ListingEndpoint = "/r/%s/new/.json"

	// LinkPrefix is the fullname prefix reddit uses for link posts
	LinkPrefix = "t3_"
)

// GetListingURL constructs the URL for one page of a subreddit's newest posts.
// An empty after starts at the newest post.
func GetListingURL(baseURL, subreddit, after string) string {
	if baseURL == "" {
		baseURL = BaseURL
	}
	u := strings.TrimRight(baseURL, "/") + fmt.Sprintf(ListingEndpoint, subreddit)
	if after != "" {
		u = fmt.Sprintf("%s?after=%s%s", u, LinkPrefix, after)
	}
	return u
}

// GetPermalink returns the public URL of a post
func GetPermalink(baseURL, permalink string) string {
	if permalink == "" {
		return ""
	}
	if baseURL == "" {
		baseURL = BaseURL
	}
	return strings.TrimRight(baseURL, "/") + permalink
}

// IsValidSubreddit checks a subreddit name. Multireddits joined with '+' are accepted.
func IsValidSubreddit(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, "+") {
		if part == "" || len(part) > 21 {
			return false
		}
		for _, char := range part {
			if !((char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9') ||
				char == '_') {
				return false
			}
		}
	}
	return true
}

// SanitizeSubreddit strips a leading "/r/" or "r/" and trailing slashes or spaces
func SanitizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	return strings.TrimRight(name, "/ ")
}
