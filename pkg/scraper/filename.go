package scraper

import (
	"fmt"
	"path"
	"strings"
)

var titleReplacer = strings.NewReplacer(
	"/", "'",
	`"`, "'",
	"*", "'",
	"?", "'",
	`\`, "'",
	">", "'",
	"<", "'",
	":", "-",
	"|", "-",
	"\n", "-",
	"\t", "-",
)

// SanitizeTitle makes a post title safe to use inside a file name
func SanitizeTitle(title string) string {
	return titleReplacer.Replace(title)
}

// Extension returns the file extension of the last segment of rawURL with
// any query or fragment removed
func Extension(rawURL string) string {
	tail := rawURL[strings.LastIndex(rawURL, "/")+1:]
	if i := strings.IndexAny(tail, "?#"); i >= 0 {
		tail = tail[:i]
	}
	return path.Ext(tail)
}

// Filename builds "<id> - <title>[_<n>]<ext>". The index suffix is only
// added when the post resolved to more than one link.
func Filename(postID, title string, index int, multiple bool, rawURL string) string {
	suffix := ""
	if multiple {
		suffix = fmt.Sprintf("_%d", index)
	}
	return fmt.Sprintf("%s - %s%s%s", postID, SanitizeTitle(title), suffix, Extension(rawURL))
}
