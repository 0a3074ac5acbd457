// Package deviantart finds the full-size image on a DeviantArt page.
package deviantart

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContentClass marks the main image of a deviation page
const ContentClass = "dev-content-normal"

// ParseImageSource returns the src of the first a or img element whose
// class is exactly ContentClass. found is false when the page has none.
func ParseImageSource(page []byte) (src string, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse deviantart page: %w", err)
	}

	doc.Find("a, img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		if !ok || class != ContentClass {
			return true
		}
		if v, ok := s.Attr("src"); ok {
			src, found = v, true
			return false
		}
		return true
	})

	return src, found, nil
}

// IsDirectImage reports whether u already points at the image file
func IsDirectImage(u string) bool {
	return strings.HasSuffix(u, ".jpg")
}
