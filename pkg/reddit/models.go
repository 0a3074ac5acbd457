package reddit

// Listing represents the top-level response of a listing endpoint
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData holds one page of children
type ListingData struct {
	After    string  `json:"after"`
	Before   string  `json:"before"`
	Children []Child `json:"children"`
}

// Child wraps a single post
type Child struct {
	Kind string `json:"kind"`
	Data Post   `json:"data"`
}

// Post is a single feed item
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
	Over18    bool   `json:"over_18"`
	Domain    string `json:"domain"`
	Permalink string `json:"permalink"`
}

// Posts returns the page's posts in listing order
func (l *Listing) Posts() []Post {
	posts := make([]Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts
}
