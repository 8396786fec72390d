package collector

import "context"

// Element is a snapshot of one node matched by a selector
type Element struct {
	Selector string   `json:"selector"`
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Href     string   `json:"href"`
	Links    []string `json:"links"`
	Markup   string   `json:"markup"`
	Visible  bool     `json:"visible"`
}

// Document is the read side of a browsing context.
type Document interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// Text returns the rendered body text, one visual line per line.
	Text(ctx context.Context) (string, error)
	Query(ctx context.Context, selector string) ([]Element, error)
}

// Tab is an isolated browsing context opened for one extraction.
type Tab interface {
	Document
	Close() error
}

// Page is the search-results context owned by a collection run.
type Page interface {
	Document
	ScrollTo(ctx context.Context, fraction float64) error
	ScrollBy(ctx context.Context, dy int) error
	ScrollHeight(ctx context.Context) (int, error)
	ScrollIntoView(ctx context.Context, selector string, index int) error
	Hover(ctx context.Context, selector string, index int) error
	OpenTab(ctx context.Context) (Tab, error)
}
