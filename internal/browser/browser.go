// Package browser defines the page and session abstractions the tools drive.
// The chromedp implementation lives in the chrome subpackage.
package browser

import "context"

// Link is an anchor projected to its visible text and raw href attribute.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Page is a single browsing unit owned by one tool invocation.
type Page interface {
	// Navigate loads url and returns once network activity has settled.
	Navigate(ctx context.Context, url string) error
	// Screenshot renders the viewport, or the whole scrollable page when fullPage is set, as PNG.
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	// ScrollHeight reports the current scrollable height of the document.
	ScrollHeight(ctx context.Context) (int, error)
	// ScrollBy scrolls the window down by dy pixels.
	ScrollBy(ctx context.Context, dy int) error
	// HTML returns the serialized rendered document, doctype included.
	HTML(ctx context.Context) (string, error)
	// Text returns the visible text of the document body.
	Text(ctx context.Context) (string, error)
	// Links returns every anchor in document order, unfiltered.
	Links(ctx context.Context) ([]Link, error)
	Close() error
}

// Provider hands out fresh pages from a shared browser session.
type Provider interface {
	NewPage(ctx context.Context) (Page, error)
}
