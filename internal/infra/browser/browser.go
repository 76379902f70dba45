// Package browser abstracts the headless-browser capability the retrieval
// engine drives. The production implementation runs Chrome through chromedp;
// tests inject a fake session.
package browser

import "context"

// Session owns one shared browser for the whole process. It is started
// lazily on first use and is safe for reuse across retrievals: callers open
// their own isolated browsing context per call and the session itself holds
// no request-specific state.
type Session interface {
	// NewContext opens an isolated browsing context (own cookies/storage).
	NewContext(ctx context.Context) (Context, error)
}

// Context is one isolated browsing context. It must be closed on every exit
// path of a retrieval to avoid unbounded resource growth.
type Context interface {
	// Navigate loads url and returns the resulting HTTP status and body text.
	Navigate(ctx context.Context, url string) (*PageResponse, error)

	// Fetch issues an in-page, same-origin-style fetch of url from the
	// currently loaded document.
	Fetch(ctx context.Context, url string) (*FetchResponse, error)

	// Close tears the context down. Safe to call multiple times.
	Close() error
}

// PageResponse is the outcome of a direct navigation.
type PageResponse struct {
	Status int
	Body   string
}

// FetchResponse is the outcome of an in-page fetch. OK mirrors the page's
// fetch response.ok; a rejected fetch promise surfaces as OK=false, Status=0
// with the error text in Body.
type FetchResponse struct {
	OK         bool   `json:"ok"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Body       string `json:"text"`
}
