package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Options configures the shared Chrome session.
type Options struct {
	UserAgent string
	Locale    string
	Headless  bool
}

// ChromeSession runs a single Chrome for the process. The browser starts on
// the first NewContext call and is reused by every retrieval until Close.
// Per-call isolation comes from a fresh incognito browser context per call.
type ChromeSession struct {
	opts Options

	once        sync.Once
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	startErr    error
}

// NewChromeSession creates a session without launching the browser yet.
func NewChromeSession(opts Options) *ChromeSession {
	return &ChromeSession{opts: opts}
}

func (s *ChromeSession) start() {
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(s.opts.UserAgent),
		chromedp.Flag("lang", s.opts.Locale),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), flags...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	// Launch the browser eagerly so startup errors surface here rather than
	// in the middle of a retrieval.
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		s.startErr = fmt.Errorf("failed to launch browser: %w", err)
		return
	}

	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserStop = browserStop
}

// NewContext opens a tab inside a dedicated incognito browser context, so
// each retrieval gets its own cookie jar and storage. The context is disposed
// when the tab is closed.
func (s *ChromeSession) NewContext(ctx context.Context) (Context, error) {
	s.once.Do(s.start)
	if s.startErr != nil {
		return nil, s.startErr
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx, chromedp.WithNewBrowserContext())
	tab := &chromeContext{ctx: tabCtx, cancel: tabCancel, locale: s.opts.Locale}

	if err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": s.opts.Locale + ",en;q=0.9",
		}),
	); err != nil {
		tab.Close()
		return nil, fmt.Errorf("failed to prepare browsing context: %w", err)
	}

	return tab, nil
}

// Close shuts the shared browser down. Only the owner wired in main should
// call this; retrievals never do.
func (s *ChromeSession) Close() error {
	if s.browserStop != nil {
		s.browserStop()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}

type chromeContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	locale string
}

func (c *chromeContext) Navigate(ctx context.Context, url string) (*PageResponse, error) {
	runCtx, cancel := mergeDeadline(c.ctx, ctx)
	defer cancel()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from navigation")
	}

	var body string
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &body),
	); err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}

	return &PageResponse{Status: int(resp.Status), Body: body}, nil
}

const fetchScript = `fetch(%q, {
	headers: {"Accept": "application/json, text/plain, */*"},
	cache: "no-store",
	mode: "cors"
}).then(r => r.text().then(t => ({ok: r.ok, status: r.status, statusText: r.statusText, text: t})))
  .catch(e => ({ok: false, status: 0, statusText: "FetchError", text: String(e && e.message || e)}))`

func (c *chromeContext) Fetch(ctx context.Context, url string) (*FetchResponse, error) {
	runCtx, cancel := mergeDeadline(c.ctx, ctx)
	defer cancel()

	var out FetchResponse
	err := chromedp.Run(runCtx, chromedp.Evaluate(
		fmt.Sprintf(fetchScript, url),
		&out,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		},
	))
	if err != nil {
		return nil, fmt.Errorf("in-page fetch failed: %w", err)
	}
	return &out, nil
}

func (c *chromeContext) Close() error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

// mergeDeadline bounds the tab context by the caller's deadline, so retrieval
// timeouts cancel in-flight CDP commands.
func mergeDeadline(tabCtx, callCtx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := callCtx.Deadline(); ok {
		return context.WithDeadline(tabCtx, deadline)
	}
	return context.WithCancel(tabCtx)
}
