package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// defaultSettleTime is how long a page is left alone after load so that
// deferred scripts and CMP banners can appear.
const defaultSettleTime = 1500 * time.Millisecond

// ChromeOptions configures a headless Chrome page.
type ChromeOptions struct {
	// ExecPath is the Chrome binary. Empty lets chromedp search for it.
	ExecPath string

	// Proxy is passed to Chrome as --proxy-server.
	Proxy string

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Viewport is the window size. Zero means DefaultViewport.
	Viewport Size

	// Headers are sent with every request.
	Headers map[string]string

	// SettleTime is the wait after navigation and clicks.
	SettleTime time.Duration
}

// ChromePage is a Page backed by a headless Chrome tab.
type ChromePage struct {
	ctx         context.Context //nolint:containedctx // chromedp tab context lives as long as the page
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	viewport    Size
	settle      time.Duration

	mu        sync.Mutex
	current   string
	listeners []func(Request)
	closed    bool
}

// NewChromePage starts Chrome and opens one tab.
// The browser lives until Close is called or parent is cancelled.
func NewChromePage(parent context.Context, opts ChromeOptions) (*ChromePage, error) {
	viewport := opts.Viewport
	if viewport.Width == 0 || viewport.Height == 0 {
		viewport = DefaultViewport
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	settle := opts.SettleTime
	if settle == 0 {
		settle = defaultSettleTime
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.WindowSize(viewport.Width, viewport.Height),
		chromedp.UserAgent(ua),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	p := &ChromePage{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		viewport:    viewport,
		settle:      settle,
	}

	chromedp.ListenTarget(ctx, p.handleEvent)

	// The first Run starts the browser and binds it to ctx.
	err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(opts.Headers) == 0 {
				return nil
			}
			headers := make(network.Headers, len(opts.Headers))
			for k, v := range opts.Headers {
				headers[k] = v
			}
			return network.SetExtraHTTPHeaders(headers).Do(ctx)
		}),
	)
	if err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}

	return p, nil
}

func (p *ChromePage) handleEvent(ev any) {
	if e, ok := ev.(*network.EventRequestWillBeSent); ok {
		p.emit(Request{URL: e.Request.URL, ResourceType: ParseResourceType(string(e.Type))})
	}
}

func (p *ChromePage) emit(r Request) {
	p.mu.Lock()
	listeners := append([]func(Request){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(r)
	}
}

// runContext derives a context for one chromedp call from the tab context,
// bounded by the caller's deadline and cancellation.
func (p *ChromePage) runContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, nil, ErrPageClosed
	}

	runCtx, cancel := context.WithCancel(p.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		prev := cancel
		cancel = func() {
			cancelDeadline()
			prev()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// Navigate loads url and waits for the load event plus the settle time.
func (p *ChromePage) Navigate(ctx context.Context, url string) (*Response, error) {
	runCtx, cancel, err := p.runContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	var location string
	if err := chromedp.Run(runCtx, chromedp.Sleep(p.settle), chromedp.Location(&location)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	p.mu.Lock()
	p.current = location
	p.mu.Unlock()

	out := &Response{URL: location, Header: http.Header{}}
	if resp != nil {
		out.StatusCode = int(resp.Status)
		out.Header = chromeHeaders(resp.Headers)
	}
	return out, nil
}

// chromeHeaders converts DevTools headers. Chrome joins repeated headers
// with newlines.
func chromeHeaders(h network.Headers) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, part := range strings.Split(s, "\n") {
			out.Add(k, part)
		}
	}
	return out
}

// URL returns the document URL after the last navigation.
func (p *ChromePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// HTML returns the rendered DOM.
func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	runCtx, cancel, err := p.runContext(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read DOM: %w", err)
	}
	return html, nil
}

// Query evaluates selector in the page and snapshots the matches.
func (p *ChromePage) Query(ctx context.Context, selector string) ([]Element, error) {
	runCtx, cancel, err := p.runContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var raw []jsElement
	if err := chromedp.Run(runCtx, chromedp.Evaluate(queryScript(selector), &raw)); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	elements := make([]Element, 0, len(raw))
	for _, r := range raw {
		elements = append(elements, r.element())
	}
	return elements, nil
}

// Click dispatches a click on the first visible match.
func (p *ChromePage) Click(ctx context.Context, selector string) error {
	runCtx, cancel, err := p.runContext(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	var clicked bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(clickScript(selector), &clicked)); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}

	var location string
	if err := chromedp.Run(runCtx, chromedp.Sleep(p.settle), chromedp.Location(&location)); err == nil {
		p.mu.Lock()
		p.current = location
		p.mu.Unlock()
	}
	return nil
}

// Cookies returns all cookies of the browser, including third-party ones.
func (p *ChromePage) Cookies(ctx context.Context) ([]Cookie, error) {
	runCtx, cancel, err := p.runContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var cookies []Cookie
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		list, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		cookies = make([]Cookie, 0, len(list))
		for _, c := range list {
			cookies = append(cookies, chromeCookie(c))
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	return cookies, nil
}

func chromeCookie(c *network.Cookie) Cookie {
	out := Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: string(c.SameSite),
	}
	if !c.Session && c.Expires > 0 {
		sec := int64(c.Expires)
		nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
		exp := time.Unix(sec, nsec)
		out.Expires = &exp
	}
	return out
}

// Viewport returns the window size.
func (p *ChromePage) Viewport() Size {
	return p.viewport
}

// OnRequest registers a request listener. Listeners run on the chromedp
// event goroutine.
func (p *ChromePage) OnRequest(fn func(Request)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Close closes the tab and the browser.
func (p *ChromePage) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.allocCancel()
	return nil
}
