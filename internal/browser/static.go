package browser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gdprscan/internal/urlutil"
)

// DefaultViewport is the viewport used when none is configured.
var DefaultViewport = Size{Width: 1366, Height: 768}

// defaultMaxBodySize limits how much of a document is read.
const defaultMaxBodySize = 10 * 1024 * 1024

// StaticPage is a Page backed by plain HTTP requests.
//
// It runs no JavaScript. Cookies come from Set-Cookie headers, request
// events from the sub-resources referenced in the HTML, and visibility from
// the hidden attribute and inline styles. Element boxes are always zero.
type StaticPage struct {
	client      *http.Client
	viewport    Size
	maxBodySize int64

	mu        sync.Mutex
	current   *url.URL
	doc       *goquery.Document
	rawHTML   string
	cookies   map[string]Cookie
	listeners []func(Request)
	closed    bool
}

// StaticOption configures a StaticPage.
type StaticOption func(*StaticPage)

// WithStaticViewport sets the reported viewport size.
func WithStaticViewport(size Size) StaticOption {
	return func(p *StaticPage) {
		p.viewport = size
	}
}

// WithMaxBodySize sets the maximum document size read per navigation.
func WithMaxBodySize(size int64) StaticOption {
	return func(p *StaticPage) {
		p.maxBodySize = size
	}
}

// NewStaticPage creates a page that fetches documents with client.
// The client's transport is wrapped to record Set-Cookie headers.
func NewStaticPage(client *http.Client, opts ...StaticOption) *StaticPage {
	p := &StaticPage{
		viewport:    DefaultViewport,
		maxBodySize: defaultMaxBodySize,
		cookies:     make(map[string]Cookie),
	}
	for _, opt := range opts {
		opt(p)
	}

	c := *client
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = &cookieRecorder{base: base, page: p}
	p.client = &c

	return p
}

// Navigate fetches url and parses it as the current document.
func (p *StaticPage) Navigate(ctx context.Context, rawURL string) (*Response, error) {
	if p.isClosed() {
		return nil, ErrPageClosed
	}

	p.emit(Request{URL: rawURL, ResourceType: ResourceDocument})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrNavigation, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %w", ErrNavigation, err)
	}

	final := resp.Request.URL
	p.mu.Lock()
	p.current = final
	p.doc = doc
	p.rawHTML = string(body)
	p.mu.Unlock()

	for _, r := range subresources(doc, final) {
		p.emit(r)
	}

	return &Response{
		URL:        final.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
	}, nil
}

// URL returns the current document URL.
func (p *StaticPage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ""
	}
	return p.current.String()
}

// HTML returns the raw HTML of the current document.
func (p *StaticPage) HTML(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", ErrPageClosed
	}
	return p.rawHTML, nil
}

// Query returns the elements matching selector in the current document.
func (p *StaticPage) Query(_ context.Context, selector string) ([]Element, error) {
	p.mu.Lock()
	doc := p.doc
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return nil, ErrPageClosed
	}
	if doc == nil {
		return nil, nil
	}

	var elements []Element
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, staticElement(doc, s))
	})
	return elements, nil
}

// Click follows the href of the first visible matching anchor. Clicking
// anything else has no effect without JavaScript.
func (p *StaticPage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	doc := p.doc
	current := p.current
	p.mu.Unlock()

	if p.isClosed() {
		return ErrPageClosed
	}
	if doc == nil {
		return ErrElementNotFound
	}

	var target *goquery.Selection
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if isStaticVisible(s) {
			target = s
			return false
		}
		return true
	})
	if target == nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}

	if goquery.NodeName(target) != "a" {
		return nil
	}
	href, _ := target.Attr("href")
	next := urlutil.Resolve(current, href)
	if next == "" {
		return nil
	}
	_, err := p.Navigate(ctx, next)
	return err
}

// Cookies returns the recorded cookies sorted by name and domain.
func (p *StaticPage) Cookies(_ context.Context) ([]Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPageClosed
	}

	now := time.Now()
	cookies := make([]Cookie, 0, len(p.cookies))
	for _, c := range p.cookies {
		if c.Expires != nil && c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, c)
	}
	sort.Slice(cookies, func(i, j int) bool {
		if cookies[i].Name != cookies[j].Name {
			return cookies[i].Name < cookies[j].Name
		}
		return cookies[i].Domain < cookies[j].Domain
	})
	return cookies, nil
}

// Viewport returns the configured viewport.
func (p *StaticPage) Viewport() Size {
	return p.viewport
}

// OnRequest registers a request listener.
func (p *StaticPage) OnRequest(fn func(Request)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Close marks the page closed and drops idle connections.
func (p *StaticPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.client.CloseIdleConnections()
	return nil
}

func (p *StaticPage) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *StaticPage) emit(r Request) {
	p.mu.Lock()
	listeners := append([]func(Request){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(r)
	}
}

// recordCookies stores the cookies set by a response from u.
func (p *StaticPage) recordCookies(u *url.URL, set []*http.Cookie) {
	if len(set) == 0 {
		return
	}
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, hc := range set {
		c := Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   cookieDomain(u, hc.Domain),
			Path:     cookiePath(u, hc.Path),
			HTTPOnly: hc.HttpOnly,
			Secure:   hc.Secure,
			SameSite: sameSiteName(hc.SameSite),
		}

		switch {
		case hc.MaxAge < 0:
			delete(p.cookies, c.Key())
			continue
		case hc.MaxAge > 0:
			exp := now.Add(time.Duration(hc.MaxAge) * time.Second)
			c.Expires = &exp
		case !hc.Expires.IsZero():
			exp := hc.Expires
			if exp.Before(now) {
				delete(p.cookies, c.Key())
				continue
			}
			c.Expires = &exp
		}
		p.cookies[c.Key()] = c
	}
}

// cookieDomain returns the Chrome style domain: a leading dot for domain
// cookies, the bare host for host-only cookies.
func cookieDomain(u *url.URL, domain string) string {
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" {
		return strings.ToLower(u.Hostname())
	}
	return "." + domain
}

// cookiePath applies the RFC 6265 default-path rule.
func cookiePath(u *url.URL, p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	dir := path.Dir(u.EscapedPath())
	if dir == "." || dir == "" || !strings.HasPrefix(u.EscapedPath(), "/") {
		return "/"
	}
	return dir
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return ""
	}
}

// cookieRecorder captures Set-Cookie headers of every response, including
// redirect hops, before the jar consumes them.
type cookieRecorder struct {
	base http.RoundTripper
	page *StaticPage
}

// RoundTrip implements http.RoundTripper.
func (t *cookieRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.page.recordCookies(req.URL, resp.Cookies())
	return resp, nil
}
