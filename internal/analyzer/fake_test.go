package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gdprscan/internal/browser"
)

// fakePage serves canned HTML per URL and evaluates selectors with goquery.
// Element geometry comes from boxes, keyed by element id.
type fakePage struct {
	mu        sync.Mutex
	current   string
	pages     map[string]string
	headers   http.Header
	boxes     map[string]browser.Rect
	viewport  browser.Size
	cookies   []browser.Cookie
	cookieErr error
	clicks    []string
	navigated []string
	onRequest []func(browser.Request)
}

func newFakePage(url, html string) *fakePage {
	return &fakePage{
		current:  url,
		pages:    map[string]string{url: html},
		headers:  http.Header{},
		boxes:    map[string]browser.Rect{},
		viewport: browser.Size{Width: 1000, Height: 800},
	}
}

func (p *fakePage) Navigate(_ context.Context, url string) (*browser.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pages[url]; !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrNavigation, url)
	}
	p.current = url
	p.navigated = append(p.navigated, url)
	return &browser.Response{URL: url, StatusCode: http.StatusOK, Header: p.headers}, nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakePage) HTML(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages[p.current], nil
}

func (p *fakePage) doc() (*goquery.Document, error) {
	html, _ := p.HTML(context.Background())
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *fakePage) Query(_ context.Context, selector string) ([]browser.Element, error) {
	doc, err := p.doc()
	if err != nil {
		return nil, err
	}
	var elements []browser.Element
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		attrs := make(map[string]string)
		for _, a := range s.Nodes[0].Attr {
			attrs[strings.ToLower(a.Key)] = a.Val
		}
		_, hidden := attrs["hidden"]
		_, checked := attrs["checked"]
		label := attrs["aria-label"]
		if id := attrs["id"]; id != "" {
			if l := doc.Find(fmt.Sprintf(`label[for="%s"]`, id)); l.Length() > 0 {
				label = strings.TrimSpace(l.Text())
			}
		}
		p.mu.Lock()
		box := p.boxes[attrs["id"]]
		p.mu.Unlock()
		elements = append(elements, browser.Element{
			Tag:     goquery.NodeName(s),
			Text:    strings.Join(strings.Fields(s.Text()), " "),
			Attrs:   attrs,
			Visible: !hidden,
			Box:     box,
			Checked: checked,
			Label:   label,
		})
	})
	return elements, nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	elements, err := p.Query(ctx, selector)
	if err != nil {
		return err
	}
	if len(elements) == 0 {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, selector)
	return nil
}

func (p *fakePage) Cookies(_ context.Context) ([]browser.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cookieErr != nil {
		return nil, p.cookieErr
	}
	return append([]browser.Cookie(nil), p.cookies...), nil
}

func (p *fakePage) Viewport() browser.Size { return p.viewport }

func (p *fakePage) OnRequest(fn func(browser.Request)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRequest = append(p.onRequest, fn)
}

func (p *fakePage) Close() error { return nil }

func (p *fakePage) setCookies(cookies ...browser.Cookie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cookies = cookies
}

func (p *fakePage) clicked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

var errFake = errors.New("fake failure")
