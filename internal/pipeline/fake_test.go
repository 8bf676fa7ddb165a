package pipeline

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

var errFake = errors.New("fake failure")

// fakePage is a Page that returns a canned response and emits canned
// requests on navigation.
type fakePage struct {
	mu        sync.Mutex
	finalURL  string
	status    int
	header    http.Header
	navErr    error
	requests  []browser.Request
	listeners []func(browser.Request)
	current   string
	navigated []string
	closed    bool
}

func (p *fakePage) Navigate(ctx context.Context, url string) (*browser.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.navErr != nil {
		return nil, p.navErr
	}

	p.mu.Lock()
	final := p.finalURL
	if final == "" || len(p.navigated) > 0 {
		final = url
	}
	p.current = final
	p.navigated = append(p.navigated, url)
	listeners := append([]func(browser.Request){}, p.listeners...)
	p.mu.Unlock()

	for _, r := range p.requests {
		for _, fn := range listeners {
			fn(r)
		}
	}

	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	return &browser.Response{URL: final, StatusCode: status, Header: p.header}, nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakePage) HTML(context.Context) (string, error) { return "<html></html>", nil }

func (p *fakePage) Query(context.Context, string) ([]browser.Element, error) { return nil, nil }

func (p *fakePage) Click(context.Context, string) error { return browser.ErrElementNotFound }

func (p *fakePage) Cookies(context.Context) ([]browser.Cookie, error) { return nil, nil }

func (p *fakePage) Viewport() browser.Size { return browser.Size{Width: 1280, Height: 800} }

func (p *fakePage) OnRequest(fn func(browser.Request)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePage) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// recorder implements every hook and records the calls in order.
type recorder struct {
	name   string
	accept bool

	mu       sync.Mutex
	calls    []string
	requests []browser.Request
	consent  map[string]bool
	response *browser.Response
}

func newRecorder(name string, accept bool) *recorder {
	return &recorder{name: name, accept: accept, consent: make(map[string]bool)}
}

func (r *recorder) record(call string, sc *model.ScanContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	r.consent[call] = sc.ConsentGiven()
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Reset() {}

func (r *recorder) OnResponse(sc *model.ScanContext, resp *browser.Response) {
	r.record("response", sc)
	r.mu.Lock()
	r.response = resp
	r.mu.Unlock()
}

func (r *recorder) OnRequest(_ *model.ScanContext, req browser.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *recorder) OnBeforeConsent(_ context.Context, _ browser.Page, sc *model.ScanContext) {
	r.record("before", sc)
}

func (r *recorder) AcceptConsent(_ context.Context, _ browser.Page, sc *model.ScanContext) bool {
	r.record("accept", sc)
	return r.accept
}

func (r *recorder) OnAfterConsent(_ context.Context, _ browser.Page, sc *model.ScanContext) {
	r.record("after", sc)
}

func (r *recorder) OnAnalyze(_ context.Context, _ browser.Page, sc *model.ScanContext) {
	r.record("analyze", sc)
}

func (r *recorder) Contribute(result *model.ScanResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "contribute")
	result.ThirdPartyRequests.Total += len(r.requests)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
