package analyzer

import (
	"context"
	"sync"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/patterns"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

// CookieAnalyzer captures the cookie jar before and after consent.
type CookieAnalyzer struct {
	probe

	mu     sync.Mutex
	before []model.CookieInfo
	after  []model.CookieInfo
}

// NewCookieAnalyzer creates a cookie analyzer.
func NewCookieAnalyzer(o Options) *CookieAnalyzer {
	return &CookieAnalyzer{probe: newProbe(NameCookies, o)}
}

// Name returns the analyzer name.
func (a *CookieAnalyzer) Name() string { return NameCookies }

// Reset clears captured cookies.
func (a *CookieAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.before = nil
	a.after = nil
}

// OnBeforeConsent captures the jar with consent not yet given.
func (a *CookieAnalyzer) OnBeforeConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	cookies := a.capture(ctx, page, sc)
	a.mu.Lock()
	a.before = cookies
	a.mu.Unlock()
}

// OnAfterConsent captures the jar again. Cookies already present before
// consent keep their before-consent flag through the merge.
func (a *CookieAnalyzer) OnAfterConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	cookies := a.capture(ctx, page, sc)
	a.mu.Lock()
	a.after = cookies
	a.mu.Unlock()
}

func (a *CookieAnalyzer) capture(ctx context.Context, page browser.Page, sc *model.ScanContext) []model.CookieInfo {
	ctx, cancel := a.context(ctx)
	defer cancel()

	raw, err := page.Cookies(ctx)
	if err != nil {
		a.failed(sc, "cookies", err)
		return nil
	}

	beforeConsent := !sc.ConsentGiven()
	cookies := make([]model.CookieInfo, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, cookieInfo(c, beforeConsent))
	}
	return cookies
}

func cookieInfo(c browser.Cookie, beforeConsent bool) model.CookieInfo {
	return model.CookieInfo{
		Name:             c.Name,
		Domain:           c.Domain,
		Path:             c.Path,
		Expires:          c.Expires,
		HTTPOnly:         c.HTTPOnly,
		Secure:           c.Secure,
		SameSite:         c.SameSite,
		Category:         patterns.ClassifyCookie(c.Name),
		SetBeforeConsent: beforeConsent,
	}
}

// Cookies returns the merged cookie set.
func (a *CookieAnalyzer) Cookies() []model.CookieInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return urlutil.MergeCookies(a.before, a.after)
}

// Contribute writes the merged cookie set.
func (a *CookieAnalyzer) Contribute(r *model.ScanResult) {
	r.Cookies = a.Cookies()
}
