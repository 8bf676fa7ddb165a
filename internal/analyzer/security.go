package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

// maxCookieLifetimeMonths is the longest cookie lifetime CNIL accepts.
const maxCookieLifetimeMonths = 13

// mixedContentTypes are the sub-resource types that count as mixed content.
var mixedContentTypes = map[browser.ResourceType]bool{
	browser.ResourceScript:     true,
	browser.ResourceStylesheet: true,
	browser.ResourceImage:      true,
	browser.ResourceMedia:      true,
	browser.ResourceFont:       true,
	browser.ResourceXHR:        true,
	browser.ResourceFetch:      true,
}

// authCookiePattern matches names of cookies that carry credentials and
// therefore need HttpOnly.
var authCookiePattern = regexp.MustCompile(`(?i)sess|auth|token|login|jwt|sid|csrf|xsrf|remember`)

// SecurityAnalyzer checks transport security and cookie attributes.
type SecurityAnalyzer struct {
	probe
	now func() time.Time

	mu           sync.Mutex
	httpsEnabled bool
	redirects    *bool
	mixed        []string
	mixedSeen    map[string]bool
	cookies      model.CookieSecurityInfo
}

// NewSecurityAnalyzer creates a security analyzer.
func NewSecurityAnalyzer(o Options) *SecurityAnalyzer {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return &SecurityAnalyzer{
		probe:     newProbe(NameSecurity, o),
		now:       now,
		mixedSeen: make(map[string]bool),
	}
}

// Name returns the analyzer name.
func (a *SecurityAnalyzer) Name() string { return NameSecurity }

// Reset clears captured state.
func (a *SecurityAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.httpsEnabled = false
	a.redirects = nil
	a.mixed = nil
	a.mixedSeen = make(map[string]bool)
	a.cookies = model.CookieSecurityInfo{}
}

// OnRequest records plain-HTTP sub-resources. Whether they constitute mixed
// content is decided when the result is written, once HTTPS is known.
func (a *SecurityAnalyzer) OnRequest(_ *model.ScanContext, req browser.Request) {
	if !mixedContentTypes[req.ResourceType] {
		return
	}
	if !strings.HasPrefix(strings.ToLower(req.URL), "http://") {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mixedSeen[req.URL] || len(a.mixed) >= model.MaxMixedContentURLs {
		return
	}
	a.mixedSeen[req.URL] = true
	a.mixed = append(a.mixed, req.URL)
}

// OnBeforeConsent takes HTTPS from the document URL after redirects.
func (a *SecurityAnalyzer) OnBeforeConsent(_ context.Context, page browser.Page, _ *model.ScanContext) {
	https := urlutil.IsHTTPS(page.URL())
	a.mu.Lock()
	a.httpsEnabled = https
	a.mu.Unlock()
}

// OnAfterConsent checks the redirect to HTTPS and the cookie attributes.
func (a *SecurityAnalyzer) OnAfterConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	var redirects *bool
	if strings.HasPrefix(strings.ToLower(sc.URL), "http://") {
		r := urlutil.IsHTTPS(page.URL())
		redirects = &r
	}

	pctx, cancel := a.context(ctx)
	defer cancel()
	cookies, err := page.Cookies(pctx)
	if err != nil {
		a.failed(sc, "cookies", err)
	}
	security := CheckCookieSecurity(cookies, a.now())

	a.mu.Lock()
	defer a.mu.Unlock()
	a.redirects = redirects
	a.cookies = security
}

// Info returns the security summary.
func (a *SecurityAnalyzer) Info() model.SecurityInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	info := model.SecurityInfo{
		Checked:          true,
		HTTPSEnabled:     a.httpsEnabled,
		RedirectsToHTTPS: a.redirects,
		CookieSecurity:   a.cookies,
	}
	if a.httpsEnabled && len(a.mixed) > 0 {
		info.MixedContent = model.MixedContentInfo{
			Found: true,
			URLs:  append([]string(nil), a.mixed...),
		}
	}
	return info
}

// Contribute writes the security summary.
func (a *SecurityAnalyzer) Contribute(r *model.ScanResult) {
	r.Security = a.Info()
}

// CheckCookieSecurity counts cookie attribute problems. HttpOnly is only
// required for credential-like cookies; scripts legitimately read the rest.
func CheckCookieSecurity(cookies []browser.Cookie, now time.Time) model.CookieSecurityInfo {
	var info model.CookieSecurityInfo
	limit := now.AddDate(0, maxCookieLifetimeMonths, 0)

	note := func(format string, args ...any) {
		if len(info.Issues) < model.MaxCookieSecurityIssues {
			info.Issues = append(info.Issues, fmt.Sprintf(format, args...))
		}
	}

	for _, c := range cookies {
		if !c.Secure {
			info.WithoutSecure++
			note("%s: missing Secure flag", c.Name)
		}
		if !c.HTTPOnly && authCookiePattern.MatchString(c.Name) {
			info.WithoutHTTPOnly++
			note("%s: missing HttpOnly flag", c.Name)
		}
		if c.SameSite == "" {
			info.WithoutSameSite++
			note("%s: missing SameSite attribute", c.Name)
		}
		if c.Expires != nil && c.Expires.After(limit) {
			info.ExcessiveExpiration++
			note("%s: expires %s, beyond %d months", c.Name, c.Expires.Format(time.DateOnly), maxCookieLifetimeMonths)
		}
	}
	return info
}
