package analyzer

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

// Header weights of the security header score. They sum to 100.
const (
	weightCSP                 = 25
	weightHSTS                = 25
	weightXFrameOptions       = 15
	weightXContentTypeOptions = 15
	weightReferrerPolicy      = 10
	weightPermissionsPolicy   = 10

	penaltyWeakness = 5
)

// HeadersAnalyzer decodes the security headers of the main document.
type HeadersAnalyzer struct {
	mu   sync.Mutex
	info model.SecurityHeadersInfo
}

// NewHeadersAnalyzer creates a headers analyzer.
func NewHeadersAnalyzer() *HeadersAnalyzer {
	return &HeadersAnalyzer{}
}

// Name returns the analyzer name.
func (a *HeadersAnalyzer) Name() string { return NameHeaders }

// Reset clears the decoded headers.
func (a *HeadersAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = model.SecurityHeadersInfo{}
}

// OnResponse decodes the response headers.
func (a *HeadersAnalyzer) OnResponse(_ *model.ScanContext, resp *browser.Response) {
	if resp == nil {
		return
	}
	info := AnalyzeHeaders(resp.Header)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = info
}

// Contribute writes the header analysis.
func (a *HeadersAnalyzer) Contribute(r *model.ScanResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r.SecurityHeaders = a.info
}

// AnalyzeHeaders decodes security headers and computes the header score.
func AnalyzeHeaders(h http.Header) model.SecurityHeadersInfo {
	info := model.SecurityHeadersInfo{
		Checked:             true,
		CSP:                 ParseCSP(h.Get("Content-Security-Policy")),
		HSTS:                ParseHSTS(h.Get("Strict-Transport-Security")),
		XFrameOptions:       headerValue(h, "X-Frame-Options"),
		XContentTypeOptions: headerValue(h, "X-Content-Type-Options"),
		ReferrerPolicy:      headerValue(h, "Referrer-Policy"),
		PermissionsPolicy:   headerValue(h, "Permissions-Policy"),
	}
	info.Score = headerScore(info)
	return info
}

func headerValue(h http.Header, name string) model.HeaderValue {
	v := strings.TrimSpace(h.Get(name))
	return model.HeaderValue{Present: v != "", Value: v}
}

func headerScore(info model.SecurityHeadersInfo) int {
	score := 0
	for _, w := range []struct {
		present bool
		weight  int
	}{
		{info.CSP.Present, weightCSP},
		{info.HSTS.Present, weightHSTS},
		{info.XFrameOptions.Present, weightXFrameOptions},
		{info.XContentTypeOptions.Present, weightXContentTypeOptions},
		{info.ReferrerPolicy.Present, weightReferrerPolicy},
		{info.PermissionsPolicy.Present, weightPermissionsPolicy},
	} {
		if w.present {
			score += w.weight
		}
	}

	if info.CSP.UnsafeInline {
		score -= penaltyWeakness
	}
	if info.CSP.UnsafeEval {
		score -= penaltyWeakness
	}
	if info.HSTS.IsWeak() {
		score -= penaltyWeakness
	}
	return min(max(score, 0), 100)
}

// ParseCSP decodes a Content-Security-Policy value. Directive names are
// case-insensitive; source keywords are matched quoted.
func ParseCSP(raw string) model.CSPInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.CSPInfo{}
	}

	csp := model.CSPInfo{Present: true, Raw: raw}
	for _, directive := range strings.Split(raw, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		switch name {
		case "default-src":
			csp.HasDefaultSrc = true
		case "script-src":
			csp.HasScriptSrc = true
		}
		if name != "default-src" && name != "script-src" && name != "script-src-elem" && name != "style-src" {
			continue
		}
		for _, src := range fields[1:] {
			switch strings.ToLower(src) {
			case "'unsafe-inline'":
				csp.UnsafeInline = true
			case "'unsafe-eval'":
				csp.UnsafeEval = true
			}
		}
	}
	return csp
}

// ParseHSTS decodes a Strict-Transport-Security value. A missing or
// malformed max-age is zero.
func ParseHSTS(raw string) model.HSTSInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.HSTSInfo{}
	}

	hsts := model.HSTSInfo{Present: true}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		name, value, _ := strings.Cut(part, "=")
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "max-age":
			v := strings.Trim(strings.TrimSpace(value), `"`)
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				hsts.MaxAge = n
			}
		case "includesubdomains":
			hsts.IncludeSubDomains = true
		case "preload":
			hsts.Preload = true
		}
	}
	return hsts
}
