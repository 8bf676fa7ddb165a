package model

import "time"

// CookieCategory is the purpose category of a cookie.
type CookieCategory string

const (
	// CookieNecessary cookies are strictly required (session, CSRF, load balancing).
	// They never need consent.
	CookieNecessary CookieCategory = "necessary"

	// CookieAnalytics cookies measure visitor behaviour.
	CookieAnalytics CookieCategory = "analytics"

	// CookieMarketing cookies are used for advertising and retargeting.
	CookieMarketing CookieCategory = "marketing"

	// CookieUnknown cookies could not be classified.
	CookieUnknown CookieCategory = "unknown"
)

// CookieInfo describes a cookie observed during a scan.
type CookieInfo struct {
	Name     string         `json:"name"`
	Domain   string         `json:"domain"`
	Path     string         `json:"path"`
	Expires  *time.Time     `json:"expires,omitempty"`
	HTTPOnly bool           `json:"http_only"`
	Secure   bool           `json:"secure"`
	SameSite string         `json:"same_site,omitempty"`
	Category CookieCategory `json:"category"`

	// SetBeforeConsent is fixed when the cookie is first observed.
	// A cookie seen before consent keeps true even if it is seen again later.
	SetBeforeConsent bool `json:"set_before_consent"`
}

// IsSession reports whether the cookie has no expiry.
func (c CookieInfo) IsSession() bool {
	return c.Expires == nil
}

// Key returns the identity of the cookie within a jar.
func (c CookieInfo) Key() string {
	return c.Name + "|" + c.Domain + "|" + c.Path
}
