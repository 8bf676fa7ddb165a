package model

import "time"

// MaxMixedContentURLs caps the number of insecure sub-resource URLs kept.
const MaxMixedContentURLs = 20

// MaxCookieSecurityIssues caps the itemized cookie security explanations.
const MaxCookieSecurityIssues = 20

// SecurityInfo describes transport security and cookie attributes.
type SecurityInfo struct {
	// Checked is false when the security analyzer did not run.
	Checked      bool `json:"checked"`
	HTTPSEnabled bool `json:"https_enabled"`

	// RedirectsToHTTPS is only evaluated when the input URL was http.
	// It is nil when the check did not run.
	RedirectsToHTTPS *bool `json:"redirects_to_https,omitempty"`

	MixedContent   MixedContentInfo   `json:"mixed_content"`
	CookieSecurity CookieSecurityInfo `json:"cookie_security"`
}

// MixedContentInfo lists HTTP sub-resources loaded by an HTTPS page.
type MixedContentInfo struct {
	Found bool     `json:"found"`
	URLs  []string `json:"urls,omitempty"`
}

// CookieSecurityInfo counts cookies with weak security attributes.
type CookieSecurityInfo struct {
	WithoutSecure       int      `json:"without_secure"`
	WithoutHTTPOnly     int      `json:"without_http_only"`
	WithoutSameSite     int      `json:"without_same_site"`
	ExcessiveExpiration int      `json:"excessive_expiration"`
	Issues              []string `json:"issues,omitempty"`
}

// CSPInfo is the decomposed Content-Security-Policy header.
type CSPInfo struct {
	Present       bool   `json:"present"`
	Raw           string `json:"raw,omitempty"`
	HasDefaultSrc bool   `json:"has_default_src"`
	HasScriptSrc  bool   `json:"has_script_src"`
	UnsafeInline  bool   `json:"unsafe_inline"`
	UnsafeEval    bool   `json:"unsafe_eval"`
}

// IsWeak reports whether the policy allows inline or eval'd scripts or has
// no script fallback.
func (c CSPInfo) IsWeak() bool {
	if !c.Present {
		return false
	}
	return c.UnsafeInline || c.UnsafeEval || (!c.HasDefaultSrc && !c.HasScriptSrc)
}

// HSTSInfo is the decomposed Strict-Transport-Security header.
type HSTSInfo struct {
	Present           bool  `json:"present"`
	MaxAge            int64 `json:"max_age"`
	IncludeSubDomains bool  `json:"include_sub_domains"`
	Preload           bool  `json:"preload"`
}

// MinHSTSMaxAge is the shortest max-age (180 days) not considered weak.
const MinHSTSMaxAge = 15552000

// IsWeak reports whether HSTS is present but too short-lived.
func (h HSTSInfo) IsWeak() bool {
	return h.Present && h.MaxAge < MinHSTSMaxAge
}

// HeaderValue is a single header that only needs to be present.
type HeaderValue struct {
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// SecurityHeadersInfo describes the response security headers.
type SecurityHeadersInfo struct {
	Checked             bool        `json:"checked"`
	CSP                 CSPInfo     `json:"csp"`
	HSTS                HSTSInfo    `json:"hsts"`
	XFrameOptions       HeaderValue `json:"x_frame_options"`
	XContentTypeOptions HeaderValue `json:"x_content_type_options"`
	ReferrerPolicy      HeaderValue `json:"referrer_policy"`
	PermissionsPolicy   HeaderValue `json:"permissions_policy"`

	// Score is a weighted 0-100 header score.
	Score int `json:"score"`
}

// MissingCount returns how many of the six tracked headers are absent.
func (h SecurityHeadersInfo) MissingCount() int {
	missing := 0
	for _, present := range []bool{
		h.CSP.Present,
		h.HSTS.Present,
		h.XFrameOptions.Present,
		h.XContentTypeOptions.Present,
		h.ReferrerPolicy.Present,
		h.PermissionsPolicy.Present,
	} {
		if !present {
			missing++
		}
	}
	return missing
}

// SSLCertificateInfo describes the TLS certificate and handshake.
type SSLCertificateInfo struct {
	Checked bool `json:"checked"`

	// Valid reports whether the chain verified against the system roots.
	Valid              bool   `json:"valid"`
	AuthorizationError string `json:"authorization_error,omitempty"`

	Issuer          string    `json:"issuer,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidTo         time.Time `json:"valid_to"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	Protocol        string    `json:"protocol,omitempty"`
	Cipher          string    `json:"cipher,omitempty"`
	SelfSigned      bool      `json:"self_signed"`

	OCSPStapled bool   `json:"ocsp_stapled"`
	OCSPStatus  string `json:"ocsp_status,omitempty"`
}
