package issues

import (
	"fmt"

	"github.com/nao1215/gdprscan/internal/model"
)

// weakProtocols are protocol versions no longer considered secure.
var weakProtocols = map[string]bool{
	"SSLv3":   true,
	"TLSv1":   true,
	"TLSv1.1": true,
}

// minMissingForCollapse is the number of missing security headers from which
// a single NO_SECURITY_HEADERS issue replaces the per-header issues.
const minMissingForCollapse = 5

func securityIssues(r *model.ScanResult) []model.ScanIssue {
	s := r.Security
	if !s.Checked {
		return nil
	}

	var issues []model.ScanIssue

	if !s.HTTPSEnabled {
		issues = append(issues, model.NewIssue(
			model.CodeNoHTTPS,
			model.RiskCritical,
			"No HTTPS",
			"The site is served over plain HTTP. Personal data and cookies travel unencrypted.",
			"Serve the site over HTTPS only, with a valid certificate.",
		))
	}
	if s.RedirectsToHTTPS != nil && !*s.RedirectsToHTTPS {
		issues = append(issues, model.NewIssue(
			model.CodeNoHTTPSRedirect,
			model.RiskMedium,
			"HTTP is not redirected to HTTPS",
			"Requests to the http:// address are not redirected to HTTPS.",
			"Redirect all HTTP requests to HTTPS with a permanent redirect.",
		))
	}
	if s.MixedContent.Found {
		issues = append(issues, model.NewIssue(
			model.CodeMixedContent,
			model.RiskMedium,
			"Mixed content",
			fmt.Sprintf("The HTTPS page loads %d resources over HTTP.", len(s.MixedContent.URLs)),
			"Load every sub-resource over HTTPS.",
		))
	}

	c := s.CookieSecurity
	if c.WithoutSecure > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeCookiesNotSecure,
			model.RiskMedium,
			"Cookies without Secure flag",
			fmt.Sprintf("%d cookies are sent without the Secure attribute.", c.WithoutSecure),
			"Set the Secure attribute on all cookies.",
		))
	}
	if c.WithoutHTTPOnly > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeCookiesNotHTTPOnly,
			model.RiskMedium,
			"Session cookies readable by scripts",
			fmt.Sprintf("%d authentication or session cookies lack the HttpOnly attribute.", c.WithoutHTTPOnly),
			"Set HttpOnly on session and authentication cookies.",
		))
	}
	if c.WithoutSameSite > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeCookiesNoSameSite,
			model.RiskLow,
			"Cookies without SameSite",
			fmt.Sprintf("%d cookies have no SameSite attribute.", c.WithoutSameSite),
			"Set SameSite=Lax or SameSite=Strict unless the cookie must be sent cross-site.",
		))
	}
	if c.ExcessiveExpiration > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeCookiesExcessiveExpiration,
			model.RiskLow,
			"Cookies with excessive lifetime",
			fmt.Sprintf("%d cookies expire more than 13 months from now.", c.ExcessiveExpiration),
			"Limit cookie lifetime to at most 13 months.",
		))
	}
	return issues
}

func headerIssues(r *model.ScanResult) []model.ScanIssue {
	h := r.SecurityHeaders
	if !h.Checked {
		return nil
	}

	if missing := h.MissingCount(); missing >= minMissingForCollapse {
		return []model.ScanIssue{model.NewIssue(
			model.CodeNoSecurityHeaders,
			model.RiskHigh,
			"Security headers missing",
			fmt.Sprintf("%d of 6 recommended security headers are missing (score %d/100).", missing, h.Score),
			"Configure Content-Security-Policy, Strict-Transport-Security, X-Frame-Options, X-Content-Type-Options, Referrer-Policy and Permissions-Policy.",
		)}
	}

	var issues []model.ScanIssue
	switch {
	case !h.CSP.Present:
		issues = append(issues, model.NewIssue(
			model.CodeMissingCSP,
			model.RiskMedium,
			"No Content-Security-Policy",
			"The response has no Content-Security-Policy header, so injected scripts can load from anywhere.",
			"Add a Content-Security-Policy that restricts script sources.",
		))
	case h.CSP.IsWeak():
		issues = append(issues, model.NewIssue(
			model.CodeWeakCSP,
			model.RiskLow,
			"Weak Content-Security-Policy",
			"The Content-Security-Policy allows 'unsafe-inline' or 'unsafe-eval', or defines no script source.",
			"Remove unsafe keywords and set default-src or script-src.",
		))
	}
	switch {
	case !h.HSTS.Present:
		issues = append(issues, model.NewIssue(
			model.CodeMissingHSTS,
			model.RiskMedium,
			"No Strict-Transport-Security",
			"The response has no Strict-Transport-Security header.",
			"Send Strict-Transport-Security with a max-age of at least 180 days.",
		))
	case h.HSTS.IsWeak():
		issues = append(issues, model.NewIssue(
			model.CodeWeakHSTS,
			model.RiskLow,
			"Short Strict-Transport-Security max-age",
			fmt.Sprintf("HSTS max-age is %d seconds, below the recommended %d.", h.HSTS.MaxAge, model.MinHSTSMaxAge),
			"Raise max-age to at least 15552000 seconds.",
		))
	}
	if !h.XFrameOptions.Present {
		issues = append(issues, model.NewIssue(
			model.CodeMissingXFrameOptions,
			model.RiskLow,
			"No X-Frame-Options",
			"The page can be framed by other sites.",
			"Send X-Frame-Options: DENY or SAMEORIGIN, or a frame-ancestors CSP directive.",
		))
	}
	if !h.XContentTypeOptions.Present {
		issues = append(issues, model.NewIssue(
			model.CodeMissingXContentTypeOptions,
			model.RiskLow,
			"No X-Content-Type-Options",
			"Browsers may sniff the content type of responses.",
			"Send X-Content-Type-Options: nosniff.",
		))
	}
	if !h.ReferrerPolicy.Present {
		issues = append(issues, model.NewIssue(
			model.CodeMissingReferrerPolicy,
			model.RiskLow,
			"No Referrer-Policy",
			"Full URLs may leak to third parties through the Referer header.",
			"Send Referrer-Policy: strict-origin-when-cross-origin or stricter.",
		))
	}
	if !h.PermissionsPolicy.Present {
		issues = append(issues, model.NewIssue(
			model.CodeMissingPermissionsPolicy,
			model.RiskLow,
			"No Permissions-Policy",
			"Embedded content may request camera, microphone or location access.",
			"Send a Permissions-Policy that disables unused browser features.",
		))
	}
	return issues
}

func tlsIssues(r *model.ScanResult) []model.ScanIssue {
	c := r.SSLCertificate
	if !c.Checked {
		return nil
	}

	var issues []model.ScanIssue
	switch {
	case c.SelfSigned:
		issues = append(issues, model.NewIssue(
			model.CodeSSLSelfSigned,
			model.RiskHigh,
			"Self-signed certificate",
			"The TLS certificate is self-signed and will not be trusted by browsers.",
			"Use a certificate issued by a public certificate authority.",
		))
	case !c.Valid:
		desc := "The TLS certificate chain could not be verified."
		if c.AuthorizationError != "" {
			desc = fmt.Sprintf("The TLS certificate chain could not be verified: %s.", c.AuthorizationError)
		}
		issues = append(issues, model.NewIssue(
			model.CodeSSLInvalid,
			model.RiskHigh,
			"Invalid certificate",
			desc,
			"Install a certificate valid for the host name, including the intermediate chain.",
		))
	}

	switch {
	case c.DaysUntilExpiry <= 0:
		issues = append(issues, model.NewIssue(
			model.CodeSSLExpired,
			model.RiskCritical,
			"Certificate expired",
			fmt.Sprintf("The TLS certificate expired on %s.", c.ValidTo.Format("2006-01-02")),
			"Renew the certificate and automate renewal.",
		))
	case c.DaysUntilExpiry <= expiryWarningDays:
		issues = append(issues, model.NewIssue(
			model.CodeSSLExpiringSoon,
			model.RiskMedium,
			"Certificate expires soon",
			fmt.Sprintf("The TLS certificate expires in %d days.", c.DaysUntilExpiry),
			"Renew the certificate and automate renewal.",
		))
	}

	if weakProtocols[c.Protocol] {
		issues = append(issues, model.NewIssue(
			model.CodeSSLWeakProtocol,
			model.RiskHigh,
			"Outdated TLS protocol",
			fmt.Sprintf("The server negotiated %s.", c.Protocol),
			"Disable SSLv3, TLS 1.0 and TLS 1.1 and offer TLS 1.2 or 1.3.",
		))
	}
	return issues
}
