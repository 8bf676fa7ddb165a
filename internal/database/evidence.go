package database

import (
	"fmt"
	"strings"

	"github.com/nao1215/gdprscan/internal/issues"
	"github.com/nao1215/gdprscan/internal/model"
)

// Category groups issue codes for storage and filtering.
type Category string

// Issue categories.
const (
	CategoryConsent       Category = "CONSENT"
	CategoryCookies       Category = "COOKIES"
	CategoryTracking      Category = "TRACKING"
	CategoryPrivacyPolicy Category = "PRIVACY_POLICY"
	CategoryForms         Category = "FORMS"
	CategorySecurity      Category = "SECURITY"
	CategoryDataTransfer  Category = "DATA_TRANSFER"
	CategoryOther         Category = "OTHER"
)

// maxEvidenceItems caps the items joined into one evidence string.
const maxEvidenceItems = 10

var categories = map[model.IssueCode]Category{
	model.CodeCookiesBeforeConsent: CategoryCookies,

	model.CodeTrackersBeforeConsent: CategoryTracking,
	model.CodeExcessiveThirdParty:   CategoryTracking,

	model.CodeNoConsentBanner:         CategoryConsent,
	model.CodeNoRejectButton:          CategoryConsent,
	model.CodePreCheckedConsent:       CategoryConsent,
	model.CodeUnequalButtonProminence: CategoryConsent,
	model.CodeCookieWall:              CategoryConsent,
	model.CodeNoGranularConsent:       CategoryConsent,

	model.CodeNoPrivacyPolicy:         CategoryPrivacyPolicy,
	model.CodePrivacyPolicyIncomplete: CategoryPrivacyPolicy,
	model.CodePrivacyNoRetention:      CategoryPrivacyPolicy,
	model.CodePrivacyNoComplaintRight: CategoryPrivacyPolicy,

	model.CodeFormsNoConsent:           CategoryForms,
	model.CodeFormsPreCheckedMarketing: CategoryForms,
	model.CodeFormsNoPrivacyLink:       CategoryForms,

	model.CodeUSDataTransfer:      CategoryDataTransfer,
	model.CodeExcessiveUSServices: CategoryDataTransfer,

	model.CodeNoHTTPS:                    CategorySecurity,
	model.CodeNoHTTPSRedirect:            CategorySecurity,
	model.CodeMixedContent:               CategorySecurity,
	model.CodeCookiesNotSecure:           CategorySecurity,
	model.CodeCookiesNotHTTPOnly:         CategorySecurity,
	model.CodeCookiesNoSameSite:          CategorySecurity,
	model.CodeCookiesExcessiveExpiration: CategorySecurity,
	model.CodeNoSecurityHeaders:          CategorySecurity,
	model.CodeMissingCSP:                 CategorySecurity,
	model.CodeMissingHSTS:                CategorySecurity,
	model.CodeWeakCSP:                    CategorySecurity,
	model.CodeWeakHSTS:                   CategorySecurity,
	model.CodeMissingXFrameOptions:       CategorySecurity,
	model.CodeMissingXContentTypeOptions: CategorySecurity,
	model.CodeMissingReferrerPolicy:      CategorySecurity,
	model.CodeMissingPermissionsPolicy:   CategorySecurity,
	model.CodeSSLSelfSigned:              CategorySecurity,
	model.CodeSSLInvalid:                 CategorySecurity,
	model.CodeSSLExpired:                 CategorySecurity,
	model.CodeSSLExpiringSoon:            CategorySecurity,
	model.CodeSSLWeakProtocol:            CategorySecurity,
}

// IssueCategory returns the category of an issue code.
// Unknown codes are OTHER.
func IssueCategory(code model.IssueCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryOther
}

// IssueEvidence returns a short description of what triggered the issue,
// such as the cookie names or the offending URLs. Codes without useful
// evidence, including unknown codes, give "".
func IssueEvidence(code model.IssueCode, r *model.ScanResult) string {
	if r == nil {
		return ""
	}

	switch code {
	case model.CodeCookiesBeforeConsent:
		return join(issues.NonEssentialCookiesBeforeConsent(r))
	case model.CodeTrackersBeforeConsent:
		return join(issues.TrackerNamesBeforeConsent(r))
	case model.CodeExcessiveThirdParty:
		return fmt.Sprintf("%d of %d third-party requests before consent",
			r.ThirdPartyRequests.BeforeConsent, r.ThirdPartyRequests.Total)

	case model.CodeNoRejectButton, model.CodeUnequalButtonProminence, model.CodeCookieWall:
		return bannerEvidence(r.ConsentBanner)
	case model.CodePreCheckedConsent:
		return join(r.ConsentBanner.Quality.PreCheckedCategories)
	case model.CodeNoGranularConsent:
		return fmt.Sprintf("%d categories", r.ConsentBanner.Quality.CategoryCount)

	case model.CodePrivacyPolicyIncomplete:
		return join(r.PrivacyPolicy.Content.MissingElements)
	case model.CodePrivacyNoRetention, model.CodePrivacyNoComplaintRight:
		return r.PrivacyPolicy.URL

	case model.CodeFormsNoConsent:
		return formPages(r.Forms.Forms, func(f model.FormInfo) bool {
			return f.CollectsData && !f.HasConsentCheckbox
		})
	case model.CodeFormsPreCheckedMarketing:
		return formPages(r.Forms.Forms, func(f model.FormInfo) bool {
			return f.HasPreCheckedMarketing
		})
	case model.CodeFormsNoPrivacyLink:
		return formPages(r.Forms.Forms, func(f model.FormInfo) bool {
			return f.CollectsData && !f.HasPrivacyLink
		})

	case model.CodeUSDataTransfer:
		return transferNames(r.DataTransfers.HighRiskTransfers)
	case model.CodeExcessiveUSServices:
		return transferNames(r.DataTransfers.USServices)

	case model.CodeNoHTTPS, model.CodeNoHTTPSRedirect:
		if r.FinalURL != "" {
			return r.FinalURL
		}
		return r.URL
	case model.CodeMixedContent:
		return join(r.Security.MixedContent.URLs)
	case model.CodeCookiesNotSecure:
		return cookieNotes(r, "Secure flag")
	case model.CodeCookiesNotHTTPOnly:
		return cookieNotes(r, "HttpOnly flag")
	case model.CodeCookiesNoSameSite:
		return cookieNotes(r, "SameSite")
	case model.CodeCookiesExcessiveExpiration:
		return cookieNotes(r, "months")

	case model.CodeNoSecurityHeaders:
		return fmt.Sprintf("%d of 6 missing, score %d", r.SecurityHeaders.MissingCount(), r.SecurityHeaders.Score)
	case model.CodeWeakCSP:
		return r.SecurityHeaders.CSP.Raw
	case model.CodeWeakHSTS:
		return fmt.Sprintf("max-age=%d", r.SecurityHeaders.HSTS.MaxAge)

	case model.CodeSSLSelfSigned, model.CodeSSLInvalid:
		return certEvidence(r.SSLCertificate)
	case model.CodeSSLExpired, model.CodeSSLExpiringSoon:
		return fmt.Sprintf("valid until %s", r.SSLCertificate.ValidTo.Format("2006-01-02"))
	case model.CodeSSLWeakProtocol:
		return r.SSLCertificate.Protocol
	}
	return ""
}

func join(items []string) string {
	if len(items) > maxEvidenceItems {
		items = append(items[:maxEvidenceItems:maxEvidenceItems], "...")
	}
	return strings.Join(items, ", ")
}

func bannerEvidence(b model.ConsentBannerInfo) string {
	switch {
	case b.Platform != "" && b.Selector != "":
		return b.Platform + " (" + b.Selector + ")"
	case b.Platform != "":
		return b.Platform
	default:
		return b.Selector
	}
}

func formPages(forms []model.FormInfo, match func(model.FormInfo) bool) string {
	var pages []string
	seen := make(map[string]bool)
	for _, f := range forms {
		if f.Type == model.FormSearch || !match(f) {
			continue
		}
		label := fmt.Sprintf("%s form on %s", f.Type, f.PageURL)
		if seen[label] {
			continue
		}
		seen[label] = true
		pages = append(pages, label)
	}
	return join(pages)
}

func transferNames(services []model.TransferService) string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	return join(names)
}

func cookieNotes(r *model.ScanResult, marker string) string {
	var notes []string
	for _, n := range r.Security.CookieSecurity.Issues {
		if strings.Contains(n, marker) {
			name, _, _ := strings.Cut(n, ":")
			notes = append(notes, name)
		}
	}
	return join(notes)
}

func certEvidence(c model.SSLCertificateInfo) string {
	parts := make([]string, 0, 2)
	if c.Issuer != "" {
		parts = append(parts, "issuer "+c.Issuer)
	}
	if c.AuthorizationError != "" {
		parts = append(parts, c.AuthorizationError)
	}
	return strings.Join(parts, "; ")
}
