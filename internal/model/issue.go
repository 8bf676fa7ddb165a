package model

// IssueCode identifies a kind of compliance issue.
// Codes are stable: they are stored in the scan history and used to derive
// evidence and categories.
type IssueCode string

// Cookie and tracker issue codes.
const (
	CodeCookiesBeforeConsent  IssueCode = "COOKIES_BEFORE_CONSENT"
	CodeTrackersBeforeConsent IssueCode = "TRACKERS_BEFORE_CONSENT"
	CodeExcessiveThirdParty   IssueCode = "EXCESSIVE_THIRD_PARTY"
)

// Consent banner issue codes.
const (
	CodeNoConsentBanner         IssueCode = "NO_CONSENT_BANNER"
	CodeNoRejectButton          IssueCode = "NO_REJECT_BUTTON"
	CodePreCheckedConsent       IssueCode = "PRECHECKED_CONSENT"
	CodeUnequalButtonProminence IssueCode = "UNEQUAL_BUTTON_PROMINENCE"
	CodeCookieWall              IssueCode = "COOKIE_WALL"
	CodeNoGranularConsent       IssueCode = "NO_GRANULAR_CONSENT"
)

// Privacy policy issue codes.
const (
	CodeNoPrivacyPolicy         IssueCode = "NO_PRIVACY_POLICY"
	CodePrivacyPolicyIncomplete IssueCode = "PRIVACY_POLICY_INCOMPLETE"
	CodePrivacyNoRetention      IssueCode = "PRIVACY_NO_RETENTION"
	CodePrivacyNoComplaintRight IssueCode = "PRIVACY_NO_COMPLAINT_RIGHT"
)

// Transport and cookie security issue codes.
const (
	CodeNoHTTPS                    IssueCode = "NO_HTTPS"
	CodeNoHTTPSRedirect            IssueCode = "NO_HTTPS_REDIRECT"
	CodeMixedContent               IssueCode = "MIXED_CONTENT"
	CodeCookiesNotSecure           IssueCode = "COOKIES_NOT_SECURE"
	CodeCookiesNotHTTPOnly         IssueCode = "COOKIES_NOT_HTTPONLY"
	CodeCookiesNoSameSite          IssueCode = "COOKIES_NO_SAMESITE"
	CodeCookiesExcessiveExpiration IssueCode = "COOKIES_EXCESSIVE_EXPIRATION"
)

// Form issue codes.
const (
	CodeFormsNoConsent           IssueCode = "FORMS_NO_CONSENT"
	CodeFormsPreCheckedMarketing IssueCode = "FORMS_PRECHECKED_MARKETING"
	CodeFormsNoPrivacyLink       IssueCode = "FORMS_NO_PRIVACY_LINK"
)

// Data transfer issue codes.
const (
	CodeUSDataTransfer      IssueCode = "US_DATA_TRANSFER"
	CodeExcessiveUSServices IssueCode = "EXCESSIVE_US_SERVICES"
)

// Security header issue codes.
const (
	CodeNoSecurityHeaders          IssueCode = "NO_SECURITY_HEADERS"
	CodeMissingCSP                 IssueCode = "MISSING_CSP"
	CodeMissingHSTS                IssueCode = "MISSING_HSTS"
	CodeWeakCSP                    IssueCode = "WEAK_CSP"
	CodeWeakHSTS                   IssueCode = "WEAK_HSTS"
	CodeMissingXFrameOptions       IssueCode = "MISSING_X_FRAME_OPTIONS"
	CodeMissingXContentTypeOptions IssueCode = "MISSING_X_CONTENT_TYPE_OPTIONS"
	CodeMissingReferrerPolicy      IssueCode = "MISSING_REFERRER_POLICY"
	CodeMissingPermissionsPolicy   IssueCode = "MISSING_PERMISSIONS_POLICY"
)

// TLS certificate issue codes.
const (
	CodeSSLSelfSigned   IssueCode = "SSL_SELF_SIGNED"
	CodeSSLInvalid      IssueCode = "SSL_INVALID"
	CodeSSLExpired      IssueCode = "SSL_EXPIRED"
	CodeSSLExpiringSoon IssueCode = "SSL_EXPIRING_SOON"
	CodeSSLWeakProtocol IssueCode = "SSL_WEAK_PROTOCOL"
)

// ScanIssue is a single compliance issue derived from scan findings.
// Issues are value objects and are never modified after creation.
type ScanIssue struct {
	Code           IssueCode `json:"code"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
}

// NewIssue creates a ScanIssue.
func NewIssue(code IssueCode, level RiskLevel, title, description, recommendation string) ScanIssue {
	return ScanIssue{
		Code:           code,
		Title:          title,
		Description:    description,
		RiskLevel:      level,
		Recommendation: recommendation,
	}
}
