package model

import (
	"sort"
	"time"
)

// ScanResult is the aggregate result of one website scan.
// Analyzers fill their sections during the collect step; the issue
// generator and score calculator fill Issues, Score and OverallRisk.
type ScanResult struct {
	URL        string        `json:"url"`
	FinalURL   string        `json:"final_url,omitempty"`
	BaseDomain string        `json:"base_domain"`
	ScannedAt  time.Time     `json:"scanned_at"`
	Duration   time.Duration `json:"duration"`

	Cookies            []CookieInfo       `json:"cookies,omitempty"`
	Trackers           []TrackerInfo      `json:"trackers,omitempty"`
	ThirdPartyRequests ThirdPartyRequests `json:"third_party_requests"`

	ConsentBanner   ConsentBannerInfo   `json:"consent_banner"`
	PrivacyPolicy   PrivacyPolicyInfo   `json:"privacy_policy"`
	Security        SecurityInfo        `json:"security"`
	SecurityHeaders SecurityHeadersInfo `json:"security_headers"`
	SSLCertificate  SSLCertificateInfo  `json:"ssl_certificate"`
	Forms           FormsAnalysisResult `json:"forms"`
	DataTransfers   DataTransferInfo    `json:"data_transfers"`

	Issues      []ScanIssue `json:"issues"`
	Score       int         `json:"score"`
	OverallRisk RiskLevel   `json:"overall_risk"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Errors holds non-fatal step errors. The scan still produced
	// partial results with defaults filled in.
	Errors []string `json:"errors,omitempty"`

	// TimedOut is set when the scan context expired before all steps ran.
	TimedOut bool `json:"timed_out"`

	// Aborted is set when the page could not be loaded. An aborted result
	// has no findings and its score is meaningless.
	Aborted bool `json:"aborted,omitempty"`
}

// NewScanResult creates an empty result for the given URL.
func NewScanResult(url string) *ScanResult {
	return &ScanResult{
		URL:           url,
		ScannedAt:     time.Now(),
		ConsentBanner: NewConsentBannerInfo(),
		Issues:        make([]ScanIssue, 0),
		Score:         100,
		OverallRisk:   RiskLow,
	}
}

// AddError records a non-fatal error.
func (r *ScanResult) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// HasIssues reports whether any issue was generated.
func (r *ScanResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// CountByRisk returns the number of issues per risk level.
func (r *ScanResult) CountByRisk() map[RiskLevel]int {
	counts := map[RiskLevel]int{
		RiskCritical: 0,
		RiskHigh:     0,
		RiskMedium:   0,
		RiskLow:      0,
	}
	for _, issue := range r.Issues {
		counts[issue.RiskLevel]++
	}
	return counts
}

// IssuesByRisk returns the issues with the given risk level, in order.
func (r *ScanResult) IssuesByRisk(level RiskLevel) []ScanIssue {
	var issues []ScanIssue
	for _, issue := range r.Issues {
		if issue.RiskLevel == level {
			issues = append(issues, issue)
		}
	}
	return issues
}

// IssueCodes returns the sorted set of issue codes.
func (r *ScanResult) IssueCodes() []string {
	seen := make(map[string]bool, len(r.Issues))
	codes := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		code := string(issue.Code)
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// CookiesBeforeConsent returns cookies first observed before consent.
func (r *ScanResult) CookiesBeforeConsent() []CookieInfo {
	var cookies []CookieInfo
	for _, c := range r.Cookies {
		if c.SetBeforeConsent {
			cookies = append(cookies, c)
		}
	}
	return cookies
}

// TrackersBeforeConsent returns trackers first loaded before consent.
func (r *ScanResult) TrackersBeforeConsent() []TrackerInfo {
	var trackers []TrackerInfo
	for _, t := range r.Trackers {
		if t.LoadedBeforeConsent {
			trackers = append(trackers, t)
		}
	}
	return trackers
}
