package model

import "sync/atomic"

// ScanContext is the shared state of one scan.
// It is passed to every analyzer hook. Only the orchestrator changes it;
// analyzers read it.
type ScanContext struct {
	// URL is the normalized URL the scan started from.
	URL string

	// BaseDomain is the registrable domain (eTLD+1) of URL.
	// Requests to other base domains are third-party.
	BaseDomain string

	// FinalURL is the document URL after the first navigation and its
	// redirects. Later phases may navigate the page elsewhere.
	FinalURL string

	// IsHTTPS reports whether the page was served over HTTPS after navigation.
	IsHTTPS bool

	// consentGiven flips to true once the consent action succeeded.
	// It is atomic because request events are delivered from the
	// browser's event goroutine.
	consentGiven atomic.Bool
}

// NewScanContext creates a ScanContext for the given URL and base domain.
func NewScanContext(url, baseDomain string) *ScanContext {
	return &ScanContext{
		URL:        url,
		BaseDomain: baseDomain,
	}
}

// ConsentGiven reports whether the user consent has been given.
func (sc *ScanContext) ConsentGiven() bool {
	return sc.consentGiven.Load()
}

// SetConsentGiven records the consent transition.
func (sc *ScanContext) SetConsentGiven(given bool) {
	sc.consentGiven.Store(given)
}
