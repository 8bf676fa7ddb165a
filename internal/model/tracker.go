package model

// TrackerType is the kind of third-party tracker.
type TrackerType string

// Tracker types.
const (
	TrackerAnalytics   TrackerType = "analytics"
	TrackerAdvertising TrackerType = "advertising"
	TrackerSocial      TrackerType = "social"
	TrackerOther       TrackerType = "other"
)

// TrackerInfo describes a tracker detected from network requests.
// The identity of a tracker is (Name, Domain).
type TrackerInfo struct {
	Name   string      `json:"name"`
	Type   TrackerType `json:"type"`
	Domain string      `json:"domain"`

	// LoadedBeforeConsent is fixed at the first sighting.
	LoadedBeforeConsent bool `json:"loaded_before_consent"`
}

// Key returns the deduplication key of the tracker.
func (t TrackerInfo) Key() string {
	return t.Name + "|" + t.Domain
}

// ThirdPartyRequests counts requests to hosts outside the scanned site.
type ThirdPartyRequests struct {
	Total         int `json:"total"`
	BeforeConsent int `json:"before_consent"`
}
