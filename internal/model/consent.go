package model

// Tristate is a boolean that may be unknown.
type Tristate string

// Tristate values.
const (
	Unknown Tristate = "unknown"
	True    Tristate = "true"
	False   Tristate = "false"
)

// TristateOf converts a bool to a known Tristate.
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// ConsentBannerInfo describes the cookie consent banner found on the page.
type ConsentBannerInfo struct {
	Found             bool   `json:"found"`
	HasRejectButton   bool   `json:"has_reject_button"`
	HasAcceptButton   bool   `json:"has_accept_button"`
	HasSettingsOption bool   `json:"has_settings_option"`
	IsBlocking        bool   `json:"is_blocking"`
	Selector          string `json:"selector,omitempty"`
	Platform          string `json:"platform,omitempty"`

	// TCFDetected reports whether the IAB TCF API is present on the page.
	TCFDetected bool `json:"tcf_detected"`

	Quality ConsentQuality `json:"quality"`
}

// ConsentQuality holds the quality checks of a found banner.
type ConsentQuality struct {
	PreCheckedBoxes      bool     `json:"pre_checked_boxes"`
	PreCheckedCategories []string `json:"pre_checked_categories,omitempty"`

	// EqualProminence is true when the reject control is at least half the
	// size of the accept control.
	EqualProminence bool `json:"equal_prominence"`

	CookieWall      bool `json:"cookie_wall"`
	GranularConsent bool `json:"granular_consent"`
	CategoryCount   int  `json:"category_count"`

	CloseButtonRejects Tristate `json:"close_button_rejects"`
}

// NewConsentBannerInfo returns the default "not found" banner info.
func NewConsentBannerInfo() ConsentBannerInfo {
	return ConsentBannerInfo{
		Quality: ConsentQuality{CloseButtonRejects: Unknown},
	}
}
