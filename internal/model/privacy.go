package model

// PrivacyElement names a GDPR Art. 13/14 information element.
type PrivacyElement string

// Privacy policy elements.
const (
	ElementController             PrivacyElement = "controller identity"
	ElementDPOContact             PrivacyElement = "DPO contact"
	ElementPurpose                PrivacyElement = "processing purpose"
	ElementLegalBasis             PrivacyElement = "legal basis"
	ElementRetention              PrivacyElement = "retention period"
	ElementUserRights             PrivacyElement = "data subject rights"
	ElementComplaintRight         PrivacyElement = "right to lodge a complaint"
	ElementThirdPartySharing      PrivacyElement = "third-party sharing"
	ElementInternationalTransfers PrivacyElement = "international transfers"
)

// PrivacyElements lists all elements in reporting order.
var PrivacyElements = []PrivacyElement{
	ElementController,
	ElementDPOContact,
	ElementPurpose,
	ElementLegalBasis,
	ElementRetention,
	ElementUserRights,
	ElementComplaintRight,
	ElementThirdPartySharing,
	ElementInternationalTransfers,
}

// RequiredPrivacyElements must be present for a policy to be complete.
var RequiredPrivacyElements = []PrivacyElement{
	ElementController,
	ElementPurpose,
	ElementLegalBasis,
	ElementUserRights,
}

// PrivacyPolicyInfo describes the discovered privacy policy.
type PrivacyPolicyInfo struct {
	Found bool   `json:"found"`
	URL   string `json:"url,omitempty"`

	// ContentAnalyzed is true when the policy text was fetched and long
	// enough to be analyzed.
	ContentAnalyzed bool                 `json:"content_analyzed"`
	Content         PrivacyPolicyContent `json:"content"`
}

// PrivacyPolicyContent records which elements the policy text contains.
type PrivacyPolicyContent struct {
	HasControllerIdentity     bool `json:"has_controller_identity"`
	HasDPOContact             bool `json:"has_dpo_contact"`
	HasPurpose                bool `json:"has_purpose"`
	HasLegalBasis             bool `json:"has_legal_basis"`
	HasRetention              bool `json:"has_retention"`
	HasUserRights             bool `json:"has_user_rights"`
	HasComplaintRight         bool `json:"has_complaint_right"`
	HasThirdPartySharing      bool `json:"has_third_party_sharing"`
	HasInternationalTransfers bool `json:"has_international_transfers"`

	DetectedElements []string `json:"detected_elements,omitempty"`
	MissingElements  []string `json:"missing_elements,omitempty"`
	TextLength       int      `json:"text_length"`
}

// Has reports whether the given element was detected.
func (c *PrivacyPolicyContent) Has(e PrivacyElement) bool {
	switch e {
	case ElementController:
		return c.HasControllerIdentity
	case ElementDPOContact:
		return c.HasDPOContact
	case ElementPurpose:
		return c.HasPurpose
	case ElementLegalBasis:
		return c.HasLegalBasis
	case ElementRetention:
		return c.HasRetention
	case ElementUserRights:
		return c.HasUserRights
	case ElementComplaintRight:
		return c.HasComplaintRight
	case ElementThirdPartySharing:
		return c.HasThirdPartySharing
	case ElementInternationalTransfers:
		return c.HasInternationalTransfers
	default:
		return false
	}
}

// Set records the presence of the given element.
func (c *PrivacyPolicyContent) Set(e PrivacyElement, present bool) {
	switch e {
	case ElementController:
		c.HasControllerIdentity = present
	case ElementDPOContact:
		c.HasDPOContact = present
	case ElementPurpose:
		c.HasPurpose = present
	case ElementLegalBasis:
		c.HasLegalBasis = present
	case ElementRetention:
		c.HasRetention = present
	case ElementUserRights:
		c.HasUserRights = present
	case ElementComplaintRight:
		c.HasComplaintRight = present
	case ElementThirdPartySharing:
		c.HasThirdPartySharing = present
	case ElementInternationalTransfers:
		c.HasInternationalTransfers = present
	}
}
