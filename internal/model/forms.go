package model

// FormType is the purpose of a form, inferred from keywords.
type FormType string

// Form types.
const (
	FormContact      FormType = "contact"
	FormNewsletter   FormType = "newsletter"
	FormRegistration FormType = "registration"
	FormLogin        FormType = "login"
	FormCheckout     FormType = "checkout"
	FormComment      FormType = "comment"
	FormSearch       FormType = "search"
	FormOther        FormType = "other"
)

// FormSource tells how a form was found.
type FormSource string

// Form sources.
const (
	// SourceNative is a <form> element.
	SourceNative FormSource = "native"

	// SourceJSCluster is an email input outside any <form>, grouped with the
	// fields of its container. Typical for JS framework forms.
	SourceJSCluster FormSource = "js-cluster"
)

// FormInfo describes one form found on a page.
type FormInfo struct {
	PageURL string     `json:"page_url"`
	Type    FormType   `json:"type"`
	Source  FormSource `json:"source"`
	Action  string     `json:"action,omitempty"`
	Fields  []string   `json:"fields,omitempty"`

	HasEmailField          bool `json:"has_email_field"`
	HasConsentCheckbox     bool `json:"has_consent_checkbox"`
	HasPreCheckedMarketing bool `json:"has_pre_checked_marketing"`
	HasPrivacyLink         bool `json:"has_privacy_link"`

	// CollectsData is true for forms that gather personal data.
	CollectsData bool `json:"collects_data"`
}

// FormsAnalysisResult aggregates forms across the analyzed pages.
// Search forms are excluded from all counts.
type FormsAnalysisResult struct {
	PagesAnalyzed []string   `json:"pages_analyzed,omitempty"`
	Forms         []FormInfo `json:"forms,omitempty"`

	TotalForms                   int `json:"total_forms"`
	DataCollectionForms          int `json:"data_collection_forms"`
	FormsWithConsentCheckbox     int `json:"forms_with_consent_checkbox"`
	FormsWithPreCheckedMarketing int `json:"forms_with_pre_checked_marketing"`
	FormsWithPrivacyLink         int `json:"forms_with_privacy_link"`

	// DataFormsWithoutConsent counts data-collecting forms lacking a
	// consent checkbox.
	DataFormsWithoutConsent int `json:"data_forms_without_consent"`
}
