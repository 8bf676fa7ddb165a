package analyzer

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/gdprscan/internal/model"
)

const englishPolicy = `<html><head><title>Privacy</title><script>var controller = "x";</script></head><body>
<h1>Privacy Policy</h1>
<p>Example Ltd is the data controller for the processing of your personal data.</p>
<p>We process your personal data to provide our services. The legal basis is Art. 6(1)(b) GDPR
and our legitimate interests.</p>
<p>We keep data for the retention period stated below.</p>
<p>You have the right to access, the right to erasure and the right to object.</p>
<p>You may lodge a complaint with a supervisory authority.</p>
</body></html>`

func TestAnalyzePolicyText(t *testing.T) {
	t.Parallel()

	t.Run("english policy", func(t *testing.T) {
		t.Parallel()
		content, ok := AnalyzePolicyText(ExtractText(englishPolicy))
		if !ok {
			t.Fatal("policy should be analyzed")
		}
		for _, e := range []model.PrivacyElement{
			model.ElementController, model.ElementPurpose, model.ElementLegalBasis,
			model.ElementRetention, model.ElementUserRights, model.ElementComplaintRight,
		} {
			if !content.Has(e) {
				t.Errorf("%s not detected", e)
			}
		}
		if content.HasDPOContact || content.HasInternationalTransfers {
			t.Errorf("unexpected elements: %v", content.DetectedElements)
		}
		if len(content.MissingElements) != 0 {
			t.Errorf("MissingElements = %v", content.MissingElements)
		}
	})

	t.Run("german policy with diacritics", func(t *testing.T) {
		t.Parallel()
		text := "Datenschutzerklärung. Verantwortlicher im Sinne der DSGVO ist die Beispiel GmbH. " +
			"Unser Datenschutzbeauftragter ist erreichbar unter dsb@example.de. " +
			"Die Übermittlung in ein Drittland erfolgt auf Grundlage von Standardvertragsklauseln. " +
			"Sie haben ein Beschwerderecht bei der zuständigen Aufsichtsbehörde."
		content, ok := AnalyzePolicyText(text)
		if !ok {
			t.Fatal("policy should be analyzed")
		}
		if !content.HasControllerIdentity || !content.HasDPOContact || !content.HasInternationalTransfers || !content.HasComplaintRight {
			t.Errorf("detected = %v", content.DetectedElements)
		}
		expected := []string{string(model.ElementPurpose), string(model.ElementLegalBasis), string(model.ElementUserRights)}
		if !slices.Equal(content.MissingElements, expected) {
			t.Errorf("MissingElements = %v, expected %v", content.MissingElements, expected)
		}
	})

	t.Run("short text is not analyzed", func(t *testing.T) {
		t.Parallel()
		content, ok := AnalyzePolicyText("Privacy policy coming soon.")
		if ok {
			t.Error("short text should not be analyzed")
		}
		if content.TextLength != len("Privacy policy coming soon.") || len(content.MissingElements) != 0 {
			t.Errorf("content = %+v", content)
		}
	})
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	got := ExtractText(englishPolicy)
	if strings.Contains(got, "var controller") {
		t.Error("script content should be skipped")
	}
	if !strings.Contains(got, "Privacy Policy Example") {
		t.Errorf("text = %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Error("whitespace should be collapsed")
	}
}

func TestPrivacyPolicyAnalyzer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		home     string
		expected string
	}{
		{
			"href selector",
			`<footer><a href="/legal/privacy-policy">Legal</a></footer>`,
			"https://example.com/legal/privacy-policy",
		},
		{
			"anchor text",
			`<footer><a href="#">Privacy</a><a href="/legal/dse">Datenschutzerklärung</a></footer>`,
			"https://example.com/legal/dse",
		},
		{
			"none",
			`<footer><a href="/imprint">Imprint</a></footer>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sc := model.NewScanContext("https://example.com/", "example.com")
			page := newFakePage("https://example.com/", tt.home)
			a := NewPrivacyPolicyAnalyzer(DefaultOptions())
			a.OnBeforeConsent(context.Background(), page, sc)

			info := a.Info()
			if info.URL != tt.expected || info.Found != (tt.expected != "") {
				t.Errorf("info = %+v, expected URL %q", info, tt.expected)
			}
		})
	}
}

func TestPrivacyPolicyAnalyzerOnAnalyze(t *testing.T) {
	t.Parallel()

	sc := model.NewScanContext("https://example.com/", "example.com")
	page := newFakePage("https://example.com/", `<a href="/privacy">Privacy</a>`)
	page.pages["https://example.com/privacy"] = englishPolicy

	a := NewPrivacyPolicyAnalyzer(DefaultOptions())
	a.OnBeforeConsent(context.Background(), page, sc)
	a.OnAnalyze(context.Background(), page, sc)

	var result model.ScanResult
	a.Contribute(&result)
	if !result.PrivacyPolicy.Found || !result.PrivacyPolicy.ContentAnalyzed {
		t.Fatalf("PrivacyPolicy = %+v", result.PrivacyPolicy)
	}
	if !result.PrivacyPolicy.Content.HasLegalBasis {
		t.Error("legal basis should be detected")
	}
	if page.URL() != "https://example.com/privacy" {
		t.Errorf("page URL = %s", page.URL())
	}
}

func TestPrivacyPolicyAnalyzerNavigationFailure(t *testing.T) {
	t.Parallel()

	sc := model.NewScanContext("https://example.com/", "example.com")
	page := newFakePage("https://example.com/", `<a href="/privacy">Privacy</a>`)

	a := NewPrivacyPolicyAnalyzer(DefaultOptions())
	a.OnBeforeConsent(context.Background(), page, sc)
	a.OnAnalyze(context.Background(), page, sc)

	info := a.Info()
	if !info.Found || info.ContentAnalyzed {
		t.Errorf("info = %+v, expected found but not analyzed", info)
	}
}
