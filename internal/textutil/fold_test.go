package textutil

import "testing"

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"german umlaut", "Datenschutzerklärung", "datenschutzerklarung"},
		{"french accents", "Politique de Confidentialité", "politique de confidentialite"},
		{"spanish", "Política de Privacidad", "politica de privacidad"},
		{"polish ogonek", "Polityka prywatności", "polityka prywatnosci"},
		{"sharp s folds", "STRASSE straße", "strasse strasse"},
		{"whitespace collapses", "  privacy \n\t policy ", "privacy policy"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Fold(tt.input); got != tt.expected {
				t.Errorf("Fold(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFirstMatch(t *testing.T) {
	t.Parallel()

	keywords := []string{"privacy", "datenschutz", "confidentialité"}

	tests := []struct {
		text     string
		expected string
	}{
		{"Read our PRIVACY notice", "privacy"},
		{"Hinweise zum Datenschutz", "datenschutz"},
		{"Politique de confidentialite", "confidentialité"},
		{"Imprint", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			if got := FirstMatch(tt.text, keywords); got != tt.expected {
				t.Errorf("FirstMatch(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
			if got := ContainsAny(tt.text, keywords); got != (tt.expected != "") {
				t.Errorf("ContainsAny(%q) = %v", tt.text, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("expected abc..., got %q", got)
	}
	if got := Truncate("äöü", 5); got != "äöü" {
		t.Errorf("expected unchanged input, got %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Errorf("expected unchanged input for n=0, got %q", got)
	}
}

func TestHasPhrase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		phrase   string
		expected bool
	}{
		{"exact", "OK", "ok", true},
		{"leading word", "OK, got it", "ok", true},
		{"inside word", "Bookmark", "ok", false},
		{"multi word", "Alle ablehnen", "alle ablehnen", true},
		{"diacritics folded", "Odrzuć wszystkie", "odrzuc", true},
		{"second occurrence", "tokens ok", "ok", true},
		{"symbol phrase", "×", "×", true},
		{"empty phrase", "anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HasPhrase(tt.text, tt.phrase); got != tt.expected {
				t.Errorf("HasPhrase(%q, %q) = %v, expected %v", tt.text, tt.phrase, got, tt.expected)
			}
		})
	}

	if !HasAnyPhrase("Reject all cookies", []string{"decline", "reject all"}) {
		t.Error("HasAnyPhrase should match the second phrase")
	}
}
