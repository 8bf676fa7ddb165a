package patterns

import (
	"testing"

	"github.com/nao1215/gdprscan/internal/model"
)

func TestMatchTransfer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host         string
		wantMatch    bool
		wantName     string
		wantCategory model.TransferCategory
	}{
		{"www.google-analytics.com", true, "Google Analytics", model.TransferAnalytics},
		{"fonts.googleapis.com", true, "Google Fonts", model.TransferCDN},
		{"storage.googleapis.com", true, "Google Cloud", model.TransferCloud},
		{"js.stripe.com", true, "Stripe", model.TransferPayment},
		{"connect.facebook.net", true, "Meta (Facebook)", model.TransferAdvertising},
		{"cdn.example.eu", false, "", ""},
		{"", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			s, ok := MatchTransfer(tt.host)
			if ok != tt.wantMatch {
				t.Fatalf("MatchTransfer(%q) matched = %v, expected %v", tt.host, ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if s.Name != tt.wantName || s.Category != tt.wantCategory {
				t.Errorf("got %s/%s, expected %s/%s", s.Name, s.Category, tt.wantName, tt.wantCategory)
			}
			if s.Country != "US" {
				t.Errorf("expected country US, got %s", s.Country)
			}
		})
	}
}

func TestUSServiceTable(t *testing.T) {
	t.Parallel()

	if n := USServiceCount(); n < 55 {
		t.Errorf("expected about 60 US services, got %d", n)
	}

	categories := map[model.TransferCategory]bool{}
	for _, s := range usServices {
		categories[s.Category] = true
	}
	if len(categories) != 6 {
		t.Errorf("expected 6 categories, got %d", len(categories))
	}
}

func TestIsHighRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category model.TransferCategory
		expected bool
	}{
		{model.TransferAnalytics, true},
		{model.TransferAdvertising, true},
		{model.TransferCDN, false},
		{model.TransferCloud, false},
		{model.TransferSocial, false},
		{model.TransferPayment, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			t.Parallel()
			if got := IsHighRisk(tt.category); got != tt.expected {
				t.Errorf("IsHighRisk(%s) = %v, expected %v", tt.category, got, tt.expected)
			}
		})
	}
}

func TestIsAdequateCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		country  string
		expected bool
	}{
		{"Japan", true},
		{"japan", true},
		{"the United Kingdom", true},
		{"Republic of Korea", true},
		{"  Switzerland ", true},
		{"United States", false},
		{"China", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			t.Parallel()
			if got := IsAdequateCountry(tt.country); got != tt.expected {
				t.Errorf("IsAdequateCountry(%q) = %v, expected %v", tt.country, got, tt.expected)
			}
		})
	}
}
