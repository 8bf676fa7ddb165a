package patterns

import (
	"testing"

	"github.com/nao1215/gdprscan/internal/model"
)

func TestMatchTracker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		wantMatch  bool
		wantVendor string
		wantType   model.TrackerType
		wantDomain string
	}{
		{"google analytics", "https://www.google-analytics.com/collect?v=1", true, "Google Analytics", model.TrackerAnalytics, "google-analytics.com"},
		{"tag manager", "https://www.googletagmanager.com/gtm.js?id=GTM-XXXX", true, "Google Tag Manager", model.TrackerAnalytics, "googletagmanager.com"},
		{"meta pixel path", "https://www.facebook.com/tr?id=123&ev=PageView", true, "Meta Pixel", model.TrackerAdvertising, "facebook.com/tr"},
		{"facebook plugin", "https://www.facebook.com/plugins/like.php", true, "Facebook Social Plugin", model.TrackerSocial, "facebook.com/plugins"},
		{"hotjar subdomain", "https://static.hotjar.com/c/hotjar-1.js", true, "Hotjar", model.TrackerAnalytics, "hotjar.com"},
		{"self-hosted matomo regex", "https://stats.example.org/matomo.js", true, "Matomo Cloud", model.TrackerAnalytics, "stats.example.org"},
		{"first-party asset", "https://example.com/app.js", false, "", "", ""},
		{"lookalike host", "https://nothotjar.com/x.js", false, "", "", ""},
		{"data url", "data:image/png;base64,AAAA", false, "", "", ""},
		{"malformed url", "://bad", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, ok := MatchTracker(tt.url)
			if ok != tt.wantMatch {
				t.Fatalf("MatchTracker(%q) matched = %v, expected %v", tt.url, ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if m.Tracker.Name != tt.wantVendor {
				t.Errorf("vendor = %q, expected %q", m.Tracker.Name, tt.wantVendor)
			}
			if m.Tracker.Type != tt.wantType {
				t.Errorf("type = %q, expected %q", m.Tracker.Type, tt.wantType)
			}
			if m.Domain != tt.wantDomain {
				t.Errorf("domain = %q, expected %q", m.Domain, tt.wantDomain)
			}
		})
	}
}

func TestHostMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host, domain string
		expected     bool
	}{
		{"example.com", "example.com", true},
		{"www.example.com", "example.com", true},
		{"WWW.EXAMPLE.COM.", "example.com", true},
		{"badexample.com", "example.com", false},
		{"example.com.evil.org", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			if got := HostMatches(tt.host, tt.domain); got != tt.expected {
				t.Errorf("HostMatches(%q, %q) = %v, expected %v", tt.host, tt.domain, got, tt.expected)
			}
		})
	}
}

func TestTrackersReturnsCopy(t *testing.T) {
	t.Parallel()

	list := Trackers()
	if len(list) < 50 {
		t.Fatalf("expected at least 50 tracker vendors, got %d", len(list))
	}
	list[0].Name = "changed"
	if Trackers()[0].Name == "changed" {
		t.Error("Trackers must return a copy of the database")
	}
}
