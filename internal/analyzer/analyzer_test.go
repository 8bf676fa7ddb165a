package analyzer

import (
	"slices"
	"testing"
	"time"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("registers built-ins in order", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		var names []string
		for _, a := range r.Analyzers() {
			names = append(names, a.Name())
		}
		if !slices.Equal(names, Names) {
			t.Errorf("names = %v, expected %v", names, Names)
		}
	})

	t.Run("skip excludes analyzers", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry(WithSkip(NameForms, NameSSL))
		if _, ok := r.Get(NameForms); ok {
			t.Error("forms analyzer should be skipped")
		}
		if _, ok := r.Get(NameSSL); ok {
			t.Error("ssl analyzer should be skipped")
		}
		if got := len(r.Analyzers()); got != len(Names)-2 {
			t.Errorf("len = %d, expected %d", got, len(Names)-2)
		}
	})

	t.Run("register appends custom analyzers", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		r.Register(NewTrackerAnalyzer())
		all := r.Analyzers()
		if all[len(all)-1].Name() != NameTrackers {
			t.Errorf("last analyzer = %s", all[len(all)-1].Name())
		}
	})
}

func TestRegistryHookCoverage(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var requests, before, after, analyze, actors, contributors, responses []string
	for _, a := range r.Analyzers() {
		if _, ok := a.(RequestHook); ok {
			requests = append(requests, a.Name())
		}
		if _, ok := a.(BeforeConsentHook); ok {
			before = append(before, a.Name())
		}
		if _, ok := a.(AfterConsentHook); ok {
			after = append(after, a.Name())
		}
		if _, ok := a.(AnalyzeHook); ok {
			analyze = append(analyze, a.Name())
		}
		if _, ok := a.(ConsentActor); ok {
			actors = append(actors, a.Name())
		}
		if _, ok := a.(ResponseHook); ok {
			responses = append(responses, a.Name())
		}
		if _, ok := a.(ResultContributor); ok {
			contributors = append(contributors, a.Name())
		}
	}

	tests := []struct {
		hook     string
		got      []string
		expected []string
	}{
		{"request", requests, []string{NameTrackers, NameSecurity, NameTransfers}},
		{"before consent", before, []string{NameCookies, NameConsent, NamePrivacy, NameSecurity, NameForms}},
		{"after consent", after, []string{NameCookies, NameSecurity}},
		{"analyze", analyze, []string{NamePrivacy, NameSSL, NameForms}},
		{"consent actor", actors, []string{NameConsent}},
		{"response", responses, []string{NameHeaders}},
		{"contributor", contributors, Names},
	}
	for _, tt := range tests {
		if !slices.Equal(tt.got, tt.expected) {
			t.Errorf("%s hooks = %v, expected %v", tt.hook, tt.got, tt.expected)
		}
	}
}

func TestRegistryReset(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a, _ := r.Get(NameTrackers)
	tracker := a.(*TrackerAnalyzer)
	sc := model.NewScanContext("https://example.com/", "example.com")
	tracker.OnRequest(sc, browser.Request{URL: "https://www.google-analytics.com/g/collect", ResourceType: browser.ResourceXHR})
	if len(tracker.Trackers()) != 1 {
		t.Fatalf("expected one tracker before reset")
	}

	r.Reset()
	if len(tracker.Trackers()) != 0 {
		t.Error("reset should clear trackers")
	}
	if tracker.ThirdPartyRequests().Total != 0 {
		t.Error("reset should clear counters")
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Unix(0, 0) }
	o := DefaultOptions()
	for _, opt := range []Option{
		WithProbeTimeout(3 * time.Second),
		WithProbeTimeout(0),
		WithMaxFormPages(2),
		WithClock(now),
		WithLogger(nil),
	} {
		opt(&o)
	}

	if o.ProbeTimeout != 3*time.Second {
		t.Errorf("ProbeTimeout = %v, a zero timeout must not override", o.ProbeTimeout)
	}
	if o.MaxFormPages != 2 {
		t.Errorf("MaxFormPages = %d", o.MaxFormPages)
	}
	if o.Logger == nil {
		t.Error("a nil logger must not override the default")
	}
	if !o.Now().Equal(time.Unix(0, 0)) {
		t.Error("clock not applied")
	}
}
