package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/gdprscan/internal/analyzer"
	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

func testPipeline() *Pipeline {
	return DefaultPipeline(nil, WithPipelineSettleDelay(0))
}

func TestDefaultPipelineSteps(t *testing.T) {
	t.Parallel()

	want := []string{
		StepNavigate,
		StepBeforeConsent,
		StepConsent,
		StepAfterConsent,
		StepAnalyze,
		StepCollect,
		StepIssues,
	}
	if got := testPipeline().StepNames(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestHookOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		accept        bool
		afterConsent  bool
		analyzeConsnt bool
	}{
		{"consent accepted", true, true, true},
		{"consent not accepted", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := newRecorder("recorder", tt.accept)
			registry := emptyRegistry()
			registry.Register(rec)

			page := &fakePage{
				finalURL: "https://www.example.com/home",
				requests: []browser.Request{
					{URL: "https://www.google-analytics.com/g/collect", ResourceType: browser.ResourceXHR},
				},
			}
			scan := NewScan("example.com", page, registry)
			if err := testPipeline().Execute(context.Background(), scan); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := []string{"response", "before", "accept", "after", "analyze", "contribute"}
			if got := rec.snapshot(); !slices.Equal(got, want) {
				t.Fatalf("expected calls %v, got %v", want, got)
			}
			if rec.consent["before"] {
				t.Error("expected consent false before consent")
			}
			if rec.consent["after"] != tt.afterConsent {
				t.Errorf("expected consent %v after consent step, got %v", tt.afterConsent, rec.consent["after"])
			}
			if rec.consent["analyze"] != tt.analyzeConsnt {
				t.Errorf("expected consent %v during analyze, got %v", tt.analyzeConsnt, rec.consent["analyze"])
			}
			if scan.Result.ThirdPartyRequests.Total != 1 {
				t.Errorf("expected request to reach the hook, got %d", scan.Result.ThirdPartyRequests.Total)
			}
		})
	}
}

func TestNavigateStep(t *testing.T) {
	t.Parallel()

	t.Run("fills the scan context", func(t *testing.T) {
		t.Parallel()

		page := &fakePage{finalURL: "https://www.example.co.uk/en/"}
		scan := NewScan("HTTP://www.Example.co.uk", page, emptyRegistry())
		if err := NewNavigateStep().Do(context.Background(), scan); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sc := scan.Context
		if sc.URL != "http://www.example.co.uk/" {
			t.Errorf("unexpected URL %q", sc.URL)
		}
		if sc.BaseDomain != "example.co.uk" {
			t.Errorf("unexpected base domain %q", sc.BaseDomain)
		}
		if sc.FinalURL != "https://www.example.co.uk/en/" || !sc.IsHTTPS {
			t.Errorf("unexpected final URL %q https=%v", sc.FinalURL, sc.IsHTTPS)
		}
		if scan.Result.URL != sc.URL || scan.Result.FinalURL != sc.FinalURL || scan.Result.BaseDomain != sc.BaseDomain {
			t.Errorf("result not filled: %+v", scan.Result)
		}
	})

	t.Run("invalid URL aborts", func(t *testing.T) {
		t.Parallel()

		scan := NewScan("ftp://example.com", &fakePage{}, emptyRegistry())
		err := NewNavigateStep().Do(context.Background(), scan)
		if !errors.Is(err, ErrScanAborted) || !errors.Is(err, urlutil.ErrUnsupportedScheme) {
			t.Errorf("expected aborted unsupported scheme, got %v", err)
		}
	})

	t.Run("navigation failure aborts", func(t *testing.T) {
		t.Parallel()

		page := &fakePage{navErr: fmt.Errorf("%w: connection refused", browser.ErrNavigation)}
		scan := NewScan("https://example.com", page, emptyRegistry())
		err := testPipeline().Execute(context.Background(), scan)
		if !errors.Is(err, ErrScanAborted) || !errors.Is(err, browser.ErrNavigation) {
			t.Fatalf("expected aborted navigation, got %v", err)
		}
		if !scan.Result.Aborted {
			t.Error("expected aborted result")
		}
		if want := []string{StepNavigate}; !slices.Equal(scan.Result.PerformedSteps, want) {
			t.Errorf("expected %v, got %v", want, scan.Result.PerformedSteps)
		}
	})

	t.Run("error status is not fatal", func(t *testing.T) {
		t.Parallel()

		page := &fakePage{status: http.StatusServiceUnavailable}
		scan := NewScan("https://example.com", page, emptyRegistry())
		if err := testPipeline().Execute(context.Background(), scan); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(scan.Result.Errors) != 1 {
			t.Fatalf("expected one recorded error, got %v", scan.Result.Errors)
		}
		if len(scan.Result.PerformedSteps) != 7 {
			t.Errorf("expected all steps to run, got %v", scan.Result.PerformedSteps)
		}
	})
}

func TestConsentStep(t *testing.T) {
	t.Parallel()

	t.Run("first accepting actor wins", func(t *testing.T) {
		t.Parallel()

		declining := newRecorder("declining", false)
		accepting := newRecorder("accepting", true)
		late := newRecorder("late", true)
		registry := emptyRegistry()
		registry.Register(declining)
		registry.Register(accepting)
		registry.Register(late)

		scan := NewScan("https://example.com", &fakePage{}, registry)
		if err := NewConsentStep(WithSettleDelay(0)).Do(context.Background(), scan); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !scan.Context.ConsentGiven() {
			t.Error("expected consent given")
		}
		if len(late.snapshot()) != 0 {
			t.Error("expected later actors not to be asked")
		}
	})

	t.Run("settle wait honours cancellation", func(t *testing.T) {
		t.Parallel()

		registry := emptyRegistry()
		registry.Register(newRecorder("accepting", true))
		scan := NewScan("https://example.com", &fakePage{}, registry)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		err := NewConsentStep(WithSettleDelay(time.Minute)).Do(ctx, scan)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if time.Since(start) > 10*time.Second {
			t.Error("expected settle wait to stop early")
		}
	})
}

// gdprSite serves a small site with a cookie banner, an analytics script
// and a privacy policy.
func gdprSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "_ga", Value: "GA1.1.123", Path: "/", MaxAge: 3600})
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
<script src="https://www.google-analytics.com/analytics.js"></script>
</head><body>
<div class="cookie-banner"><p>We use cookies.</p>
<a href="/accept" class="btn-accept">Accept all</a>
<a href="/reject" class="btn-reject">Reject all</a>
</div>
<footer><a href="/privacy">Privacy policy</a></footer>
</body></html>`)
	})
	mux.HandleFunc("/accept", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "cookie_consent", Value: "all", Path: "/", MaxAge: 3600})
		fmt.Fprint(w, `<html><body><p>Thanks</p></body></html>`)
	})
	mux.HandleFunc("/privacy", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Privacy</h1><p>Short.</p></body></html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPipelineWithStaticPage(t *testing.T) {
	t.Parallel()

	srv := gdprSite(t)
	page := browser.NewStaticPage(srv.Client())
	t.Cleanup(func() { _ = page.Close() })

	registry := analyzer.NewRegistry(analyzer.WithProbeTimeout(5 * time.Second))
	scan := NewScan(srv.URL, page, registry)
	if err := testPipeline().Execute(context.Background(), scan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := scan.Result

	if len(r.PerformedSteps) != 7 {
		t.Errorf("expected all steps, got %v", r.PerformedSteps)
	}
	if !r.ConsentBanner.Found {
		t.Error("expected consent banner")
	}

	var ga *model.CookieInfo
	for i := range r.Cookies {
		if r.Cookies[i].Name == "_ga" {
			ga = &r.Cookies[i]
		}
	}
	if ga == nil {
		t.Fatalf("expected _ga cookie, got %+v", r.Cookies)
	}
	if !ga.SetBeforeConsent || ga.Category != model.CookieAnalytics {
		t.Errorf("unexpected _ga cookie %+v", *ga)
	}

	trackers := r.TrackersBeforeConsent()
	if len(trackers) != 1 || trackers[0].Name != "Google Analytics" {
		t.Errorf("expected Google Analytics before consent, got %+v", r.Trackers)
	}

	codes := r.IssueCodes()
	for _, code := range []model.IssueCode{
		model.CodeCookiesBeforeConsent,
		model.CodeTrackersBeforeConsent,
		model.CodeNoHTTPS,
	} {
		if !slices.Contains(codes, string(code)) {
			t.Errorf("expected %s in %v", code, codes)
		}
	}
	if r.Score >= 100 {
		t.Errorf("expected reduced score, got %d", r.Score)
	}
	if r.OverallRisk != model.RiskCritical {
		t.Errorf("expected CRITICAL, got %s", r.OverallRisk)
	}
}
