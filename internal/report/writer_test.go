package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/gdprscan/internal/model"
)

// createTestResult creates a result with sample findings for testing.
func createTestResult() *model.ScanResult {
	r := model.NewScanResult("https://shop.example.com/")
	r.FinalURL = "https://www.shop.example.com/"
	r.BaseDomain = "example.com"
	r.ScannedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.Duration = 3200 * time.Millisecond
	r.Cookies = []model.CookieInfo{
		{Name: "_ga", Domain: ".example.com", Category: model.CookieAnalytics, SetBeforeConsent: true},
		{Name: "session", Domain: "shop.example.com", Category: model.CookieNecessary},
	}
	r.Trackers = []model.TrackerInfo{
		{Name: "Google Analytics", Type: model.TrackerAnalytics, Domain: "google-analytics.com", LoadedBeforeConsent: true},
	}
	r.ConsentBanner.Found = true
	r.ConsentBanner.Platform = "OneTrust"
	r.Security.Checked = true
	r.Security.HTTPSEnabled = true
	r.Issues = []model.ScanIssue{
		model.NewIssue(model.CodeCookiesBeforeConsent, model.RiskCritical, "Cookies set before consent",
			"1 non-essential cookie was set before consent: _ga", "Block analytics cookies until consent | opt-in"),
		model.NewIssue(model.CodeMissingCSP, model.RiskMedium, "Missing Content-Security-Policy",
			"No CSP header", "Add a Content-Security-Policy header"),
	}
	r.Score = 60
	r.OverallRisk = model.RiskCritical
	return r
}

// abortedResult creates a result for a page that never loaded.
func abortedResult() *model.ScanResult {
	r := model.NewScanResult("https://down.example.com/")
	r.Aborted = true
	r.Errors = []string{"navigate: connection refused"}
	return r
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, r *model.ScanResult, opts ...SimpleWriterOption) string {
		t.Helper()
		var buf bytes.Buffer
		opts = append([]SimpleWriterOption{WithColor(false)}, opts...)
		n, err := NewSimpleWriter(&buf, opts...).Write(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}
		return buf.String()
	}

	t.Run("writes header with score and risk", func(t *testing.T) {
		t.Parallel()

		out := write(t, createTestResult())
		for _, want := range []string{
			"GDPR COMPLIANCE REPORT",
			"URL:            https://shop.example.com/",
			"Final URL:      https://www.shop.example.com/",
			"Base Domain:    example.com",
			"Duration:       3.2s",
			"Status:         Complete",
			"Score:          60/100",
			"Overall Risk:   CRITICAL",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("groups issues by risk", func(t *testing.T) {
		t.Parallel()

		out := write(t, createTestResult())
		critical := strings.Index(out, "[!!!] CRITICAL")
		medium := strings.Index(out, "[!] MEDIUM")
		if critical < 0 || medium < 0 {
			t.Fatalf("expected risk groups in output\n%s", out)
		}
		if critical > medium {
			t.Error("expected CRITICAL group before MEDIUM group")
		}
		if strings.Contains(out, "[!!] HIGH") {
			t.Error("empty risk groups should be omitted")
		}
		if !strings.Contains(out, "* Cookies set before consent (COOKIES_BEFORE_CONSENT)") {
			t.Error("expected issue title with code")
		}
		if !strings.Contains(out, "Fix: Add a Content-Security-Policy header") {
			t.Error("expected recommendation")
		}
		if !strings.Contains(out, "  TOTAL:    2 issues") {
			t.Error("expected issue total")
		}
	})

	t.Run("descriptions and overview only when verbose", func(t *testing.T) {
		t.Parallel()

		quiet := write(t, createTestResult())
		if strings.Contains(quiet, "No CSP header") || strings.Contains(quiet, "OVERVIEW") {
			t.Error("expected no descriptions or overview without verbose")
		}

		verbose := write(t, createTestResult(), WithVerbose(true))
		for _, want := range []string{
			"No CSP header",
			"OVERVIEW",
			"Cookies:               2 (1 before consent)",
			"Consent banner:        found (OneTrust)",
			"HTTPS:                 yes",
		} {
			if !strings.Contains(verbose, want) {
				t.Errorf("expected verbose output to contain %q\n%s", want, verbose)
			}
		}
		if strings.Contains(verbose, "TLS certificate:") {
			t.Error("unchecked TLS certificate should not be listed")
		}
	})

	t.Run("no issues", func(t *testing.T) {
		t.Parallel()

		r := model.NewScanResult("https://clean.example.com/")
		out := write(t, r)
		if !strings.Contains(out, "No compliance issues detected") {
			t.Error("expected clean message")
		}
		if !strings.Contains(out, "Overall Risk:   LOW") {
			t.Error("expected LOW overall risk")
		}
	})

	t.Run("aborted scan shows errors and no score", func(t *testing.T) {
		t.Parallel()

		out := write(t, abortedResult())
		if !strings.Contains(out, "Status:         Aborted: navigate: connection refused") {
			t.Errorf("expected aborted status\n%s", out)
		}
		if strings.Contains(out, "Score:") || strings.Contains(out, "ISSUES") {
			t.Error("aborted scan should not show a score or issues")
		}
		if !strings.Contains(out, "ERRORS") {
			t.Error("expected errors section")
		}
	})

	t.Run("timed out status", func(t *testing.T) {
		t.Parallel()

		r := createTestResult()
		r.TimedOut = true
		out := write(t, r)
		if !strings.Contains(out, "Timed out (partial results)") {
			t.Error("expected timed out status")
		}
	})

	t.Run("color", func(t *testing.T) {
		t.Parallel()

		plain := write(t, createTestResult())
		if strings.Contains(plain, "\x1b[") {
			t.Error("expected no escape sequences with color disabled")
		}

		colored := write(t, createTestResult(), WithColor(true))
		if !strings.Contains(colored, "\x1b[") {
			t.Error("expected escape sequences with color enabled")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.ScanResult
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed.URL != "https://shop.example.com/" {
			t.Errorf("URL = %q", parsed.URL)
		}
		if parsed.OverallRisk != model.RiskCritical {
			t.Errorf("OverallRisk = %v, want CRITICAL", parsed.OverallRisk)
		}
		if len(parsed.Issues) != 2 || parsed.Issues[0].Code != model.CodeCookiesBeforeConsent {
			t.Errorf("Issues = %+v", parsed.Issues)
		}
		if !strings.Contains(buf.String(), `"risk_level":"CRITICAL"`) {
			t.Error("expected risk levels encoded by name")
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		for range 2 {
			if _, err := w.Write(createTestResult()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected one line per result, got %d lines", len(lines))
		}
		for _, line := range lines {
			if !json.Valid([]byte(line)) {
				t.Errorf("line is not valid JSON: %s", line)
			}
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
		if !strings.Contains(buf.String(), "\n  \"url\"") {
			t.Error("expected two-space indentation")
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent("", "\t")).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n\t\"url\"") {
			t.Error("expected tab indentation")
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.0", WithPrettyPrint()).Write(createTestResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed JSONReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", parsed.Version, "1.2.0")
	}
	if parsed.Result == nil || parsed.Result.Score != 60 {
		t.Errorf("Result = %+v", parsed.Result)
	}
}

// failingWriter is a Writer that always fails.
type failingWriter struct{ err error }

func (f failingWriter) Write(*model.ScanResult) (int, error) { return 0, f.err }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		multi := NewMultiWriter(
			NewSimpleWriter(&text, WithColor(false)),
			NewJSONWriter(&js),
		)

		n, err := multi.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("n = %d, want %d", n, text.Len()+js.Len())
		}
		if strings.HasPrefix(strings.TrimSpace(text.String()), "{") {
			t.Error("expected text output not to be JSON")
		}
		if !json.Valid(js.Bytes()) {
			t.Error("expected JSON output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errWrite := errors.New("disk full")
		var after bytes.Buffer
		multi := NewMultiWriter(failingWriter{err: errWrite}, NewJSONWriter(&after))

		if _, err := multi.Write(createTestResult()); !errors.Is(err, errWrite) {
			t.Errorf("err = %v, want %v", err, errWrite)
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, r *model.ScanResult) string {
		t.Helper()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	t.Run("writes report sections", func(t *testing.T) {
		t.Parallel()

		out := write(t, createTestResult())
		for _, want := range []string{
			"# GDPR Compliance Report",
			"https://shop.example.com/",
			"**60/100**",
			"## Risk Summary",
			"## Overview",
			"## Issues",
			"### 🔴 Critical",
			"### 🟡 Medium",
			"`COOKIES_BEFORE_CONSENT`",
			"<details>",
			"`_ga`",
			"Google Analytics",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(out, "### 🟠 High") {
			t.Error("empty risk groups should be omitted")
		}
	})

	t.Run("pie chart and caution alert", func(t *testing.T) {
		t.Parallel()

		out := write(t, createTestResult())
		if !strings.Contains(out, "```mermaid") {
			t.Error("expected mermaid code block")
		}
		if !strings.Contains(out, "Issue Risk Distribution") {
			t.Error("expected pie chart title")
		}
		if !strings.Contains(out, "[!CAUTION]") {
			t.Error("expected caution alert for critical issues")
		}
	})

	t.Run("clean result", func(t *testing.T) {
		t.Parallel()

		out := write(t, model.NewScanResult("https://clean.example.com/"))
		if strings.Contains(out, "```mermaid") {
			t.Error("expected no pie chart without issues")
		}
		if !strings.Contains(out, "[!TIP]") {
			t.Error("expected tip alert")
		}
		if !strings.Contains(out, "No compliance issues detected.") {
			t.Error("expected clean message")
		}
	})

	t.Run("aborted scan", func(t *testing.T) {
		t.Parallel()

		out := write(t, abortedResult())
		if strings.Contains(out, "## Issues") {
			t.Error("aborted scan should not list issues")
		}
		if !strings.Contains(out, "## Errors") || !strings.Contains(out, "connection refused") {
			t.Error("expected errors section")
		}
	})

	t.Run("escapes table pipes", func(t *testing.T) {
		t.Parallel()

		out := write(t, createTestResult())
		if !strings.Contains(out, `consent \| opt-in`) {
			t.Error("expected pipe in recommendation to be escaped")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact length unchanged", input: "hello", maxLen: 5, want: "hello"},
		{name: "long string truncated", input: "hello world", maxLen: 8, want: "hello..."},
		{name: "tiny limit", input: "hello", maxLen: 2, want: "he"},
		{name: "multibyte runes", input: "Datenschutzerklärung", maxLen: 12, want: "Datenschu..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *model.ScanResult
		want   string
	}{
		{name: "complete", result: &model.ScanResult{}, want: "Complete"},
		{name: "errors", result: &model.ScanResult{Errors: []string{"x"}}, want: "Completed with errors"},
		{name: "timed out", result: &model.ScanResult{TimedOut: true}, want: "Timed out (partial results)"},
		{name: "aborted wins", result: &model.ScanResult{TimedOut: true, Aborted: true}, want: "Aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := statusText(tt.result); got != tt.want {
				t.Errorf("statusText() = %q, want %q", got, tt.want)
			}
		})
	}
}
