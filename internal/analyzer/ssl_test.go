package analyzer

import (
	"bytes"
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

type fakeTLSProbe struct {
	state *browser.TLSState
	err   error
	hosts []string
}

func (f *fakeTLSProbe) Probe(_ context.Context, host string) (*browser.TLSState, error) {
	f.hosts = append(f.hosts, host)
	return f.state, f.err
}

func TestCertificateInfoDaysUntilExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		notAfter time.Time
		expected int
	}{
		{"exactly thirty days", now.Add(30 * 24 * time.Hour), 30},
		{"one hour short of thirty one", now.Add(31*24*time.Hour - time.Hour), 30},
		{"thirty one days", now.Add(31 * 24 * time.Hour), 31},
		{"expired an hour ago", now.Add(-time.Hour), -1},
		{"expires now", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			state := &browser.TLSState{Certificate: &x509.Certificate{NotAfter: tt.notAfter}}
			if got := CertificateInfo(state, now).DaysUntilExpiry; got != tt.expected {
				t.Errorf("DaysUntilExpiry = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestCertificateInfoSelfSigned(t *testing.T) {
	t.Parallel()

	name := []byte("CN=example.com")
	cert := &x509.Certificate{
		RawIssuer:  name,
		RawSubject: name,
		Issuer:     pkix.Name{CommonName: "example.com"},
		Subject:    pkix.Name{CommonName: "example.com"},
	}
	info := CertificateInfo(&browser.TLSState{
		Certificate:        cert,
		Protocol:           "TLSv1.3",
		Authorized:         false,
		AuthorizationError: "x509: certificate signed by unknown authority",
	}, time.Now())

	if !info.SelfSigned {
		t.Error("SelfSigned should be set when issuer equals subject")
	}
	if info.Valid {
		t.Error("Valid should follow Authorized")
	}
	if info.Subject != "CN=example.com" || info.Protocol != "TLSv1.3" {
		t.Errorf("info = %+v", info)
	}

	cert.RawIssuer = []byte("CN=Example CA")
	if CertificateInfo(&browser.TLSState{Certificate: cert}, time.Now()).SelfSigned {
		t.Error("SelfSigned should be false for a CA issued certificate")
	}
}

func TestSSLAnalyzerOnAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("probes the landing host", func(t *testing.T) {
		t.Parallel()
		probe := &fakeTLSProbe{state: &browser.TLSState{Protocol: "TLSv1.2", Authorized: true}}
		a := NewSSLAnalyzer(Options{TLSProbe: probe})
		sc := model.NewScanContext("https://example.com/", "example.com")
		sc.FinalURL = "https://www.example.com/"
		sc.IsHTTPS = true

		a.OnAnalyze(context.Background(), newFakePage("https://www.example.com/privacy", ""), sc)

		if len(probe.hosts) != 1 || probe.hosts[0] != "www.example.com" {
			t.Errorf("probed hosts = %v", probe.hosts)
		}
		var result model.ScanResult
		a.Contribute(&result)
		if !result.SSLCertificate.Checked || !result.SSLCertificate.Valid {
			t.Errorf("SSLCertificate = %+v", result.SSLCertificate)
		}
	})

	t.Run("keeps a non-default port", func(t *testing.T) {
		t.Parallel()
		probe := &fakeTLSProbe{state: &browser.TLSState{Protocol: "TLSv1.3", Authorized: true}}
		a := NewSSLAnalyzer(Options{TLSProbe: probe})
		sc := model.NewScanContext("https://example.com:8443/", "example.com")
		sc.FinalURL = "https://example.com:8443/"
		sc.IsHTTPS = true

		a.OnAnalyze(context.Background(), newFakePage("https://example.com:8443/", ""), sc)

		if len(probe.hosts) != 1 || probe.hosts[0] != "example.com:8443" {
			t.Errorf("probed hosts = %v", probe.hosts)
		}
	})

	t.Run("skips plain http", func(t *testing.T) {
		t.Parallel()
		probe := &fakeTLSProbe{}
		a := NewSSLAnalyzer(Options{TLSProbe: probe})
		sc := model.NewScanContext("http://example.com/", "example.com")
		a.OnAnalyze(context.Background(), newFakePage("http://example.com/", ""), sc)
		if len(probe.hosts) != 0 {
			t.Errorf("probe should not run, got %v", probe.hosts)
		}
	})

	t.Run("probe failure leaves defaults", func(t *testing.T) {
		t.Parallel()
		probe := &fakeTLSProbe{err: browser.ErrTLSHandshake}
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
		a := NewSSLAnalyzer(Options{TLSProbe: probe, Logger: logger})
		sc := model.NewScanContext("https://example.com/", "example.com")
		sc.IsHTTPS = true
		a.OnAnalyze(context.Background(), newFakePage("https://example.com/", ""), sc)
		var result model.ScanResult
		a.Contribute(&result)
		if result.SSLCertificate.Checked {
			t.Error("Checked should stay false when the probe fails")
		}
		if out := logs.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "analyzer=ssl") {
			t.Errorf("expected a warning for the failed handshake, got %q", out)
		}
	})
}
