package analyzer

import (
	"bytes"
	"context"
	"math"
	"sync"
	"time"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

// SSLAnalyzer inspects the TLS certificate of HTTPS sites.
type SSLAnalyzer struct {
	probe
	prober TLSProbe
	now    func() time.Time

	mu   sync.Mutex
	info model.SSLCertificateInfo
}

// NewSSLAnalyzer creates an SSL analyzer. Without a TLS prober it records
// nothing.
func NewSSLAnalyzer(o Options) *SSLAnalyzer {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return &SSLAnalyzer{
		probe:  newProbe(NameSSL, o),
		prober: o.TLSProbe,
		now:    now,
	}
}

// Name returns the analyzer name.
func (a *SSLAnalyzer) Name() string { return NameSSL }

// Reset clears the certificate info.
func (a *SSLAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = model.SSLCertificateInfo{}
}

// OnAnalyze probes the TLS endpoint of the landing page host.
func (a *SSLAnalyzer) OnAnalyze(ctx context.Context, _ browser.Page, sc *model.ScanContext) {
	if a.prober == nil || !sc.IsHTTPS {
		return
	}
	target := sc.FinalURL
	if target == "" {
		target = sc.URL
	}
	host := urlutil.HostPort(target)
	if host == "" {
		return
	}

	pctx, cancel := a.context(ctx)
	defer cancel()
	state, err := a.prober.Probe(pctx, host)
	if err != nil {
		a.unavailable(sc, "tls", err)
		return
	}

	info := CertificateInfo(state, a.now())
	a.mu.Lock()
	a.info = info
	a.mu.Unlock()
}

// Contribute writes the certificate info.
func (a *SSLAnalyzer) Contribute(r *model.ScanResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r.SSLCertificate = a.info
}

// CertificateInfo converts a handshake result into certificate info.
func CertificateInfo(state *browser.TLSState, now time.Time) model.SSLCertificateInfo {
	info := model.SSLCertificateInfo{
		Checked:            true,
		Valid:              state.Authorized,
		AuthorizationError: state.AuthorizationError,
		Protocol:           state.Protocol,
		Cipher:             state.Cipher,
		OCSPStapled:        state.OCSPStapled,
		OCSPStatus:         state.OCSPStatus,
	}

	cert := state.Certificate
	if cert == nil {
		return info
	}
	info.Issuer = cert.Issuer.String()
	info.Subject = cert.Subject.String()
	info.ValidFrom = cert.NotBefore
	info.ValidTo = cert.NotAfter
	info.DaysUntilExpiry = int(math.Floor(cert.NotAfter.Sub(now).Hours() / 24))
	info.SelfSigned = bytes.Equal(cert.RawIssuer, cert.RawSubject)
	return info
}
