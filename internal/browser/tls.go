package browser

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ocsp"
)

// ErrTLSHandshake is returned when no TLS session could be established.
var ErrTLSHandshake = errors.New("TLS handshake failed")

// defaultTLSTimeout bounds dial plus handshake.
const defaultTLSTimeout = 10 * time.Second

// TLSState is what a raw handshake reveals about a server.
type TLSState struct {
	// Certificate is the leaf certificate.
	Certificate *x509.Certificate

	// Chain is the full presented chain, leaf first.
	Chain []*x509.Certificate

	Protocol string
	Cipher   string

	// Authorized reports whether the chain verifies against the trust roots
	// for the requested host. AuthorizationError holds the reason if not.
	Authorized         bool
	AuthorizationError string

	OCSPStapled bool

	// OCSPStatus is good, revoked, unknown or invalid, or "" when nothing
	// was stapled.
	OCSPStatus string
}

// DialFunc opens a network connection.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// TLSProber performs certificate inspection handshakes.
type TLSProber struct {
	timeout time.Duration
	roots   *x509.CertPool
	dial    DialFunc
	now     func() time.Time
}

// TLSOption configures a TLSProber.
type TLSOption func(*TLSProber)

// WithTLSTimeout sets the dial and handshake timeout.
func WithTLSTimeout(d time.Duration) TLSOption {
	return func(p *TLSProber) {
		p.timeout = d
	}
}

// WithRoots sets the trust roots used for verification. nil means the
// system pool.
func WithRoots(roots *x509.CertPool) TLSOption {
	return func(p *TLSProber) {
		p.roots = roots
	}
}

// WithDialer routes the handshake through a custom dialer.
func WithDialer(dial DialFunc) TLSOption {
	return func(p *TLSProber) {
		p.dial = dial
	}
}

// WithClock overrides the verification time.
func WithClock(now func() time.Time) TLSOption {
	return func(p *TLSProber) {
		p.now = now
	}
}

// NewTLSProber creates a prober.
func NewTLSProber(opts ...TLSOption) *TLSProber {
	d := &net.Dialer{}
	p := &TLSProber{
		timeout: defaultTLSTimeout,
		dial:    d.DialContext,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe handshakes with host (port 443 unless given) without verifying the
// certificate, then verifies the presented chain separately so that
// expired, self-signed and mismatched certificates can still be inspected.
func (p *TLSProber) Probe(ctx context.Context, host string) (*TLSState, error) {
	addr := host
	hostname, _, err := net.SplitHostPort(host)
	if err != nil {
		hostname = host
		addr = net.JoinHostPort(host, "443")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTLSHandshake, err)
	}
	defer raw.Close()

	conn := tls.Client(raw, &tls.Config{
		ServerName:         hostname,
		InsecureSkipVerify: true, //nolint:gosec // the chain is verified separately below
		MinVersion:         tls.VersionTLS10,
		CipherSuites:       allCipherSuites(),
	})
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTLSHandshake, err)
	}
	cs := conn.ConnectionState()
	if len(cs.PeerCertificates) == 0 {
		return nil, fmt.Errorf("%w: no peer certificate", ErrTLSHandshake)
	}

	state := &TLSState{
		Certificate: cs.PeerCertificates[0],
		Chain:       cs.PeerCertificates,
		Protocol:    ProtocolName(cs.Version),
		Cipher:      tls.CipherSuiteName(cs.CipherSuite),
	}

	intermediates := x509.NewCertPool()
	for _, c := range cs.PeerCertificates[1:] {
		intermediates.AddCert(c)
	}
	_, verr := state.Certificate.Verify(x509.VerifyOptions{
		DNSName:       hostname,
		Roots:         p.roots,
		Intermediates: intermediates,
		CurrentTime:   p.now(),
	})
	if verr != nil {
		state.AuthorizationError = verr.Error()
	} else {
		state.Authorized = true
	}

	if len(cs.OCSPResponse) > 0 {
		state.OCSPStapled = true
		state.OCSPStatus = ocspStatus(cs.OCSPResponse, cs.PeerCertificates)
	}

	return state, nil
}

// allCipherSuites offers every suite, insecure ones included, so that
// servers stuck on legacy configurations still complete a handshake.
func allCipherSuites() []uint16 {
	var ids []uint16
	for _, s := range tls.CipherSuites() {
		ids = append(ids, s.ID)
	}
	for _, s := range tls.InsecureCipherSuites() {
		ids = append(ids, s.ID)
	}
	return ids
}

func ocspStatus(raw []byte, chain []*x509.Certificate) string {
	var issuer *x509.Certificate
	if len(chain) > 1 {
		issuer = chain[1]
	}
	resp, err := ocsp.ParseResponse(raw, issuer)
	if err != nil {
		return "invalid"
	}
	switch resp.Status {
	case ocsp.Good:
		return "good"
	case ocsp.Revoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// ProtocolName returns the OpenSSL style protocol name, e.g. "TLSv1.2".
func ProtocolName(version uint16) string {
	switch version {
	case tls.VersionSSL30: //nolint:staticcheck // still reported by old servers
		return "SSLv3"
	case tls.VersionTLS10:
		return "TLSv1"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return "unknown"
	}
}
