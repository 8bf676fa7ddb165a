package analyzer

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

// Analyzer names.
const (
	NameCookies   = "cookies"
	NameTrackers  = "trackers"
	NameConsent   = "consent"
	NamePrivacy   = "privacy"
	NameSecurity  = "security"
	NameHeaders   = "headers"
	NameSSL       = "ssl"
	NameForms     = "forms"
	NameTransfers = "transfers"
)

// Names lists the built-in analyzers in registration order.
var Names = []string{
	NameCookies,
	NameTrackers,
	NameConsent,
	NamePrivacy,
	NameSecurity,
	NameHeaders,
	NameSSL,
	NameForms,
	NameTransfers,
}

// DefaultProbeTimeout bounds a single probe: a selector query, a cookie
// read or a navigation inside a dedicated phase.
const DefaultProbeTimeout = 10 * time.Second

// Analyzer is the base interface of every analyzer.
type Analyzer interface {
	// Name returns the analyzer name used in logs and configuration.
	Name() string

	// Reset clears all captured state so the analyzer can be reused.
	Reset()
}

// ResponseHook receives the main document response.
type ResponseHook interface {
	OnResponse(sc *model.ScanContext, resp *browser.Response)
}

// RequestHook receives network requests. It may be called concurrently
// with other hooks and must only use idempotent updates.
type RequestHook interface {
	OnRequest(sc *model.ScanContext, req browser.Request)
}

// BeforeConsentHook probes the page before consent.
type BeforeConsentHook interface {
	OnBeforeConsent(ctx context.Context, page browser.Page, sc *model.ScanContext)
}

// AfterConsentHook probes the page after the consent action.
type AfterConsentHook interface {
	OnAfterConsent(ctx context.Context, page browser.Page, sc *model.ScanContext)
}

// AnalyzeHook runs a dedicated phase.
type AnalyzeHook interface {
	OnAnalyze(ctx context.Context, page browser.Page, sc *model.ScanContext)
}

// ConsentActor gives consent on the page. It reports whether it did.
type ConsentActor interface {
	AcceptConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) bool
}

// ResultContributor writes captured state into the result.
type ResultContributor interface {
	Contribute(r *model.ScanResult)
}

// TLSProbe inspects the TLS setup of a host.
type TLSProbe interface {
	Probe(ctx context.Context, host string) (*browser.TLSState, error)
}

// PageDiscoverer finds same-site pages likely to contain forms.
type PageDiscoverer interface {
	Discover(ctx context.Context, baseURL string) ([]string, error)
}

// Options configures the built-in analyzers.
type Options struct {
	ProbeTimeout time.Duration
	Logger       *slog.Logger

	// MaxFormPages caps the extra pages the forms analyzer visits.
	MaxFormPages int

	// TLSProbe is used by the SSL analyzer. nil disables the probe.
	TLSProbe TLSProbe

	// Discoverer finds pages for the forms analyzer. nil limits forms
	// analysis to the start page.
	Discoverer PageDiscoverer

	// Skip names analyzers that are not registered.
	Skip []string

	// Now is the clock used for expiry computations.
	Now func() time.Time
}

// Option configures Options.
type Option func(*Options)

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ProbeTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithMaxFormPages sets how many discovered pages the forms analyzer visits.
func WithMaxFormPages(n int) Option {
	return func(o *Options) {
		o.MaxFormPages = n
	}
}

// WithTLSProbe sets the TLS prober.
func WithTLSProbe(p TLSProbe) Option {
	return func(o *Options) {
		o.TLSProbe = p
	}
}

// WithDiscoverer sets the page discoverer.
func WithDiscoverer(d PageDiscoverer) Option {
	return func(o *Options) {
		o.Discoverer = d
	}
}

// WithSkip excludes analyzers by name.
func WithSkip(names ...string) Option {
	return func(o *Options) {
		o.Skip = append(o.Skip, names...)
	}
}

// WithClock sets the clock.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		ProbeTimeout: DefaultProbeTimeout,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxFormPages: 5,
		Now:          time.Now,
	}
}

// Registry holds the analyzers of one scan in registration order.
type Registry struct {
	analyzers []Analyzer
}

// NewRegistry creates a registry with all built-in analyzers registered,
// except those named in WithSkip.
func NewRegistry(opts ...Option) *Registry {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	r := &Registry{}
	builtins := []Analyzer{
		NewCookieAnalyzer(options),
		NewTrackerAnalyzer(),
		NewConsentAnalyzer(options),
		NewPrivacyPolicyAnalyzer(options),
		NewSecurityAnalyzer(options),
		NewHeadersAnalyzer(),
		NewSSLAnalyzer(options),
		NewFormsAnalyzer(options),
		NewDataTransferAnalyzer(),
	}
	for _, a := range builtins {
		if slices.Contains(options.Skip, a.Name()) {
			continue
		}
		r.Register(a)
	}
	return r
}

// Register appends an analyzer.
func (r *Registry) Register(a Analyzer) {
	r.analyzers = append(r.analyzers, a)
}

// Analyzers returns the registered analyzers in order.
func (r *Registry) Analyzers() []Analyzer {
	return slices.Clone(r.analyzers)
}

// Get returns the analyzer with the given name.
func (r *Registry) Get(name string) (Analyzer, bool) {
	for _, a := range r.analyzers {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Reset resets every analyzer.
func (r *Registry) Reset() {
	for _, a := range r.analyzers {
		a.Reset()
	}
}

// probe bundles the timeout and logger shared by page probing analyzers.
type probe struct {
	name    string
	timeout time.Duration
	logger  *slog.Logger
}

func newProbe(name string, o Options) probe {
	timeout := o.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	logger := o.Logger
	if logger == nil {
		logger = DefaultOptions().Logger
	}
	return probe{name: name, timeout: timeout, logger: logger}
}

func (p probe) context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

// failed logs a capture that fell back to defaults. Selector and cookie
// reads fail routinely, so they stay at Debug.
func (p probe) failed(sc *model.ScanContext, op string, err error) {
	p.log(slog.LevelDebug, sc, op, err)
}

// unavailable logs a dedicated phase that could not reach its target: a
// page navigation or a TLS handshake. Its section stays empty, so it is a
// warning.
func (p probe) unavailable(sc *model.ScanContext, op string, err error) {
	p.log(slog.LevelWarn, sc, op, err)
}

func (p probe) log(level slog.Level, sc *model.ScanContext, op string, err error) {
	p.logger.Log(context.Background(), level, "probe failed",
		"analyzer", p.name,
		"url", sc.URL,
		"op", op,
		"error", err,
	)
}
