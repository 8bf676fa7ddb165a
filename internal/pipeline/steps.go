package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/gdprscan/internal/analyzer"
	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/issues"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

const (
	// DefaultNavigateTimeout bounds the first page load.
	DefaultNavigateTimeout = 30 * time.Second

	// DefaultSettleDelay is how long the page may react to the consent
	// click before it is probed again.
	DefaultSettleDelay = 2 * time.Second
)

// Step names, in execution order.
const (
	StepNavigate      = "navigate"
	StepBeforeConsent = "before-consent"
	StepConsent       = "consent"
	StepAfterConsent  = "after-consent"
	StepAnalyze       = "analyze"
	StepCollect       = "collect"
	StepIssues        = "issues"
)

// ErrUnexpectedStatus is recorded when the start page answers with an
// error status. The scan still analyzes whatever the page returned.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NavigateStep loads the start page and fills the scan context.
// Request events of the page are routed to the RequestHooks from here on.
type NavigateStep struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NavigateStepOption configures a NavigateStep.
type NavigateStepOption func(*NavigateStep)

// WithNavigateTimeout sets the page load timeout.
func WithNavigateTimeout(d time.Duration) NavigateStepOption {
	return func(s *NavigateStep) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNavigateLogger sets the step logger.
func WithNavigateLogger(logger *slog.Logger) NavigateStepOption {
	return func(s *NavigateStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewNavigateStep creates the navigate step.
func NewNavigateStep(opts ...NavigateStepOption) *NavigateStep {
	s := &NavigateStep{
		timeout: DefaultNavigateTimeout,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *NavigateStep) Name() string {
	return StepNavigate
}

// Do normalizes the URL and navigates to it. Any failure aborts the scan.
func (s *NavigateStep) Do(ctx context.Context, scan *Scan) error {
	normalized, err := urlutil.Normalize(scan.Context.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanAborted, err)
	}

	sc := scan.Context
	sc.URL = normalized
	sc.BaseDomain = urlutil.BaseDomainOf(normalized)
	scan.Result.URL = normalized
	scan.Result.BaseDomain = sc.BaseDomain

	var requestHooks []analyzer.RequestHook
	var responseHooks []analyzer.ResponseHook
	for _, a := range scan.Registry.Analyzers() {
		if h, ok := a.(analyzer.RequestHook); ok {
			requestHooks = append(requestHooks, h)
		}
		if h, ok := a.(analyzer.ResponseHook); ok {
			responseHooks = append(responseHooks, h)
		}
	}
	scan.Page.OnRequest(func(req browser.Request) {
		for _, h := range requestHooks {
			h.OnRequest(sc, req)
		}
	})

	navCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := scan.Page.Navigate(navCtx, normalized)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanAborted, err)
	}

	final := resp.URL
	if final == "" {
		final = scan.Page.URL()
	}
	if final == "" {
		final = normalized
	}
	sc.FinalURL = final
	sc.IsHTTPS = urlutil.IsHTTPS(final)
	scan.Result.FinalURL = final

	for _, h := range responseHooks {
		h.OnResponse(sc, resp)
	}

	s.logger.Debug("page loaded",
		"url", normalized,
		"final_url", final,
		"status", resp.StatusCode,
	)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// BeforeConsentStep runs every BeforeConsentHook.
type BeforeConsentStep struct{}

// NewBeforeConsentStep creates the before-consent step.
func NewBeforeConsentStep() *BeforeConsentStep {
	return &BeforeConsentStep{}
}

// Name returns the step name.
func (s *BeforeConsentStep) Name() string {
	return StepBeforeConsent
}

// Do runs the hooks with consent not yet given.
func (s *BeforeConsentStep) Do(ctx context.Context, scan *Scan) error {
	scan.Context.SetConsentGiven(false)
	for _, a := range scan.Registry.Analyzers() {
		if h, ok := a.(analyzer.BeforeConsentHook); ok {
			h.OnBeforeConsent(ctx, scan.Page, scan.Context)
		}
	}
	return nil
}

// ConsentStep gives consent through the first ConsentActor that succeeds.
type ConsentStep struct {
	settle time.Duration
	logger *slog.Logger
}

// ConsentStepOption configures a ConsentStep.
type ConsentStepOption func(*ConsentStep)

// WithSettleDelay sets the wait after a successful consent action.
func WithSettleDelay(d time.Duration) ConsentStepOption {
	return func(s *ConsentStep) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithConsentLogger sets the step logger.
func WithConsentLogger(logger *slog.Logger) ConsentStepOption {
	return func(s *ConsentStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewConsentStep creates the consent step.
func NewConsentStep(opts ...ConsentStepOption) *ConsentStep {
	s := &ConsentStep{
		settle: DefaultSettleDelay,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ConsentStep) Name() string {
	return StepConsent
}

// Do clicks accept. A page without an accept control keeps consent false,
// so later captures still count as before consent.
func (s *ConsentStep) Do(ctx context.Context, scan *Scan) error {
	for _, a := range scan.Registry.Analyzers() {
		actor, ok := a.(analyzer.ConsentActor)
		if !ok || !actor.AcceptConsent(ctx, scan.Page, scan.Context) {
			continue
		}
		scan.Context.SetConsentGiven(true)
		s.logger.Debug("consent given", "url", scan.Context.URL, "analyzer", a.Name())

		if s.settle > 0 {
			timer := time.NewTimer(s.settle)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		return nil
	}

	s.logger.Debug("no consent action succeeded", "url", scan.Context.URL)
	return nil
}

// AfterConsentStep runs every AfterConsentHook.
type AfterConsentStep struct{}

// NewAfterConsentStep creates the after-consent step.
func NewAfterConsentStep() *AfterConsentStep {
	return &AfterConsentStep{}
}

// Name returns the step name.
func (s *AfterConsentStep) Name() string {
	return StepAfterConsent
}

// Do runs the hooks.
func (s *AfterConsentStep) Do(ctx context.Context, scan *Scan) error {
	for _, a := range scan.Registry.Analyzers() {
		if h, ok := a.(analyzer.AfterConsentHook); ok {
			h.OnAfterConsent(ctx, scan.Page, scan.Context)
		}
	}
	return nil
}

// AnalyzeStep runs the dedicated analyzer phases one after another.
// Several of them navigate the page, so they never run concurrently.
type AnalyzeStep struct{}

// NewAnalyzeStep creates the analyze step.
func NewAnalyzeStep() *AnalyzeStep {
	return &AnalyzeStep{}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return StepAnalyze
}

// Do runs every AnalyzeHook in registry order.
func (s *AnalyzeStep) Do(ctx context.Context, scan *Scan) error {
	for _, a := range scan.Registry.Analyzers() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if h, ok := a.(analyzer.AnalyzeHook); ok {
			h.OnAnalyze(ctx, scan.Page, scan.Context)
		}
	}
	return nil
}

// CollectStep writes the analyzer findings into the result.
type CollectStep struct{}

// NewCollectStep creates the collect step.
func NewCollectStep() *CollectStep {
	return &CollectStep{}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return StepCollect
}

// Do calls every ResultContributor.
func (s *CollectStep) Do(_ context.Context, scan *Scan) error {
	for _, a := range scan.Registry.Analyzers() {
		if c, ok := a.(analyzer.ResultContributor); ok {
			c.Contribute(scan.Result)
		}
	}
	return nil
}

func (s *CollectStep) runsAfterCancel() bool { return true }

// IssuesStep generates the issues, the score and the overall risk.
type IssuesStep struct{}

// NewIssuesStep creates the issues step.
func NewIssuesStep() *IssuesStep {
	return &IssuesStep{}
}

// Name returns the step name.
func (s *IssuesStep) Name() string {
	return StepIssues
}

// Do fills Issues, Score and OverallRisk.
func (s *IssuesStep) Do(_ context.Context, scan *Scan) error {
	issues.Apply(scan.Result)
	return nil
}

func (s *IssuesStep) runsAfterCancel() bool { return true }

// DefaultPipelineConfig holds the settings of the default step list.
type DefaultPipelineConfig struct {
	NavigateTimeout time.Duration
	SettleDelay     time.Duration
	Logger          *slog.Logger
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineNavigateTimeout sets the timeout of the first page load.
func WithPipelineNavigateTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.NavigateTimeout = d
	}
}

// WithPipelineSettleDelay sets the wait after the consent click.
func WithPipelineSettleDelay(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SettleDelay = d
	}
}

// WithPipelineStepLogger sets the logger used by the steps.
func WithPipelineStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates a pipeline with every scan step in order.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		NavigateTimeout: DefaultNavigateTimeout,
		SettleDelay:     DefaultSettleDelay,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p := New(pipelineOpts...)
	p.AddSteps(
		NewNavigateStep(
			WithNavigateTimeout(cfg.NavigateTimeout),
			WithNavigateLogger(cfg.Logger),
		),
		NewBeforeConsentStep(),
		NewConsentStep(
			WithSettleDelay(cfg.SettleDelay),
			WithConsentLogger(cfg.Logger),
		),
		NewAfterConsentStep(),
		NewAnalyzeStep(),
		NewCollectStep(),
		NewIssuesStep(),
	)
	return p
}
