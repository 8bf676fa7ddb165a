package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/gdprscan/internal/analyzer"
	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

// ErrScanAborted marks a step error after which no further step can run.
var ErrScanAborted = errors.New("scan aborted")

// Scan is the state shared by the steps of one scan.
type Scan struct {
	Page     browser.Page
	Context  *model.ScanContext
	Registry *analyzer.Registry
	Result   *model.ScanResult
}

// NewScan prepares a scan of rawURL. The navigate step normalizes the URL
// and fills the context.
func NewScan(rawURL string, page browser.Page, registry *analyzer.Registry) *Scan {
	return &Scan{
		Page:     page,
		Context:  model.NewScanContext(rawURL, ""),
		Registry: registry,
		Result:   model.NewScanResult(rawURL),
	}
}

// Step is one stage of a scan.
type Step interface {
	// Do runs the step. Non-fatal problems should be recorded in the
	// result and reported as nil.
	Do(ctx context.Context, scan *Scan) error

	// Name returns the step name used in logs and PerformedSteps.
	Name() string
}

// finalStep is implemented by steps that still run after the scan context
// is done, so that a timed out scan keeps its partial findings.
type finalStep interface {
	runsAfterCancel() bool
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against scan.
//
// Step errors are recorded in scan.Result.Errors and execution continues.
// Once ctx is done, only the collecting steps still run and the result is
// marked as timed out. Execute returns an error only when a step aborted
// the scan.
func (p *Pipeline) Execute(ctx context.Context, scan *Scan) error {
	start := time.Now()
	defer func() {
		scan.Result.Duration = time.Since(start)
	}()

	for _, step := range p.steps {
		if ctx.Err() != nil {
			if !scan.Result.TimedOut {
				p.logger.Warn("scan context done",
					"step", step.Name(),
					"url", scan.Context.URL,
					"reason", ctx.Err(),
				)
				scan.Result.TimedOut = true
				scan.Result.AddError(fmt.Errorf("%s: %w", step.Name(), ctx.Err()))
			}
			if f, ok := step.(finalStep); !ok || !f.runsAfterCancel() {
				continue
			}
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", scan.Context.URL,
		)

		err := step.Do(ctx, scan)
		scan.Result.PerformedSteps = append(scan.Result.PerformedSteps, step.Name())
		if err == nil {
			continue
		}

		p.logger.Warn("step failed",
			"step", step.Name(),
			"url", scan.Context.URL,
			"error", err,
		)
		scan.Result.AddError(fmt.Errorf("%s: %w", step.Name(), err))
		if errors.Is(err, ErrScanAborted) {
			scan.Result.Aborted = true
			return err
		}
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
