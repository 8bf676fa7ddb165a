package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/gdprscan/internal/analyzer"
	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

// DefaultConcurrency is the number of scans run at the same time.
const DefaultConcurrency = 1

// PageFactory opens a fresh browser page for the scan of url.
type PageFactory func(ctx context.Context, url string) (browser.Page, error)

// RegistryFactory creates fresh analyzers for the scan of url.
type RegistryFactory func(url string) *analyzer.Registry

// BatchProcessor scans many URLs concurrently.
// Every scan gets its own page, registry and pipeline, so scans share no
// mutable state.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	pages           PageFactory
	registries      RegistryFactory

	concurrency int
	scanTimeout time.Duration
	onResult    func(result *model.ScanResult, index int)
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithScanTimeout bounds each scan. Zero means no limit besides ctx.
func WithScanTimeout(d time.Duration) BatchOption {
	return func(b *BatchProcessor) {
		if d > 0 {
			b.scanTimeout = d
		}
	}
}

// WithOnResult registers a callback invoked as soon as a scan finishes.
// It is called from the scan goroutine.
func WithOnResult(fn func(result *model.ScanResult, index int)) BatchOption {
	return func(b *BatchProcessor) {
		b.onResult = fn
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, pages PageFactory, registries RegistryFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		pages:           pages,
		registries:      registries,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = discardLogger()
	}
	return bp
}

// ProcessBatch scans every URL and returns the results in input order.
//
// A scan that fails still yields a result carrying its errors. The returned
// error is ctx.Err() when the batch was interrupted.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.ScanResult, error) {
	bp.logger.Info("starting batch",
		"total", len(urls),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	results := make([]*model.ScanResult, len(urls))

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			result := bp.scanOne(ctx, url, i, len(urls))
			results[i] = result
			if bp.onResult != nil {
				bp.onResult(result, i)
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // scan goroutines never fail

	bp.logger.Info("batch complete",
		"total", len(urls),
		"elapsed", time.Since(start),
	)
	return results, ctx.Err()
}

func (bp *BatchProcessor) scanOne(ctx context.Context, url string, index, total int) *model.ScanResult {
	if err := ctx.Err(); err != nil {
		result := model.NewScanResult(url)
		result.TimedOut = true
		result.Aborted = true
		result.AddError(err)
		return result
	}

	if bp.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bp.scanTimeout)
		defer cancel()
	}

	bp.logger.Info("scanning", "url", url, "index", index+1, "total", total)

	page, err := bp.pages(ctx, url)
	if err != nil {
		bp.logger.Warn("failed to open page", "url", url, "error", err)
		result := model.NewScanResult(url)
		result.Aborted = true
		result.AddError(fmt.Errorf("%w: %w", ErrScanAborted, err))
		return result
	}
	defer func() {
		if err := page.Close(); err != nil {
			bp.logger.Debug("failed to close page", "url", url, "error", err)
		}
	}()

	scan := NewScan(url, page, bp.registries(url))
	if err := bp.pipelineFactory().Execute(ctx, scan); err != nil {
		bp.logger.Warn("scan failed", "url", url, "error", err)
		return scan.Result
	}

	bp.logger.Info("scan complete",
		"url", url,
		"score", scan.Result.Score,
		"risk", scan.Result.OverallRisk,
	)
	return scan.Result
}
