package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/gdprscan/internal/analyzer"
	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline { return New() }

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, nil, nil)
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, nil, nil,
			WithConcurrency(4),
			WithScanTimeout(time.Minute),
		)
		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
		if bp.scanTimeout != time.Minute {
			t.Errorf("expected scan timeout 1m, got %v", bp.scanTimeout)
		}
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, nil, nil, WithConcurrency(0), WithScanTimeout(-time.Second))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency, got %d", bp.concurrency)
		}
		if bp.scanTimeout != 0 {
			t.Errorf("expected no scan timeout, got %v", bp.scanTimeout)
		}
	})
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("results keep input order and use fresh pages", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			pages []*fakePage
		)
		pageFactory := func(_ context.Context, _ string) (browser.Page, error) {
			p := &fakePage{}
			mu.Lock()
			pages = append(pages, p)
			mu.Unlock()
			return p, nil
		}
		var registries atomic.Int32
		registryFactory := func(string) *analyzer.Registry {
			registries.Add(1)
			return emptyRegistry()
		}

		var callbacks atomic.Int32
		bp := NewBatchProcessor(testPipeline, pageFactory, registryFactory,
			WithConcurrency(3),
			WithOnResult(func(*model.ScanResult, int) { callbacks.Add(1) }),
		)
		urls := []string{"https://a.example", "https://b.example", "https://c.example", "https://d.example"}

		results, err := bp.ProcessBatch(context.Background(), urls)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != len(urls) {
			t.Fatalf("expected %d results, got %d", len(urls), len(results))
		}
		for i, r := range results {
			if !strings.HasPrefix(r.URL, urls[i]) {
				t.Errorf("result %d: expected %s, got %s", i, urls[i], r.URL)
			}
			if r.Aborted {
				t.Errorf("result %d aborted: %v", i, r.Errors)
			}
		}
		if registries.Load() != 4 || len(pages) != 4 {
			t.Errorf("expected 4 registries and pages, got %d and %d", registries.Load(), len(pages))
		}
		for i, p := range pages {
			if !p.isClosed() {
				t.Errorf("page %d not closed", i)
			}
		}
		if callbacks.Load() != 4 {
			t.Errorf("expected 4 callbacks, got %d", callbacks.Load())
		}
	})

	t.Run("page failure yields aborted result", func(t *testing.T) {
		t.Parallel()

		pageFactory := func(_ context.Context, url string) (browser.Page, error) {
			if strings.Contains(url, "broken") {
				return nil, errFake
			}
			return &fakePage{}, nil
		}
		bp := NewBatchProcessor(testPipeline, pageFactory, func(string) *analyzer.Registry { return emptyRegistry() })

		results, err := bp.ProcessBatch(context.Background(), []string{"https://broken.example", "https://ok.example"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !results[0].Aborted || len(results[0].Errors) != 1 {
			t.Errorf("expected aborted result with error, got %+v", results[0])
		}
		if results[1].Aborted {
			t.Errorf("expected second scan to succeed, got %v", results[1].Errors)
		}
	})

	t.Run("cancelled batch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(testPipeline,
			func(context.Context, string) (browser.Page, error) { return &fakePage{}, nil },
			func(string) *analyzer.Registry { return emptyRegistry() },
		)
		results, err := bp.ProcessBatch(ctx, []string{"https://a.example", "https://b.example"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		for i, r := range results {
			if r == nil || !r.TimedOut || !r.Aborted {
				t.Errorf("result %d: expected timed out placeholder, got %+v", i, r)
			}
		}
	})
}
