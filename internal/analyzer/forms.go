package analyzer

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

// FormsAnalyzer inspects forms on the landing page and on discovered
// form-likely pages.
type FormsAnalyzer struct {
	probe
	discoverer PageDiscoverer
	maxPages   int

	mu    sync.Mutex
	pages []string
	forms []model.FormInfo
}

// NewFormsAnalyzer creates a forms analyzer.
func NewFormsAnalyzer(o Options) *FormsAnalyzer {
	return &FormsAnalyzer{
		probe:      newProbe(NameForms, o),
		discoverer: o.Discoverer,
		maxPages:   o.MaxFormPages,
	}
}

// Name returns the analyzer name.
func (a *FormsAnalyzer) Name() string { return NameForms }

// Reset clears captured forms.
func (a *FormsAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages = nil
	a.forms = nil
}

// OnBeforeConsent snapshots the landing page forms before any phase
// navigates away.
func (a *FormsAnalyzer) OnBeforeConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	a.snapshot(ctx, page, sc, page.URL())
}

// OnAnalyze visits discovered pages and inspects their forms.
func (a *FormsAnalyzer) OnAnalyze(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	if a.discoverer == nil || a.maxPages <= 0 {
		return
	}

	start := sc.FinalURL
	if start == "" {
		start = sc.URL
	}
	pages, err := a.discoverer.Discover(ctx, start)
	if err != nil {
		a.failed(sc, "discover", err)
		return
	}

	visited := 0
	for _, u := range pages {
		if visited >= a.maxPages || ctx.Err() != nil {
			break
		}
		if a.analyzed(u) {
			continue
		}
		visited++

		pctx, cancel := a.context(ctx)
		_, err := page.Navigate(pctx, u)
		cancel()
		if err != nil {
			a.unavailable(sc, "navigate "+u, err)
			continue
		}
		a.snapshot(ctx, page, sc, u)
	}
}

func (a *FormsAnalyzer) analyzed(pageURL string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.pages {
		if strings.TrimSuffix(p, "/") == strings.TrimSuffix(pageURL, "/") {
			return true
		}
	}
	return false
}

func (a *FormsAnalyzer) snapshot(ctx context.Context, page browser.Page, sc *model.ScanContext, pageURL string) {
	pctx, cancel := a.context(ctx)
	defer cancel()

	document, err := page.HTML(pctx)
	if err != nil {
		a.failed(sc, "html", err)
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		a.failed(sc, "parse", err)
		return
	}
	forms := ParseForms(doc, pageURL)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages = append(a.pages, pageURL)
	a.forms = append(a.forms, forms...)
}

// Result aggregates the captured forms.
func (a *FormsAnalyzer) Result() model.FormsAnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AggregateForms(a.pages, a.forms)
}

// Contribute writes the forms analysis.
func (a *FormsAnalyzer) Contribute(r *model.ScanResult) {
	r.Forms = a.Result()
}

// AggregateForms dedups forms by signature and counts them. Search forms
// are dropped. The consent, marketing and privacy link counts cover
// data-collecting forms only.
func AggregateForms(pages []string, forms []model.FormInfo) model.FormsAnalysisResult {
	result := model.FormsAnalysisResult{
		PagesAnalyzed: append([]string(nil), pages...),
	}

	seen := make(map[string]bool)
	for _, f := range forms {
		if f.Type == model.FormSearch {
			continue
		}
		sig := formSignature(f)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		result.Forms = append(result.Forms, f)

		result.TotalForms++
		if f.HasPreCheckedMarketing {
			result.FormsWithPreCheckedMarketing++
		}
		if !f.CollectsData {
			continue
		}
		result.DataCollectionForms++
		if f.HasConsentCheckbox {
			result.FormsWithConsentCheckbox++
		} else {
			result.DataFormsWithoutConsent++
		}
		if f.HasPrivacyLink {
			result.FormsWithPrivacyLink++
		}
	}
	return result
}
