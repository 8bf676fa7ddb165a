package analyzer

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/patterns"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

// DataTransferAnalyzer detects requests to US-headquartered services.
type DataTransferAnalyzer struct {
	mu       sync.Mutex
	services map[string]model.TransferService
}

// NewDataTransferAnalyzer creates a data transfer analyzer.
func NewDataTransferAnalyzer() *DataTransferAnalyzer {
	return &DataTransferAnalyzer{services: make(map[string]model.TransferService)}
}

// Name returns the analyzer name.
func (a *DataTransferAnalyzer) Name() string { return NameTransfers }

// Reset clears detected services.
func (a *DataTransferAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.services = make(map[string]model.TransferService)
}

// OnRequest matches the request host. Each vendor is recorded once; when
// several of its hosts are seen, the lowest host name is kept so that the
// order of requests does not matter.
func (a *DataTransferAnalyzer) OnRequest(_ *model.ScanContext, req browser.Request) {
	host := urlutil.Host(req.URL)
	svc, ok := patterns.MatchTransfer(host)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.services[svc.Name]; ok && prev.Domain <= host {
		return
	}
	a.services[svc.Name] = model.TransferService{
		Name:     svc.Name,
		Category: svc.Category,
		Country:  svc.Country,
		Domain:   host,
	}
}

// Info returns the transfer summary, with services sorted by name.
func (a *DataTransferAnalyzer) Info() model.DataTransferInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	services := slices.SortedFunc(maps.Values(a.services), func(x, y model.TransferService) int {
		return strings.Compare(x.Name, y.Name)
	})
	info := model.DataTransferInfo{
		USServices:      services,
		TotalUSServices: len(services),
	}
	for _, s := range services {
		if patterns.IsHighRisk(s.Category) {
			info.HighRiskTransfers = append(info.HighRiskTransfers, s)
		}
	}
	return info
}

// Contribute writes the transfer summary.
func (a *DataTransferAnalyzer) Contribute(r *model.ScanResult) {
	r.DataTransfers = a.Info()
}
