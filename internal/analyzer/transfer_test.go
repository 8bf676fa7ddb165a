package analyzer

import (
	"testing"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
)

func TestDataTransferAnalyzer(t *testing.T) {
	t.Parallel()

	sc := model.NewScanContext("https://example.de/", "example.de")
	a := NewDataTransferAnalyzer()
	for _, u := range []string{
		"https://www.googletagmanager.com/gtag/js?id=G-1",
		"https://www.google-analytics.com/g/collect",
		"https://js.stripe.com/v3/",
		"https://example.de/main.css",
		"not a url",
	} {
		a.OnRequest(sc, browser.Request{URL: u})
	}

	info := a.Info()
	if info.TotalUSServices != 2 {
		t.Fatalf("TotalUSServices = %d, expected 2: %+v", info.TotalUSServices, info.USServices)
	}
	ga := info.USServices[0]
	if ga.Name != "Google Analytics" || ga.Domain != "www.google-analytics.com" || ga.Country != "US" {
		t.Errorf("first service = %+v", ga)
	}
	if info.USServices[1].Category != model.TransferPayment {
		t.Errorf("second service = %+v, expected payment", info.USServices[1])
	}
	if len(info.HighRiskTransfers) != 1 || info.HighRiskTransfers[0].Name != "Google Analytics" {
		t.Errorf("HighRiskTransfers = %+v", info.HighRiskTransfers)
	}

	a.Reset()
	if a.Info().TotalUSServices != 0 {
		t.Error("reset should clear services")
	}
}
