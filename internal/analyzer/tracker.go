package analyzer

import (
	"sync"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/patterns"
	"github.com/nao1215/gdprscan/internal/urlutil"
)

// TrackerAnalyzer matches network requests against the tracker database
// and counts third-party requests.
type TrackerAnalyzer struct {
	mu       sync.Mutex
	trackers map[string]model.TrackerInfo
	order    []string

	thirdParty model.ThirdPartyRequests
}

// NewTrackerAnalyzer creates a tracker analyzer.
func NewTrackerAnalyzer() *TrackerAnalyzer {
	return &TrackerAnalyzer{trackers: make(map[string]model.TrackerInfo)}
}

// Name returns the analyzer name.
func (a *TrackerAnalyzer) Name() string { return NameTrackers }

// Reset clears captured trackers and counters.
func (a *TrackerAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trackers = make(map[string]model.TrackerInfo)
	a.order = nil
	a.thirdParty = model.ThirdPartyRequests{}
}

// OnRequest records the request. The first sighting of a tracker decides
// whether it loaded before consent.
func (a *TrackerAnalyzer) OnRequest(sc *model.ScanContext, req browser.Request) {
	beforeConsent := !sc.ConsentGiven()
	thirdParty := urlutil.IsThirdParty(req.URL, sc.BaseDomain)
	match, matched := patterns.MatchTracker(req.URL)

	a.mu.Lock()
	defer a.mu.Unlock()

	if thirdParty {
		a.thirdParty.Total++
		if beforeConsent {
			a.thirdParty.BeforeConsent++
		}
	}
	if !matched {
		return
	}

	info := model.TrackerInfo{
		Name:                match.Tracker.Name,
		Type:                match.Tracker.Type,
		Domain:              match.Domain,
		LoadedBeforeConsent: beforeConsent,
	}
	key := info.Key()
	if _, ok := a.trackers[key]; ok {
		return
	}
	a.trackers[key] = info
	a.order = append(a.order, key)
}

// Trackers returns the detected trackers in order of first sighting.
func (a *TrackerAnalyzer) Trackers() []model.TrackerInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.TrackerInfo, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.trackers[key])
	}
	return out
}

// ThirdPartyRequests returns the third-party request counters.
func (a *TrackerAnalyzer) ThirdPartyRequests() model.ThirdPartyRequests {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.thirdParty
}

// Contribute writes trackers and third-party counters.
func (a *TrackerAnalyzer) Contribute(r *model.ScanResult) {
	r.Trackers = a.Trackers()
	r.ThirdPartyRequests = a.ThirdPartyRequests()
}
