package analyzer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/textutil"
)

// Consent banner thresholds.
const (
	// blockingAreaRatio is the share of the viewport above which a banner
	// blocks the page.
	blockingAreaRatio = 0.30

	// prominenceRatio is the minimum reject/accept area ratio for the two
	// buttons to count as equally prominent.
	prominenceRatio = 0.5

	// minGranularCategories is the number of distinct categories a banner
	// offers for its consent to be granular.
	minGranularCategories = 2
)

// buttonRole is what a banner control does.
type buttonRole int

const (
	roleNone buttonRole = iota
	roleAccept
	roleReject
	roleSettings
	roleClose
)

// bannerButtons are the largest banner control of each role.
type bannerButtons struct {
	accept   *browser.Element
	reject   *browser.Element
	settings *browser.Element
	close    *browser.Element
}

// ConsentAnalyzer detects the consent banner, assesses its quality and
// performs the consent action.
type ConsentAnalyzer struct {
	probe

	mu       sync.Mutex
	info     model.ConsentBannerInfo
	accept   *browser.Element
	acceptBy []string
}

// NewConsentAnalyzer creates a consent analyzer.
func NewConsentAnalyzer(o Options) *ConsentAnalyzer {
	return &ConsentAnalyzer{
		probe: newProbe(NameConsent, o),
		info:  model.NewConsentBannerInfo(),
	}
}

// Name returns the analyzer name.
func (a *ConsentAnalyzer) Name() string { return NameConsent }

// Reset clears the banner state.
func (a *ConsentAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = model.NewConsentBannerInfo()
	a.accept = nil
	a.acceptBy = nil
}

// OnBeforeConsent detects the banner and assesses it.
func (a *ConsentAnalyzer) OnBeforeConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) {
	info := model.NewConsentBannerInfo()
	info.TCFDetected = a.detectTCF(ctx, page, sc)

	banner, selector, platform := a.findBanner(ctx, page, sc)
	if banner == nil {
		a.mu.Lock()
		a.info = info
		a.accept = nil
		a.acceptBy = nil
		a.mu.Unlock()
		return
	}

	info.Found = true
	info.Selector = selector
	info.Platform = platform

	buttons := a.findButtons(ctx, page, sc, selector)
	info.HasAcceptButton = buttons.accept != nil
	info.HasRejectButton = buttons.reject != nil
	info.HasSettingsOption = buttons.settings != nil
	info.IsBlocking = isBlocking(banner.Box, page.Viewport())

	toggles := a.queryScoped(ctx, page, sc, selector, toggleSelectors)
	info.Quality = assessQuality(info, buttons, toggles)

	acceptBy := acceptSelectors(platform, selector, buttons.accept)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = info
	a.accept = buttons.accept
	a.acceptBy = acceptBy
}

// AcceptConsent clicks the accept control of the detected banner. Known
// platform selectors are tried first, then a selector built from the
// accept element itself.
func (a *ConsentAnalyzer) AcceptConsent(ctx context.Context, page browser.Page, sc *model.ScanContext) bool {
	a.mu.Lock()
	found := a.info.Found
	selectors := slices.Clone(a.acceptBy)
	a.mu.Unlock()

	if !found {
		return false
	}
	for _, sel := range selectors {
		pctx, cancel := a.context(ctx)
		err := page.Click(pctx, sel)
		cancel()
		if err == nil {
			return true
		}
		a.failed(sc, "click "+sel, err)
	}
	return false
}

// Info returns the banner info.
func (a *ConsentAnalyzer) Info() model.ConsentBannerInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info
}

// Contribute writes the banner info.
func (a *ConsentAnalyzer) Contribute(r *model.ScanResult) {
	r.ConsentBanner = a.Info()
}

// findBanner returns the first visible element matching a platform selector,
// then a generic one.
func (a *ConsentAnalyzer) findBanner(ctx context.Context, page browser.Page, sc *model.ScanContext) (*browser.Element, string, string) {
	for _, c := range cmps {
		for _, sel := range c.banner {
			if el := a.firstVisible(ctx, page, sc, sel); el != nil {
				return el, sel, c.platform
			}
		}
	}
	for _, sel := range genericBannerSelectors {
		if el := a.firstVisible(ctx, page, sc, sel); el != nil {
			return el, sel, ""
		}
	}
	return nil, "", ""
}

func (a *ConsentAnalyzer) firstVisible(ctx context.Context, page browser.Page, sc *model.ScanContext, selector string) *browser.Element {
	pctx, cancel := a.context(ctx)
	defer cancel()

	elements, err := page.Query(pctx, selector)
	if err != nil {
		a.failed(sc, "query "+selector, err)
		return nil
	}
	for i := range elements {
		if elements[i].Visible {
			return &elements[i]
		}
	}
	return nil
}

// queryScoped queries descendants of the banner.
func (a *ConsentAnalyzer) queryScoped(ctx context.Context, page browser.Page, sc *model.ScanContext, scope string, selectors []string) []browser.Element {
	scoped := make([]string, 0, len(selectors))
	for _, s := range selectors {
		scoped = append(scoped, scope+" "+s)
	}
	selector := strings.Join(scoped, ", ")

	pctx, cancel := a.context(ctx)
	defer cancel()
	elements, err := page.Query(pctx, selector)
	if err != nil {
		a.failed(sc, "query "+selector, err)
		return nil
	}
	return elements
}

func (a *ConsentAnalyzer) findButtons(ctx context.Context, page browser.Page, sc *model.ScanContext, scope string) bannerButtons {
	var buttons bannerButtons
	for _, el := range a.queryScoped(ctx, page, sc, scope, buttonSelectors) {
		if !el.Visible {
			continue
		}
		var slot **browser.Element
		switch classifyButton(el) {
		case roleAccept:
			slot = &buttons.accept
		case roleReject:
			slot = &buttons.reject
		case roleSettings:
			slot = &buttons.settings
		case roleClose:
			slot = &buttons.close
		default:
			continue
		}
		if *slot == nil || el.Box.Area() > (*slot).Box.Area() {
			e := el
			*slot = &e
		}
	}
	return buttons
}

// buttonName is the text a control is matched on.
func buttonName(el browser.Element) string {
	parts := []string{el.Text, el.Label, el.Attr("value"), el.Attr("title")}
	return strings.Join(slices.DeleteFunc(parts, func(s string) bool { return s == "" }), " ")
}

// classifyButton decides the role of a control from its name. Reject and
// settings phrases win over accept, so "Accept only necessary" rejects.
// "Accept and close" is an accept control, not a close control.
func classifyButton(el browser.Element) buttonRole {
	name := buttonName(el)
	if strings.TrimSpace(name) == "" {
		return roleNone
	}
	accept := textutil.HasAnyPhrase(name, acceptKeywords)
	switch {
	case textutil.HasAnyPhrase(name, closeKeywords) && !accept:
		return roleClose
	case textutil.HasAnyPhrase(name, rejectKeywords):
		return roleReject
	case textutil.HasAnyPhrase(name, settingsKeywords):
		return roleSettings
	case accept:
		return roleAccept
	default:
		return roleNone
	}
}

func isBlocking(box browser.Rect, viewport browser.Size) bool {
	if viewport.Area() <= 0 {
		return false
	}
	return box.Area()/viewport.Area() > blockingAreaRatio
}

func assessQuality(info model.ConsentBannerInfo, buttons bannerButtons, toggles []browser.Element) model.ConsentQuality {
	q := model.ConsentQuality{CloseButtonRejects: model.Unknown}

	q.EqualProminence = equalProminence(buttons.accept, buttons.reject)
	q.CookieWall = info.IsBlocking && !info.HasRejectButton && !info.HasSettingsOption

	if buttons.close != nil {
		q.CloseButtonRejects = model.TristateOf(textutil.HasAnyPhrase(buttonName(*buttons.close), rejectKeywords))
	}

	categories := make(map[string]bool)
	for _, t := range toggles {
		label := toggleLabel(t)
		for _, c := range consentCategories {
			if !textutil.HasAnyPhrase(label, c.keywords) {
				continue
			}
			categories[c.name] = true
			if toggleChecked(t) && !textutil.HasAnyPhrase(label, essentialKeywords) &&
				!slices.Contains(q.PreCheckedCategories, c.name) {
				q.PreCheckedCategories = append(q.PreCheckedCategories, c.name)
			}
		}
	}
	q.PreCheckedBoxes = len(q.PreCheckedCategories) > 0
	q.CategoryCount = len(categories)
	q.GranularConsent = q.CategoryCount >= minGranularCategories
	return q
}

// equalProminence compares button sizes. Without geometry, both buttons
// existing is enough.
func equalProminence(accept, reject *browser.Element) bool {
	switch {
	case accept == nil:
		return true
	case reject == nil:
		return false
	case accept.Box.Area() == 0:
		return true
	default:
		return reject.Box.Area() >= prominenceRatio*accept.Box.Area()
	}
}

func toggleLabel(el browser.Element) string {
	for _, s := range []string{el.Label, el.Attr("aria-label"), el.Attr("name"), el.Attr("id"), el.Text} {
		if strings.TrimSpace(s) != "" {
			return strings.NewReplacer("-", " ", "_", " ").Replace(s)
		}
	}
	return ""
}

func toggleChecked(el browser.Element) bool {
	return el.Checked || strings.EqualFold(el.Attr("aria-checked"), "true")
}

// detectTCF reports whether the IAB TCF API is present.
func (a *ConsentAnalyzer) detectTCF(ctx context.Context, page browser.Page, sc *model.ScanContext) bool {
	pctx, cancel := a.context(ctx)
	defer cancel()

	frames, err := page.Query(pctx, `iframe[name="__tcfapiLocator"]`)
	if err != nil {
		a.failed(sc, "query tcf locator", err)
	}
	if len(frames) > 0 {
		return true
	}

	html, err := page.HTML(pctx)
	if err != nil {
		a.failed(sc, "html", err)
		return false
	}
	return strings.Contains(html, "__tcfapi")
}

// acceptSelectors lists the selectors AcceptConsent tries, in order.
func acceptSelectors(platform, scope string, accept *browser.Element) []string {
	var selectors []string
	for _, c := range cmps {
		if c.platform == platform {
			selectors = append(selectors, c.accept...)
		}
	}
	if accept != nil {
		if sel := elementSelector(scope, *accept); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	return selectors
}

// elementSelector builds a selector for el: its id if it has one, otherwise
// its tag and identifying attributes under scope.
func elementSelector(scope string, el browser.Element) string {
	if id := el.Attr("id"); id != "" {
		return fmt.Sprintf(`[id="%s"]`, cssQuote(id))
	}
	if el.Tag == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(scope)
	b.WriteString(" ")
	b.WriteString(strings.ToLower(el.Tag))
	for _, attr := range []string{"class", "name", "data-testid", "aria-label", "value", "href"} {
		if v := el.Attr(attr); v != "" {
			fmt.Fprintf(&b, `[%s="%s"]`, attr, cssQuote(v))
		}
	}
	return b.String()
}

func cssQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
