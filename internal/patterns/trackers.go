package patterns

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
)

// Tracker is a known third-party tracking vendor.
type Tracker struct {
	Name string
	Type model.TrackerType

	// Domains are matched against the request host, either exactly or as a
	// parent domain. Entries with a path ("facebook.com/tr") are matched as
	// a substring of host+path.
	Domains []string

	// Patterns are regex fallbacks matched against the full URL.
	Patterns []*regexp.Regexp
}

// trackers is the tracker database. Order matters: the first vendor that
// matches a request wins, so more specific entries come first.
var trackers = []Tracker{
	// Analytics
	{Name: "Google Analytics", Type: model.TrackerAnalytics, Domains: []string{"google-analytics.com", "analytics.google.com", "ssl.google-analytics.com"},
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)/g/collect\?`), regexp.MustCompile(`(?i)/gtag/js\?id=G-`)}},
	{Name: "Google Tag Manager", Type: model.TrackerAnalytics, Domains: []string{"googletagmanager.com"}},
	{Name: "Adobe Analytics", Type: model.TrackerAnalytics, Domains: []string{"omtrdc.net", "2o7.net", "sc.omtrdc.net"}},
	{Name: "Adobe Experience Cloud", Type: model.TrackerAnalytics, Domains: []string{"demdex.net", "adobedtm.com", "assets.adobedtm.com", "everesttech.net"}},
	{Name: "Hotjar", Type: model.TrackerAnalytics, Domains: []string{"hotjar.com", "hotjar.io"}},
	{Name: "Microsoft Clarity", Type: model.TrackerAnalytics, Domains: []string{"clarity.ms"}},
	{Name: "Mixpanel", Type: model.TrackerAnalytics, Domains: []string{"mixpanel.com", "mxpnl.com"}},
	{Name: "Segment", Type: model.TrackerAnalytics, Domains: []string{"segment.com", "segment.io"}},
	{Name: "Amplitude", Type: model.TrackerAnalytics, Domains: []string{"amplitude.com"}},
	{Name: "Heap", Type: model.TrackerAnalytics, Domains: []string{"heapanalytics.com", "heap.io"}},
	{Name: "FullStory", Type: model.TrackerAnalytics, Domains: []string{"fullstory.com"}},
	{Name: "Crazy Egg", Type: model.TrackerAnalytics, Domains: []string{"crazyegg.com"}},
	{Name: "Mouseflow", Type: model.TrackerAnalytics, Domains: []string{"mouseflow.com"}},
	{Name: "Lucky Orange", Type: model.TrackerAnalytics, Domains: []string{"luckyorange.com", "luckyorange.net"}},
	{Name: "Smartlook", Type: model.TrackerAnalytics, Domains: []string{"smartlook.com", "smartlook.cloud"}},
	{Name: "Matomo Cloud", Type: model.TrackerAnalytics, Domains: []string{"matomo.cloud", "innocraft.cloud"},
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)/(matomo|piwik)\.(js|php)(\?|$)`)}},
	{Name: "Yandex Metrica", Type: model.TrackerAnalytics, Domains: []string{"mc.yandex.ru", "mc.yandex.com", "metrika.yandex.ru"}},
	{Name: "New Relic", Type: model.TrackerAnalytics, Domains: []string{"nr-data.net", "js-agent.newrelic.com"}},
	{Name: "Datadog RUM", Type: model.TrackerAnalytics, Domains: []string{"browser-intake-datadoghq.com", "browser-intake-datadoghq.eu"}},
	{Name: "Sentry", Type: model.TrackerOther, Domains: []string{"sentry.io", "sentry-cdn.com"}},
	{Name: "VWO", Type: model.TrackerAnalytics, Domains: []string{"visualwebsiteoptimizer.com", "vwo.com"}},
	{Name: "Optimizely", Type: model.TrackerAnalytics, Domains: []string{"optimizely.com"}},
	{Name: "Quantcast", Type: model.TrackerAnalytics, Domains: []string{"quantserve.com", "quantcount.com"}},
	{Name: "Chartbeat", Type: model.TrackerAnalytics, Domains: []string{"chartbeat.com", "chartbeat.net"}},
	{Name: "Kissmetrics", Type: model.TrackerAnalytics, Domains: []string{"kissmetrics.io", "kissmetrics.com"}},
	{Name: "Hubspot Analytics", Type: model.TrackerAnalytics, Domains: []string{"hs-analytics.net", "hs-scripts.com", "hubspot.com", "hscollectedforms.net"}},
	{Name: "Plausible", Type: model.TrackerAnalytics, Domains: []string{"plausible.io"}},
	{Name: "Statcounter", Type: model.TrackerAnalytics, Domains: []string{"statcounter.com"}},

	// Advertising
	{Name: "Google Ads", Type: model.TrackerAdvertising, Domains: []string{"googleadservices.com", "googlesyndication.com", "google.com/pagead", "google.com/ads"}},
	{Name: "DoubleClick", Type: model.TrackerAdvertising, Domains: []string{"doubleclick.net", "2mdn.net"}},
	{Name: "Meta Pixel", Type: model.TrackerAdvertising, Domains: []string{"connect.facebook.net", "facebook.com/tr", "facebook.net"}},
	{Name: "Microsoft Advertising", Type: model.TrackerAdvertising, Domains: []string{"bat.bing.com", "bat.bing.net"}},
	{Name: "LinkedIn Insight", Type: model.TrackerAdvertising, Domains: []string{"snap.licdn.com", "px.ads.linkedin.com", "ads.linkedin.com"}},
	{Name: "TikTok Pixel", Type: model.TrackerAdvertising, Domains: []string{"analytics.tiktok.com", "ads.tiktok.com"}},
	{Name: "Pinterest Tag", Type: model.TrackerAdvertising, Domains: []string{"ct.pinterest.com", "s.pinimg.com"}},
	{Name: "Snap Pixel", Type: model.TrackerAdvertising, Domains: []string{"sc-static.net", "tr.snapchat.com"}},
	{Name: "Reddit Pixel", Type: model.TrackerAdvertising, Domains: []string{"redditstatic.com/ads", "alb.reddit.com"}},
	{Name: "X Ads", Type: model.TrackerAdvertising, Domains: []string{"static.ads-twitter.com", "ads-api.twitter.com", "analytics.twitter.com", "t.co/i/adsct"}},
	{Name: "Criteo", Type: model.TrackerAdvertising, Domains: []string{"criteo.com", "criteo.net"}},
	{Name: "Taboola", Type: model.TrackerAdvertising, Domains: []string{"taboola.com"}},
	{Name: "Outbrain", Type: model.TrackerAdvertising, Domains: []string{"outbrain.com", "outbrainimg.com"}},
	{Name: "AdRoll", Type: model.TrackerAdvertising, Domains: []string{"adroll.com"}},
	{Name: "Amazon Ads", Type: model.TrackerAdvertising, Domains: []string{"amazon-adsystem.com"}},
	{Name: "Xandr", Type: model.TrackerAdvertising, Domains: []string{"adnxs.com"}},
	{Name: "The Trade Desk", Type: model.TrackerAdvertising, Domains: []string{"adsrvr.org"}},
	{Name: "Rubicon Project", Type: model.TrackerAdvertising, Domains: []string{"rubiconproject.com"}},
	{Name: "PubMatic", Type: model.TrackerAdvertising, Domains: []string{"pubmatic.com"}},
	{Name: "Index Exchange", Type: model.TrackerAdvertising, Domains: []string{"casalemedia.com"}},
	{Name: "OpenX", Type: model.TrackerAdvertising, Domains: []string{"openx.net"}},
	{Name: "Yahoo Advertising", Type: model.TrackerAdvertising, Domains: []string{"ads.yahoo.com", "analytics.yahoo.com", "yimg.com/wi/ytc.js"}},
	{Name: "Bidswitch", Type: model.TrackerAdvertising, Domains: []string{"bidswitch.net"}},
	{Name: "Lotame", Type: model.TrackerAdvertising, Domains: []string{"crwdcntrl.net"}},
	{Name: "LiveRamp", Type: model.TrackerAdvertising, Domains: []string{"rlcdn.com"}},
	{Name: "Tapad", Type: model.TrackerAdvertising, Domains: []string{"tapad.com"}},
	{Name: "Klaviyo", Type: model.TrackerAdvertising, Domains: []string{"klaviyo.com"}},
	{Name: "Marketo", Type: model.TrackerAdvertising, Domains: []string{"marketo.net", "mktoresp.com"}},

	// Social widgets
	{Name: "Facebook Social Plugin", Type: model.TrackerSocial, Domains: []string{"facebook.com/plugins", "fbcdn.net"}},
	{Name: "X (Twitter) Widgets", Type: model.TrackerSocial, Domains: []string{"platform.twitter.com", "syndication.twitter.com"}},
	{Name: "LinkedIn Widgets", Type: model.TrackerSocial, Domains: []string{"platform.linkedin.com"}},
	{Name: "Instagram Embed", Type: model.TrackerSocial, Domains: []string{"instagram.com/embed", "cdninstagram.com"}},
	{Name: "AddThis", Type: model.TrackerSocial, Domains: []string{"addthis.com", "addthisedge.com"}},
	{Name: "ShareThis", Type: model.TrackerSocial, Domains: []string{"sharethis.com"}},
	{Name: "YouTube Embed", Type: model.TrackerSocial, Domains: []string{"youtube.com/embed", "youtube.com/iframe_api", "ytimg.com"}},
	{Name: "Vimeo Embed", Type: model.TrackerSocial, Domains: []string{"player.vimeo.com"}},
	{Name: "Disqus", Type: model.TrackerSocial, Domains: []string{"disqus.com", "disquscdn.com"}},

	// Other (chat, support, fonts and maps that set identifiers)
	{Name: "Intercom", Type: model.TrackerOther, Domains: []string{"intercom.io", "intercomcdn.com", "intercomassets.com"}},
	{Name: "Drift", Type: model.TrackerOther, Domains: []string{"drift.com", "driftt.com"}},
	{Name: "Zendesk", Type: model.TrackerOther, Domains: []string{"zdassets.com", "zendesk.com"}},
	{Name: "Tawk.to", Type: model.TrackerOther, Domains: []string{"tawk.to"}},
	{Name: "Crisp", Type: model.TrackerOther, Domains: []string{"crisp.chat"}},
	{Name: "LiveChat", Type: model.TrackerOther, Domains: []string{"livechatinc.com"}},
	{Name: "Google Fonts", Type: model.TrackerOther, Domains: []string{"fonts.googleapis.com", "fonts.gstatic.com"}},
	{Name: "Google Maps", Type: model.TrackerOther, Domains: []string{"maps.googleapis.com", "maps.google.com"}},
	{Name: "Google reCAPTCHA", Type: model.TrackerOther, Domains: []string{"google.com/recaptcha", "gstatic.com/recaptcha", "recaptcha.net"}},
}

// TrackerMatch is the result of matching a request against the database.
type TrackerMatch struct {
	Tracker Tracker

	// Domain is the database domain that matched, or the request host for
	// regex matches. Together with the vendor name it identifies a tracker.
	Domain string
}

// MatchTracker matches a request URL against the tracker database.
// It returns false for unparseable or non-HTTP URLs.
func MatchTracker(rawURL string) (TrackerMatch, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return TrackerMatch{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return TrackerMatch{}, false
	}
	hostPath := host + strings.ToLower(u.EscapedPath())

	for _, t := range trackers {
		for _, d := range t.Domains {
			if matchDomain(host, hostPath, d) {
				return TrackerMatch{Tracker: t, Domain: d}, true
			}
		}
	}

	for _, t := range trackers {
		for _, p := range t.Patterns {
			if p.MatchString(rawURL) {
				return TrackerMatch{Tracker: t, Domain: host}, true
			}
		}
	}

	return TrackerMatch{}, false
}

// matchDomain matches a host against a database domain. Domains containing
// a path are matched as a prefix of host+path at a host boundary.
func matchDomain(host, hostPath, domain string) bool {
	if strings.Contains(domain, "/") {
		i := strings.Index(domain, "/")
		if !HostMatches(host, domain[:i]) {
			return false
		}
		return strings.HasPrefix(hostPath[len(host):], domain[i:])
	}
	return HostMatches(host, domain)
}

// HostMatches reports whether host equals domain or is a subdomain of it.
func HostMatches(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Trackers returns a copy of the tracker database.
func Trackers() []Tracker {
	out := make([]Tracker, len(trackers))
	copy(out, trackers)
	return out
}
