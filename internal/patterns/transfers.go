package patterns

import (
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
)

// TransferService is a third-country service and the domains it serves from.
type TransferService struct {
	Name     string
	Category model.TransferCategory
	Country  string
	Domains  []string
}

// usServices lists US-headquartered services, grouped by category.
// Order matters: the first service matching a host wins.
var usServices = []TransferService{
	// Analytics
	{Name: "Google Analytics", Category: model.TransferAnalytics, Country: "US", Domains: []string{"google-analytics.com", "analytics.google.com", "googletagmanager.com"}},
	{Name: "Adobe Analytics", Category: model.TransferAnalytics, Country: "US", Domains: []string{"omtrdc.net", "2o7.net", "demdex.net", "adobedtm.com"}},
	{Name: "Mixpanel", Category: model.TransferAnalytics, Country: "US", Domains: []string{"mixpanel.com", "mxpnl.com"}},
	{Name: "Segment", Category: model.TransferAnalytics, Country: "US", Domains: []string{"segment.com", "segment.io"}},
	{Name: "Amplitude", Category: model.TransferAnalytics, Country: "US", Domains: []string{"amplitude.com"}},
	{Name: "Heap", Category: model.TransferAnalytics, Country: "US", Domains: []string{"heapanalytics.com", "heap.io"}},
	{Name: "FullStory", Category: model.TransferAnalytics, Country: "US", Domains: []string{"fullstory.com"}},
	{Name: "Microsoft Clarity", Category: model.TransferAnalytics, Country: "US", Domains: []string{"clarity.ms"}},
	{Name: "Crazy Egg", Category: model.TransferAnalytics, Country: "US", Domains: []string{"crazyegg.com"}},
	{Name: "New Relic", Category: model.TransferAnalytics, Country: "US", Domains: []string{"nr-data.net", "newrelic.com"}},
	{Name: "Datadog", Category: model.TransferAnalytics, Country: "US", Domains: []string{"datadoghq.com", "datadoghq-browser-agent.com"}},
	{Name: "Optimizely", Category: model.TransferAnalytics, Country: "US", Domains: []string{"optimizely.com"}},
	{Name: "Chartbeat", Category: model.TransferAnalytics, Country: "US", Domains: []string{"chartbeat.com", "chartbeat.net"}},
	{Name: "HubSpot", Category: model.TransferAnalytics, Country: "US", Domains: []string{"hubspot.com", "hs-analytics.net", "hs-scripts.com", "hsforms.com"}},
	{Name: "Quantcast", Category: model.TransferAnalytics, Country: "US", Domains: []string{"quantserve.com", "quantcount.com"}},

	// Advertising
	{Name: "Google Ads", Category: model.TransferAdvertising, Country: "US", Domains: []string{"googleadservices.com", "googlesyndication.com", "doubleclick.net", "2mdn.net"}},
	{Name: "Meta (Facebook)", Category: model.TransferAdvertising, Country: "US", Domains: []string{"facebook.net", "facebook.com", "fbcdn.net"}},
	{Name: "Microsoft Advertising", Category: model.TransferAdvertising, Country: "US", Domains: []string{"bat.bing.com", "bing.com"}},
	{Name: "LinkedIn Ads", Category: model.TransferAdvertising, Country: "US", Domains: []string{"ads.linkedin.com", "snap.licdn.com"}},
	{Name: "X (Twitter) Ads", Category: model.TransferAdvertising, Country: "US", Domains: []string{"ads-twitter.com", "analytics.twitter.com"}},
	{Name: "Pinterest Ads", Category: model.TransferAdvertising, Country: "US", Domains: []string{"ct.pinterest.com"}},
	{Name: "Snap Ads", Category: model.TransferAdvertising, Country: "US", Domains: []string{"sc-static.net", "tr.snapchat.com"}},
	{Name: "Reddit Ads", Category: model.TransferAdvertising, Country: "US", Domains: []string{"redditstatic.com", "alb.reddit.com"}},
	{Name: "Amazon Advertising", Category: model.TransferAdvertising, Country: "US", Domains: []string{"amazon-adsystem.com"}},
	{Name: "Taboola", Category: model.TransferAdvertising, Country: "US", Domains: []string{"taboola.com"}},
	{Name: "Outbrain", Category: model.TransferAdvertising, Country: "US", Domains: []string{"outbrain.com"}},
	{Name: "AdRoll", Category: model.TransferAdvertising, Country: "US", Domains: []string{"adroll.com"}},
	{Name: "The Trade Desk", Category: model.TransferAdvertising, Country: "US", Domains: []string{"adsrvr.org"}},
	{Name: "Xandr", Category: model.TransferAdvertising, Country: "US", Domains: []string{"adnxs.com"}},
	{Name: "Magnite", Category: model.TransferAdvertising, Country: "US", Domains: []string{"rubiconproject.com"}},
	{Name: "PubMatic", Category: model.TransferAdvertising, Country: "US", Domains: []string{"pubmatic.com"}},
	{Name: "LiveRamp", Category: model.TransferAdvertising, Country: "US", Domains: []string{"rlcdn.com"}},
	{Name: "Klaviyo", Category: model.TransferAdvertising, Country: "US", Domains: []string{"klaviyo.com"}},

	// CDN
	{Name: "Cloudflare", Category: model.TransferCDN, Country: "US", Domains: []string{"cloudflare.com", "cdnjs.cloudflare.com", "cloudflareinsights.com"}},
	{Name: "Akamai", Category: model.TransferCDN, Country: "US", Domains: []string{"akamaihd.net", "akamaized.net", "akamai.net", "edgekey.net"}},
	{Name: "Fastly", Category: model.TransferCDN, Country: "US", Domains: []string{"fastly.net", "fastly.com"}},
	{Name: "jsDelivr", Category: model.TransferCDN, Country: "US", Domains: []string{"jsdelivr.net"}},
	{Name: "unpkg", Category: model.TransferCDN, Country: "US", Domains: []string{"unpkg.com"}},
	{Name: "Google Fonts", Category: model.TransferCDN, Country: "US", Domains: []string{"fonts.googleapis.com", "fonts.gstatic.com"}},
	{Name: "Google Hosted Libraries", Category: model.TransferCDN, Country: "US", Domains: []string{"ajax.googleapis.com"}},
	{Name: "Adobe Fonts", Category: model.TransferCDN, Country: "US", Domains: []string{"typekit.net", "use.typekit.net"}},
	{Name: "Font Awesome", Category: model.TransferCDN, Country: "US", Domains: []string{"fontawesome.com"}},

	// Cloud
	{Name: "Amazon Web Services", Category: model.TransferCloud, Country: "US", Domains: []string{"amazonaws.com", "cloudfront.net"}},
	{Name: "Google Cloud", Category: model.TransferCloud, Country: "US", Domains: []string{"googleapis.com", "appspot.com", "run.app", "firebaseio.com", "firebaseapp.com"}},
	{Name: "Microsoft Azure", Category: model.TransferCloud, Country: "US", Domains: []string{"azureedge.net", "azurewebsites.net", "windows.net", "azure.com"}},
	{Name: "Vercel", Category: model.TransferCloud, Country: "US", Domains: []string{"vercel.app", "vercel-insights.com"}},
	{Name: "Netlify", Category: model.TransferCloud, Country: "US", Domains: []string{"netlify.app", "netlify.com"}},
	{Name: "Heroku", Category: model.TransferCloud, Country: "US", Domains: []string{"herokuapp.com"}},
	{Name: "Intercom", Category: model.TransferCloud, Country: "US", Domains: []string{"intercom.io", "intercomcdn.com"}},
	{Name: "Zendesk", Category: model.TransferCloud, Country: "US", Domains: []string{"zdassets.com", "zendesk.com"}},
	{Name: "Drift", Category: model.TransferCloud, Country: "US", Domains: []string{"drift.com", "driftt.com"}},
	{Name: "Sentry", Category: model.TransferCloud, Country: "US", Domains: []string{"sentry.io"}},

	// Social
	{Name: "YouTube", Category: model.TransferSocial, Country: "US", Domains: []string{"youtube.com", "ytimg.com", "youtube-nocookie.com"}},
	{Name: "X (Twitter)", Category: model.TransferSocial, Country: "US", Domains: []string{"twitter.com", "twimg.com", "x.com"}},
	{Name: "LinkedIn", Category: model.TransferSocial, Country: "US", Domains: []string{"linkedin.com", "licdn.com"}},
	{Name: "Instagram", Category: model.TransferSocial, Country: "US", Domains: []string{"instagram.com", "cdninstagram.com"}},
	{Name: "Pinterest", Category: model.TransferSocial, Country: "US", Domains: []string{"pinterest.com", "pinimg.com"}},
	{Name: "Vimeo", Category: model.TransferSocial, Country: "US", Domains: []string{"vimeo.com", "vimeocdn.com"}},
	{Name: "Disqus", Category: model.TransferSocial, Country: "US", Domains: []string{"disqus.com", "disquscdn.com"}},

	// Payment
	{Name: "Stripe", Category: model.TransferPayment, Country: "US", Domains: []string{"stripe.com", "stripe.network"}},
	{Name: "PayPal", Category: model.TransferPayment, Country: "US", Domains: []string{"paypal.com", "paypalobjects.com"}},
	{Name: "Braintree", Category: model.TransferPayment, Country: "US", Domains: []string{"braintreegateway.com", "braintree-api.com"}},
	{Name: "Square", Category: model.TransferPayment, Country: "US", Domains: []string{"squareup.com", "squarecdn.com"}},
	{Name: "Apple Pay", Category: model.TransferPayment, Country: "US", Domains: []string{"apple-pay-gateway.apple.com"}},
	{Name: "Google Pay", Category: model.TransferPayment, Country: "US", Domains: []string{"pay.google.com"}},
}

// adequateCountries have an EU adequacy decision under GDPR Art. 45.
// The US is listed through the EU-US Data Privacy Framework, which only
// covers certified organisations.
var adequateCountries = []string{
	"Andorra",
	"Argentina",
	"Canada",
	"Faroe Islands",
	"Guernsey",
	"Israel",
	"Isle of Man",
	"Japan",
	"Jersey",
	"New Zealand",
	"Korea",
	"Switzerland",
	"United Kingdom",
	"Uruguay",
	"European Patent Organisation",
}

// MatchTransfer returns the first US service serving the given host.
func MatchTransfer(host string) (TransferService, bool) {
	host = strings.ToLower(host)
	if host == "" {
		return TransferService{}, false
	}
	for _, s := range usServices {
		for _, d := range s.Domains {
			if HostMatches(host, d) {
				return s, true
			}
		}
	}
	return TransferService{}, false
}

// IsHighRisk reports whether transfers of the category are high risk.
// Analytics and advertising services process personal data for their own
// purposes, unlike infrastructure providers.
func IsHighRisk(category model.TransferCategory) bool {
	return category == model.TransferAnalytics || category == model.TransferAdvertising
}

// IsAdequateCountry reports whether the country has an EU adequacy decision.
// Matching is a case-insensitive substring match of a listed country in the
// input, so "Republic of Korea" and "the United Kingdom" both match.
func IsAdequateCountry(country string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "" {
		return false
	}
	for _, a := range adequateCountries {
		if strings.Contains(c, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// USServiceCount returns the number of services in the transfer table.
func USServiceCount() int {
	return len(usServices)
}
