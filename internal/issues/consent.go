package issues

import (
	"fmt"
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
)

// NonEssentialCookiesBeforeConsent returns the names of analytics and
// marketing cookies set before consent. Necessary and unknown cookies are
// not included.
func NonEssentialCookiesBeforeConsent(r *model.ScanResult) []string {
	var names []string
	for _, c := range r.CookiesBeforeConsent() {
		if c.Category == model.CookieAnalytics || c.Category == model.CookieMarketing {
			names = append(names, c.Name)
		}
	}
	return uniqueNames(names)
}

// TrackerNamesBeforeConsent returns the names of trackers loaded before
// consent.
func TrackerNamesBeforeConsent(r *model.ScanResult) []string {
	var names []string
	for _, t := range r.TrackersBeforeConsent() {
		names = append(names, t.Name)
	}
	return uniqueNames(names)
}

func cookieIssues(r *model.ScanResult) []model.ScanIssue {
	var issues []model.ScanIssue

	if names := NonEssentialCookiesBeforeConsent(r); len(names) > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeCookiesBeforeConsent,
			model.RiskHigh,
			"Non-essential cookies set before consent",
			fmt.Sprintf("%d analytics or marketing cookies were set before the visitor consented: %s.",
				len(names), nameList(names)),
			"Block analytics and marketing cookies until the visitor has given consent through the banner.",
		))
	}
	return issues
}

func trackerIssues(r *model.ScanResult) []model.ScanIssue {
	names := TrackerNamesBeforeConsent(r)
	if len(names) == 0 {
		return nil
	}
	return []model.ScanIssue{model.NewIssue(
		model.CodeTrackersBeforeConsent,
		model.RiskHigh,
		"Trackers loaded before consent",
		fmt.Sprintf("%d trackers were loaded before the visitor consented: %s.",
			len(names), nameList(names)),
		"Load tracking scripts only after consent, for example through the consent platform's script blocking.",
	)}
}

// IsCookieWall reports whether the banner blocks the page and offers neither
// a reject button nor a settings option.
func IsCookieWall(b model.ConsentBannerInfo) bool {
	return b.Found && b.IsBlocking && !b.HasRejectButton && !b.HasSettingsOption
}

func consentIssues(r *model.ScanResult) []model.ScanIssue {
	b := r.ConsentBanner
	if !b.Found {
		return []model.ScanIssue{model.NewIssue(
			model.CodeNoConsentBanner,
			model.RiskCritical,
			"No cookie consent banner",
			"No consent banner was found on the page. Visitors cannot give or refuse consent to cookies and tracking.",
			"Add a consent management platform that asks for consent before setting non-essential cookies.",
		)}
	}

	var issues []model.ScanIssue
	if !b.HasRejectButton {
		issues = append(issues, model.NewIssue(
			model.CodeNoRejectButton,
			model.RiskHigh,
			"No reject option on the first layer",
			"The consent banner offers no button to reject cookies. Refusing must be as easy as accepting.",
			"Add a \"Reject all\" button next to the accept button on the first layer of the banner.",
		))
	}

	if b.Quality.PreCheckedBoxes {
		desc := "The banner has non-essential categories checked by default."
		if len(b.Quality.PreCheckedCategories) > 0 {
			desc = fmt.Sprintf("The banner has non-essential categories checked by default: %s.",
				strings.Join(b.Quality.PreCheckedCategories, ", "))
		}
		issues = append(issues, model.NewIssue(
			model.CodePreCheckedConsent,
			model.RiskHigh,
			"Pre-checked consent categories",
			desc,
			"Leave every non-essential category unchecked until the visitor opts in.",
		))
	}

	if !b.Quality.EqualProminence {
		issues = append(issues, model.NewIssue(
			model.CodeUnequalButtonProminence,
			model.RiskHigh,
			"Accept and reject are not equally prominent",
			"The reject control is missing or much smaller than the accept button, which nudges visitors towards accepting.",
			"Give the reject button the same size and visual weight as the accept button.",
		))
	}

	if IsCookieWall(b) {
		issues = append(issues, model.NewIssue(
			model.CodeCookieWall,
			model.RiskCritical,
			"Cookie wall",
			"The banner blocks access to the site and offers no way to continue without accepting cookies.",
			"Let visitors use the site after refusing non-essential cookies.",
		))
	}

	if b.HasAcceptButton && !b.Quality.GranularConsent {
		issues = append(issues, model.NewIssue(
			model.CodeNoGranularConsent,
			model.RiskMedium,
			"No granular consent",
			fmt.Sprintf("The banner offers %d consent categories. Visitors cannot consent per purpose.",
				b.Quality.CategoryCount),
			"Offer separate choices for at least analytics and marketing cookies.",
		))
	}
	return issues
}

func thirdPartyIssues(r *model.ScanResult) []model.ScanIssue {
	n := r.ThirdPartyRequests.BeforeConsent
	if n <= maxThirdPartyBeforeConsent {
		return nil
	}
	return []model.ScanIssue{model.NewIssue(
		model.CodeExcessiveThirdParty,
		model.RiskMedium,
		"Many third-party requests before consent",
		fmt.Sprintf("The page made %d requests to third-party hosts before consent.", n),
		"Review which third-party resources load on first visit and defer those that are not required.",
	)}
}
