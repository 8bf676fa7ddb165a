package issues

import (
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
)

const (
	// maxListedNames is how many names an issue description lists.
	maxListedNames = 5

	// maxThirdPartyBeforeConsent is the number of third-party requests
	// before consent above which the volume itself becomes an issue.
	maxThirdPartyBeforeConsent = 10

	// maxUSServices is the number of US services above which the transfer
	// surface is reported as excessive.
	maxUSServices = 10

	// expiryWarningDays is the window in which a certificate is reported as
	// expiring soon.
	expiryWarningDays = 30
)

// group produces the issues of one check group.
type group func(r *model.ScanResult) []model.ScanIssue

// groups is the fixed presentation order.
var groups = []group{
	cookieIssues,
	trackerIssues,
	consentIssues,
	privacyIssues,
	thirdPartyIssues,
	securityIssues,
	formIssues,
	transferIssues,
	headerIssues,
	tlsIssues,
}

// Generate returns all issues for the result.
// It does not modify the result.
func Generate(r *model.ScanResult) []model.ScanIssue {
	issues := make([]model.ScanIssue, 0)
	if r == nil {
		return issues
	}
	for _, g := range groups {
		issues = append(issues, g(r)...)
	}
	return issues
}

// Apply generates the issues of the result and stores them together with
// the score and overall risk.
func Apply(r *model.ScanResult) {
	r.Issues = Generate(r)
	r.Score = CalculateScore(r.Issues)
	r.OverallRisk = OverallRisk(r.Issues)
}

// nameList joins at most maxListedNames names, marking truncation with "...".
func nameList(names []string) string {
	if len(names) <= maxListedNames {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:maxListedNames], ", ") + ", ..."
}

// uniqueNames returns the names in first-seen order without duplicates.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
