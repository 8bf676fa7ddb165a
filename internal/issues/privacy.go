package issues

import (
	"fmt"
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
)

func privacyIssues(r *model.ScanResult) []model.ScanIssue {
	p := r.PrivacyPolicy
	if !p.Found {
		return []model.ScanIssue{model.NewIssue(
			model.CodeNoPrivacyPolicy,
			model.RiskMedium,
			"No privacy policy link",
			"No link to a privacy policy was found on the page.",
			"Link the privacy policy from every page, typically in the footer and in the consent banner.",
		)}
	}
	if !p.ContentAnalyzed {
		return nil
	}

	var issues []model.ScanIssue
	if missing := p.Content.MissingElements; len(missing) > 0 {
		issues = append(issues, model.NewIssue(
			model.CodePrivacyPolicyIncomplete,
			model.RiskHigh,
			"Privacy policy is incomplete",
			fmt.Sprintf("The privacy policy does not mention: %s.", strings.Join(missing, ", ")),
			"Cover every item required by GDPR Art. 13, including controller identity, purposes, legal basis and data subject rights.",
		))
	}
	if !p.Content.HasRetention {
		issues = append(issues, model.NewIssue(
			model.CodePrivacyNoRetention,
			model.RiskMedium,
			"No retention period",
			"The privacy policy does not say how long personal data is kept.",
			"State the retention period, or the criteria used to determine it, for each processing purpose.",
		))
	}
	if !p.Content.HasComplaintRight {
		issues = append(issues, model.NewIssue(
			model.CodePrivacyNoComplaintRight,
			model.RiskMedium,
			"No right to lodge a complaint",
			"The privacy policy does not mention the right to complain to a supervisory authority.",
			"Tell visitors they may lodge a complaint with a data protection authority and name the competent one.",
		))
	}
	return issues
}

func formIssues(r *model.ScanResult) []model.ScanIssue {
	f := r.Forms
	var issues []model.ScanIssue

	if f.DataFormsWithoutConsent > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeFormsNoConsent,
			model.RiskHigh,
			"Forms without consent checkbox",
			fmt.Sprintf("%d of %d data collection forms have no consent checkbox.",
				f.DataFormsWithoutConsent, f.DataCollectionForms),
			"Add an unchecked consent checkbox to forms that collect personal data for purposes beyond the request itself.",
		))
	}
	if f.FormsWithPreCheckedMarketing > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeFormsPreCheckedMarketing,
			model.RiskHigh,
			"Pre-checked marketing consent in forms",
			fmt.Sprintf("%d forms have a marketing or newsletter checkbox checked by default.",
				f.FormsWithPreCheckedMarketing),
			"Leave marketing checkboxes unchecked so that consent is an active choice.",
		))
	}
	if gap := f.DataCollectionForms - f.FormsWithPrivacyLink; gap > 0 {
		issues = append(issues, model.NewIssue(
			model.CodeFormsNoPrivacyLink,
			model.RiskMedium,
			"Forms without privacy policy link",
			fmt.Sprintf("%d data collection forms do not link to the privacy policy.", gap),
			"Link the privacy policy near the submit button of every form that collects personal data.",
		))
	}
	return issues
}

func transferIssues(r *model.ScanResult) []model.ScanIssue {
	t := r.DataTransfers
	var issues []model.ScanIssue

	if len(t.HighRiskTransfers) > 0 {
		names := make([]string, 0, len(t.HighRiskTransfers))
		for _, s := range t.HighRiskTransfers {
			names = append(names, s.Name)
		}
		issues = append(issues, model.NewIssue(
			model.CodeUSDataTransfer,
			model.RiskHigh,
			"Personal data sent to US analytics or advertising services",
			fmt.Sprintf("The page sends data to %d US analytics or advertising services: %s.",
				len(names), nameList(names)),
			"Check that each provider is certified under the EU-US Data Privacy Framework or covered by standard contractual clauses, and ask for consent first.",
		))
	}
	if t.TotalUSServices > maxUSServices {
		issues = append(issues, model.NewIssue(
			model.CodeExcessiveUSServices,
			model.RiskMedium,
			"Many US services",
			fmt.Sprintf("The page contacts %d US-based services.", t.TotalUSServices),
			"Reduce the number of third-country providers or prefer EU-hosted alternatives.",
		))
	}
	return issues
}
