package issues

import "github.com/nao1215/gdprscan/internal/model"

// maxScore is the score of a result without issues.
const maxScore = 100

// CalculateScore returns 100 minus the deduction of every issue, floored at 0.
func CalculateScore(issues []model.ScanIssue) int {
	score := maxScore
	for _, issue := range issues {
		score -= issue.RiskLevel.Deduction()
	}
	return max(score, 0)
}

// OverallRisk returns the highest risk level among the issues.
// A result without issues is low risk.
func OverallRisk(issues []model.ScanIssue) model.RiskLevel {
	risk := model.RiskLow
	for _, issue := range issues {
		if issue.RiskLevel > risk {
			risk = issue.RiskLevel
		}
	}
	return risk
}
