package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs results in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.ScanResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	if !result.Aborted {
		w.writeSummary(md, result)
		w.writeOverview(md, result)
		w.writeIssues(md, result)
	}
	w.writeErrors(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.ScanResult) {
	md.H1("GDPR Compliance Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + result.URL + "`"},
	}
	if result.FinalURL != "" && result.FinalURL != result.URL {
		rows = append(rows, []string{"Final URL", "`" + result.FinalURL + "`"})
	}
	rows = append(rows,
		[]string{"Scan Date", result.ScannedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Status", statusText(result)},
	)
	if !result.Aborted {
		rows = append(rows,
			[]string{"Score", "**" + strconv.Itoa(result.Score) + "/100**"},
			[]string{"Overall Risk", riskBadge(result.OverallRisk)},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// riskBadge prefixes the level name with a colored marker.
func riskBadge(level model.RiskLevel) string {
	switch level {
	case model.RiskCritical:
		return "🔴 Critical"
	case model.RiskHigh:
		return "🟠 High"
	case model.RiskMedium:
		return "🟡 Medium"
	default:
		return "🔵 Low"
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.ScanResult) {
	md.H2("Risk Summary")
	md.PlainText("")

	counts := result.CountByRisk()
	rows := make([][]string, 0, len(riskLevels)+1)
	for _, level := range riskLevels {
		rows = append(rows, []string{riskBadge(level), strconv.Itoa(counts[level])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(result.Issues)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Risk", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if result.HasIssues() {
		w.writePieChart(md, counts)
	}
	w.writeAlert(md, counts, len(result.Issues))
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.RiskLevel]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Risk Distribution"),
		piechart.WithShowData(true),
	)

	for _, level := range riskLevels {
		if counts[level] > 0 {
			chart.LabelAndIntValue(level.String(), uint64(counts[level]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, counts map[model.RiskLevel]int, total int) {
	switch {
	case counts[model.RiskCritical] > 0:
		md.Cautionf(
			"%d critical issue(s) found. These are clear GDPR or ePrivacy violations.",
			counts[model.RiskCritical],
		)
	case counts[model.RiskHigh] > 0:
		md.Warningf(
			"%d high risk issue(s) found. These are likely violations.",
			counts[model.RiskHigh],
		)
	case counts[model.RiskMedium] > 0:
		md.Importantf(
			"%d medium risk issue(s) found.",
			counts[model.RiskMedium],
		)
	case total > 0:
		md.Note("Only low risk findings detected.")
	default:
		md.Tip("No compliance issues detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, result *model.ScanResult) {
	md.H2("Overview")
	md.PlainText("")

	ov := overview(result)
	rows := make([][]string, len(ov))
	for i, row := range ov {
		rows[i] = []string{row.label, row.value}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Result"},
		Rows:   rows,
	})
	md.PlainText("")

	if before := result.CookiesBeforeConsent(); len(before) > 0 {
		md.H3("Cookies Before Consent")
		md.PlainText("")
		crow := make([][]string, len(before))
		for i, c := range before {
			crow[i] = []string{"`" + c.Name + "`", c.Domain, string(c.Category)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Domain", "Category"},
			Rows:   crow,
		})
		md.PlainText("")
	}

	if len(result.Trackers) > 0 {
		md.H3("Trackers")
		md.PlainText("")
		trow := make([][]string, len(result.Trackers))
		for i, t := range result.Trackers {
			trow[i] = []string{t.Name, string(t.Type), t.Domain, yesNo(t.LoadedBeforeConsent)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Type", "Domain", "Before Consent"},
			Rows:   trow,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, result *model.ScanResult) {
	md.H2("Issues")
	md.PlainText("")

	if !result.HasIssues() {
		md.PlainText("No compliance issues detected.")
		md.PlainText("")
		return
	}

	for _, level := range riskLevels {
		issues := result.IssuesByRisk(level)
		if len(issues) == 0 {
			continue
		}

		md.H3(riskBadge(level))
		md.PlainText("")

		rows := make([][]string, len(issues))
		for i, issue := range issues {
			rec := issue.Recommendation
			if rec == "" {
				rec = "-"
			}
			rows[i] = []string{
				"`" + string(issue.Code) + "`",
				issue.Title,
				truncateString(escapeCell(rec), 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Code", "Title", "Recommendation"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, issue := range issues {
			if issue.Description != "" {
				md.Details(issue.Title, issue.Description)
			}
		}
		md.PlainText("")
	}
}

// escapeCell keeps pipes from splitting a table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, result *model.ScanResult) {
	if len(result.Errors) == 0 {
		return
	}
	md.H2("Errors")
	md.PlainText("")
	md.BulletList(result.Errors...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by gdprscan. Automated checks are not legal advice.*")
}
