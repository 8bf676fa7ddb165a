package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/gdprscan/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for the terminal.
// Risk levels and the score are colored when color is enabled.
type SimpleWriter struct {
	baseWriter

	// verbose adds issue descriptions and the analyzer overview.
	verbose bool

	// colored enables ANSI color sequences.
	colored bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables issue descriptions and the findings overview.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor forces color on or off. By default color follows
// color.NoColor, which is set when stdout is not a terminal.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colored = enabled
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		colored:    !color.NoColor,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.ScanResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	if !result.Aborted {
		w.writeSummary(&sb, result)
		if w.verbose {
			w.writeOverview(&sb, result)
		}
		w.writeIssues(&sb, result)
	}
	w.writeErrors(&sb, result)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// paint applies the given attributes when color is enabled.
func (w *SimpleWriter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if w.colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// riskColor returns the color attributes for a risk level.
func riskColor(level model.RiskLevel) []color.Attribute {
	switch level {
	case model.RiskCritical:
		return []color.Attribute{color.FgRed, color.Bold}
	case model.RiskHigh:
		return []color.Attribute{color.FgRed}
	case model.RiskMedium:
		return []color.Attribute{color.FgYellow}
	default:
		return []color.Attribute{color.FgCyan}
	}
}

// scoreColor returns the color attributes for a compliance score.
func scoreColor(score int) []color.Attribute {
	switch {
	case score >= 80:
		return []color.Attribute{color.FgGreen}
	case score >= 50:
		return []color.Attribute{color.FgYellow}
	default:
		return []color.Attribute{color.FgRed}
	}
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.ScanResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                      GDPR COMPLIANCE REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "URL:            %s\n", result.URL)
	if result.FinalURL != "" && result.FinalURL != result.URL {
		fmt.Fprintf(sb, "Final URL:      %s\n", result.FinalURL)
	}
	if result.BaseDomain != "" {
		fmt.Fprintf(sb, "Base Domain:    %s\n", result.BaseDomain)
	}
	fmt.Fprintf(sb, "Scan Date:      %s\n", result.ScannedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", result.Duration.Round(10 * time.Millisecond))
	fmt.Fprintf(sb, "Status:         %s\n", statusText(result))

	if !result.Aborted {
		score := fmt.Sprintf("%d/100", result.Score)
		fmt.Fprintf(sb, "Score:          %s\n", w.paint(score, scoreColor(result.Score)...))
		fmt.Fprintf(sb, "Overall Risk:   %s\n", w.paint(result.OverallRisk.String(), riskColor(result.OverallRisk)...))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.ScanResult) {
	section(sb, "RISK SUMMARY")

	counts := result.CountByRisk()
	for _, level := range riskLevels {
		label := fmt.Sprintf("%-9s", level.String()+":")
		fmt.Fprintf(sb, "  %s %d\n", w.paint(label, riskColor(level)...), counts[level])
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d issues\n\n", len(result.Issues))
}

func (w *SimpleWriter) writeOverview(sb *strings.Builder, result *model.ScanResult) {
	section(sb, "OVERVIEW")
	for _, row := range overview(result) {
		fmt.Fprintf(sb, "  %-22s %s\n", row.label+":", row.value)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeIssues(sb *strings.Builder, result *model.ScanResult) {
	section(sb, "ISSUES")

	if !result.HasIssues() {
		sb.WriteString("  No compliance issues detected\n\n")
		return
	}

	for _, level := range riskLevels {
		issues := result.IssuesByRisk(level)
		if len(issues) == 0 {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", riskIndicator(level), w.paint(level.String(), riskColor(level)...))
		for _, issue := range issues {
			fmt.Fprintf(sb, "  * %s (%s)\n", issue.Title, issue.Code)
			if w.verbose && issue.Description != "" {
				fmt.Fprintf(sb, "    %s\n", issue.Description)
			}
			if issue.Recommendation != "" {
				fmt.Fprintf(sb, "    Fix: %s\n", issue.Recommendation)
			}
		}
		sb.WriteString("\n")
	}
}

// riskIndicator returns an ASCII marker that survives colorless output.
func riskIndicator(level model.RiskLevel) string {
	switch level {
	case model.RiskCritical:
		return "!!!"
	case model.RiskHigh:
		return "!!"
	case model.RiskMedium:
		return "!"
	default:
		return "-"
	}
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, result *model.ScanResult) {
	if len(result.Errors) == 0 {
		return
	}
	section(sb, "ERRORS")
	for _, e := range result.Errors {
		fmt.Fprintf(sb, "  %s\n", e)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by gdprscan\n")
	sb.WriteString("This is an automated check, not legal advice.\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
