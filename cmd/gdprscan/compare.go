package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/gdprscan/internal/config"
	"github.com/nao1215/gdprscan/internal/database"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/urlutil"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// Score directions between two scans.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
	noIssuesMessage    = "No issues"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare scan results with earlier scans of the same site",
		Long: `Compare shows what changed between two stored scans of a website:
- Issues that appeared since the earlier scan
- Issues that were resolved
- The score and overall risk change

By default the latest scan is compared with the one before it. Use
'gdprscan scan' to perform scans; results are saved automatically.

Examples:
  # Compare the latest two scans of a site
  gdprscan compare https://example.com

  # List the scan history of a site
  gdprscan compare --list example.com

  # Compare the latest scan with a specific scan by ID
  gdprscan compare --with-scan-id 5 example.com

  # Compare with the first scan since a date
  gdprscan compare --since 2026-01-01 example.com

  # List every site in the database
  gdprscan compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List the scan history of the given site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List every site in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan on or after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison in Markdown format")

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	withScanID int64
	since      string
	json       bool
	markdown   bool
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var target string
	if !listSites {
		if len(args) == 0 {
			return errors.New("a URL is required (use --list-sites to see stored sites)")
		}
		target, err = urlutil.Normalize(args[0])
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
	}

	var opts compareOptions
	if opts.withScanID, err = cmd.Flags().GetInt64("with-scan-id"); err != nil {
		return err
	}
	if opts.since, err = cmd.Flags().GetString("since"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	if opts.withScanID != 0 && opts.since != "" {
		return errors.New("--with-scan-id and --since cannot be used together")
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listSites {
		return listScannedSites(ctx, db, out)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, out, target)
	}

	result, err := runComparison(ctx, db, target, opts)
	if err != nil {
		return err
	}
	switch {
	case opts.json:
		return outputComparisonJSON(out, result)
	case opts.markdown:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// openHistoryDB opens the database in --db-dir or the XDG data directory.
func openHistoryDB(cmd *cobra.Command) (*database.HistoryDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func listScannedSites(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	sites, err := db.ListScannedSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Fprintln(out, "No scanned sites found in the database.")
		fmt.Fprintln(out, "\nUse 'gdprscan scan <url>' to scan a website.")
		return nil
	}

	fmt.Fprintf(out, "Scanned sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  • %s\n", site)
	}
	fmt.Fprintln(out, "\nUse 'gdprscan compare --list <url>' to see the scan history of a site.")
	return nil
}

func listScanHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, target string) error {
	history, err := db.GetScanHistoryWithMetadata(ctx, target)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", target)
		fmt.Fprintln(out, "\nUse 'gdprscan scan' to scan this site.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", target, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %-9s  %s\n", "ID", "Date", "Score", "Risk", "Issues")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 66))
	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %-9s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.Score,
			meta.OverallRisk,
			formatRiskSummary(meta.RiskSummary),
		)
	}

	fmt.Fprintln(out, "\nUse 'gdprscan compare <url>' to compare the latest two scans.")
	fmt.Fprintln(out, "Use 'gdprscan show <id>' to print a stored report.")
	return nil
}

// formatRiskSummary formats issue counts as "C:1 H:2 L:3", leaving out
// zero counts.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	for _, level := range []struct {
		key, short string
	}{
		{"critical", "C"},
		{"high", "H"},
		{"medium", "M"},
		{"low", "L"},
	} {
		if v := summary[level.key]; v > 0 {
			parts = append(parts, level.short+":"+strconv.Itoa(v))
		}
	}
	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// ComparisonResult holds the difference between two scans of one site.
type ComparisonResult struct {
	URL string `json:"url"`

	PreviousScan ScanSummary `json:"previous_scan"`
	CurrentScan  ScanSummary `json:"current_scan"`

	// NewIssues are present in the current scan only.
	NewIssues []IssueChange `json:"new_issues,omitempty"`

	// ResolvedIssues are present in the previous scan only.
	ResolvedIssues []IssueChange `json:"resolved_issues,omitempty"`

	UnchangedCount int `json:"unchanged_count"`

	// ScoreDelta is the current score minus the previous score.
	ScoreDelta int `json:"score_delta"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`
}

// ScanSummary describes one side of a comparison.
type ScanSummary struct {
	ID          int64           `json:"id"`
	ScannedAt   time.Time       `json:"scanned_at"`
	Score       int             `json:"score"`
	OverallRisk model.RiskLevel `json:"overall_risk"`
	IssueCount  int             `json:"issue_count"`
}

// IssueChange is an issue that appeared or disappeared.
type IssueChange struct {
	Code      model.IssueCode `json:"code"`
	Title     string          `json:"title"`
	RiskLevel model.RiskLevel `json:"risk_level"`
}

// runComparison selects the two scans and compares their issues.
func runComparison(ctx context.Context, db *database.HistoryDB, target string, opts compareOptions) (*ComparisonResult, error) {
	history, err := db.GetScanHistoryWithMetadata(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no scan history found for %s", target)
	}
	if len(history) < 2 && opts.withScanID == 0 && opts.since == "" {
		return nil, fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(history))
	}

	current := history[0]
	var previous *database.ScanMetadata

	switch {
	case opts.withScanID != 0:
		i := slices.IndexFunc(history, func(m database.ScanMetadata) bool { return m.ID == opts.withScanID })
		if i < 0 {
			return nil, fmt.Errorf("%w: scan ID %d does not belong to %s", database.ErrNotFound, opts.withScanID, target)
		}
		if i == 0 {
			return nil, fmt.Errorf("scan ID %d is the latest scan; choose an earlier one", opts.withScanID)
		}
		previous = &history[i]
	case opts.since != "":
		since, err := time.ParseInLocation(time.DateOnly, opts.since, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		// History is newest first, so walk backwards to find the oldest match.
		for i := len(history) - 1; i >= 0; i-- {
			if !history[i].Timestamp.Before(since) {
				previous = &history[i]
				break
			}
		}
		if previous == nil {
			return nil, fmt.Errorf("no scans found since %s", opts.since)
		}
		if previous.ID == current.ID {
			return nil, fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", opts.since)
		}
	default:
		previous = &history[1]
	}

	previousIssues, err := db.GetIssues(ctx, previous.ID)
	if err != nil {
		return nil, err
	}
	currentIssues, err := db.GetIssues(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	return compareScans(target, *previous, current, previousIssues, currentIssues), nil
}

// compareScans diffs the issue codes of two scans.
func compareScans(target string, previous, current database.ScanMetadata, previousIssues, currentIssues []database.IssueRecord) *ComparisonResult {
	result := &ComparisonResult{
		URL:          target,
		PreviousScan: summarize(previous, len(previousIssues)),
		CurrentScan:  summarize(current, len(currentIssues)),
		ScoreDelta:   current.Score - previous.Score,
	}

	hasCode := func(issues []database.IssueRecord, code model.IssueCode) bool {
		return slices.ContainsFunc(issues, func(r database.IssueRecord) bool { return r.Code == code })
	}
	for _, issue := range currentIssues {
		if !hasCode(previousIssues, issue.Code) {
			result.NewIssues = append(result.NewIssues, issueChange(issue))
		}
	}
	for _, issue := range previousIssues {
		if hasCode(currentIssues, issue.Code) {
			result.UnchangedCount++
		} else {
			result.ResolvedIssues = append(result.ResolvedIssues, issueChange(issue))
		}
	}

	switch {
	case result.ScoreDelta > 0:
		result.Direction = directionImproved
	case result.ScoreDelta < 0:
		result.Direction = directionWorsened
	default:
		result.Direction = directionUnchanged
	}
	return result
}

func summarize(meta database.ScanMetadata, issues int) ScanSummary {
	return ScanSummary{
		ID:          meta.ID,
		ScannedAt:   meta.Timestamp,
		Score:       meta.Score,
		OverallRisk: meta.OverallRisk,
		IssueCount:  issues,
	}
}

func issueChange(r database.IssueRecord) IssueChange {
	return IssueChange{Code: r.Code, Title: r.Title, RiskLevel: r.RiskLevel}
}

func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)
	md.H1("Scan Comparison: " + result.URL)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Score:** %s", formatDirection(result.Direction))
	md.PlainText("")

	prev, curr := result.PreviousScan, result.CurrentScan
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Scan ID", strconv.FormatInt(prev.ID, 10), strconv.FormatInt(curr.ID, 10), "-"},
			{"Date", prev.ScannedAt.Local().Format("2006-01-02 15:04"), curr.ScannedAt.Local().Format("2006-01-02 15:04"), "-"},
			{"Score", strconv.Itoa(prev.Score), strconv.Itoa(curr.Score), formatDelta(result.ScoreDelta)},
			{"Overall Risk", prev.OverallRisk.String(), curr.OverallRisk.String(), "-"},
			{"Issues", strconv.Itoa(prev.IssueCount), strconv.Itoa(curr.IssueCount), formatDelta(curr.IssueCount - prev.IssueCount)},
		},
	})

	if len(result.NewIssues) > 0 {
		md.PlainText("")
		md.H2(fmt.Sprintf("New Issues (%d)", len(result.NewIssues)))
		md.PlainText("")
		md.BulletList(issueLines(result.NewIssues, "")...)
	}
	if len(result.ResolvedIssues) > 0 {
		md.PlainText("")
		md.H2(fmt.Sprintf("Resolved Issues (%d)", len(result.ResolvedIssues)))
		md.PlainText("")
		md.BulletList(issueLines(result.ResolvedIssues, "~~")...)
	}
	if result.UnchangedCount > 0 {
		md.PlainText("")
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d issues unchanged*", result.UnchangedCount)
	}
	return md.Build()
}

func issueLines(issues []IssueChange, wrap string) []string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, fmt.Sprintf("%s**[%s]** %s (`%s`)%s", wrap, issue.RiskLevel, issue.Title, issue.Code, wrap))
	}
	return lines
}

func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	prev, curr := result.PreviousScan, result.CurrentScan

	fmt.Fprintf(out, "Scan Comparison: %s\n", result.URL)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nScore: %s\n", formatDirection(result.Direction))
	fmt.Fprintf(out, "\nPrevious scan: #%d  %s\n", prev.ID, prev.ScannedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current scan:  #%d  %s\n", curr.ID, curr.ScannedAt.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(out, "\n  %-14s  %-10s  %-10s  %s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 48))
	fmt.Fprintf(out, "  %-14s  %-10d  %-10d  %s\n", "Score", prev.Score, curr.Score, formatDelta(result.ScoreDelta))
	fmt.Fprintf(out, "  %-14s  %-10s  %-10s\n", "Overall Risk", prev.OverallRisk, curr.OverallRisk)
	fmt.Fprintf(out, "  %-14s  %-10d  %-10d  %s\n", "Issues", prev.IssueCount, curr.IssueCount, formatDelta(curr.IssueCount-prev.IssueCount))

	if len(result.NewIssues) > 0 {
		fmt.Fprintf(out, "\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Fprintf(out, "  [+] [%s] %s (%s)\n", issue.RiskLevel, issue.Title, issue.Code)
		}
	}
	if len(result.ResolvedIssues) > 0 {
		fmt.Fprintf(out, "\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Fprintf(out, "  [-] [%s] %s (%s)\n", issue.RiskLevel, issue.Title, issue.Code)
		}
	}
	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d issues\n", result.UnchangedCount)
	}
	return nil
}

func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (score increased)"
	case directionWorsened:
		return "WORSENED (score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a delta with its sign.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
