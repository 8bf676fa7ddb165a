package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nao1215/gdprscan/internal/config"
	"github.com/nao1215/gdprscan/internal/database"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/report"
	"github.com/nao1215/gdprscan/internal/urlutil"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <scan-id | url>",
		Short: "Print a stored scan report",
		Long: `Show prints a report from the history database without scanning again.

The argument is either a scan ID (see 'gdprscan compare --list <url>') or a
URL, which selects the latest scan of that site.

Examples:
  # Print scan 12
  gdprscan show 12

  # Print the latest scan of a site as Markdown
  gdprscan show -m https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	var result *model.ScanResult
	if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
		result, err = db.GetScanResultByID(cmd.Context(), id)
	} else {
		target, nerr := urlutil.Normalize(args[0])
		if nerr != nil {
			return fmt.Errorf("invalid scan ID or URL %q: %w", args[0], nerr)
		}
		result, err = db.GetLatestScanResult(cmd.Context(), target)
	}
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s", err, args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithVerbose(getVerboseFlag(cmd)))
	}
	_, err = writer.Write(result)
	return err
}
