package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/gdprscan/internal/analyzer"
	"github.com/nao1215/gdprscan/internal/browser"
	"github.com/nao1215/gdprscan/internal/config"
	"github.com/nao1215/gdprscan/internal/database"
	"github.com/nao1215/gdprscan/internal/discovery"
	"github.com/nao1215/gdprscan/internal/log"
	"github.com/nao1215/gdprscan/internal/model"
	"github.com/nao1215/gdprscan/internal/pipeline"
	"github.com/nao1215/gdprscan/internal/report"
	"github.com/nao1215/gdprscan/internal/urlutil"
	"github.com/spf13/cobra"
)

// discoveryBurst is the token bucket size of the discovery rate limiter.
const discoveryBurst = 2

var (
	// errScansAborted is returned when at least one site could not be loaded.
	errScansAborted = errors.New("scan aborted")

	// errRiskThreshold is returned when a site reaches the --fail-on level.
	errRiskThreshold = errors.New("risk threshold reached")
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan websites for GDPR compliance issues",
		Long: `Scan loads each website in a headless browser and audits it for GDPR and
ePrivacy compliance:
- Cookies and trackers set before consent
- Consent banner presence, reject option and equal prominence
- Privacy policy presence and required sections
- Data collection forms without consent checkbox or privacy link
- HTTPS, mixed content, security headers and the TLS certificate
- Data transfers to US services

Each site gets a score from 0 to 100 and an overall risk level. Results are
saved to the history database unless --no-save is given.

Examples:
  # Scan one website
  gdprscan scan https://example.com

  # Scan several websites, three at a time
  gdprscan scan -b 3 example.com example.org example.net

  # Scan the URLs listed in a file (one per line, # starts a comment)
  gdprscan scan --list sites.txt

  # Fetch pages without a browser (no JavaScript, no consent click)
  gdprscan scan --driver static example.com

  # Write a Markdown report
  gdprscan scan -m -o reports/example.md example.com

  # Fail when any site has a HIGH or CRITICAL overall risk
  gdprscan scan --fail-on high example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Target flags
	cmd.Flags().StringP("list", "l", "",
		"File with URLs to scan, one per line")

	// Timing flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for one whole website scan")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"Timeout for a single analyzer probe")
	cmd.Flags().Duration("navigate-timeout", config.DefaultNavigateTimeout,
		"Timeout for the initial page load")
	cmd.Flags().Duration("settle-delay", config.DefaultSettleDelay,
		"Wait after accepting consent before the second capture")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Browser flags
	cmd.Flags().String("driver", config.DefaultDriver,
		"Browser driver: chrome or static")
	cmd.Flags().String("chrome-path", "",
		"Path to the Chrome executable")
	cmd.Flags().String("proxy", "",
		"Proxy URL (http, https, socks5, socks5h)")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (default: desktop Chrome)")

	// Analyzer flags
	cmd.Flags().Int("max-form-pages", config.DefaultMaxFormPages,
		"Extra pages searched for data collection forms")
	cmd.Flags().Float64("discovery-rate", config.DefaultDiscoveryRate,
		"Requests per second when reading sitemap.xml and robots.txt")
	cmd.Flags().StringSlice("skip", nil,
		"Analyzers to skip (e.g. --skip ssl,forms)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .gdprscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-color", false,
		"Disable colored output")
	cmd.Flags().String("fail-on", "",
		"Exit with an error when a site reaches this risk level (low, medium, high, critical)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	failOn, err := failOnLevel(cmd)
	if err != nil {
		return err
	}
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return err
	}
	if noColor {
		color.NoColor = true
	}

	newLogger := log.NewSecureLogger
	if cfg.JSONReport {
		newLogger = log.NewSecureJSONLogger
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := runScan(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return checkResults(results, failOn)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = flags.GetDuration("probe-timeout"); err != nil {
		return nil, err
	}
	if cfg.NavigateTimeout, err = flags.GetDuration("navigate-timeout"); err != nil {
		return nil, err
	}
	if cfg.SettleDelay, err = flags.GetDuration("settle-delay"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Driver, err = flags.GetString("driver"); err != nil {
		return nil, err
	}
	if cfg.ChromePath, err = flags.GetString("chrome-path"); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxFormPages, err = flags.GetInt("max-form-pages"); err != nil {
		return nil, err
	}
	if cfg.DiscoveryRate, err = flags.GetFloat64("discovery-rate"); err != nil {
		return nil, err
	}
	if cfg.Skip, err = flags.GetStringSlice("skip"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// An explicit config path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.ConfigFilePath = configPath
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	listPath, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	targets := slices.Clone(args)
	if listPath != "" {
		listed, err := readTargetList(listPath)
		if err != nil {
			return nil, err
		}
		targets = append(targets, listed...)
	}
	if cfg.Targets, err = normalizeTargets(targets); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the flags and the config file against the known
// analyzers.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, name := range cfg.Skip {
		if !slices.Contains(analyzer.Names, name) {
			return fmt.Errorf("--skip: %w: %q", config.ErrUnknownAnalyzer, name)
		}
	}
	if cfg.SiteConfigs != nil {
		if err := cfg.SiteConfigs.Validate(analyzer.Names); err != nil {
			return fmt.Errorf("%s: %w", cfg.ConfigFilePath, err)
		}
	}
	return nil
}

// readTargetList reads URLs from a file. Blank lines and lines starting
// with # are ignored.
func readTargetList(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return targets, nil
}

// normalizeTargets normalizes every URL and drops duplicates, keeping the
// first occurrence.
func normalizeTargets(raw []string) ([]string, error) {
	targets := make([]string, 0, len(raw))
	for _, r := range raw {
		u, err := urlutil.Normalize(r)
		if err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", r, err)
		}
		if !slices.Contains(targets, u) {
			targets = append(targets, u)
		}
	}
	return targets, nil
}

// failOnLevel parses the --fail-on flag. It returns nil when the flag is unset.
func failOnLevel(cmd *cobra.Command) (*model.RiskLevel, error) {
	s, err := cmd.Flags().GetString("fail-on")
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	level, err := model.ParseRiskLevel(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --fail-on: %w", err)
	}
	return &level, nil
}

// runScan scans every target and streams the reports to out.
// Progress lines go to progress.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, progress io.Writer) ([]*model.ScanResult, error) {
	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"driver", cfg.Driver,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, out)
	if err != nil {
		return nil, err
	}
	defer closeOutput() //nolint:errcheck // closed explicitly below on success

	writer := newReportWriter(cfg, output)
	if cfg.ReportFile != "" && (cfg.JSONReport || cfg.MarkdownReport) {
		// Machine-readable reports go to the file; the terminal gets the summary.
		writer = report.NewMultiWriter(writer, report.NewSimpleWriter(out, report.WithColor(!color.NoColor)))
	}

	launcher := browser.NewLauncher(browser.LaunchOptions{
		Driver:         cfg.Driver,
		ChromePath:     cfg.ChromePath,
		Proxy:          cfg.Proxy,
		UserAgent:      cfg.UserAgent,
		RequestTimeout: cfg.ProbeTimeout,
		SettleTime:     cfg.SettleDelay,
	})

	total := len(cfg.Targets)
	var mu sync.Mutex
	onResult := func(result *model.ScanResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(progress, "[%d/%d] %s: %s\n", index+1, total, result.URL, progressStatus(result))

		if _, err := writer.Write(result); err != nil {
			logger.Error("report failed", "url", result.URL, "error", err)
		}
		if err := saveScanResult(ctx, db, result, logger); err != nil {
			logger.Error("failed to save scan result", "url", result.URL, "error", err)
		}
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return newPipeline(cfg, logger) },
		newPageFactory(cfg, launcher),
		newRegistryFactory(cfg, launcher, logger),
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithScanTimeout(cfg.Timeout),
		pipeline.WithOnResult(onResult),
	)

	if total > 1 {
		fmt.Fprintf(progress, "Scanning %d websites (concurrency: %d)...\n", total, cfg.BatchSize)
	} else {
		fmt.Fprintf(progress, "Scanning %s...\n", cfg.Targets[0])
	}
	start := time.Now()

	results, err := bp.ProcessBatch(ctx, cfg.Targets)
	fmt.Fprintf(progress, "Finished in %s\n", time.Since(start).Round(time.Millisecond))
	if err != nil {
		return results, fmt.Errorf("scan interrupted: %w", err)
	}
	if err := closeOutput(); err != nil {
		return results, fmt.Errorf("failed to close output file: %w", err)
	}
	return results, nil
}

// newPipeline creates the scan pipeline for one website.
func newPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineNavigateTimeout(cfg.NavigateTimeout),
		pipeline.WithPipelineSettleDelay(cfg.SettleDelay),
		pipeline.WithPipelineStepLogger(logger),
	)
}

// newPageFactory opens a fresh page per website, carrying the site's
// cookie and headers.
func newPageFactory(cfg *config.Config, launcher *browser.Launcher) pipeline.PageFactory {
	return func(ctx context.Context, url string) (browser.Page, error) {
		site := cfg.SiteConfigs.GetSiteConfig(url)
		return launcher.WithSite(site.Headers, site.Cookie).Launch(ctx)
	}
}

// newRegistryFactory builds the analyzers of one website from the global
// flags and its site configuration.
func newRegistryFactory(cfg *config.Config, launcher *browser.Launcher, logger *slog.Logger) pipeline.RegistryFactory {
	return func(url string) *analyzer.Registry {
		site := cfg.SiteConfigs.GetSiteConfig(url)
		siteLauncher := launcher.WithSite(site.Headers, site.Cookie)

		maxFormPages := cfg.MaxFormPages
		if site.MaxFormPages > 0 {
			maxFormPages = site.MaxFormPages
		}
		skip := slices.Clone(cfg.Skip)
		for _, name := range site.Skip {
			if !slices.Contains(skip, name) {
				skip = append(skip, name)
			}
		}

		opts := []analyzer.Option{
			analyzer.WithProbeTimeout(cfg.ProbeTimeout),
			analyzer.WithLogger(logger),
			analyzer.WithMaxFormPages(maxFormPages),
			analyzer.WithSkip(skip...),
		}

		if prober, err := siteLauncher.TLSProber(cfg.ProbeTimeout); err != nil {
			logger.Warn("TLS probing disabled", "url", url, "error", err)
		} else {
			opts = append(opts, analyzer.WithTLSProbe(prober))
		}

		if client, err := siteLauncher.HTTPClient(); err != nil {
			logger.Warn("page discovery disabled", "url", url, "error", err)
		} else {
			opts = append(opts, analyzer.WithDiscoverer(discovery.New(
				discovery.WithHTTPClient(client),
				discovery.WithMaxPages(maxFormPages),
				discovery.WithRateLimit(cfg.DiscoveryRate, discoveryBurst),
				discovery.WithLogger(logger),
			)))
		}

		return analyzer.NewRegistry(opts...)
	}
}

// openOutput returns the report destination: the file at path, or out
// when path is empty. The returned close function is safe to call twice.
func openOutput(path string, out io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return out, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports name cookies and session details, so keep them owner-only.
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	var once sync.Once
	var closeErr error
	return f, func() error {
		once.Do(func() { closeErr = f.Close() })
		return closeErr
	}, nil
}

// newReportWriter selects the report format. Colors are only used for the
// text report on a terminal.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		var opts []report.JSONWriterOption
		if len(cfg.Targets) == 1 {
			opts = append(opts, report.WithPrettyPrint())
		}
		return report.NewFullJSONWriter(output, getVersion(), opts...)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithColor(cfg.ReportFile == "" && !color.NoColor),
		)
	}
}

// progressStatus is the one-line outcome of a scan.
func progressStatus(r *model.ScanResult) string {
	if r.Aborted {
		return "aborted"
	}
	s := fmt.Sprintf("score %d/100, %s risk, %d issues", r.Score, r.OverallRisk, len(r.Issues))
	if r.TimedOut {
		s += " (timed out)"
	}
	return s
}

// saveScanResult stores a finished scan. Aborted scans are not stored
// because their score says nothing about the site. A nil db is a no-op.
func saveScanResult(ctx context.Context, db *database.HistoryDB, result *model.ScanResult, logger *slog.Logger) error {
	if db == nil || result.Aborted {
		return nil
	}
	// An interrupt must not lose results that already finished.
	id, err := db.SaveScanResult(context.WithoutCancel(ctx), result)
	if err != nil {
		return err
	}
	logger.Info("scan result saved", "url", result.URL, "id", id)
	return nil
}

// checkResults turns aborted scans and the --fail-on threshold into
// an error for the exit status.
func checkResults(results []*model.ScanResult, failOn *model.RiskLevel) error {
	var aborted, failed []string
	for _, r := range results {
		switch {
		case r == nil:
		case r.Aborted:
			aborted = append(aborted, r.URL)
		case failOn != nil && r.OverallRisk >= *failOn:
			failed = append(failed, r.URL)
		}
	}

	var errs []error
	if len(aborted) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", errScansAborted, strings.Join(aborted, ", ")))
	}
	if len(failed) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s at or above %s: %s",
			errRiskThreshold, pluralSites(len(failed)), *failOn, strings.Join(failed, ", ")))
	}
	return errors.Join(errs...)
}

func pluralSites(n int) string {
	if n == 1 {
		return "1 site"
	}
	return fmt.Sprintf("%d sites", n)
}
