package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds one whole website scan, from navigation to
	// issue generation. Dedicated analyzer phases navigate to extra pages,
	// so this is well above a single page load.
	DefaultTimeout = 120 * time.Second

	// DefaultProbeTimeout bounds a single probe: a selector query, a cookie
	// read, a TLS handshake or a navigation inside an analyzer phase.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultNavigateTimeout bounds the initial page load.
	DefaultNavigateTimeout = 30 * time.Second

	// DefaultSettleDelay is the wait after the consent click so that
	// consent-gated scripts can load before the second capture.
	DefaultSettleDelay = 2 * time.Second

	// DefaultBatchSize is the number of concurrent scans. Each scan owns a
	// browser page, so this stays small.
	DefaultBatchSize = 2

	// DefaultMaxFormPages is the number of discovered pages the forms
	// analyzer visits in addition to the start page.
	DefaultMaxFormPages = 5

	// DefaultDiscoveryRate is the sitemap/robots.txt request rate per second.
	DefaultDiscoveryRate = 5.0

	// DefaultDriver is the browser driver used when none is configured.
	DefaultDriver = "chrome"

	// AppName is the application name used for XDG directory paths.
	AppName = "gdprscan"
)

// drivers lists the accepted Driver values.
var drivers = []string{"chrome", "static"}

// Config holds all options of a gdprscan run.
// It is populated from defaults, the config file and CLI flags, in that
// order, and passed down explicitly.
type Config struct {
	// Targets are the website URLs to scan.
	Targets []string

	// Timeout bounds one whole website scan.
	Timeout time.Duration

	// ProbeTimeout bounds single analyzer probes.
	ProbeTimeout time.Duration

	// NavigateTimeout bounds the initial page load.
	NavigateTimeout time.Duration

	// SettleDelay is the wait after a successful consent action.
	SettleDelay time.Duration

	// BatchSize is the number of websites scanned concurrently.
	BatchSize int

	// Driver selects the browser implementation: "chrome" drives a headless
	// Chrome over the DevTools protocol, "static" fetches pages over plain
	// HTTP without running scripts.
	Driver string

	// ChromePath overrides the Chrome executable lookup.
	ChromePath string

	// Proxy is an optional proxy URL (http, https, socks5, socks5h).
	Proxy string

	// UserAgent overrides the browser User-Agent. Empty uses the driver
	// default, a current desktop Chrome.
	UserAgent string

	// MaxFormPages caps the extra pages visited by the forms analyzer.
	MaxFormPages int

	// DiscoveryRate is the request rate limit of site discovery.
	DiscoveryRate float64

	// Skip names analyzers that are not run for any site.
	Skip []string

	// Verbose enables debug logging and detailed text reports.
	Verbose bool

	// ConfigFilePath is the explicit path of the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds the loaded configuration file, if any.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Empty writes to stdout.
	ReportFile string

	// DBDir is the directory of the scan history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores every finished scan in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		ProbeTimeout:    DefaultProbeTimeout,
		NavigateTimeout: DefaultNavigateTimeout,
		SettleDelay:     DefaultSettleDelay,
		BatchSize:       DefaultBatchSize,
		Driver:          DefaultDriver,
		MaxFormPages:    DefaultMaxFormPages,
		DiscoveryRate:   DefaultDiscoveryRate,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for gdprscan.
// On Linux: ~/.local/share/gdprscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for gdprscan.
// On Linux: ~/.config/gdprscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}
	if c.NavigateTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if !slices.Contains(drivers, c.Driver) {
		return ErrInvalidDriver
	}
	if c.MaxFormPages < 0 {
		return ErrInvalidMaxFormPages
	}
	if c.DiscoveryRate <= 0 {
		return ErrInvalidDiscoveryRate
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}
	return nil
}
