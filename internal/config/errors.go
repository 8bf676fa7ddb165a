package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no URL to scan was given.
	ErrNoTarget = errors.New("no target specified: provide at least one URL or use --list")

	// ErrInvalidTimeout is returned when a scan or navigation timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidProbeTimeout is returned when the probe timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidDriver is returned for a driver other than chrome or static.
	ErrInvalidDriver = errors.New("invalid driver: must be chrome or static")

	// ErrInvalidMaxFormPages is returned when the form page limit is negative.
	ErrInvalidMaxFormPages = errors.New("invalid max form pages: must be non-negative")

	// ErrInvalidDiscoveryRate is returned when the discovery rate is not positive.
	ErrInvalidDiscoveryRate = errors.New("invalid discovery rate: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoDBDir is returned when saving is enabled without a database directory.
	ErrNoDBDir = errors.New("no database directory: set one or use --no-save")

	// ErrUnknownAnalyzer is returned when a config file skips an analyzer
	// that does not exist.
	ErrUnknownAnalyzer = errors.New("unknown analyzer")
)
