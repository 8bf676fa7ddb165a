package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/gdprscan/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "gdprscan.db"

// ErrNotFound is returned when no stored scan matches a query.
var ErrNotFound = errors.New("scan not found")

// timestampLayout is fixed width so that text ordering is chronological.
const timestampLayout = "2006-01-02 15:04:05.000000"

// HistoryDB stores scan results.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB.
type Options struct {
	// CreateIfNotExists creates the directory and database file.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// A concurrent scan may hold the write lock while history is read.
	dsn := dbPath + "?mode=rw&_pragma=busy_timeout(5000)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		base_domain TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		score INTEGER NOT NULL,
		overall_risk TEXT NOT NULL,
		result_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_url ON scan_results(url);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON scan_results(timestamp);

	CREATE TABLE IF NOT EXISTS scan_issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scan_results(id),
		code TEXT NOT NULL,
		title TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		category TEXT NOT NULL,
		evidence TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_issues_scan ON scan_issues(scan_id);
	CREATE INDEX IF NOT EXISTS idx_issues_code ON scan_issues(code);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// riskSummary counts issues per lower-case risk name.
func riskSummary(r *model.ScanResult) map[string]int {
	counts := r.CountByRisk()
	return map[string]int{
		"critical": counts[model.RiskCritical],
		"high":     counts[model.RiskHigh],
		"medium":   counts[model.RiskMedium],
		"low":      counts[model.RiskLow],
	}
}

// SaveScanResult stores the result and its issues in one transaction and
// returns the new scan ID.
func (h *HistoryDB) SaveScanResult(ctx context.Context, r *model.ScanResult) (id int64, err error) {
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}
	riskJSON, _ := json.Marshal(riskSummary(r)) //nolint:errcheck,errchkjson // map[string]int always marshals

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO scan_results (url, base_domain, timestamp, score, overall_risk, result_json, risk_summary)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.URL,
		r.BaseDomain,
		r.ScannedAt.UTC().Format(timestampLayout),
		r.Score,
		r.OverallRisk.String(),
		string(resultJSON),
		string(riskJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan result: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO scan_issues (scan_id, code, title, risk_level, category, evidence)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for _, issue := range r.Issues {
		if _, err = stmt.ExecContext(ctx,
			id,
			string(issue.Code),
			issue.Title,
			issue.RiskLevel.String(),
			string(IssueCategory(issue.Code)),
			IssueEvidence(issue.Code, r),
		); err != nil {
			return 0, fmt.Errorf("failed to save issue %s: %w", issue.Code, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan result: %w", err)
	}
	return id, nil
}

func (h *HistoryDB) queryResult(ctx context.Context, query string, args ...any) (*model.ScanResult, error) {
	var resultJSON string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan result: %w", err)
	}

	var r model.ScanResult
	if err := json.Unmarshal([]byte(resultJSON), &r); err != nil {
		return nil, fmt.Errorf("failed to parse scan result: %w", err)
	}
	return &r, nil
}

// GetLatestScanResult returns the most recent result for url.
func (h *HistoryDB) GetLatestScanResult(ctx context.Context, url string) (*model.ScanResult, error) {
	return h.queryResult(ctx, `
	SELECT result_json FROM scan_results
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`, url)
}

// GetScanResultByID returns the result stored under id.
func (h *HistoryDB) GetScanResultByID(ctx context.Context, id int64) (*model.ScanResult, error) {
	return h.queryResult(ctx, `SELECT result_json FROM scan_results WHERE id = ?`, id)
}

// ListScannedSites returns every scanned URL in alphabetical order.
func (h *HistoryDB) ListScannedSites(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT url FROM scan_results ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// ScanMetadata summarizes a stored scan without its full result.
type ScanMetadata struct {
	ID          int64
	URL         string
	BaseDomain  string
	Timestamp   time.Time
	Score       int
	OverallRisk model.RiskLevel

	// RiskSummary counts issues by lower-case risk name.
	RiskSummary map[string]int
}

// GetScanHistoryWithMetadata returns the stored scans of url, newest first.
func (h *HistoryDB) GetScanHistoryWithMetadata(ctx context.Context, url string) ([]ScanMetadata, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, url, base_domain, timestamp, score, overall_risk, risk_summary
	FROM scan_results
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var history []ScanMetadata
	for rows.Next() {
		var (
			meta      ScanMetadata
			timestamp string
			risk      string
			riskJSON  sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.URL, &meta.BaseDomain, &timestamp, &meta.Score, &risk, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		if level, err := model.ParseRiskLevel(risk); err == nil {
			meta.OverallRisk = level
		}

		meta.RiskSummary = make(map[string]int)
		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		}
		history = append(history, meta)
	}
	return history, rows.Err()
}

// IssueRecord is a stored issue row.
type IssueRecord struct {
	ID        int64
	ScanID    int64
	Code      model.IssueCode
	Title     string
	RiskLevel model.RiskLevel
	Category  Category
	Evidence  string
}

// GetIssues returns the issues stored for a scan, in their original order.
func (h *HistoryDB) GetIssues(ctx context.Context, scanID int64) ([]IssueRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, scan_id, code, title, risk_level, category, evidence
	FROM scan_issues
	WHERE scan_id = ?
	ORDER BY id
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}
	defer rows.Close()

	var records []IssueRecord
	for rows.Next() {
		var (
			rec      IssueRecord
			code     string
			risk     string
			category string
			evidence sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ScanID, &code, &rec.Title, &risk, &category, &evidence); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		rec.Code = model.IssueCode(code)
		rec.Category = Category(category)
		rec.Evidence = evidence.String
		if level, err := model.ParseRiskLevel(risk); err == nil {
			rec.RiskLevel = level
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// timestampFormats are the layouts timestamps may come back in. The driver
// may hand text columns back as stored or convert them through time.Time.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
