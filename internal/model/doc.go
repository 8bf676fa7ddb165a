// Package model defines the data structures shared by the scanner packages.
//
// The main types are:
//   - ScanContext: per-scan state threaded through every analyzer hook
//   - CookieInfo, TrackerInfo, ConsentBannerInfo and the other findings
//     captured by analyzers
//   - ScanIssue: an immutable compliance issue with a RiskLevel
//   - ScanResult: the aggregate produced by one scan
//
// All types serialize to JSON for reports and the scan history database.
package model
