// Package database stores scan history in SQLite.
//
// Each saved scan keeps the full ScanResult as JSON plus a risk summary for
// listing, and one row per issue with a category and a short evidence
// string, so history can be browsed and compared without decoding every
// result.
//
// The driver is modernc.org/sqlite, a pure Go SQLite, so the binary needs no
// cgo. The database runs in WAL mode with a single open connection.
package database
