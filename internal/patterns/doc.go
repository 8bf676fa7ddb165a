// Package patterns holds the static pattern databases used by the analyzers:
// known cookies, tracker vendors, US data-transfer services and the list of
// countries with an EU adequacy decision.
//
// The tables are data. Adding a vendor or cookie is a table change and never
// requires touching analyzer logic. Version is bumped whenever a table changes
// so stored scan results can be related to the database they were made with.
package patterns

// Version identifies the revision of the pattern databases.
const Version = "2026.10.1"
