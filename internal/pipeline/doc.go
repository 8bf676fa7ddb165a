// Package pipeline runs one website scan as an ordered list of steps.
//
// A scan navigates to the site, lets the analyzers probe the page before
// consent, gives consent through the banner, probes again, runs the
// dedicated analyzer phases, and finally collects the findings into a
// ScanResult with issues and a score. Each step is a Step that receives
// the shared Scan.
//
// A failing step is recorded in the result and the pipeline moves on, so a
// scan always yields partial findings with defaults filled in. Only errors
// wrapping ErrScanAborted stop the pipeline, which happens when the page
// cannot be loaded at all.
//
// BatchProcessor runs many scans concurrently with errgroup, each with its
// own page and analyzer registry.
package pipeline
