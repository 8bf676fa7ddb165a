// Package main provides the entry point for the gdprscan CLI.
//
// gdprscan audits websites for GDPR and ePrivacy compliance. It loads each
// page in a headless browser, records cookies, trackers and third-party
// requests before and after consent, and reports the issues it finds with
// a compliance score.
//
// Usage:
//
//	gdprscan scan <url>
//	gdprscan scan --list <file>
//	gdprscan compare <url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
