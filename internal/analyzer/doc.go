// Package analyzer holds the per-concern GDPR analyzers and the hook
// protocol the scan pipeline drives them with.
//
// An analyzer implements Analyzer plus any subset of the hook interfaces.
// The pipeline calls only the hooks an analyzer implements:
//
//   - ResponseHook sees the main document response of the first navigation.
//   - RequestHook sees every network request for the lifetime of the page.
//   - BeforeConsentHook runs once before the consent action.
//   - ConsentActor performs the consent action.
//   - AfterConsentHook runs once after it.
//   - AnalyzeHook runs in a dedicated phase and may navigate the page away.
//   - ResultContributor writes the captured state into the scan result.
//
// Probes never fail a scan. A failing probe is logged and leaves the
// analyzer with its default "not found" state.
package analyzer
