// Package issues turns scan findings into compliance issues and scores them.
//
// Generate and the score functions are pure: they read a ScanResult and never
// touch the network or the browser. Each check group has its own function,
// and Generate concatenates the groups in a fixed order so reports list
// related issues together.
package issues
