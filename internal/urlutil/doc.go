// Package urlutil provides URL normalization, base domain resolution and
// the cookie merge rule used when joining the before-consent and
// after-consent observations of a scan.
package urlutil
