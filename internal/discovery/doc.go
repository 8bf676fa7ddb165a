// Package discovery finds same-site pages that are likely to carry forms:
// contact, newsletter, signup, account and checkout pages.
//
// Discoverer tries the sitemap, robots.txt and homepage links in that
// order and returns the best ranked candidates of the first strategy that
// yields any.
package discovery
