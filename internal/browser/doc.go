// Package browser is the capability layer the analyzers drive a website
// through.
//
// The Page interface is deliberately narrow: navigation, DOM queries with
// visibility and geometry, clicks, the cookie jar, and a stream of network
// request events. Two drivers implement it:
//
//   - ChromePage runs headless Chrome through chromedp and sees what a real
//     visitor sees, including JavaScript-injected trackers and banners.
//   - StaticPage fetches HTML over net/http and parses it with goquery.
//     It runs no JavaScript and has no layout, so geometry is always zero.
//
// TLSProber is separate from Page because certificate inspection needs a
// raw handshake that skips verification.
package browser
