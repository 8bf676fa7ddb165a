package urlutil

import (
	"sort"

	"github.com/nao1215/gdprscan/internal/model"
)

// MergeCookies joins the cookie sets of the two consent phases.
//
// Cookies with the same name, domain and path are one cookie. When either
// record of a pair was set before consent the before-consent record is kept,
// otherwise the first one. The result is sorted by name, then domain.
func MergeCookies(before, after []model.CookieInfo) []model.CookieInfo {
	merged := make(map[string]model.CookieInfo, len(before)+len(after))
	order := make([]string, 0, len(before)+len(after))

	add := func(c model.CookieInfo) {
		key := c.Key()
		existing, ok := merged[key]
		if !ok {
			merged[key] = c
			order = append(order, key)
			return
		}
		if preferCookie(existing, c) {
			merged[key] = c
		}
	}
	for _, c := range before {
		add(c)
	}
	for _, c := range after {
		add(c)
	}

	out := make([]model.CookieInfo, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// preferCookie reports whether candidate replaces existing.
func preferCookie(existing, candidate model.CookieInfo) bool {
	return candidate.SetBeforeConsent && !existing.SetBeforeConsent
}
