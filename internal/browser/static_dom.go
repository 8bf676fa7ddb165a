package browser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gdprscan/internal/urlutil"
)

// subresourceRules map elements referencing other resources to the
// request type a browser would issue.
var subresourceRules = []struct {
	selector string
	attr     string
	kind     ResourceType
}{
	{"script[src]", "src", ResourceScript},
	{"img[src]", "src", ResourceImage},
	{"input[type=image][src]", "src", ResourceImage},
	{"video[src], audio[src], source[src], track[src]", "src", ResourceMedia},
	{"video[poster]", "poster", ResourceImage},
	{"iframe[src], frame[src]", "src", ResourceDocument},
	{"embed[src]", "src", ResourceOther},
	{"object[data]", "data", ResourceOther},
}

// subresources lists the requests the document would trigger on load.
func subresources(doc *goquery.Document, base *url.URL) []Request {
	seen := make(map[string]bool)
	var out []Request

	add := func(href string, kind ResourceType) {
		u := urlutil.Resolve(base, href)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, Request{URL: u, ResourceType: kind})
	}

	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if kind, ok := linkResourceType(s); ok {
			add(href, kind)
		}
	})
	for _, rule := range subresourceRules {
		doc.Find(rule.selector).Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(rule.attr)
			add(v, rule.kind)
		})
	}
	return out
}

// linkResourceType derives the request type of a <link> from rel and as.
func linkResourceType(s *goquery.Selection) (ResourceType, bool) {
	rel := strings.ToLower(s.AttrOr("rel", ""))
	as := strings.ToLower(s.AttrOr("as", ""))
	fields := strings.Fields(rel)

	has := func(v string) bool {
		for _, f := range fields {
			if f == v {
				return true
			}
		}
		return false
	}

	switch {
	case has("stylesheet"):
		return ResourceStylesheet, true
	case has("icon"), has("apple-touch-icon"):
		return ResourceImage, true
	case has("preload"), has("modulepreload"), has("prefetch"):
		switch as {
		case "script", "":
			return ResourceScript, true
		case "style":
			return ResourceStylesheet, true
		case "font":
			return ResourceFont, true
		case "image":
			return ResourceImage, true
		case "fetch":
			return ResourceFetch, true
		}
		return ResourceOther, true
	}
	return "", false
}

// staticElement snapshots a goquery selection.
func staticElement(doc *goquery.Document, s *goquery.Selection) Element {
	attrs := make(map[string]string)
	if n := s.Get(0); n != nil {
		for _, a := range n.Attr {
			attrs[strings.ToLower(a.Key)] = a.Val
		}
	}
	_, checked := attrs["checked"]
	if _, ok := attrs["aria-checked"]; ok && strings.EqualFold(attrs["aria-checked"], "true") {
		checked = true
	}

	return Element{
		Tag:     goquery.NodeName(s),
		Text:    collapseSpace(s.Text()),
		Attrs:   attrs,
		Visible: isStaticVisible(s),
		Checked: checked,
		Label:   staticLabel(doc, s),
	}
}

var hiddenStyle = regexp.MustCompile(`(?i)(display\s*:\s*none|visibility\s*:\s*hidden)`)

var invisibleTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true, "meta": true,
}

// isStaticVisible approximates visibility without layout: the element and
// its ancestors must not be hidden by attribute or inline style.
func isStaticVisible(s *goquery.Selection) bool {
	if strings.EqualFold(s.AttrOr("type", ""), "hidden") && goquery.NodeName(s) == "input" {
		return false
	}
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		name := goquery.NodeName(cur)
		if name == "#document" || name == "html" {
			break
		}
		if invisibleTags[name] {
			return false
		}
		if _, ok := cur.Attr("hidden"); ok {
			return false
		}
		if hiddenStyle.MatchString(cur.AttrOr("style", "")) {
			return false
		}
	}
	return true
}

// staticLabel returns the accessible name of an element.
func staticLabel(doc *goquery.Document, s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "input", "select", "textarea":
		if id := s.AttrOr("id", ""); id != "" {
			var text string
			doc.Find("label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
				if l.AttrOr("for", "") == id {
					text = collapseSpace(l.Text())
					return false
				}
				return true
			})
			if text != "" {
				return text
			}
		}
		if l := s.Closest("label"); l.Length() > 0 {
			if text := collapseSpace(l.Text()); text != "" {
				return text
			}
		}
		if v := s.AttrOr("aria-label", ""); v != "" {
			return v
		}
		return collapseSpace(s.Parent().Text())
	}

	if v := s.AttrOr("aria-label", ""); v != "" {
		return v
	}
	return s.AttrOr("title", "")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
