package discovery

import (
	"bytes"
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gdprscan/internal/urlutil"
)

// fromHomepage collects the first maxHomepageLinks links of the homepage.
func (d *Discoverer) fromHomepage(ctx context.Context, root *url.URL) ([]string, error) {
	data, err := d.fetch(ctx, root.String())
	if err != nil {
		return nil, err
	}
	return ExtractLinks(root, data)
}

// ExtractLinks returns the resolved href targets of an HTML document, at
// most maxHomepageLinks of them.
func ExtractLinks(base *url.URL, document []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if link := urlutil.Resolve(base, s.AttrOr("href", "")); link != "" {
			links = append(links, link)
		}
		return len(links) < maxHomepageLinks
	})
	return links, nil
}
