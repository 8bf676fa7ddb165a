package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedSitemap is returned for documents that are neither a urlset
// nor a sitemap index.
var ErrMalformedSitemap = errors.New("malformed sitemap")

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// sitemapDocument decodes both <urlset> and <sitemapindex> documents.
type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

// ParseSitemap decodes a sitemap. It returns page URLs for a urlset and
// sub-sitemap URLs for a sitemap index.
func ParseSitemap(data []byte) (pages, sitemaps []string, err error) {
	var doc sitemapDocument
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedSitemap, err)
	}

	switch strings.ToLower(doc.XMLName.Local) {
	case "urlset":
		return locs(doc.URLs), nil, nil
	case "sitemapindex":
		return nil, locs(doc.Sitemaps), nil
	default:
		return nil, nil, fmt.Errorf("%w: root element <%s>", ErrMalformedSitemap, doc.XMLName.Local)
	}
}

func locs(entries []sitemapLoc) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

func (d *Discoverer) fromSitemap(ctx context.Context, root *url.URL) ([]string, error) {
	return d.readSitemap(ctx, root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String())
}

// readSitemap reads a sitemap, following at most maxSubSitemaps entries of
// a sitemap index. Nested indexes are not followed.
func (d *Discoverer) readSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	data, err := d.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	pages, subs, err := ParseSitemap(data)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return truncate(pages, maxSitemapURLs), nil
	}

	var all []string
	var errs []error
	for _, sub := range truncate(subs, maxSubSitemaps) {
		if len(all) >= maxSitemapURLs {
			break
		}
		data, err := d.fetch(ctx, sub)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		subPages, _, err := ParseSitemap(data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, truncate(subPages, maxURLsPerSitemap)...)
	}
	return truncate(all, maxSitemapURLs), errors.Join(errs...)
}

func truncate(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
