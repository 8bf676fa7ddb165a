package discovery

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
)

// Robots holds the directives of robots.txt used for discovery.
type Robots struct {
	Sitemaps []string
	Allow    []string
}

// ParseRobots extracts Sitemap and Allow directives. Directive names are
// case-insensitive and comments are ignored.
func ParseRobots(data []byte) Robots {
	var r Robots
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "sitemap":
			r.Sitemaps = append(r.Sitemaps, value)
		case "allow":
			r.Allow = append(r.Allow, value)
		}
	}
	return r
}

// fromRobots reads the sitemaps robots.txt names, then falls back to its
// Allow paths. Wildcard paths are skipped.
func (d *Discoverer) fromRobots(ctx context.Context, root *url.URL) ([]string, error) {
	data, err := d.fetch(ctx, root.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	if err != nil {
		return nil, err
	}
	robots := ParseRobots(data)

	var candidates []string
	var errs []error
	for _, sm := range truncate(robots.Sitemaps, maxSubSitemaps) {
		pages, err := d.readSitemap(ctx, sm)
		if err != nil {
			errs = append(errs, err)
		}
		candidates = append(candidates, pages...)
	}
	if len(Rank(root.String(), candidates, 1)) > 0 {
		return candidates, errors.Join(errs...)
	}

	for _, p := range robots.Allow {
		if strings.ContainsAny(p, "*$") {
			continue
		}
		ref, err := url.Parse(p)
		if err != nil {
			continue
		}
		candidates = append(candidates, root.ResolveReference(ref).String())
	}
	return candidates, errors.Join(errs...)
}
