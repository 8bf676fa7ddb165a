package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// SiteConfig holds settings for one website.
type SiteConfig struct {
	// Cookie is a raw cookie string sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxFormPages overrides the global forms page limit. Zero keeps it.
	MaxFormPages int `yaml:"maxFormPages,omitempty"`

	// Skip names analyzers not run for the site.
	Skip []string `yaml:"skip,omitempty"`
}

// File represents the structure of the .gdprscan configuration file.
type File struct {
	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names (e.g. "www.example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// SiteKey returns the lookup key of a URL: its lower-case host name.
// Inputs without a scheme are treated as host names.
func SiteKey(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}
	return strings.ToLower(u.Hostname())
}

// GetSiteConfig returns the merged settings for a URL or host name.
// A site entry is looked up by host, then by host without "www.".
// Site values override defaults; headers are merged and skip lists are
// combined. A nil File yields the zero SiteConfig.
func (cf *File) GetSiteConfig(target string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)
	result.Skip = slices.Clone(cf.Defaults.Skip)

	site, ok := cf.lookup(SiteKey(target))
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.MaxFormPages != 0 {
		result.MaxFormPages = site.MaxFormPages
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	for _, name := range site.Skip {
		if !slices.Contains(result.Skip, name) {
			result.Skip = append(result.Skip, name)
		}
	}
	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	if host == "" {
		return SiteConfig{}, false
	}
	for _, key := range []string{host, strings.TrimPrefix(host, "www.")} {
		for k, site := range cf.Sites {
			if strings.EqualFold(k, key) {
				return site, true
			}
		}
	}
	return SiteConfig{}, false
}

// Validate checks that every skipped analyzer is one of known.
func (cf *File) Validate(known []string) error {
	check := func(where string, sc SiteConfig) error {
		if sc.MaxFormPages < 0 {
			return fmt.Errorf("%s: %w", where, ErrInvalidMaxFormPages)
		}
		for _, name := range sc.Skip {
			if !slices.Contains(known, name) {
				return fmt.Errorf("%s: %w: %q", where, ErrUnknownAnalyzer, name)
			}
		}
		return nil
	}

	if err := check("defaults", cf.Defaults); err != nil {
		return err
	}
	for _, host := range slices.Sorted(maps.Keys(cf.Sites)) {
		if err := check("sites."+host, cf.Sites[host]); err != nil {
			return err
		}
	}
	return nil
}
