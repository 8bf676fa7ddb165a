package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/gdprscan/internal/urlutil"
)

// Discovery errors.
var (
	// ErrNoPages is returned when no strategy found a form-likely page.
	ErrNoPages = errors.New("no form pages discovered")

	// ErrUnexpectedStatus is returned for non-200 responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Limits.
const (
	DefaultMaxPages   = 5
	DefaultTimeout    = 10 * time.Second
	DefaultRateLimit  = 5
	maxBodySize       = 5 << 20
	maxHomepageLinks  = 100
	maxSubSitemaps    = 3
	maxSitemapURLs    = 500
	maxURLsPerSitemap = 200
)

// formPageKeywords rank candidate URLs: the earlier the first keyword found
// in the path, the better the candidate.
var formPageKeywords = []string{
	"contact", "kontakt", "contacto", "contatto",
	"newsletter", "subscribe",
	"signup", "sign-up", "register", "registration", "registrieren", "anmeldung", "inscription",
	"account", "login",
	"checkout", "booking", "quote", "demo",
	"support", "feedback", "apply",
}

// Discoverer finds form-likely pages of a site.
type Discoverer struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxPages int
	logger   *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithHTTPClient sets the HTTP client. Its timeout bounds each request.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Discoverer) {
		if client != nil {
			d.client = client
		}
	}
}

// WithMaxPages sets the maximum number of pages returned.
func WithMaxPages(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(d *Discoverer) {
		if rps > 0 && burst > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Discoverer.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		client:   &http.Client{Timeout: DefaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// strategy returns candidate URLs for a site root.
type strategy struct {
	name string
	find func(ctx context.Context, root *url.URL) ([]string, error)
}

// Discover returns up to the configured number of same-origin pages likely
// to contain forms, best ranked first.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", urlutil.ErrInvalidURL, baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}

	strategies := []strategy{
		{"sitemap", d.fromSitemap},
		{"robots", d.fromRobots},
		{"homepage", d.fromHomepage},
	}
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates, err := s.find(ctx, root)
		if err != nil {
			d.logger.Debug("discovery strategy failed",
				"strategy", s.name,
				"url", root.String(),
				"error", err,
			)
		}
		pages := Rank(root.String(), candidates, d.maxPages)
		if len(pages) > 0 {
			d.logger.Debug("discovered form pages",
				"strategy", s.name,
				"url", root.String(),
				"pages", len(pages),
			)
			return pages, nil
		}
	}
	return nil, ErrNoPages
}

// Rank keeps same-origin candidates whose path names a form page, ordered
// by keyword priority, and returns at most limit of them.
func Rank(baseURL string, candidates []string, limit int) []string {
	type ranked struct {
		url  string
		rank int
	}

	seen := make(map[string]bool)
	var pages []ranked
	for _, c := range candidates {
		u, err := url.Parse(strings.TrimSpace(c))
		if err != nil || u.Host == "" {
			continue
		}
		u.Fragment = ""
		normalized := u.String()
		if seen[normalized] || !urlutil.IsSameOrigin(baseURL, normalized) {
			continue
		}
		rank := keywordRank(u.Path)
		if rank < 0 {
			continue
		}
		seen[normalized] = true
		pages = append(pages, ranked{url: normalized, rank: rank})
	}

	slices.SortStableFunc(pages, func(a, b ranked) int {
		return a.rank - b.rank
	})

	out := make([]string, 0, min(len(pages), limit))
	for _, p := range pages {
		if len(out) >= limit {
			break
		}
		out = append(out, p.url)
	}
	return out
}

// keywordRank returns the index of the first keyword found in path, or -1.
func keywordRank(path string) int {
	path = strings.ToLower(path)
	for i, k := range formPageKeywords {
		if strings.Contains(path, k) {
			return i
		}
	}
	return -1
}

// fetch GETs a URL, paced by the rate limiter.
func (d *Discoverer) fetch(ctx context.Context, target string) ([]byte, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
