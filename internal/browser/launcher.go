package browser

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Driver names.
const (
	DriverChrome = "chrome"
	DriverStatic = "static"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverChrome, DriverStatic}

// LaunchOptions configures pages and helpers created by a Launcher.
type LaunchOptions struct {
	Driver     string
	ChromePath string
	Proxy      string
	UserAgent  string
	Viewport   Size

	// RequestTimeout bounds single HTTP requests of the static driver and
	// of helper clients.
	RequestTimeout time.Duration

	// SettleTime is the Chrome wait after navigation.
	SettleTime time.Duration

	Headers map[string]string
	Cookie  string
}

// Launcher creates one fresh Page per scan.
type Launcher struct {
	opts LaunchOptions
}

// NewLauncher creates a launcher.
func NewLauncher(opts LaunchOptions) *Launcher {
	if opts.Driver == "" {
		opts.Driver = DriverChrome
	}
	if opts.Viewport.Width == 0 || opts.Viewport.Height == 0 {
		opts.Viewport = DefaultViewport
	}
	return &Launcher{opts: opts}
}

// Driver returns the configured driver name.
func (l *Launcher) Driver() string {
	return l.opts.Driver
}

// WithSite returns a launcher sending extra headers and a cookie, used for
// per-site configuration.
func (l *Launcher) WithSite(headers map[string]string, cookie string) *Launcher {
	opts := l.opts
	merged := make(map[string]string, len(opts.Headers)+len(headers))
	maps.Copy(merged, opts.Headers)
	maps.Copy(merged, headers)
	opts.Headers = merged
	if cookie != "" {
		opts.Cookie = cookie
	}
	return &Launcher{opts: opts}
}

// Launch opens a new page with the configured driver.
func (l *Launcher) Launch(ctx context.Context) (Page, error) {
	switch l.opts.Driver {
	case DriverChrome:
		headers := maps.Clone(l.opts.Headers)
		if l.opts.Cookie != "" {
			if headers == nil {
				headers = map[string]string{}
			}
			headers["Cookie"] = l.opts.Cookie
		}
		return NewChromePage(ctx, ChromeOptions{
			ExecPath:   l.opts.ChromePath,
			Proxy:      l.opts.Proxy,
			UserAgent:  l.opts.UserAgent,
			Viewport:   l.opts.Viewport,
			Headers:    headers,
			SettleTime: l.opts.SettleTime,
		})
	case DriverStatic:
		client, err := l.HTTPClient()
		if err != nil {
			return nil, err
		}
		return NewStaticPage(client, WithStaticViewport(l.opts.Viewport)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, l.opts.Driver)
	}
}

// HTTPClient returns a client with the launcher's proxy, headers and cookie.
func (l *Launcher) HTTPClient() (*http.Client, error) {
	return NewHTTPClient(ClientOptions{
		Proxy:     l.opts.Proxy,
		Timeout:   l.opts.RequestTimeout,
		UserAgent: l.opts.UserAgent,
		Headers:   l.opts.Headers,
		Cookie:    l.opts.Cookie,
	})
}

// TLSProber returns a prober that dials through a SOCKS5 proxy when one is
// configured.
func (l *Launcher) TLSProber(timeout time.Duration) (*TLSProber, error) {
	opts := []TLSOption{}
	if timeout > 0 {
		opts = append(opts, WithTLSTimeout(timeout))
	}

	if l.opts.Proxy != "" {
		u, err := url.Parse(l.opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
		}
		if s := strings.ToLower(u.Scheme); s == "socks5" || s == "socks5h" {
			d, err := proxy.FromURL(u, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
			}
			if cd, ok := d.(proxy.ContextDialer); ok {
				opts = append(opts, WithDialer(cd.DialContext))
			}
		}
	}
	return NewTLSProber(opts...), nil
}
