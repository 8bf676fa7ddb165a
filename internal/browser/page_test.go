package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseResourceType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected ResourceType
	}{
		{"Document", ResourceDocument},
		{"Script", ResourceScript},
		{"XHR", ResourceXHR},
		{"Fetch", ResourceFetch},
		{"Stylesheet", ResourceStylesheet},
		{"TextTrack", ResourceOther},
		{"", ResourceOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseResourceType(tt.input); got != tt.expected {
				t.Errorf("ParseResourceType(%q) = %s, expected %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRectArea(t *testing.T) {
	t.Parallel()

	if got := (Rect{Width: 10, Height: 20}).Area(); got != 200 {
		t.Errorf("expected 200, got %f", got)
	}
	if got := (Rect{Width: -5, Height: 20}).Area(); got != 0 {
		t.Errorf("expected 0 for negative width, got %f", got)
	}
	if got := (Size{Width: 100, Height: 50}).Area(); got != 5000 {
		t.Errorf("expected 5000, got %f", got)
	}
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("injects headers and cookie", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
		}))
		t.Cleanup(srv.Close)

		client, err := NewHTTPClient(ClientOptions{
			Timeout: 5 * time.Second,
			Headers: map[string]string{"X-Scan": "gdprscan"},
			Cookie:  "euconsent=0",
		})
		if err != nil {
			t.Fatalf("NewHTTPClient() error = %v", err)
		}
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()

		h := <-headers
		gotUA, gotCookie, gotCustom := h.Get("User-Agent"), h.Get("Cookie"), h.Get("X-Scan")
		if gotUA != DefaultUserAgent {
			t.Errorf("User-Agent = %q", gotUA)
		}
		if gotCookie != "euconsent=0" {
			t.Errorf("Cookie = %q", gotCookie)
		}
		if gotCustom != "gdprscan" {
			t.Errorf("X-Scan = %q", gotCustom)
		}
	})

	t.Run("accepts socks5 and http proxies", func(t *testing.T) {
		t.Parallel()
		for _, p := range []string{"socks5://127.0.0.1:9050", "http://proxy.local:3128"} {
			if _, err := NewHTTPClient(ClientOptions{Proxy: p}); err != nil {
				t.Errorf("NewHTTPClient(proxy=%s) error = %v", p, err)
			}
		}
	})

	t.Run("rejects unsupported proxy", func(t *testing.T) {
		t.Parallel()
		for _, p := range []string{"ftp://proxy.local:21", "not a url"} {
			if _, err := NewHTTPClient(ClientOptions{Proxy: p}); !errors.Is(err, ErrInvalidProxy) {
				t.Errorf("NewHTTPClient(proxy=%s) expected ErrInvalidProxy, got %v", p, err)
			}
		}
	})
}

func TestLauncher(t *testing.T) {
	t.Parallel()

	t.Run("static driver launches without Chrome", func(t *testing.T) {
		t.Parallel()
		page, err := NewLauncher(LaunchOptions{Driver: DriverStatic}).Launch(context.Background())
		if err != nil {
			t.Fatalf("Launch() error = %v", err)
		}
		defer page.Close()
		if page.Viewport() != DefaultViewport {
			t.Errorf("expected default viewport, got %+v", page.Viewport())
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()
		_, err := NewLauncher(LaunchOptions{Driver: "firefox"}).Launch(context.Background())
		if !errors.Is(err, ErrUnknownDriver) {
			t.Errorf("expected ErrUnknownDriver, got %v", err)
		}
	})

	t.Run("site headers are merged", func(t *testing.T) {
		t.Parallel()
		base := NewLauncher(LaunchOptions{Driver: DriverStatic, Headers: map[string]string{"A": "1"}})
		site := base.WithSite(map[string]string{"B": "2"}, "c=3")
		if site.opts.Headers["A"] != "1" || site.opts.Headers["B"] != "2" || site.opts.Cookie != "c=3" {
			t.Errorf("unexpected merged options: %+v", site.opts)
		}
		if _, ok := base.opts.Headers["B"]; ok {
			t.Error("WithSite must not modify the base launcher")
		}
	})

	t.Run("default driver is chrome", func(t *testing.T) {
		t.Parallel()
		if d := NewLauncher(LaunchOptions{}).Driver(); d != DriverChrome {
			t.Errorf("expected chrome, got %s", d)
		}
	})
}
