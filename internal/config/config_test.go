package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestNewConfig documents the defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 120 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 120*time.Second {
			t.Errorf("expected Timeout to be 120s, got %v", cfg.Timeout)
		}
	})

	t.Run("default ProbeTimeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ProbeTimeout != 10*time.Second {
			t.Errorf("expected ProbeTimeout to be 10s, got %v", cfg.ProbeTimeout)
		}
	})

	t.Run("default SettleDelay is 2 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.SettleDelay != 2*time.Second {
			t.Errorf("expected SettleDelay to be 2s, got %v", cfg.SettleDelay)
		}
	})

	t.Run("default Driver is chrome", func(t *testing.T) {
		t.Parallel()
		if cfg.Driver != "chrome" {
			t.Errorf("expected Driver to be chrome, got %q", cfg.Driver)
		}
	})

	t.Run("default MaxFormPages is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxFormPages != 5 {
			t.Errorf("expected MaxFormPages to be 5, got %d", cfg.MaxFormPages)
		}
	})

	t.Run("results are saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are valid once a target is set", func(t *testing.T) {
		t.Parallel()
		c := NewConfig()
		c.Targets = []string{"https://example.com"}
		if err := c.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid config", modify: func(*Config) {}, want: nil},
		{name: "multiple targets", modify: func(c *Config) { c.Targets = []string{"a.com", "b.com"} }, want: nil},
		{name: "static driver", modify: func(c *Config) { c.Driver = "static" }, want: nil},
		{name: "zero settle delay", modify: func(c *Config) { c.SettleDelay = 0 }, want: nil},
		{name: "zero form pages", modify: func(c *Config) { c.MaxFormPages = 0 }, want: nil},
		{name: "no save without db dir", modify: func(c *Config) { c.SaveToDB = false; c.DBDir = "" }, want: nil},
		{name: "empty targets", modify: func(c *Config) { c.Targets = []string{} }, want: ErrNoTarget},
		{name: "nil targets", modify: func(c *Config) { c.Targets = nil }, want: ErrNoTarget},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero navigate timeout", modify: func(c *Config) { c.NavigateTimeout = 0 }, want: ErrInvalidTimeout},
		{name: "zero probe timeout", modify: func(c *Config) { c.ProbeTimeout = 0 }, want: ErrInvalidProbeTimeout},
		{name: "negative settle delay", modify: func(c *Config) { c.SettleDelay = -time.Second }, want: ErrInvalidSettleDelay},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "negative batch size", modify: func(c *Config) { c.BatchSize = -1 }, want: ErrInvalidBatchSize},
		{name: "unknown driver", modify: func(c *Config) { c.Driver = "firefox" }, want: ErrInvalidDriver},
		{name: "negative form pages", modify: func(c *Config) { c.MaxFormPages = -1 }, want: ErrInvalidMaxFormPages},
		{name: "zero discovery rate", modify: func(c *Config) { c.DiscoveryRate = 0 }, want: ErrInvalidDiscoveryRate},
		{name: "json and markdown", modify: func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, want: ErrConflictingReportFormats},
		{name: "save without db dir", modify: func(c *Config) { c.DBDir = "" }, want: ErrNoDBDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Targets = []string{"https://example.com"}
			cfg.DBDir = "/tmp/gdprscan"
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSiteKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "https://www.Example.com/path?q=1", want: "www.example.com"},
		{input: "http://example.com:8080", want: "example.com"},
		{input: "Example.COM", want: "example.com"},
		{input: "  shop.example.com/cart ", want: "shop.example.com"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := SiteKey(tt.input); got != tt.want {
				t.Errorf("SiteKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			Cookie:       "default=abc",
			MaxFormPages: 3,
			Headers:      map[string]string{"X-Default": "1", "Accept-Language": "en"},
			Skip:         []string{"ssl"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Cookie:  "session=xyz",
				Headers: map[string]string{"Accept-Language": "de"},
				Skip:    []string{"forms", "ssl"},
			},
			"Shop.Example.org": {
				MaxFormPages: 10,
			},
		},
	}

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		cfg := file.GetSiteConfig("https://unknown.net/")
		if cfg.Cookie != "default=abc" || cfg.MaxFormPages != 3 {
			t.Errorf("expected defaults, got %+v", cfg)
		}
		if !slices.Equal(cfg.Skip, []string{"ssl"}) {
			t.Errorf("expected default skip list, got %v", cfg.Skip)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := file.GetSiteConfig("https://example.com/")
		if cfg.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
		if cfg.MaxFormPages != 3 {
			t.Errorf("zero site MaxFormPages should keep default, got %d", cfg.MaxFormPages)
		}
	})

	t.Run("headers are merged with site precedence", func(t *testing.T) {
		t.Parallel()

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["X-Default"] != "1" {
			t.Errorf("expected default header to be kept, got %v", cfg.Headers)
		}
		if cfg.Headers["Accept-Language"] != "de" {
			t.Errorf("expected site header to win, got %v", cfg.Headers)
		}
		if file.Defaults.Headers["Accept-Language"] != "en" {
			t.Error("merging must not modify the defaults")
		}
	})

	t.Run("skip lists are combined without duplicates", func(t *testing.T) {
		t.Parallel()

		cfg := file.GetSiteConfig("example.com")
		if !slices.Equal(cfg.Skip, []string{"ssl", "forms"}) {
			t.Errorf("expected [ssl forms], got %v", cfg.Skip)
		}
	})

	t.Run("www host falls back to bare host", func(t *testing.T) {
		t.Parallel()

		cfg := file.GetSiteConfig("https://www.example.com/about")
		if cfg.Cookie != "session=xyz" {
			t.Errorf("expected example.com entry, got %+v", cfg)
		}
	})

	t.Run("keys match case-insensitively", func(t *testing.T) {
		t.Parallel()

		cfg := file.GetSiteConfig("https://shop.example.org")
		if cfg.MaxFormPages != 10 {
			t.Errorf("expected MaxFormPages 10, got %d", cfg.MaxFormPages)
		}
	})

	t.Run("nil file", func(t *testing.T) {
		t.Parallel()

		var nilFile *File
		cfg := nilFile.GetSiteConfig("example.com")
		if cfg.Cookie != "" || cfg.Headers != nil || cfg.Skip != nil {
			t.Errorf("expected zero config, got %+v", cfg)
		}
	})
}

func TestFileValidate(t *testing.T) {
	t.Parallel()

	known := []string{"cookies", "forms", "ssl"}

	t.Run("known analyzers", func(t *testing.T) {
		t.Parallel()
		f := &File{
			Defaults: SiteConfig{Skip: []string{"ssl"}},
			Sites:    map[string]SiteConfig{"a.com": {Skip: []string{"forms"}}},
		}
		if err := f.Validate(known); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("unknown analyzer in defaults", func(t *testing.T) {
		t.Parallel()
		f := &File{Defaults: SiteConfig{Skip: []string{"tor"}}}
		if err := f.Validate(known); !errors.Is(err, ErrUnknownAnalyzer) {
			t.Errorf("expected ErrUnknownAnalyzer, got %v", err)
		}
	})

	t.Run("unknown analyzer in site", func(t *testing.T) {
		t.Parallel()
		f := &File{Sites: map[string]SiteConfig{"a.com": {Skip: []string{"cookie"}}}}
		err := f.Validate(known)
		if !errors.Is(err, ErrUnknownAnalyzer) {
			t.Fatalf("expected ErrUnknownAnalyzer, got %v", err)
		}
		if got := err.Error(); got != `sites.a.com: unknown analyzer: "cookie"` {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("negative form pages", func(t *testing.T) {
		t.Parallel()
		f := &File{Sites: map[string]SiteConfig{"a.com": {MaxFormPages: -2}}}
		if err := f.Validate(known); !errors.Is(err, ErrInvalidMaxFormPages) {
			t.Errorf("expected ErrInvalidMaxFormPages, got %v", err)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.gdprscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".gdprscan")
		content := `defaults:
  maxFormPages: 2
  skip:
    - ssl
sites:
  www.example.com:
    cookie: "session=xyz"
    headers:
      Authorization: "Bearer token"
    maxFormPages: 8
    skip:
      - forms
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.MaxFormPages != 2 {
			t.Errorf("expected default maxFormPages 2, got %d", cfg.Defaults.MaxFormPages)
		}
		if !slices.Equal(cfg.Defaults.Skip, []string{"ssl"}) {
			t.Errorf("expected default skip [ssl], got %v", cfg.Defaults.Skip)
		}

		site, ok := cfg.Sites["www.example.com"]
		if !ok {
			t.Fatal("expected www.example.com in sites")
		}
		if site.Cookie != "session=xyz" || site.MaxFormPages != 8 {
			t.Errorf("unexpected site config %+v", site)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Error("expected Authorization header")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".gdprscan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".gdprscan")
		if err := os.WriteFile(configPath, []byte("defaults:\n  maxFormPages: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile {
			t.Fatalf("expected %s, got %q", DefaultConfigFile, got)
		}
		gotInfo, err := os.Stat(got)
		if err != nil {
			t.Fatalf("stat found path: %v", err)
		}
		wantInfo, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat config: %v", err)
		}
		if !os.SameFile(gotInfo, wantInfo) {
			t.Errorf("expected %q, got %q", path, got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if filepath.Base(dir) != AppName {
				t.Errorf("expected %s dir to end in %q, got %q", name, AppName, dir)
			}
		})
	}
}
