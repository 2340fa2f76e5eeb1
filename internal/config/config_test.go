package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:             "8080",
		RefetchPerMinute: 6,
		GridBackend:      "published",
		SheetCSVURL:      "https://docs.google.com/spreadsheets/d/e/abc/pub?output=csv",
		SheetRange:       "A:Z",
		GridFileEncoding: "utf-8",
		FetchTimeout:     15 * time.Second,
		StartPolicy:      "first",
		AuthCacheTTL:     5 * time.Minute,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid published backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid grid backend",
			mutate:      func(c *Config) { c.GridBackend = "sqlite" },
			wantErr:     true,
			errorString: "invalid grid backend 'sqlite': must be one of [published sheets file]",
		},
		{
			name:        "published backend missing url",
			mutate:      func(c *Config) { c.SheetCSVURL = "" },
			wantErr:     true,
			errorString: "SHEET_CSV_URL is required when using published backend",
		},
		{
			name:        "published backend bad scheme",
			mutate:      func(c *Config) { c.SheetCSVURL = "file:///etc/passwd" },
			wantErr:     true,
			errorString: "invalid SHEET_CSV_URL scheme 'file'",
		},
		{
			name: "sheets backend missing spreadsheet id",
			mutate: func(c *Config) {
				c.GridBackend = "sheets"
				c.SheetCSVURL = ""
			},
			wantErr:     true,
			errorString: "GOOGLE_SPREADSHEET_ID is required when using sheets backend",
		},
		{
			name: "valid sheets backend",
			mutate: func(c *Config) {
				c.GridBackend = "sheets"
				c.SpreadsheetID = "1AbC"
			},
			wantErr: false,
		},
		{
			name: "file backend missing file",
			mutate: func(c *Config) {
				c.GridBackend = "file"
				c.GridFile = "/nonexistent/grid.csv"
			},
			wantErr:     true,
			errorString: "grid file does not exist: /nonexistent/grid.csv",
		},
		{
			name: "file backend bad encoding",
			mutate: func(c *Config) {
				c.GridBackend = "file"
				c.GridFile = "config.go"
				c.GridFileEncoding = "utf-16"
			},
			wantErr:     true,
			errorString: "invalid grid file encoding 'utf-16'",
		},
		{
			name:        "invalid start policy",
			mutate:      func(c *Config) { c.StartPolicy = "middle" },
			wantErr:     true,
			errorString: "invalid start policy 'middle': must be one of [first last keep]",
		},
		{
			name:        "fetch timeout too short",
			mutate:      func(c *Config) { c.FetchTimeout = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid fetch timeout 100ms: must be at least 1 second",
		},
		{
			name:        "negative auth cache ttl",
			mutate:      func(c *Config) { c.AuthCacheTTL = -time.Second },
			wantErr:     true,
			errorString: "invalid auth cache TTL -1s: must not be negative",
		},
		{
			name:        "refetch rate zero",
			mutate:      func(c *Config) { c.RefetchPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid refetch rate 0: must be at least 1 per minute",
		},
		{
			name:        "supabase url without key",
			mutate:      func(c *Config) { c.SupabaseURL = "https://xyz.supabase.co" },
			wantErr:     true,
			errorString: "SUPABASE_URL and SUPABASE_ANON_KEY must be set together",
		},
		{
			name: "supabase configured",
			mutate: func(c *Config) {
				c.SupabaseURL = "https://xyz.supabase.co"
				c.SupabaseAnonKey = "anon"
			},
			wantErr: false,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "missing layout file",
			mutate:      func(c *Config) { c.LayoutFile = "/nonexistent/layout.yaml" },
			wantErr:     true,
			errorString: "layout file does not exist: /nonexistent/layout.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("expected error to contain %q, got %q", tt.errorString, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.StartPolicy = "x"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration validation failed:\n- ") {
		t.Errorf("unexpected prefix: %q", msg)
	}
	if n := strings.Count(msg, "\n- "); n != 3 {
		t.Errorf("expected 3 problems, got %d in %q", n, msg)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"PORT", "GRID_BACKEND", "START_POLICY", "FETCH_TIMEOUT", "AUTH_CACHE_TTL", "COOKIE_SECURE", "REFETCH_PER_MINUTE", "SUPABASE_URL", "LOG_LEVEL"} {
			t.Setenv(k, "")
		}
		cfg := Load()
		if cfg.Port != "8080" || cfg.GridBackend != "published" || cfg.StartPolicy != "first" {
			t.Errorf("unexpected defaults %+v", cfg)
		}
		if cfg.FetchTimeout != 15*time.Second || cfg.AuthCacheTTL != 5*time.Minute {
			t.Errorf("unexpected durations %v %v", cfg.FetchTimeout, cfg.AuthCacheTTL)
		}
		if cfg.CookieSecure || cfg.RefetchPerMinute != 6 || cfg.AuthConfigured() {
			t.Errorf("unexpected flags %+v", cfg)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("GRID_BACKEND", "SHEETS")
		t.Setenv("START_POLICY", "last")
		t.Setenv("FETCH_TIMEOUT", "30s")
		t.Setenv("COOKIE_SECURE", "true")
		t.Setenv("REFETCH_PER_MINUTE", "12")
		t.Setenv("SUPABASE_URL", "https://xyz.supabase.co/")
		t.Setenv("SUPABASE_ANON_KEY", "anon")

		cfg := Load()
		if cfg.Port != "9090" || cfg.GridBackend != "sheets" || cfg.StartPolicy != "last" {
			t.Errorf("unexpected values %+v", cfg)
		}
		if cfg.FetchTimeout != 30*time.Second || !cfg.CookieSecure || cfg.RefetchPerMinute != 12 {
			t.Errorf("unexpected values %+v", cfg)
		}
		if cfg.SupabaseURL != "https://xyz.supabase.co" || !cfg.AuthConfigured() {
			t.Errorf("supabase url = %q", cfg.SupabaseURL)
		}
	})

	t.Run("unparseable values fall back", func(t *testing.T) {
		t.Setenv("FETCH_TIMEOUT", "soon")
		t.Setenv("REFETCH_PER_MINUTE", "many")
		t.Setenv("COOKIE_SECURE", "maybe")
		cfg := Load()
		if cfg.FetchTimeout != 15*time.Second || cfg.RefetchPerMinute != 6 || cfg.CookieSecure {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})
}

func TestConfig_ValidateWithGridFile(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "semanas.csv")
	if err := os.WriteFile(grid, []byte("a,b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.GridBackend = "file"
	cfg.GridFile = grid
	cfg.GridFileEncoding = "latin1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
