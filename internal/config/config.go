package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port             string
	CookieSecure     bool
	RefetchPerMinute int

	// Grid source
	GridBackend      string
	SheetCSVURL      string
	SpreadsheetID    string
	SheetRange       string
	GridFile         string
	GridFileSheet    string
	GridFileEncoding string
	FetchTimeout     time.Duration

	// Parsing and navigation
	LayoutFile  string
	StartPolicy string

	// Identity provider
	SupabaseURL     string
	SupabaseAnonKey string
	AuthCacheTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Accepted values, in the order they are reported.
var (
	validBackends  = []string{"published", "sheets", "file"}
	validPolicies  = []string{"first", "last", "keep"}
	validEncodings = []string{"utf-8", "latin1"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json"}
)

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		RefetchPerMinute: getEnvInt("REFETCH_PER_MINUTE", 6),

		GridBackend:      strings.ToLower(getEnv("GRID_BACKEND", "published")),
		SheetCSVURL:      getEnv("SHEET_CSV_URL", ""),
		SpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetRange:       getEnv("GOOGLE_SHEET_RANGE", "A:Z"),
		GridFile:         getEnv("GRID_FILE", ""),
		GridFileSheet:    getEnv("GRID_FILE_SHEET", ""),
		GridFileEncoding: strings.ToLower(getEnv("GRID_FILE_ENCODING", "utf-8")),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		LayoutFile:  getEnv("LAYOUT_FILE", ""),
		StartPolicy: strings.ToLower(getEnv("START_POLICY", "first")),

		SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		AuthCacheTTL:    getEnvDuration("AUTH_CACHE_TTL", 5*time.Minute),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

// AuthConfigured reports whether both identity provider keys are present.
func (c *Config) AuthConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RefetchPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid refetch rate %d: must be at least 1 per minute", c.RefetchPerMinute))
	} else if c.RefetchPerMinute > 600 {
		errors = append(errors, fmt.Sprintf("invalid refetch rate %d: must be at most 600 per minute", c.RefetchPerMinute))
	}

	if !slices.Contains(validBackends, c.GridBackend) {
		errors = append(errors, fmt.Sprintf("invalid grid backend '%s': must be one of %v", c.GridBackend, validBackends))
	}

	switch c.GridBackend {
	case "published":
		if c.SheetCSVURL == "" {
			errors = append(errors, "SHEET_CSV_URL is required when using published backend")
		} else if msg := checkHTTPURL("SHEET_CSV_URL", c.SheetCSVURL); msg != "" {
			errors = append(errors, msg)
		}
	case "sheets":
		if c.SpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when using sheets backend")
		}
	case "file":
		if c.GridFile == "" {
			errors = append(errors, "GRID_FILE is required when using file backend")
		} else if _, err := os.Stat(c.GridFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("grid file does not exist: %s", c.GridFile))
		}
		if !slices.Contains(validEncodings, c.GridFileEncoding) {
			errors = append(errors, fmt.Sprintf("invalid grid file encoding '%s': must be one of %v", c.GridFileEncoding, validEncodings))
		}
	}

	if c.LayoutFile != "" {
		if _, err := os.Stat(c.LayoutFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("layout file does not exist: %s", c.LayoutFile))
		}
	}

	if !slices.Contains(validPolicies, c.StartPolicy) {
		errors = append(errors, fmt.Sprintf("invalid start policy '%s': must be one of %v", c.StartPolicy, validPolicies))
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}
	if c.AuthCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid auth cache TTL %v: must not be negative", c.AuthCacheTTL))
	}

	// Both keys or neither; neither means the setup page is served.
	if (c.SupabaseURL == "") != (c.SupabaseAnonKey == "") {
		errors = append(errors, "SUPABASE_URL and SUPABASE_ANON_KEY must be set together")
	}
	if c.SupabaseURL != "" {
		if msg := checkHTTPURL("SUPABASE_URL", c.SupabaseURL); msg != "" {
			errors = append(errors, msg)
		}
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func checkHTTPURL(key, raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid %s '%s': %v", key, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", key, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Sprintf("invalid %s '%s': missing host", key, raw)
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
