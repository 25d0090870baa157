// Package config loads and validates the calculator service configuration.
package config

import "time"

// Config represents the complete service configuration.
type Config struct {
	BaseDir     string            `yaml:"-"` // Directory containing the config file, for resolving relative paths
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	Security    SecurityConfig    `yaml:"security"`
	CORS        CORSConfig        `yaml:"cors"`
	Compression CompressionConfig `yaml:"compression"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	Docs        DocsConfig        `yaml:"docs"`
	Locale      string            `yaml:"locale"` // BCP 47 tag used for number formatting (default: "en")
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Dev  bool   `yaml:"-"` // Set via CLI flag, not config
}

// StoreConfig holds the remembered-units database settings.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file path; empty disables persistence
}

// SessionsConfig holds calculator session lifecycle settings.
type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl"` // Idle lifetime before a session is evicted (default: 30m)
	Max int           `yaml:"max"` // Maximum live sessions; the stalest is evicted beyond this (default: 256)
}

// SecurityConfig holds security header settings.
type SecurityConfig struct {
	ContentTypeOptions string `yaml:"content_type_options"` // X-Content-Type-Options (default: "nosniff")
	FrameOptions       string `yaml:"frame_options"`        // X-Frame-Options (default: "DENY")
	XSSProtection      string `yaml:"xss_protection"`       // X-XSS-Protection (default: "1; mode=block")
	ReferrerPolicy     string `yaml:"referrer_policy"`      // Referrer-Policy (default: "strict-origin-when-cross-origin")
}

// CORSConfig holds CORS (Cross-Origin Resource Sharing) settings.
type CORSConfig struct {
	Origins     StringOrSlice `yaml:"origins"`     // "*" or list of allowed origins; empty disables CORS
	Methods     []string      `yaml:"methods"`     // Allowed HTTP methods (default: GET, POST, DELETE)
	Headers     []string      `yaml:"headers"`     // Allowed request headers
	Expose      []string      `yaml:"expose"`      // Response headers exposed to the browser
	Credentials bool          `yaml:"credentials"` // Allow credentials (cookies, auth headers)
	MaxAge      int           `yaml:"max_age"`     // Preflight cache duration in seconds
}

// CompressionConfig holds HTTP response compression settings.
type CompressionConfig struct {
	Enabled bool   `yaml:"enabled"`  // Enable gzip compression (default: true)
	Level   string `yaml:"level"`    // "fastest", "default", "best", "none" (default: "default")
	MinSize int    `yaml:"min_size"` // Minimum response size to compress in bytes (default: 1024)
}

// RateLimitConfig holds request rate limiting for mutating endpoints.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // Events allowed per window per client (default: 120)
	Window   time.Duration `yaml:"window"`   // Window length (default: 1m)
}

// DocsConfig holds the rendered documentation settings.
type DocsConfig struct {
	Dir string `yaml:"dir"` // Directory of markdown pages served under /docs (default: "./docs")
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr or stdout
	Quiet  bool   `yaml:"quiet"`  // suppress request logs
}

// StringOrSlice supports YAML fields that can be either a string or a slice
// of strings.
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler to handle both string and []string.
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var slice []string
	if err := unmarshal(&slice); err != nil {
		return err
	}
	*s = slice
	return nil
}

// Contains checks if the slice contains the given string.
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults. The service runs with
// no config file at all.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "",
			Port: 8637,
		},
		Store: StoreConfig{
			Path: "./calculators.db",
		},
		Sessions: SessionsConfig{
			TTL: 30 * time.Minute,
			Max: 256,
		},
		Security: SecurityConfig{
			ContentTypeOptions: "nosniff",
			FrameOptions:       "DENY",
			XSSProtection:      "1; mode=block",
			ReferrerPolicy:     "strict-origin-when-cross-origin",
		},
		CORS: CORSConfig{
			// Empty by default - CORS disabled unless configured
			Methods: []string{"GET", "POST", "DELETE"},
			MaxAge:  86400, // 24 hours
		},
		Compression: CompressionConfig{
			Enabled: true,
			Level:   "default",
			MinSize: 1024,
		},
		RateLimit: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
		},
		Docs: DocsConfig{
			Dir: "./docs",
		},
		Locale: "en",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
