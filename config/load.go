package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, default locations are searched; when no file
// exists anywhere the defaults are used as-is, so the service starts
// without any configuration.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved file path. The path is empty when the defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg := Defaults()
		cfg.BaseDir, _ = os.Getwd()
		resolvePaths(cfg)
		return cfg, "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Relative paths in the file are relative to the file
	cfg.BaseDir = filepath.Dir(absPath)
	resolvePaths(cfg)

	return cfg, absPath, nil
}

// resolvePaths turns relative file paths into absolute ones under BaseDir.
func resolvePaths(cfg *Config) {
	if cfg.Store.Path != "" && cfg.Store.Path != ":memory:" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(cfg.BaseDir, cfg.Store.Path)
	}
	if cfg.Docs.Dir != "" && !filepath.IsAbs(cfg.Docs.Dir) {
		cfg.Docs.Dir = filepath.Join(cfg.BaseDir, cfg.Docs.Dir)
	}
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > RATIO_CONFIG env > ./ratio.yaml >
// ~/.config/wrolpi/ratio.yaml. An empty result means run on defaults.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("RATIO_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("RATIO_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("ratio.yaml"); err == nil {
		return "ratio.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "wrolpi", "ratio.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration for errors. Call it after applying CLI
// overrides so flags are validated too.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d (must be 1-65535)", cfg.Server.Port))
	}

	if cfg.Sessions.TTL <= 0 {
		errs = append(errs, "sessions.ttl must be positive")
	}
	if cfg.Sessions.Max < 1 {
		errs = append(errs, "sessions.max must be at least 1")
	}

	if cfg.RateLimit.Requests < 1 {
		errs = append(errs, "ratelimit.requests must be at least 1")
	}
	if cfg.RateLimit.Window <= 0 {
		errs = append(errs, "ratelimit.window must be positive")
	}

	switch cfg.Compression.Level {
	case "", "none", "fastest", "default", "best":
	default:
		errs = append(errs, fmt.Sprintf("invalid compression level: %s (must be none, fastest, default, or best)", cfg.Compression.Level))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if len(cfg.CORS.Origins) > 0 {
		// Cannot use wildcard origin with credentials
		if cfg.CORS.Credentials && cfg.CORS.Origins.Contains("*") {
			errs = append(errs, "cors: cannot use origins '*' with credentials true (browsers reject this)")
		}
	}

	if cfg.Locale == "" {
		errs = append(errs, "locale must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
