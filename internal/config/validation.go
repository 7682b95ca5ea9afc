package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validateConfig validates configuration values for correctness and
// path safety.
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}
	if config.Preview.ContextFile != "" {
		if err := validatePath(config.Preview.ContextFile); err != nil {
			return fmt.Errorf("preview config: invalid context file '%s': %w", config.Preview.ContextFile, err)
		}
	}
	switch config.Development.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("development config: unknown log level %q", config.Development.LogLevel)
	}
	switch config.Development.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("development config: unknown log format %q", config.Development.LogFormat)
	}
	return nil
}

// validateServerConfig validates server configuration values.
func validateServerConfig(config *ServerConfig) error {
	// Port 0 is allowed for system-assigned ports in testing.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateTemplatesConfig validates scan paths and extensions.
func validateTemplatesConfig(config *TemplatesConfig) error {
	for _, path := range config.ScanPaths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid scan path '%s': %w", path, err)
		}
	}
	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// validatePath validates a file path for traversal and shell safety.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
