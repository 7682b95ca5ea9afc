// Package config provides configuration management for templao using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration comes from .templao.yml, environment variables with the
// TEMPLAO_ prefix, and bound flags, in increasing precedence. It covers
// the preview server, template scanning paths, context files, and
// development options like live reload and logging.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Preview     PreviewConfig     `yaml:"preview"`
	Development DevelopmentConfig `yaml:"development"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type TemplatesConfig struct {
	ScanPaths       []string `yaml:"scan_paths"`
	Extensions      []string `yaml:"extensions"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

type PreviewConfig struct {
	// ContextFile is a YAML file of context values applied to previewed
	// templates; edits to it are watched and pushed as patches.
	ContextFile string `yaml:"context_file"`
	// Sanitize pipes rendered fragments through an HTML sanitizer before
	// embedding them in preview pages.
	Sanitize bool `yaml:"sanitize"`
}

type DevelopmentConfig struct {
	LiveReload bool   `yaml:"live_reload"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

// Load builds a Config from viper's merged sources and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via viper (workaround for viper slice handling)
	if viper.IsSet("templates.scan_paths") && len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = viper.GetStringSlice("templates.scan_paths")
	}
	if viper.IsSet("templates.exclude_patterns") && len(config.Templates.ExcludePatterns) == 0 {
		config.Templates.ExcludePatterns = viper.GetStringSlice("templates.exclude_patterns")
	}
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if viper.IsSet("development.live_reload") {
		config.Development.LiveReload = viper.GetBool("development.live_reload")
	}
	if viper.IsSet("preview.sanitize") {
		config.Preview.Sanitize = viper.GetBool("preview.sanitize")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8120
	}
	if len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = []string{"./templates", "./views"}
	}
	if len(config.Templates.Extensions) == 0 {
		config.Templates.Extensions = []string{".html", ".tmpl.html"}
	}
	if len(config.Templates.ExcludePatterns) == 0 {
		config.Templates.ExcludePatterns = []string{"*_test.html", "*.bak"}
	}
	if config.Preview.ContextFile == "" {
		config.Preview.ContextFile = "context.yaml"
	}
	if !viper.IsSet("development.live_reload") {
		config.Development.LiveReload = true
	}
	if config.Development.LogLevel == "" {
		config.Development.LogLevel = "info"
	}
	if config.Development.LogFormat == "" {
		config.Development.LogFormat = "text"
	}
}
