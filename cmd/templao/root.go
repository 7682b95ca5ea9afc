// Command templao is a development tool for templao templates: it
// discovers template files, compiles them, renders them with YAML context
// values, and serves live previews with incremental updates.
//
// Configuration comes from .templao.yml (or the file named by --config or
// the TEMPLAO_CONFIG_FILE environment variable), from environment
// variables with the TEMPLAO_ prefix, and from flags, in increasing
// precedence.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isidrok/templao/internal/config"
	"github.com/isidrok/templao/internal/logging"
)

var (
	cfgFile  string
	logLevel = logging.LevelInfo
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "templao",
	Short: "A development tool for templao templates",
	Long: `Templao compiles trees with {expression} placeholders into reusable
templates and applies minimal mutations on every update.

Quick Start:
  templao init                    Initialize a new project
  templao serve                   Start the preview server
  templao list                    List discovered templates
  templao render button           Render a template with context values`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .templao.yml, can also use TEMPLAO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().Var(&logLevel, "log-level", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	cobra.CheckErr(viper.BindPFlag("development.log_format", rootCmd.PersistentFlags().Lookup("log-format")))
}

// initConfig wires viper's sources: an explicit --config file, the
// TEMPLAO_CONFIG_FILE environment variable, or .templao.yml in the
// working directory, plus TEMPLAO_-prefixed environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TEMPLAO_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".templao")
	}

	viper.SetEnvPrefix("TEMPLAO")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the loaded configuration,
// letting the --log-level flag win when set.
func newLogger(cfg *config.Config, flagSet bool) logging.Logger {
	level := logLevel
	if !flagSet {
		_ = level.Set(cfg.Development.LogLevel)
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Development.LogFormat,
		Output: os.Stderr,
	})
}
