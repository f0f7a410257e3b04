package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/modelwatch/internal/tracing"
	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Detection
	Regions        []string
	StateStore     string
	NotifierTarget string
	FetchTimeout   time.Duration
	NotifyTimeout  time.Duration
	AWSRegion      string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	Tracing tracing.Config
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables
//  3. .env and .env.local files
//  4. Config file (configFile, or ~/.modelwatch.yaml / ./.modelwatch.yaml)
//  5. Defaults
//
// An explicitly named config file must exist; the default locations are
// optional.
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".modelwatch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot parse config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Regions:        splitList(v.GetStringSlice("target_regions")),
		StateStore:     v.GetString("state_store"),
		NotifierTarget: v.GetString("notifier_target"),
		FetchTimeout:   v.GetDuration("fetch_timeout"),
		NotifyTimeout:  v.GetDuration("notify_timeout"),
		AWSRegion:      v.GetString("aws_region"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),

		Tracing: tracing.Config{
			Enabled:     v.GetBool("otel_enabled"),
			ServiceName: v.GetString("otel_service_name"),
			Endpoint:    v.GetString("otel_exporter_otlp_endpoint"),
			Protocol:    v.GetString("otel_exporter_otlp_protocol"),
			Insecure:    v.GetBool("otel_exporter_otlp_insecure"),
			Headers:     tracing.ParseHeaders(v.GetString("otel_exporter_otlp_headers")),
			SampleRatio: v.GetFloat64("otel_traces_sampler_arg"),
		},
	}

	// Variable names of the CloudFormation-managed Lambda deployment.
	if config.StateStore == "" {
		if table := v.GetString("dynamodb_table_name"); table != "" {
			config.StateStore = "dynamodb://" + table
		}
	}
	if config.NotifierTarget == "" {
		config.NotifierTarget = v.GetString("agentcore_runtime_arn")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch_timeout", constants.RegionFetchTimeout)
	v.SetDefault("notify_timeout", constants.NotifyTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("otel_service_name", "modelwatch")
	v.SetDefault("otel_traces_sampler_arg", 1.0)
}

// Validate checks what a detection run needs.
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return errors.NewConfigError("config", "TARGET_REGIONS must list at least one region", nil)
	}
	if c.StateStore == "" {
		return errors.NewConfigError("config", "STATE_STORE (or DYNAMODB_TABLE_NAME) is required", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfigError("config", "FETCH_TIMEOUT must be positive", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files. Variables
// already set in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// splitList accepts both YAML lists and comma separated strings.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
