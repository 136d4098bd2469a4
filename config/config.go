package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Destination selector values accepted in the destinations list.
const (
	DestConsole  = "console"
	DestFile     = "file"
	DestDatabase = "database"
	DestMQTT     = "mqtt"
	DestInfluxDB = "influxdb"
)

// Output format values.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config is the root configuration structure for the obskit pipeline.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	// Service identifies the emitting application on every record.
	Service string `yaml:"service"`

	// Level is the minimum level threshold (debug, info, warn, error).
	// Metric records ignore the threshold.
	Level string `yaml:"level"`

	// Format selects the console/file line encoding: json or text.
	Format string `yaml:"format"`

	// Destinations lists the sinks to fan out to. More than one may be
	// active simultaneously.
	Destinations []string `yaml:"destinations"`

	File      FileConfig      `yaml:"file"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Redaction RedactionConfig `yaml:"redaction"`
}

// FileConfig contains file sink settings.
type FileConfig struct {
	// Path is the log file location. Parent directories are created on
	// first write if absent.
	Path string `yaml:"path"`
}

// DatabaseConfig contains SQLite database sink settings.
type DatabaseConfig struct {
	// Path is the filesystem path to the SQLite database file.
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging for better concurrent access.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker sink settings.
type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Topic is the publish topic. When empty the sink derives
	// "obskit/records/<service>".
	Topic string `yaml:"topic"`
	QoS   int    `yaml:"qos"`
}

// InfluxDBConfig contains InfluxDB metric sink settings.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// RedactionConfig extends the always-active safe redaction rule set.
type RedactionConfig struct {
	// Placeholder replaces sensitive values. Empty means the built-in
	// default (***REDACTED***).
	Placeholder string `yaml:"placeholder"`

	// FieldNames are extra sensitive key substrings (case-insensitive).
	FieldNames []string `yaml:"field_names"`

	// ValuePatterns are extra regular expressions applied to string
	// values. They must compile and must not match the placeholder.
	ValuePatterns []string `yaml:"value_patterns"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// FromEnv returns the default configuration with environment variable
// overrides applied, for hosts that do not ship a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with sensible defaults: console-only JSON
// output at info level under the fallback service name.
func Default() *Config {
	return &Config{
		Service:      "obskit-app",
		Level:        "info",
		Format:       FormatJSON,
		Destinations: []string{DestConsole},
		File: FileConfig{
			Path: "./logs/obskit.log",
		},
		Database: DatabaseConfig{
			Path:        "./data/obskit.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "obskit",
			QoS:      1,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables follow the pattern: OBSKIT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OBSKIT_SERVICE"); v != "" {
		cfg.Service = v
	}
	if v := os.Getenv("OBSKIT_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("OBSKIT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("OBSKIT_DESTINATIONS"); v != "" {
		parts := strings.Split(v, ",")
		dests := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				dests = append(dests, p)
			}
		}
		cfg.Destinations = dests
	}
	if v := os.Getenv("OBSKIT_FILE_PATH"); v != "" {
		cfg.File.Path = v
	}
	if v := os.Getenv("OBSKIT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OBSKIT_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("OBSKIT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("OBSKIT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("OBSKIT_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("OBSKIT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// validLevels mirrors record.ParseLevel without importing it; the
// record package stays free of configuration concerns.
var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate checks the configuration for errors.
//
// Destination-specific settings are only required when the
// corresponding destination is selected. Redaction value patterns are
// checked for compilation here; the placeholder-collision check happens
// in redact.New, which owns the idempotence guarantee.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service == "" {
		errs = append(errs, "service is required")
	}
	if !validLevels[strings.ToLower(c.Level)] {
		errs = append(errs, fmt.Sprintf("level %q must be one of debug, info, warn, error", c.Level))
	}
	if f := strings.ToLower(c.Format); f != FormatJSON && f != FormatText {
		errs = append(errs, fmt.Sprintf("format %q must be json or text", c.Format))
	}

	if len(c.Destinations) == 0 {
		errs = append(errs, "at least one destination is required")
	}
	for _, dest := range c.Destinations {
		switch dest {
		case DestConsole:
		case DestFile:
			if c.File.Path == "" {
				errs = append(errs, "file.path is required when destinations include file")
			}
		case DestDatabase:
			if c.Database.Path == "" {
				errs = append(errs, "database.path is required when destinations include database")
			}
		case DestMQTT:
			if c.MQTT.Host == "" {
				errs = append(errs, "mqtt.host is required when destinations include mqtt")
			}
			if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
				errs = append(errs, "mqtt.port must be between 1 and 65535")
			}
			if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
				errs = append(errs, "mqtt.qos must be 0, 1, or 2")
			}
		case DestInfluxDB:
			if c.InfluxDB.URL == "" {
				errs = append(errs, "influxdb.url is required when destinations include influxdb")
			}
			if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
				errs = append(errs, "influxdb.org and influxdb.bucket are required when destinations include influxdb")
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown destination %q", dest))
		}
	}

	for _, pattern := range c.Redaction.ValuePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Sprintf("redaction.value_patterns: %q does not compile: %v", pattern, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
