// Package config loads and validates obskit configuration.
//
// Configuration is supplied by the host application, loaded from a YAML
// file with environment variable overrides:
//
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: OBSKIT_SECTION_KEY
// For example: OBSKIT_SERVICE, OBSKIT_DATABASE_PATH, OBSKIT_MQTT_PASSWORD
//
// # Example config.yaml
//
//	service: "billing-api"
//	level: "info"
//	format: "json"
//	destinations: ["console", "file", "database"]
//	file:
//	  path: "./logs/obskit.log"
//	database:
//	  path: "./data/obskit.db"
//	  wal_mode: true
//	  busy_timeout: 5
//	redaction:
//	  placeholder: "***REDACTED***"
//	  field_names: ["session_cookie"]
//
// Hosts that configure purely through the environment can use FromEnv.
package config
