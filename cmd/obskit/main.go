// obskit - structured record shipper
//
// Reads newline-delimited JSON events from stdin and routes each one
// through the obskit pipeline (redaction, then fan-out) to the sinks
// named in the configuration. Two input shapes are accepted:
//
//	{"level": "info", "message": "user login", "fields": {"user_id": "42"}}
//	{"metric": "requests_total", "value": 1, "tags": {"route": "/health"}}
//
// This makes the full pipeline usable from shell pipelines and
// sidecar-style wrappers, not just from Go code.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/logger"
	"github.com/fernworks/obskit/record"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// inputEvent is one stdin line. A non-empty Metric field selects the
// metric shape; otherwise the log shape applies.
type inputEvent struct {
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]any    `json:"fields"`
	Metric  string            `json:"metric"`
	Value   *float64          `json:"value"`
	Tags    map[string]string `json:"tags"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual shipper logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context cancelled on shutdown signals
//   - input: Source of newline-delimited JSON events
//
// Returns:
//   - error: nil on clean EOF or shutdown, or error describing failure
func run(ctx context.Context, input io.Reader) error {
	configPath := flag.String("config", "", "path to config.yaml (default: OBSKIT_CONFIG env, else environment-only config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	base, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer base.Close() //nolint:errcheck // Best effort on shutdown

	// Tag every shipped record with this shipper instance, so records
	// from parallel shippers stay distinguishable downstream.
	log := base.With(map[string]any{
		"instance_id": "obskit-" + uuid.NewString()[:8],
	})

	if err := log.Info("shipper started", map[string]any{
		"version":      version,
		"commit":       commit,
		"destinations": cfg.Destinations,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return ship(ctx, log, input)
}

// ship consumes input lines until EOF or context cancellation.
// Malformed lines and per-line pipeline errors are reported on stderr
// and skipped; shipping continues.
func ship(ctx context.Context, log *logger.Logger, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var shipped, failed int
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return summarise(log, shipped, failed)
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if err := shipLine(log, line); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			continue
		}
		shipped++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return summarise(log, shipped, failed)
}

// shipLine parses and routes one input line.
func shipLine(log *logger.Logger, line []byte) error {
	var event inputEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return fmt.Errorf("skipping malformed line: %w", err)
	}

	if event.Metric != "" {
		if event.Value == nil {
			return fmt.Errorf("skipping metric %q: missing value", event.Metric)
		}
		return log.Metric(event.Metric, *event.Value, event.Tags)
	}

	level := record.LevelInfo
	if event.Level != "" {
		parsed, err := record.ParseLevel(event.Level)
		if err != nil {
			return fmt.Errorf("skipping line: %w", err)
		}
		level = parsed
	}
	return log.Log(level, event.Message, event.Fields)
}

// summarise emits the final throughput metric before shutdown.
func summarise(log *logger.Logger, shipped, failed int) error {
	_ = log.Inc("shipper.records_shipped", shipped, nil)
	if failed > 0 {
		_ = log.Inc("shipper.records_failed", failed, nil)
	}
	return nil
}

// loadConfig resolves the configuration source: explicit flag, then
// the OBSKIT_CONFIG environment variable, then environment-only
// defaults.
func loadConfig(flagPath string) (*config.Config, error) {
	if flagPath != "" {
		return config.Load(flagPath)
	}
	if path := os.Getenv("OBSKIT_CONFIG"); path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}
