// Package logger is the façade of the obskit pipeline.
//
// A Logger binds a service identity to a fixed set of sinks and a
// minimum level threshold. Every emitted record passes through exactly
// one redaction pass before fan-out, and per-sink failures are
// collected — never raised — so a malfunctioning sink degrades
// observability without crashing or blocking the host application.
//
// There is deliberately no process-wide default Logger: construct one
// instance at start-up and pass it to call sites.
//
//	cfg, err := config.Load("config.yaml")
//	log, err := logger.New(cfg)
//	defer log.Close()
//
//	log.Info("user login", map[string]any{"user_id": "42"})
//	log.Metric("requests_total", 1, map[string]string{"route": "/health"})
//
// # Metrics
//
// Metric, Inc, Observe and Timing encode samples as records with the
// reserved metric fields and push them through the same redact+fan-out
// path, ignoring the level threshold: metrics are sampled data points,
// not noise to be filtered.
//
// # Concurrency
//
// A Logger is immutable after construction and safe for concurrent use.
// All sink I/O happens synchronously in the calling goroutine; callers
// needing non-blocking behaviour must offload the call themselves.
package logger
