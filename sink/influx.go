package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/record"
)

// influxWriteTimeout bounds a single point write.
const influxWriteTimeout = 5 * time.Second

// Influx forwards metric records to InfluxDB as points: measurement =
// metric_name, tags = metric_tags plus the service, field "value" =
// metric_value. Ordinary log records are skipped without error, so the
// sink can sit in the same fan-out as the log destinations.
//
// Points are written synchronously via the blocking write API to match
// the pipeline's per-call semantics. This is pure emission — the
// toolkit never aggregates or queries what it wrote.
//
// Thread Safety:
//   - Lazy client construction and writes are serialised by an
//     internal mutex.
type Influx struct {
	mu       sync.Mutex
	cfg      config.InfluxDBConfig
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewInflux creates an InfluxDB metric sink. The client is constructed
// lazily on the first metric write.
func NewInflux(cfg config.InfluxDBConfig) *Influx {
	return &Influx{cfg: cfg}
}

// Write forwards a metric record as one point. Non-metric records
// return nil immediately.
func (i *Influx) Write(rec record.Record) error {
	if rec.Kind != record.KindMetric {
		return nil
	}

	point, err := metricPoint(rec)
	if err != nil {
		return fmt.Errorf("%w: influxdb: %w", ErrWriteFailed, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.writeAPI == nil {
		i.client = influxdb2.NewClient(i.cfg.URL, i.cfg.Token)
		i.writeAPI = i.client.WriteAPIBlocking(i.cfg.Org, i.cfg.Bucket)
	}

	ctx, cancel := context.WithTimeout(context.Background(), influxWriteTimeout)
	defer cancel()

	if err := i.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: influxdb: %w", ErrWriteFailed, err)
	}
	return nil
}

// metricPoint converts a metric record's reserved fields into a point.
func metricPoint(rec record.Record) (*write.Point, error) {
	name, ok := rec.Fields[record.FieldMetricName].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("record has no usable %s field", record.FieldMetricName)
	}
	value, ok := rec.Fields[record.FieldMetricValue].(float64)
	if !ok {
		return nil, fmt.Errorf("record has no usable %s field", record.FieldMetricValue)
	}

	tags := map[string]string{"service": rec.Service}
	if recTags, ok := rec.Fields[record.FieldMetricTags].(map[string]string); ok {
		for key, tag := range recTags {
			tags[key] = tag
		}
	}

	return write.NewPoint(
		name,
		tags,
		map[string]interface{}{"value": value},
		rec.Timestamp,
	), nil
}

// Name returns "influxdb".
func (i *Influx) Name() string {
	return "influxdb"
}

// Close releases the client if one was constructed.
func (i *Influx) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.client == nil {
		return nil
	}
	i.client.Close()
	i.client = nil
	i.writeAPI = nil
	return nil
}
