// Package recorder persists bench traffic to InfluxDB and reads sampled
// series back out for monitoring. Every record message on the bus carries a
// ready-made point (measurement, tags, fields, timestamp); the recorder is a
// thin bridge between the bus wire format and the time-series store.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/au-dtlab/benchviz/bus"
	"github.com/au-dtlab/benchviz/monitor"
)

// Config holds the InfluxDB connection settings.
type Config struct {
	URL    string `toml:"url"`
	Token  string `toml:"token"`
	Org    string `toml:"org"`
	Bucket string `toml:"bucket"`
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = "http://localhost:8086"
	}
	return c
}

// Recorder writes bench messages as points and queries series back.
type Recorder struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	query  api.QueryAPI
	bucket string
	log    *slog.Logger
}

// New connects a recorder to the configured InfluxDB instance.
func New(cfg Config, log *slog.Logger) *Recorder {
	cfg = cfg.withDefaults()
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Recorder{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		query:  client.QueryAPI(cfg.Org),
		bucket: cfg.Bucket,
		log:    log,
	}
}

// Close releases the underlying client.
func (r *Recorder) Close() { r.client.Close() }

// Record writes one bus message as a point.
func (r *Recorder) Record(ctx context.Context, m bus.Message) error {
	if len(m.Fields) == 0 {
		r.log.Debug("dropping record message without fields",
			slog.String("measurement", m.Measurement))
		return nil
	}
	p := influxdb2.NewPoint(m.Measurement, m.Tags, m.Fields, m.Timestamp())
	if err := r.write.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write point: %w", err)
	}
	return nil
}

// WriteRobustness stores a monitor robustness series under the given source
// tag. Points on existing timestamps are updated in place.
func (r *Recorder) WriteRobustness(ctx context.Context, source string, series monitor.Signal) error {
	for _, s := range series {
		sec, frac := int64(s.Time), s.Time-float64(int64(s.Time))
		ts := time.Unix(sec, int64(frac*1e9))
		p := influxdb2.NewPoint("robustness",
			map[string]string{"source": source},
			map[string]interface{}{"robustness": s.Value},
			ts)
		if err := r.write.WritePoint(ctx, p); err != nil {
			return fmt.Errorf("write robustness point: %w", err)
		}
	}
	return nil
}

// QueryField reads one field of a measurement over the lookback period,
// downsampled to the latest value per aggregation window. The range stops
// a few seconds short of now so windows from different sources line up.
func (r *Recorder) QueryField(ctx context.Context, measurement, field string, lookback, window time.Duration) (monitor.Signal, error) {
	flux := fmt.Sprintf(`
		from(bucket: %q)
		|> range(start: -%s, stop: -3s)
		|> filter(fn: (r) => r["_measurement"] == %q)
		|> filter(fn: (r) => r["_field"] == %q)
		|> aggregateWindow(every: %s, fn: last, createEmpty: false)
		|> yield(name: "last")`,
		r.bucket, lookback, measurement, field, window)

	result, err := r.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", measurement, field, err)
	}
	var sig monitor.Signal
	for result.Next() {
		rec := result.Record()
		v, ok := rec.Value().(float64)
		if !ok {
			continue
		}
		sig = append(sig, monitor.Sample{
			Time:  float64(rec.Time().UnixNano()) / 1e9,
			Value: v,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", measurement, field, err)
	}
	return monitor.Sorted(sig), nil
}
