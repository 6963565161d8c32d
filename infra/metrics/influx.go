package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/navbus/navbus/core/metrics"
	"github.com/navbus/navbus/core/units"
	"github.com/navbus/navbus/infra/logger"
)

// InfluxSink writes winning values to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.ValueSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordValue writes one "nav_value" point. Scalars go to a "value" field,
// positions and orientations to one field per component.
func (s *InfluxSink) RecordValue(ev coremetrics.ValueChange) error {
	p := valuePoint(ev)
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSource writes a "nav_source" point.
func (s *InfluxSink) RecordSource(ev coremetrics.SourceSeen) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("nav_source").
		AddTag("channel", ev.Channel.String()).
		AddTag("source", ev.Source).
		AddField("seen", true).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func valuePoint(ev coremetrics.ValueChange) *write.Point {
	p := write.NewPointWithMeasurement("nav_value").
		AddTag("channel", ev.Channel.String()).
		AddTag("source", ev.Source).
		SetTime(ev.Time)
	switch v := ev.Value.(type) {
	case units.GeoPosition:
		return p.AddField("lon", round6(v.Lon.Degrees())).AddField("lat", round6(v.Lat.Degrees()))
	case units.Orientation:
		return p.AddField("heading", round3(v.Heading.Degrees())).
			AddField("roll", round3(v.Roll.Degrees())).
			AddField("pitch", round3(v.Pitch.Degrees()))
	default:
		f, ok := units.Scalar(ev.Value)
		if !ok {
			return nil
		}
		return p.AddField("value", round3(f))
	}
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
