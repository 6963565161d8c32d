package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/navbus/navbus/core/channel"
	coremetrics "github.com/navbus/navbus/core/metrics"
	"github.com/navbus/navbus/core/units"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordValueScalar(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.ValueChange{Channel: channel.CodeAWS, Source: "NMEA0183", Time: now, Value: units.Knots(12.5)}
	if err := sink.RecordValue(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("nav_value").
		AddTag("channel", "AWS").
		AddTag("source", "NMEA0183").
		AddField("value", 12.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordValuePosition(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.ValueChange{Channel: channel.CodeGPSPos, Source: "gps", Time: now, Value: units.LonLat(-4.5, 48.25)}
	if err := sink.RecordValue(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("nav_value").
		AddTag("channel", "GPS_POS").
		AddTag("source", "gps").
		AddField("lon", -4.5).
		AddField("lat", 48.25).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordSource(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	if err := sink.RecordSource(coremetrics.SourceSeen{Channel: channel.CodeDepth, Source: "sonar", Time: now}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.bodies) != 1 || !strings.HasPrefix(rec.bodies[0], "nav_source,channel=DEPTH,source=sonar seen=true") {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
