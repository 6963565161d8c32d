package test

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbus/navbus/app"
	"github.com/navbus/navbus/config"
	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/persist"
	"github.com/navbus/navbus/infra/nmea2000"
	"github.com/navbus/navbus/test/util"
)

func candump(ts time.Time, prio uint8, pgn uint32, src uint8, data []byte) string {
	id := uint32(prio)<<26 | pgn<<8 | uint32(src)
	if pf := (pgn >> 8) & 0xFF; pf < 240 {
		id |= nmea2000.BroadcastAddress << 8
	}
	return fmt.Sprintf("(%d.%06d) can0 %08X#%X", ts.Unix(), ts.Nanosecond()/1000, id, data)
}

func writeCandump(t *testing.T, dir string) string {
	t.Helper()
	t0 := time.Date(2016, 3, 1, 10, 0, 0, 0, time.UTC)
	name := binary.LittleEndian.AppendUint64(nil, 0x00A1B2C3D4E5F601)
	var lines []string
	lines = append(lines, candump(t0, 6, nmea2000.PGNAddressClaim, 0x23, name))
	for i := 0; i < 10; i++ {
		ts := t0.Add(time.Duration(i) * 100 * time.Millisecond)
		// SID, 5.00 m/s, 0.7854 rad, apparent.
		wind := []byte{byte(i), 0xF4, 0x01, 0xAE, 0x1E, 0xFA, 0xFF, 0xFF}
		lines = append(lines, candump(ts, 2, nmea2000.PGNWindData, 0x23, wind))
	}
	path := filepath.Join(dir, "can.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// TestServiceCANToPrometheusAndStore feeds a candump log through the whole
// service and checks the Prometheus endpoint and the recorded samples.
func TestServiceCANToPrometheusAndStore(t *testing.T) {
	dir := t.TempDir()
	addr, err := util.FreeAddr()
	require.NoError(t, err)
	storePath := filepath.Join(dir, "samples.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`can:
  enabled: true
  path: %q
persistence:
  type: sqlite
  flush_interval_seconds: 1
  conf:
    path: %q
metrics:
  prometheus_port: %q
  sinks:
    - type: prometheus
`, writeCandump(t, dir), storePath, addr)
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	svc, err := app.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer waitCancel()
	require.NoError(t, util.WaitForMetric(waitCtx, "http://"+addr+"/metrics", `navbus_channel_value{channel="AWA",source="NMEA2000/a1b2c3d4e5f601"} 45`))

	src, ok := dispatch.Get(svc.Dispatcher, channel.AWS).WinningSource()
	require.True(t, ok)
	assert.Equal(t, "NMEA2000/a1b2c3d4e5f601", src)
	assert.Equal(t, 3, dispatch.Get(svc.Dispatcher, channel.AWS).RetainedCount())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	require.NoError(t, svc.Close())

	store, err := persist.Open(storePath)
	require.NoError(t, err)
	defer store.Close()
	recs, err := store.Query(context.Background(), persist.Query{Channel: "AWS"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(recs), 3)

	d := dispatch.New(dispatch.Config{}, nil)
	stats, err := persist.Replay(context.Background(), store, d, persist.ReplayOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pairs)
	v, ok := dispatch.Val(d, channel.AWA)
	require.True(t, ok)
	assert.InDelta(t, 45, v.Degrees(), 0.01)
}
