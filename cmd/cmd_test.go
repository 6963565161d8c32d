package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbus/navbus/core/persist"
)

func writeStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := persist.NewJSONLStore(path)
	require.NoError(t, err)
	t0 := time.Date(2016, 3, 1, 10, 0, 0, 0, time.UTC)
	var recs []persist.Record
	for i := 0; i < 4; i++ {
		recs = append(recs,
			persist.Record{Channel: "DEPTH", Source: "NMEA0183", Time: t0.Add(time.Duration(i) * time.Second), Value: json.RawMessage(`12.5`)},
			persist.Record{Channel: "DEPTH", Source: "NMEA2000/1", Time: t0.Add(time.Duration(i) * 2 * time.Second), Value: json.RawMessage(`12.7`)},
		)
	}
	require.NoError(t, store.Append(context.Background(), recs))
	require.NoError(t, store.Close())
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	replayAt, replayPriority, replayTol = "", map[string]int{}, 2*time.Second
	logLevel = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestReplayCommand(t *testing.T) {
	path := writeStore(t)
	out := execute(t, "replay", path, "--priority", "NMEA0183=5")
	assert.Contains(t, out, "DEPTH")
	assert.Contains(t, out, "NMEA0183")
	assert.NotContains(t, out, "NMEA2000/1")
	assert.Contains(t, out, "2016-03-01T10:00:03Z")
}

func TestReplayCommandAt(t *testing.T) {
	path := writeStore(t)
	out := execute(t, "replay", path, "--priority", "NMEA0183=5", "--at", "2016-03-01T10:00:01Z", "--tolerance", "500ms")
	assert.Contains(t, out, "2016-03-01T10:00:01Z")
	assert.NotContains(t, out, "2016-03-01T10:00:03Z")
}

func TestSourcesCommand(t *testing.T) {
	path := writeStore(t)
	out := execute(t, "sources", path)
	assert.Contains(t, out, "NMEA0183")
	assert.Contains(t, out, "NMEA2000/1")
	assert.Contains(t, out, "1s")
	assert.Contains(t, out, "2s")
}

func TestChannelsCommand(t *testing.T) {
	out := execute(t, "channels")
	assert.Contains(t, out, "GPS_POS")
	assert.Contains(t, out, "geo_position")
	assert.Contains(t, out, "apparent wind angle")
}

func TestLogLevelFlag(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	execute(t, "channels", "--log-level", "warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	rootCmd.SetArgs([]string{"channels", "--log-level", "loud"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
	logLevel = ""
}
