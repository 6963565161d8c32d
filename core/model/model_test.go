package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsDefined(t *testing.T) {
	assert.False(t, IsDefined(UndefinedTime))
	assert.True(t, IsDefined(time.Unix(0, 1)))
}

func TestAbsDuration(t *testing.T) {
	a := time.Unix(100, 0)
	b := time.Unix(97, 0)
	assert.Equal(t, 3*time.Second, AbsDuration(a, b))
	assert.Equal(t, 3*time.Second, AbsDuration(b, a))
}

func TestSourceNames(t *testing.T) {
	assert.Equal(t, "NMEA2000/1a2b3c", NMEA2000Source(0x1a2b3c))
	assert.Equal(t, "replay:boat", ReplaySource("boat"))
	assert.Equal(t, "replay:boat", ReplaySource("replay:boat"))
}

func TestFixedClock(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := FixedClock(ts)
	assert.Equal(t, ts, c())
}
