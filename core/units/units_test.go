package units

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAngleConversions(t *testing.T) {
	a := Degrees(180)
	assert.InDelta(t, math.Pi, a.Radians(), 1e-12)
	assert.InDelta(t, 180, a.Degrees(), 1e-9)
	assert.InDelta(t, 350, Degrees(-10).Normalized().Degrees(), 1e-9)
	assert.InDelta(t, -170, Degrees(190).Signed().Degrees(), 1e-9)
}

func TestVelocityAndLength(t *testing.T) {
	assert.InDelta(t, 1852.0/3600.0, Knots(1).MetersPerSecond(), 1e-12)
	assert.InDelta(t, 6.5, Knots(6.5).Knots(), 1e-12)
	assert.InDelta(t, 1852, NauticalMiles(1).Meters(), 1e-9)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindAngle, KindOf[Angle]())
	assert.Equal(t, KindGeoPosition, KindOf[GeoPosition]())
	assert.Equal(t, KindDateTime, KindOf[DateTime]())
	assert.Equal(t, KindUnknown, KindOfValue(3.0))
}

func TestEncodeDecode(t *testing.T) {
	ts := time.Date(2023, 7, 14, 10, 0, 0, 123, time.UTC)
	values := []any{
		Degrees(12.5),
		Knots(7),
		Meters(3.2),
		Seconds(1.5),
		LonLat(11.97, 57.7),
		Orientation{Heading: Degrees(90), Roll: Degrees(-3), Pitch: Degrees(1)},
		At(ts),
	}
	for _, v := range values {
		raw, err := Encode(v)
		require.NoError(t, err)
		got, err := Decode(KindOfValue(v), raw)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := Encode("not a quantity")
	assert.Error(t, err)
	_, err = Decode(KindUnknown, []byte("1"))
	assert.Error(t, err)
}

func TestScalar(t *testing.T) {
	v, ok := Scalar(Degrees(45))
	assert.True(t, ok)
	assert.InDelta(t, 45, v, 1e-9)
	_, ok = Scalar(LonLat(0, 0))
	assert.False(t, ok)
}
