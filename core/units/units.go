// Package units defines the closed set of physical quantities carried on the
// dispatch bus. Values are stored in SI units; constructors and accessors
// convert from and to the units marine instruments usually report.
package units

import (
	"fmt"
	"math"
	"time"
)

const (
	metersPerNauticalMile = 1852.0
	knotsToMetersPerSec   = metersPerNauticalMile / 3600.0
)

// Angle is an angle in radians.
type Angle float64

// Degrees builds an Angle from degrees.
func Degrees(d float64) Angle { return Angle(d * math.Pi / 180) }

// Radians builds an Angle from radians.
func Radians(r float64) Angle { return Angle(r) }

func (a Angle) Degrees() float64 { return float64(a) * 180 / math.Pi }
func (a Angle) Radians() float64 { return float64(a) }

// Normalized returns the angle wrapped to [0, 360) degrees.
func (a Angle) Normalized() Angle {
	r := math.Mod(float64(a), 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return Angle(r)
}

// Signed returns the angle wrapped to [-180, 180) degrees.
func (a Angle) Signed() Angle {
	n := a.Normalized()
	if n >= math.Pi {
		n -= 2 * math.Pi
	}
	return n
}

func (a Angle) String() string { return fmt.Sprintf("%.2f°", a.Degrees()) }

// Velocity is a speed in meters per second.
type Velocity float64

// Knots builds a Velocity from knots.
func Knots(k float64) Velocity { return Velocity(k * knotsToMetersPerSec) }

// MetersPerSecond builds a Velocity from m/s.
func MetersPerSecond(v float64) Velocity { return Velocity(v) }

func (v Velocity) Knots() float64           { return float64(v) / knotsToMetersPerSec }
func (v Velocity) MetersPerSecond() float64 { return float64(v) }
func (v Velocity) String() string           { return fmt.Sprintf("%.2fkn", v.Knots()) }

// Length is a distance in meters.
type Length float64

// Meters builds a Length from meters.
func Meters(m float64) Length { return Length(m) }

// NauticalMiles builds a Length from nautical miles.
func NauticalMiles(nm float64) Length { return Length(nm * metersPerNauticalMile) }

func (l Length) Meters() float64        { return float64(l) }
func (l Length) NauticalMiles() float64 { return float64(l) / metersPerNauticalMile }
func (l Length) String() string         { return fmt.Sprintf("%.2fm", l.Meters()) }

// Duration is an elapsed time.
type Duration time.Duration

// Seconds builds a Duration from seconds.
func Seconds(s float64) Duration { return Duration(s * float64(time.Second)) }

func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }
func (d Duration) String() string   { return time.Duration(d).String() }

// GeoPosition is a WGS84 position.
type GeoPosition struct {
	Lon Angle
	Lat Angle
}

// LonLat builds a GeoPosition from decimal degrees.
func LonLat(lonDeg, latDeg float64) GeoPosition {
	return GeoPosition{Lon: Degrees(lonDeg), Lat: Degrees(latDeg)}
}

func (p GeoPosition) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat.Degrees(), p.Lon.Degrees())
}

// Orientation is the attitude of the boat.
type Orientation struct {
	Heading Angle
	Roll    Angle
	Pitch   Angle
}

// DateTime is an absolute instant reported by an instrument, as opposed to the
// reception time of a sample. It is stored as Unix nanoseconds so it stays
// comparable.
type DateTime int64

// At builds a DateTime from t.
func At(t time.Time) DateTime { return DateTime(t.UnixNano()) }

func (d DateTime) Time() time.Time { return time.Unix(0, int64(d)).UTC() }
func (d DateTime) String() string  { return d.Time().Format(time.RFC3339Nano) }
func (d DateTime) IsZero() bool    { return d == 0 }

// Sub returns d - o.
func (d DateTime) Sub(o DateTime) time.Duration { return time.Duration(int64(d) - int64(o)) }

// Quantity is the closed set of value types a channel can carry.
type Quantity interface {
	Angle | Velocity | Length | Duration | GeoPosition | Orientation | DateTime
}
