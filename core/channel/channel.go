// Package channel holds the fixed registry of measurement channels. Every
// channel code is bound to exactly one quantity type through a typed Key, so
// dispatcher access is checked at compile time.
package channel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/navbus/navbus/core/units"
)

// Code identifies a channel.
type Code uint8

const (
	CodeAWA Code = iota + 1
	CodeAWS
	CodeTWA
	CodeTWS
	CodeTWDIR
	CodeGPSSpeed
	CodeGPSBearing
	CodeGPSPos
	CodeMagHeading
	CodeWatSpeed
	CodeWatDist
	CodeRudderAngle
	CodeVMG
	CodeTargetVMG
	CodeDateTime
	CodeOrient
	CodeDepth
	CodeLogDuration
)

// Info describes a channel.
type Info struct {
	Code        Code
	Name        string
	Description string
	Kind        units.Kind
}

var (
	infos  = map[Code]Info{}
	byName = map[string]Code{}
)

// Key is the typed handle of a channel carrying values of type V.
type Key[V units.Quantity] struct {
	code Code
}

// Code returns the channel code of the key.
func (k Key[V]) Code() Code { return k.code }

func (k Key[V]) String() string { return k.code.String() }

func define[V units.Quantity](code Code, name, desc string) Key[V] {
	if _, dup := infos[code]; dup {
		panic(fmt.Sprintf("channel: code %d defined twice", code))
	}
	infos[code] = Info{Code: code, Name: name, Description: desc, Kind: units.KindOf[V]()}
	byName[name] = code
	return Key[V]{code: code}
}

// The channel registry.
var (
	AWA         = define[units.Angle](CodeAWA, "AWA", "apparent wind angle")
	AWS         = define[units.Velocity](CodeAWS, "AWS", "apparent wind speed")
	TWA         = define[units.Angle](CodeTWA, "TWA", "true wind angle")
	TWS         = define[units.Velocity](CodeTWS, "TWS", "true wind speed")
	TWDIR       = define[units.Angle](CodeTWDIR, "TWDIR", "true wind direction")
	GPSSpeed    = define[units.Velocity](CodeGPSSpeed, "GPS_SPEED", "speed over ground")
	GPSBearing  = define[units.Angle](CodeGPSBearing, "GPS_BEARING", "course over ground")
	GPSPos      = define[units.GeoPosition](CodeGPSPos, "GPS_POS", "GPS position")
	MagHeading  = define[units.Angle](CodeMagHeading, "MAG_HEADING", "magnetic heading")
	WatSpeed    = define[units.Velocity](CodeWatSpeed, "WAT_SPEED", "speed through water")
	WatDist     = define[units.Length](CodeWatDist, "WAT_DIST", "distance through water")
	RudderAngle = define[units.Angle](CodeRudderAngle, "RUDDER_ANGLE", "rudder angle")
	VMG         = define[units.Velocity](CodeVMG, "VMG", "velocity made good")
	TargetVMG   = define[units.Velocity](CodeTargetVMG, "TARGET_VMG", "target velocity made good")
	DateTime    = define[units.DateTime](CodeDateTime, "DATE_TIME", "GPS date and time")
	Orient      = define[units.Orientation](CodeOrient, "ORIENT", "absolute orientation")
	Depth       = define[units.Length](CodeDepth, "DEPTH", "water depth below transducer")
	LogDuration = define[units.Duration](CodeLogDuration, "LOG_DURATION", "time since log start")
)

// Info returns the registry entry of c.
func (c Code) Info() (Info, bool) {
	i, ok := infos[c]
	return i, ok
}

// Kind returns the quantity kind carried by c.
func (c Code) Kind() units.Kind { return infos[c].Kind }

// Valid reports whether c is a registered channel.
func (c Code) Valid() bool {
	_, ok := infos[c]
	return ok
}

func (c Code) String() string {
	if i, ok := infos[c]; ok {
		return i.Name
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// Parse returns the code of a channel name, case insensitively.
func Parse(name string) (Code, error) {
	if c, ok := byName[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown channel %q", name)
}

// Codes returns every registered channel code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(infos))
	for c := range infos {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
