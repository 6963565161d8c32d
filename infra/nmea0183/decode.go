package nmea0183

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/units"
)

// Value is one channel value carried by a sentence.
type Value struct {
	Code  channel.Code
	Value any
}

type decoder func(Sentence) ([]Value, error)

var decoders = map[string]decoder{
	"MWV": decodeMWV,
	"RMC": decodeRMC,
	"VTG": decodeVTG,
	"HDM": decodeHDM,
	"HDG": decodeHDG,
	"VHW": decodeVHW,
	"VLW": decodeVLW,
	"RSA": decodeRSA,
	"DPT": decodeDPT,
}

// Supported reports whether sentences of type typ are decoded.
func Supported(typ string) bool {
	_, ok := decoders[typ]
	return ok
}

// Decode extracts the channel values of s. Empty fields are skipped; a
// sentence flagged invalid by its status field yields no value.
func Decode(s Sentence) ([]Value, error) {
	dec, ok := decoders[s.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, s.Type)
	}
	return dec(s)
}

// collector accumulates values and the first parse error.
type collector struct {
	s   Sentence
	out []Value
	err error
}

func (c *collector) float(i int) (float64, bool) {
	if c.err != nil {
		return 0, false
	}
	v, ok, err := c.s.Float(i)
	if err != nil {
		c.err = err
		return 0, false
	}
	return v, ok
}

func (c *collector) add(code channel.Code, v any) {
	c.out = append(c.out, Value{Code: code, Value: v})
}

func (c *collector) result() ([]Value, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.out, nil
}

func speed(v float64, unit string) (units.Velocity, error) {
	switch unit {
	case "N", "":
		return units.Knots(v), nil
	case "M":
		return units.MetersPerSecond(v), nil
	case "K":
		return units.MetersPerSecond(v / 3.6), nil
	case "S":
		return units.MetersPerSecond(v * 0.44704), nil
	}
	return 0, fmt.Errorf("%w: speed unit %q", ErrMalformed, unit)
}

// MWV: angle, reference (R|T), speed, unit, status.
func decodeMWV(s Sentence) ([]Value, error) {
	if s.Field(4) == "V" {
		return nil, nil
	}
	angleCode, speedCode := channel.CodeAWA, channel.CodeAWS
	switch s.Field(1) {
	case "R":
	case "T":
		angleCode, speedCode = channel.CodeTWA, channel.CodeTWS
	default:
		return nil, fmt.Errorf("%w: MWV reference %q", ErrMalformed, s.Field(1))
	}
	c := collector{s: s}
	if a, ok := c.float(0); ok {
		c.add(angleCode, units.Degrees(a).Signed())
	}
	if v, ok := c.float(2); ok {
		sp, err := speed(v, s.Field(3))
		if err != nil {
			return nil, err
		}
		c.add(speedCode, sp)
	}
	return c.result()
}

// RMC: time, status, lat, N/S, lon, E/W, SOG, COG, date, variation, E/W.
func decodeRMC(s Sentence) ([]Value, error) {
	if s.Field(1) != "A" {
		return nil, nil
	}
	c := collector{s: s}
	if pos, ok, err := position(s, 2); err != nil {
		return nil, err
	} else if ok {
		c.add(channel.CodeGPSPos, pos)
	}
	if v, ok := c.float(6); ok {
		c.add(channel.CodeGPSSpeed, units.Knots(v))
	}
	if v, ok := c.float(7); ok {
		c.add(channel.CodeGPSBearing, units.Degrees(v).Normalized())
	}
	if s.Field(0) != "" && s.Field(8) != "" {
		t, err := rmcTime(s.Field(8), s.Field(0))
		if err != nil {
			return nil, err
		}
		c.add(channel.CodeDateTime, units.At(t))
	}
	return c.result()
}

// position reads lat, N/S, lon, E/W starting at field i.
func position(s Sentence, i int) (units.GeoPosition, bool, error) {
	lat, lon := s.Field(i), s.Field(i+2)
	if lat == "" || lon == "" {
		return units.GeoPosition{}, false, nil
	}
	la, err := degMin(lat, s.Field(i+1), "S")
	if err != nil {
		return units.GeoPosition{}, false, err
	}
	lo, err := degMin(lon, s.Field(i+3), "W")
	if err != nil {
		return units.GeoPosition{}, false, err
	}
	return units.LonLat(lo, la), true, nil
}

// degMin converts a dddmm.mmmm field to decimal degrees.
func degMin(f, hemi, negative string) (float64, error) {
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrMalformed, f)
	}
	deg := math.Floor(v / 100)
	out := deg + (v-deg*100)/60
	if hemi == negative {
		out = -out
	}
	return out, nil
}

// rmcTime combines a ddmmyy date and a hhmmss[.ss] time in UTC.
func rmcTime(date, clock string) (time.Time, error) {
	if len(date) != 6 || len(clock) < 6 {
		return time.Time{}, fmt.Errorf("%w: RMC date %q time %q", ErrMalformed, date, clock)
	}
	t, err := time.Parse("020106150405", date+clock[:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: RMC date %q time %q", ErrMalformed, date, clock)
	}
	if len(clock) > 7 && clock[6] == '.' {
		frac, err := strconv.ParseFloat("0"+clock[6:], 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: RMC time %q", ErrMalformed, clock)
		}
		t = t.Add(time.Duration(frac * float64(time.Second)))
	}
	return t, nil
}

// VTG: COG true, T, COG magnetic, M, SOG knots, N, SOG km/h, K.
func decodeVTG(s Sentence) ([]Value, error) {
	c := collector{s: s}
	if v, ok := c.float(0); ok {
		c.add(channel.CodeGPSBearing, units.Degrees(v).Normalized())
	}
	if v, ok := c.float(4); ok {
		c.add(channel.CodeGPSSpeed, units.Knots(v))
	} else if v, ok := c.float(6); ok {
		c.add(channel.CodeGPSSpeed, units.MetersPerSecond(v/3.6))
	}
	return c.result()
}

// HDM: heading, M.
func decodeHDM(s Sentence) ([]Value, error) {
	c := collector{s: s}
	if v, ok := c.float(0); ok {
		c.add(channel.CodeMagHeading, units.Degrees(v).Normalized())
	}
	return c.result()
}

// HDG: sensor heading, deviation, E/W, variation, E/W. The magnetic heading
// is the sensor heading corrected for deviation.
func decodeHDG(s Sentence) ([]Value, error) {
	c := collector{s: s}
	h, ok := c.float(0)
	if !ok {
		return c.result()
	}
	if dev, ok := c.float(1); ok {
		if s.Field(2) == "W" {
			dev = -dev
		}
		h += dev
	}
	c.add(channel.CodeMagHeading, units.Degrees(h).Normalized())
	return c.result()
}

// VHW: heading true, T, heading magnetic, M, speed knots, N, speed km/h, K.
func decodeVHW(s Sentence) ([]Value, error) {
	c := collector{s: s}
	if v, ok := c.float(2); ok {
		c.add(channel.CodeMagHeading, units.Degrees(v).Normalized())
	}
	if v, ok := c.float(4); ok {
		c.add(channel.CodeWatSpeed, units.Knots(v))
	} else if v, ok := c.float(6); ok {
		c.add(channel.CodeWatSpeed, units.MetersPerSecond(v/3.6))
	}
	return c.result()
}

// VLW: total distance, N, distance since reset, N.
func decodeVLW(s Sentence) ([]Value, error) {
	c := collector{s: s}
	if v, ok := c.float(0); ok {
		c.add(channel.CodeWatDist, units.NauticalMiles(v))
	}
	return c.result()
}

// RSA: starboard rudder, status, port rudder, status. Negative is to port.
func decodeRSA(s Sentence) ([]Value, error) {
	if s.Field(1) != "A" {
		return nil, nil
	}
	c := collector{s: s}
	if v, ok := c.float(0); ok {
		c.add(channel.CodeRudderAngle, units.Degrees(v))
	}
	return c.result()
}

// DPT: depth below transducer in meters, offset, range.
func decodeDPT(s Sentence) ([]Value, error) {
	c := collector{s: s}
	if v, ok := c.float(0); ok {
		c.add(channel.CodeDepth, units.Meters(v))
	}
	return c.result()
}
