package nmea2000

import (
	"errors"
	"fmt"
	"time"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/units"
)

// PGNs handled by this package.
const (
	PGNAddressClaim  uint32 = 60928
	PGNSystemTime    uint32 = 126992
	PGNRudder        uint32 = 127245
	PGNVesselHeading uint32 = 127250
	PGNAttitude      uint32 = 127257
	PGNSpeed         uint32 = 128259
	PGNWaterDepth    uint32 = 128267
	PGNPositionRapid uint32 = 129025
	PGNCOGSOGRapid   uint32 = 129026
	PGNWindData      uint32 = 130306
)

// ErrUnsupported is returned for PGNs without a decoder.
var ErrUnsupported = errors.New("nmea2000: unsupported PGN")

// Value is one channel value carried by a PGN.
type Value struct {
	Code  channel.Code
	Value any
}

type decoder func(*BitCursor) []Value

var decoders = map[uint32]decoder{
	PGNSystemTime:    decodeSystemTime,
	PGNRudder:        decodeRudder,
	PGNVesselHeading: decodeVesselHeading,
	PGNAttitude:      decodeAttitude,
	PGNSpeed:         decodeSpeed,
	PGNWaterDepth:    decodeWaterDepth,
	PGNPositionRapid: decodePositionRapid,
	PGNCOGSOGRapid:   decodeCOGSOGRapid,
	PGNWindData:      decodeWindData,
}

// Supported reports whether pgn has a decoder.
func Supported(pgn uint32) bool {
	_, ok := decoders[pgn]
	return ok
}

// Decode extracts the channel values of a single frame PGN. Fields holding
// "not available" are skipped.
func Decode(pgn uint32, data []byte) ([]Value, error) {
	dec, ok := decoders[pgn]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, pgn)
	}
	c := NewBitCursor(data)
	vals := dec(c)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("pgn %d: %w", pgn, err)
	}
	return vals, nil
}

const (
	radRes   = 1e-4
	speedRes = 1e-2
)

// 130306: SID, speed 0.01 m/s, angle 0.0001 rad, reference.
func decodeWindData(c *BitCursor) []Value {
	c.Skip(8)
	speed, speedOK := c.Unsigned(16)
	angle, angleOK := c.Unsigned(16)
	ref, refOK := c.Unsigned(3)
	if !refOK {
		return nil
	}
	var angleCode, speedCode channel.Code
	a := units.Radians(float64(angle) * radRes)
	switch ref {
	case 0, 1:
		angleCode, speedCode = channel.CodeTWDIR, channel.CodeTWS
		a = a.Normalized()
	case 2:
		angleCode, speedCode = channel.CodeAWA, channel.CodeAWS
		a = a.Signed()
	case 3, 4:
		angleCode, speedCode = channel.CodeTWA, channel.CodeTWS
		a = a.Signed()
	default:
		return nil
	}
	var out []Value
	if angleOK {
		out = append(out, Value{angleCode, a})
	}
	if speedOK {
		out = append(out, Value{speedCode, units.MetersPerSecond(float64(speed) * speedRes)})
	}
	return out
}

// 128259: SID, speed water referenced, speed ground referenced, type.
func decodeSpeed(c *BitCursor) []Value {
	c.Skip(8)
	if v, ok := c.Unsigned(16); ok {
		return []Value{{channel.CodeWatSpeed, units.MetersPerSecond(float64(v) * speedRes)}}
	}
	return nil
}

// 127250: SID, heading, deviation, variation, reference. A true heading is
// turned magnetic when the variation is known.
func decodeVesselHeading(c *BitCursor) []Value {
	c.Skip(8)
	heading, ok := c.Unsigned(16)
	dev, devOK := c.Signed(16)
	variation, varOK := c.Signed(16)
	ref, _ := c.Unsigned(2)
	if !ok {
		return nil
	}
	h := float64(heading) * radRes
	switch ref {
	case 1:
		if devOK {
			h += float64(dev) * radRes
		}
	case 0:
		if !varOK {
			return nil
		}
		h -= float64(variation) * radRes
	default:
		return nil
	}
	return []Value{{channel.CodeMagHeading, units.Radians(h).Normalized()}}
}

// 129026: SID, COG reference, reserved, COG, SOG.
func decodeCOGSOGRapid(c *BitCursor) []Value {
	c.Skip(8)
	ref, _ := c.Unsigned(2)
	c.Skip(6)
	cog, cogOK := c.Unsigned(16)
	sog, sogOK := c.Unsigned(16)
	var out []Value
	if cogOK && ref == 0 {
		out = append(out, Value{channel.CodeGPSBearing, units.Radians(float64(cog) * radRes).Normalized()})
	}
	if sogOK {
		out = append(out, Value{channel.CodeGPSSpeed, units.MetersPerSecond(float64(sog) * speedRes)})
	}
	return out
}

// 129025: latitude and longitude in 1e-7 degrees.
func decodePositionRapid(c *BitCursor) []Value {
	lat, latOK := c.Signed(32)
	lon, lonOK := c.Signed(32)
	if !latOK || !lonOK {
		return nil
	}
	return []Value{{channel.CodeGPSPos, units.LonLat(float64(lon)*1e-7, float64(lat)*1e-7)}}
}

// 127245: instance, direction order, reserved, angle order, position.
func decodeRudder(c *BitCursor) []Value {
	c.Skip(8 + 3 + 5 + 16)
	if v, ok := c.Signed(16); ok {
		return []Value{{channel.CodeRudderAngle, units.Radians(float64(v) * radRes)}}
	}
	return nil
}

// 128267: SID, depth below transducer 0.01 m, offset, range.
func decodeWaterDepth(c *BitCursor) []Value {
	c.Skip(8)
	if v, ok := c.Unsigned(32); ok {
		return []Value{{channel.CodeDepth, units.Meters(float64(v) * 0.01)}}
	}
	return nil
}

// 126992: SID, source, reserved, days since 1970, 0.0001 s since midnight.
func decodeSystemTime(c *BitCursor) []Value {
	c.Skip(8 + 4 + 4)
	days, daysOK := c.Unsigned(16)
	secs, secsOK := c.Unsigned(32)
	if !daysOK || !secsOK {
		return nil
	}
	t := time.Unix(int64(days)*86400, 0).UTC().Add(time.Duration(secs) * 100 * time.Microsecond)
	return []Value{{channel.CodeDateTime, units.At(t)}}
}

// 127257: SID, yaw, pitch, roll.
func decodeAttitude(c *BitCursor) []Value {
	c.Skip(8)
	yaw, yawOK := c.Signed(16)
	pitch, pitchOK := c.Signed(16)
	roll, rollOK := c.Signed(16)
	if !yawOK || !pitchOK || !rollOK {
		return nil
	}
	return []Value{{channel.CodeOrient, units.Orientation{
		Heading: units.Radians(float64(yaw) * radRes).Normalized(),
		Pitch:   units.Radians(float64(pitch) * radRes),
		Roll:    units.Radians(float64(roll) * radRes),
	}}}
}
