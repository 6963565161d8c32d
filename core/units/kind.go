package units

import (
	"encoding/json"
	"fmt"
)

// Kind identifies one of the quantity types at run time.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAngle
	KindVelocity
	KindLength
	KindDuration
	KindGeoPosition
	KindOrientation
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindAngle:
		return "angle"
	case KindVelocity:
		return "velocity"
	case KindLength:
		return "length"
	case KindDuration:
		return "duration"
	case KindGeoPosition:
		return "geo_position"
	case KindOrientation:
		return "orientation"
	case KindDateTime:
		return "date_time"
	default:
		return "unknown"
	}
}

// KindOf returns the Kind of the quantity type V.
func KindOf[V Quantity]() Kind {
	var zero V
	return KindOfValue(zero)
}

// KindOfValue returns the Kind of a dynamically typed value, or KindUnknown
// when v is not a quantity.
func KindOfValue(v any) Kind {
	switch v.(type) {
	case Angle:
		return KindAngle
	case Velocity:
		return KindVelocity
	case Length:
		return KindLength
	case Duration:
		return KindDuration
	case GeoPosition:
		return KindGeoPosition
	case Orientation:
		return KindOrientation
	case DateTime:
		return KindDateTime
	default:
		return KindUnknown
	}
}

// Encode serializes a quantity to JSON.
func Encode(v any) (json.RawMessage, error) {
	if KindOfValue(v) == KindUnknown {
		return nil, fmt.Errorf("units: %T is not a quantity", v)
	}
	return json.Marshal(v)
}

// Decode parses a value of kind k previously produced by Encode.
func Decode(k Kind, data []byte) (any, error) {
	switch k {
	case KindAngle:
		return decodeAs[Angle](data)
	case KindVelocity:
		return decodeAs[Velocity](data)
	case KindLength:
		return decodeAs[Length](data)
	case KindDuration:
		return decodeAs[Duration](data)
	case KindGeoPosition:
		return decodeAs[GeoPosition](data)
	case KindOrientation:
		return decodeAs[Orientation](data)
	case KindDateTime:
		return decodeAs[DateTime](data)
	default:
		return nil, fmt.Errorf("units: cannot decode kind %s", k)
	}
}

func decodeAs[V Quantity](data []byte) (any, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KindOf[V](), err)
	}
	return v, nil
}

// Scalar projects a quantity on a single number in display units: degrees,
// knots, meters, seconds or Unix seconds. Positions and orientations have no
// scalar projection.
func Scalar(v any) (float64, bool) {
	switch q := v.(type) {
	case Angle:
		return q.Degrees(), true
	case Velocity:
		return q.Knots(), true
	case Length:
		return q.Meters(), true
	case Duration:
		return q.Seconds(), true
	case DateTime:
		return float64(q) / 1e9, true
	default:
		return 0, false
	}
}
