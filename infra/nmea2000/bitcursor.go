// Package nmea2000 decodes NMEA 2000 PGNs from candump logs and publishes
// the values on the dispatcher.
package nmea2000

import (
	"errors"
	"math"
)

// ErrShortPayload is returned when a field lies beyond the frame data.
var ErrShortPayload = errors.New("nmea2000: payload too short")

// BitCursor reads bit fields at increasing offsets of a payload.
type BitCursor struct {
	data []byte
	pos  int
	err  error
}

// NewBitCursor returns a cursor at bit 0 of data.
func NewBitCursor(data []byte) *BitCursor { return &BitCursor{data: data} }

// Pos returns the current bit offset.
func (c *BitCursor) Pos() int { return c.pos }

// Seek moves to an absolute bit offset.
func (c *BitCursor) Seek(bit int) { c.pos = bit }

// Skip advances by n bits.
func (c *BitCursor) Skip(n int) { c.pos += n }

// Err returns ErrShortPayload once a read went past the payload.
func (c *BitCursor) Err() error { return c.err }

// Bits reads n bits, at most 64. With lsbFirst the first byte holds the
// least significant bits, as NMEA 2000 fields do; otherwise bits are taken
// most significant first, bit 7 of each byte leading.
func (c *BitCursor) Bits(n int, lsbFirst bool) uint64 {
	if n <= 0 || n > 64 {
		return 0
	}
	if c.pos+n > len(c.data)*8 {
		c.err = ErrShortPayload
		c.pos += n
		return 0
	}
	var v uint64
	for i := 0; i < n; i++ {
		p := c.pos + i
		var bit uint64
		if lsbFirst {
			bit = uint64(c.data[p/8]>>(p%8)) & 1
			v |= bit << i
		} else {
			bit = uint64(c.data[p/8]>>(7-p%8)) & 1
			v = v<<1 | bit
		}
	}
	c.pos += n
	return v
}

// Unsigned reads an n-bit little endian unsigned field. ok is false when the
// field holds one of the reserved top values meaning "not available".
func (c *BitCursor) Unsigned(n int) (v uint64, ok bool) {
	v = c.Bits(n, true)
	if c.err != nil {
		return 0, false
	}
	return v, !unsignedReserved(v, n)
}

// Signed reads an n-bit little endian two's complement field. ok is false
// for the reserved top positive values.
func (c *BitCursor) Signed(n int) (v int64, ok bool) {
	raw := c.Bits(n, true)
	if c.err != nil {
		return 0, false
	}
	if n < 64 && raw&(1<<(n-1)) != 0 {
		v = int64(raw) - int64(1)<<n
	} else {
		v = int64(raw)
	}
	maxPos := int64(math.MaxInt64)
	if n < 64 {
		maxPos = int64(1)<<(n-1) - 1
	}
	if (n >= 4 && v > maxPos-3) || (n < 4 && v == maxPos) {
		return v, false
	}
	return v, true
}

// UnsignedMSB reads an n-bit field most significant bit first.
func (c *BitCursor) UnsignedMSB(n int) uint64 { return c.Bits(n, false) }

// unsignedReserved reports whether v is "not available", "out of range" or
// "reserved". Fields narrower than four bits only reserve all ones.
func unsignedReserved(v uint64, n int) bool {
	max := uint64(math.MaxUint64)
	if n < 64 {
		max = uint64(1)<<n - 1
	}
	if n < 4 {
		return v == max
	}
	return v > max-3
}
