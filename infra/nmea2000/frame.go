package nmea2000

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frame is one CAN frame.
type Frame struct {
	Time      time.Time
	Interface string
	ID        uint32
	Data      []byte
}

// Header is the decoded 29-bit identifier of an NMEA 2000 frame.
type Header struct {
	Priority    uint8
	PGN         uint32
	Source      uint8
	Destination uint8
}

// BroadcastAddress is the destination of PDU2 and broadcast PDU1 frames.
const BroadcastAddress = 0xFF

// ParseID splits an extended CAN identifier. PDU1 format PGNs (PF < 240)
// carry a destination address in their low byte, which is not part of the
// PGN.
func ParseID(id uint32) Header {
	h := Header{
		Priority:    uint8(id>>26) & 0x7,
		Source:      uint8(id),
		Destination: BroadcastAddress,
	}
	pgn := (id >> 8) & 0x3FFFF
	if pf := uint8(pgn >> 8); pf < 240 {
		h.Destination = uint8(pgn)
		pgn &^= 0xFF
	}
	h.PGN = pgn
	return h
}

// Header decodes the frame identifier.
func (f Frame) Header() Header { return ParseID(f.ID) }

// ParseCandump parses a line written by `candump -l`:
//
//	(1457033416.123456) can0 09F80102#FF7F0A3B00000000
//
// Remote and CAN FD frames are rejected.
func ParseCandump(line string) (Frame, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Frame{}, fmt.Errorf("candump: expected 3 fields, got %d", len(fields))
	}
	ts := fields[0]
	if len(ts) < 3 || ts[0] != '(' || ts[len(ts)-1] != ')' {
		return Frame{}, fmt.Errorf("candump: bad timestamp %q", ts)
	}
	t, err := parseEpoch(ts[1 : len(ts)-1])
	if err != nil {
		return Frame{}, err
	}
	idStr, dataStr, found := strings.Cut(fields[2], "#")
	if !found || strings.HasPrefix(dataStr, "#") || strings.HasPrefix(dataStr, "R") {
		return Frame{}, fmt.Errorf("candump: unsupported frame %q", fields[2])
	}
	id, err := strconv.ParseUint(idStr, 16, 32)
	if err != nil || id > 0x1FFFFFFF {
		return Frame{}, fmt.Errorf("candump: bad identifier %q", idStr)
	}
	data, err := hex.DecodeString(dataStr)
	if err != nil || len(data) > 8 {
		return Frame{}, fmt.Errorf("candump: bad payload %q", dataStr)
	}
	return Frame{Time: t, Interface: fields[1], ID: uint32(id), Data: data}, nil
}

// parseEpoch parses "seconds.micros" without going through float64.
func parseEpoch(s string) (time.Time, error) {
	secStr, fracStr, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("candump: bad timestamp %q", s)
	}
	var nsec int64
	if fracStr != "" {
		if len(fracStr) > 9 {
			fracStr = fracStr[:9]
		}
		frac, err := strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("candump: bad timestamp %q", s)
		}
		for i := len(fracStr); i < 9; i++ {
			frac *= 10
		}
		nsec = frac
	}
	return time.Unix(sec, nsec).UTC(), nil
}
