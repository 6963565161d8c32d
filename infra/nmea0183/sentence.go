// Package nmea0183 decodes NMEA 0183 sentences read from a serial line and
// publishes the values they carry on the dispatcher.
package nmea0183

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrChecksum is returned when a sentence checksum does not match.
	ErrChecksum = errors.New("nmea0183: checksum mismatch")
	// ErrUnsupported is returned for sentence types without a decoder.
	ErrUnsupported = errors.New("nmea0183: unsupported sentence")
	// ErrMalformed is returned for sentences that cannot be parsed.
	ErrMalformed = errors.New("nmea0183: malformed sentence")
)

// Sentence is a parsed, checksum verified sentence.
type Sentence struct {
	Talker string
	Type   string
	Fields []string
}

// Checksum returns the XOR of every byte of body, the text between the
// leading '$' and the '*'.
func Checksum(body string) byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return sum
}

// Parse parses one sentence such as "$IIMWV,045.0,R,12.3,N,A*hh". The
// checksum is verified when present. Trailing line terminators are ignored.
func Parse(line string) (Sentence, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 2 || (line[0] != '$' && line[0] != '!') {
		return Sentence{}, fmt.Errorf("%w: missing start delimiter", ErrMalformed)
	}
	body := line[1:]
	if star := strings.LastIndexByte(body, '*'); star >= 0 {
		want, err := strconv.ParseUint(body[star+1:], 16, 8)
		if err != nil || len(body)-star-1 != 2 {
			return Sentence{}, fmt.Errorf("%w: bad checksum field %q", ErrMalformed, body[star+1:])
		}
		body = body[:star]
		if got := Checksum(body); got != byte(want) {
			return Sentence{}, fmt.Errorf("%w: got %02X want %02X", ErrChecksum, got, want)
		}
	}
	parts := strings.Split(body, ",")
	addr := parts[0]
	s := Sentence{Fields: parts[1:]}
	switch {
	case strings.HasPrefix(addr, "P"):
		s.Talker, s.Type = "P", addr[1:]
	case len(addr) == 5:
		s.Talker, s.Type = addr[:2], addr[2:]
	default:
		return Sentence{}, fmt.Errorf("%w: bad address %q", ErrMalformed, addr)
	}
	return s, nil
}

// Field returns field i, or "" when the sentence is shorter.
func (s Sentence) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return strings.TrimSpace(s.Fields[i])
}

// Float parses field i. ok is false for an empty field.
func (s Sentence) Float(i int) (v float64, ok bool, err error) {
	f := s.Field(i)
	if f == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s field %d: %v", ErrMalformed, s.Type, i, err)
	}
	return v, true, nil
}

func (s Sentence) String() string {
	return s.Talker + s.Type + "," + strings.Join(s.Fields, ",")
}
