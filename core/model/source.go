package model

import (
	"fmt"
	"strings"
)

// Well known source names.
const (
	SourceNMEA0183     = "NMEA0183"
	SourceNMEA2000     = "NMEA2000"
	SourceReplayPrefix = "replay:"
)

// NMEA2000Source formats the source name of a CAN bus device from its 64-bit
// NAME field.
func NMEA2000Source(name uint64) string {
	return fmt.Sprintf("%s/%x", SourceNMEA2000, name)
}

// ReplaySource tags a source name as coming from a replayed log.
func ReplaySource(tag string) string {
	if strings.HasPrefix(tag, SourceReplayPrefix) {
		return tag
	}
	return SourceReplayPrefix + tag
}
