package events

import (
	"time"

	"github.com/navbus/navbus/core/channel"
)

// ValueEvent is published when the winning value of a channel changes.
type ValueEvent struct {
	Code   channel.Code
	Source string
	Time   time.Time
	Value  any
}

// SourceEvent is published when a source publishes on a channel for the
// first time.
type SourceEvent struct {
	Code   channel.Code
	Source string
}
