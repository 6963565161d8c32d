// Package events defines the events emitted on the internal event bus.
//
// Available event types:
//   - ValueEvent: the winning value of a channel changed
//   - SourceEvent: a source published on a channel for the first time
package events
