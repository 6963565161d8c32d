// Package dispatch is the in-process value distribution bus. Producers
// publish timestamped quantities per (channel, source); each channel keeps a
// bounded history per source, arbitrates between sources by priority and
// notifies listeners synchronously when its winning value changes.
//
// Typed access goes through channel keys:
//
//	d := dispatch.New(dispatch.Config{}, log)
//	dispatch.PublishValue(d, channel.AWA, "NMEA0183", units.Degrees(35))
//	awa, ok := dispatch.Val(d, channel.AWA)
package dispatch
