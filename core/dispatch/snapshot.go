package dispatch

import (
	"time"

	"github.com/navbus/navbus/core/channel"
)

// Reading is one entry of a Snapshot.
type Reading struct {
	Source string
	Sample Sample
}

// Snapshot collects, for each requested channel, the sample of its winning
// source nearest to t. Channels without a winner or without a sample within
// tolerance are left out. With no codes every existing channel is read.
func Snapshot(d *Dispatcher, t time.Time, tolerance time.Duration, codes ...channel.Code) map[channel.Code]Reading {
	var chans []Channel
	if len(codes) == 0 {
		chans = d.Channels()
	} else {
		for _, code := range codes {
			if ch, ok := d.lookup(code); ok {
				chans = append(chans, ch)
			}
		}
	}
	out := make(map[channel.Code]Reading, len(chans))
	for _, ch := range chans {
		src, ok := ch.WinningSource()
		if !ok {
			continue
		}
		if s, ok := ch.SampleAt(src, t, tolerance); ok {
			out[ch.Code()] = Reading{Source: src, Sample: s}
		}
	}
	return out
}
