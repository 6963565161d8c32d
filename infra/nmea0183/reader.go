package nmea0183

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/logger"
	"github.com/navbus/navbus/core/model"
)

// Stats counts the sentences handled by a Reader.
type Stats struct {
	Sentences   uint64
	Values      uint64
	Checksum    uint64
	Unsupported uint64
	Malformed   uint64
}

// Reader publishes the values decoded from a sentence stream under one
// fixed source name.
type Reader struct {
	d      *dispatch.Dispatcher
	source string
	log    logger.Logger

	sentences, values, checksum, unsupported, malformed atomic.Uint64
}

// NewReader creates a reader publishing on d. An empty source defaults to
// "NMEA0183".
func NewReader(d *dispatch.Dispatcher, source string, log logger.Logger) *Reader {
	if source == "" {
		source = model.SourceNMEA0183
	}
	if log == nil {
		log = logger.Nop
	}
	return &Reader{d: d, source: source, log: log}
}

// Source returns the source name used for every published value.
func (r *Reader) Source() string { return r.source }

// Stats returns a snapshot of the counters.
func (r *Reader) Stats() Stats {
	return Stats{
		Sentences:   r.sentences.Load(),
		Values:      r.values.Load(),
		Checksum:    r.checksum.Load(),
		Unsupported: r.unsupported.Load(),
		Malformed:   r.malformed.Load(),
	}
}

// HandleSentence parses, decodes and publishes one sentence. Values are
// stamped with the dispatcher clock at reception.
func (r *Reader) HandleSentence(line string) error {
	r.sentences.Add(1)
	s, err := Parse(line)
	if err == nil {
		var vals []Value
		vals, err = Decode(s)
		if err == nil {
			now := r.d.Now()
			for _, v := range vals {
				r.d.PublishAny(v.Code, r.source, v.Value, now)
			}
			r.values.Add(uint64(len(vals)))
			return nil
		}
	}
	switch {
	case errors.Is(err, ErrChecksum):
		r.checksum.Add(1)
	case errors.Is(err, ErrUnsupported):
		r.unsupported.Add(1)
	default:
		r.malformed.Add(1)
	}
	return err
}

// Run reads rd until EOF, a read error or cancellation. Decode errors are
// logged and skipped; unsupported sentences are ignored silently.
func (r *Reader) Run(ctx context.Context, rd io.Reader) error {
	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(chunks)
		buf := make([]byte, 256)
		for {
			n, err := rd.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	var (
		f     Framer
		lines []string
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				select {
				case err := <-readErr:
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				default:
					return ctx.Err()
				}
			}
			lines = f.Feed(chunk, lines[:0])
			for _, line := range lines {
				if err := r.HandleSentence(line); err != nil && !errors.Is(err, ErrUnsupported) {
					r.log.Warnf("nmea0183 %q: %v", line, err)
				}
			}
		}
	}
}
