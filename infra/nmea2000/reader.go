package nmea2000

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/logger"
	"github.com/navbus/navbus/core/model"
)

// Stats counts the frames handled by a Reader.
type Stats struct {
	Frames      uint64
	Values      uint64
	Claims      uint64
	Unsupported uint64
	Errors      uint64
}

// Reader publishes values decoded from CAN frames. Each device publishes
// under its own source name.
type Reader struct {
	d     *dispatch.Dispatcher
	table *AddressTable
	log   logger.Logger

	frames, values, claims, unsupported, errs atomic.Uint64
}

// NewReader creates a reader publishing on d.
func NewReader(d *dispatch.Dispatcher, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop
	}
	return &Reader{d: d, table: NewAddressTable(), log: log}
}

// Addresses returns the address claim table.
func (r *Reader) Addresses() *AddressTable { return r.table }

// Stats returns a snapshot of the counters.
func (r *Reader) Stats() Stats {
	return Stats{
		Frames:      r.frames.Load(),
		Values:      r.values.Load(),
		Claims:      r.claims.Load(),
		Unsupported: r.unsupported.Load(),
		Errors:      r.errs.Load(),
	}
}

// HandleFrame decodes f and publishes its values, stamped with the frame
// time when it has one and with the dispatcher clock otherwise.
func (r *Reader) HandleFrame(f Frame) error {
	r.frames.Add(1)
	h := f.Header()
	if h.PGN == PGNAddressClaim {
		if err := r.table.Claim(h.Source, f.Data); err != nil {
			r.errs.Add(1)
			return err
		}
		r.claims.Add(1)
		r.log.Debugf("address %d claimed by %s", h.Source, r.table.Source(h.Source))
		return nil
	}
	vals, err := Decode(h.PGN, f.Data)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			r.unsupported.Add(1)
		} else {
			r.errs.Add(1)
		}
		return err
	}
	t := f.Time
	if !model.IsDefined(t) {
		t = r.d.Now()
	}
	src := r.table.Source(h.Source)
	for _, v := range vals {
		r.d.PublishAny(v.Code, src, v.Value, t)
	}
	r.values.Add(uint64(len(vals)))
	return nil
}

// Run reads candump lines from rd until EOF or cancellation. Bad lines are
// logged and skipped.
func (r *Reader) Run(ctx context.Context, rd io.Reader) error {
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f, err := ParseCandump(line)
		if err != nil {
			r.errs.Add(1)
			r.log.Warnf("%v", err)
			continue
		}
		if err := r.HandleFrame(f); err != nil && !errors.Is(err, ErrUnsupported) {
			r.log.Warnf("frame %08X: %v", f.ID, err)
		}
	}
	return sc.Err()
}
