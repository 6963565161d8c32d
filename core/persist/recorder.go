package persist

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/logger"
	"github.com/navbus/navbus/core/monitoring"
)

// Recorder copies the samples retained by a dispatcher into a Store.
//
// Each flush walks every (channel, source) pair and picks up the samples
// newer than the last one recorded for that pair. A source publishing more
// than the history capacity between two flushes loses the overflow; the
// winning source of each channel is additionally collected on every value
// change so it is recorded without gaps.
type Recorder struct {
	d        *dispatch.Dispatcher
	store    Store
	log      logger.Logger
	interval time.Duration
	session  string

	mu      sync.Mutex
	marks   map[dispatch.SourceKey]time.Time
	pending []Record
	subs    map[channel.Code]*dispatch.Subscription
}

// NewRecorder creates a Recorder flushing every interval. Records carry a
// fresh session id.
func NewRecorder(d *dispatch.Dispatcher, store Store, interval time.Duration, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Recorder{
		d:        d,
		store:    store,
		log:      log,
		interval: interval,
		session:  uuid.NewString(),
		marks:    make(map[dispatch.SourceKey]time.Time),
		subs:     make(map[channel.Code]*dispatch.Subscription),
	}
}

// Session returns the id stamped on every record.
func (r *Recorder) Session() string { return r.session }

// Run flushes periodically until ctx is done, then flushes one last time
// and unsubscribes.
func (r *Recorder) Run(ctx context.Context) {
	defer monitoring.Recover()
	defer r.Close()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				r.log.Errorf("flush: %v", err)
				monitoring.CaptureException(err, map[string]string{"component": "recorder"})
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := r.Flush(flushCtx); err != nil {
				r.log.Errorf("final flush: %v", err)
			}
			cancel()
			return
		}
	}
}

// Flush collects new samples and appends them to the store. It returns the
// number of records written. Records are kept for the next flush when the
// store fails.
func (r *Recorder) Flush(ctx context.Context) (int, error) {
	r.mu.Lock()
	r.watchNewChannels()
	for _, key := range r.d.AllSources() {
		r.collect(key)
	}
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}
	if err := r.store.Append(ctx, batch); err != nil {
		r.mu.Lock()
		r.pending = append(batch, r.pending...)
		r.mu.Unlock()
		return 0, err
	}
	r.log.Debugf("recorded %d samples", len(batch))
	return len(batch), nil
}

// Close unsubscribes from every channel.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, sub := range r.subs {
		sub.Close()
		delete(r.subs, code)
	}
}

// watchNewChannels subscribes to channels created since the last call.
// Caller holds r.mu.
func (r *Recorder) watchNewChannels() {
	for _, ch := range r.d.Channels() {
		if _, ok := r.subs[ch.Code()]; ok {
			continue
		}
		r.subs[ch.Code()] = ch.Watch(r.onChange)
	}
}

func (r *Recorder) onChange(ch dispatch.Channel) {
	src, ok := ch.WinningSource()
	if !ok {
		return
	}
	r.mu.Lock()
	r.collect(dispatch.SourceKey{Code: ch.Code(), Source: src})
	r.mu.Unlock()
}

// collect queues the samples of key newer than its mark. Caller holds r.mu.
func (r *Recorder) collect(key dispatch.SourceKey) {
	mark, seen := r.marks[key]
	for _, s := range r.d.Channel(key.Code).Samples(key.Source) {
		if seen && !s.Time.After(mark) {
			continue
		}
		rec, err := NewRecord(key.Code, key.Source, s)
		if err != nil {
			r.log.Warnf("skip sample: %v", err)
			continue
		}
		rec.Session = r.session
		r.pending = append(r.pending, rec)
		mark, seen = s.Time, true
	}
	if seen {
		r.marks[key] = mark
	}
}
