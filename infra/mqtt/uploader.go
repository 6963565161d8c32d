package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/monitoring"
	"github.com/navbus/navbus/core/units"
	"github.com/navbus/navbus/infra/logger"
)

// Publisher sends a payload on a topic. *Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
}

// UploaderOptions tunes the telemetry uploader.
type UploaderOptions struct {
	TopicPrefix string
	Interval    time.Duration
	MaxAge      time.Duration
	Retain      bool
}

func (o *UploaderOptions) setDefaults() {
	if o.TopicPrefix == "" {
		o.TopicPrefix = "navbus"
	}
	o.TopicPrefix = strings.TrimSuffix(o.TopicPrefix, "/")
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.MaxAge <= 0 {
		o.MaxAge = 5 * time.Second
	}
}

// Message is the JSON payload published for one channel.
type Message struct {
	Channel string          `json:"channel"`
	Source  string          `json:"source"`
	Time    time.Time       `json:"time"`
	Value   json.RawMessage `json:"value"`
	Display *float64        `json:"display,omitempty"`
}

// Uploader periodically publishes the fresh winning value of every channel
// to <prefix>/<CHANNEL>. A channel is sent again only once its winning
// (source, sample time) changed.
type Uploader struct {
	pub  Publisher
	d    *dispatch.Dispatcher
	opts UploaderOptions
	log  logger.Logger
	sent map[channel.Code]sentMark
}

type sentMark struct {
	source string
	time   time.Time
}

// NewUploader creates an uploader reading from d.
func NewUploader(pub Publisher, d *dispatch.Dispatcher, opts UploaderOptions) *Uploader {
	opts.setDefaults()
	return &Uploader{
		pub:  pub,
		d:    d,
		opts: opts,
		log:  logger.New("telemetry-uploader"),
		sent: make(map[channel.Code]sentMark),
	}
}

// Topic returns the topic used for code.
func (u *Uploader) Topic(code channel.Code) string {
	return u.opts.TopicPrefix + "/" + code.String()
}

// Run publishes on every tick until ctx is canceled.
func (u *Uploader) Run(ctx context.Context) {
	defer monitoring.Recover()
	ticker := time.NewTicker(u.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := u.PublishOnce(); err != nil {
				u.log.Warnf("telemetry upload: %d sent, %v", n, err)
			}
		}
	}
}

// PublishOnce sends every fresh channel whose winning sample changed since
// the previous call. It returns the number of messages sent. Publishing
// continues past failures; the first error is returned.
func (u *Uploader) PublishOnce() (int, error) {
	var (
		sent     int
		firstErr error
	)
	for _, ch := range u.d.Channels() {
		if !ch.IsFresh(u.opts.MaxAge) {
			continue
		}
		s, ok := ch.LastSample()
		if !ok {
			continue
		}
		src, _ := ch.WinningSource()
		if prev, ok := u.sent[ch.Code()]; ok && prev.source == src && prev.time.Equal(s.Time) {
			continue
		}
		payload, err := encodeMessage(ch.Code(), src, s)
		if err == nil {
			err = u.pub.Publish(u.Topic(ch.Code()), payload, u.opts.Retain)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", ch.Code(), err)
			}
			continue
		}
		u.sent[ch.Code()] = sentMark{source: src, time: s.Time}
		sent++
	}
	return sent, firstErr
}

func encodeMessage(code channel.Code, source string, s dispatch.Sample) ([]byte, error) {
	raw, err := units.Encode(s.Value)
	if err != nil {
		return nil, err
	}
	msg := Message{Channel: code.String(), Source: source, Time: s.Time.UTC(), Value: raw}
	if f, ok := units.Scalar(s.Value); ok {
		msg.Display = &f
	}
	return json.Marshal(msg)
}
