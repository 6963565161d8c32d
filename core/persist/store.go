// Package persist records dispatcher samples to durable stores and replays
// them into a dispatcher.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/units"
)

// ErrUnknownChannel is returned when a record names a channel missing from
// the registry.
var ErrUnknownChannel = errors.New("unknown channel")

// Record is one persisted sample of a (channel, source) pair.
type Record struct {
	Session string          `json:"session,omitempty"`
	Channel string          `json:"channel"`
	Source  string          `json:"source"`
	Time    time.Time       `json:"time"`
	Value   json.RawMessage `json:"value"`
}

// NewRecord encodes a sample of code published by source.
func NewRecord(code channel.Code, source string, s dispatch.Sample) (Record, error) {
	raw, err := units.Encode(s.Value)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s/%s: %w", code, source, err)
	}
	return Record{Channel: code.String(), Source: source, Time: s.Time, Value: raw}, nil
}

// Decode returns the channel and the typed sample held by r.
func (r Record) Decode() (channel.Code, dispatch.Sample, error) {
	code, err := channel.Parse(r.Channel)
	if err != nil {
		return 0, dispatch.Sample{}, fmt.Errorf("%w: %q", ErrUnknownChannel, r.Channel)
	}
	v, err := units.Decode(code.Kind(), r.Value)
	if err != nil {
		return 0, dispatch.Sample{}, fmt.Errorf("record %s/%s: %w", r.Channel, r.Source, err)
	}
	return code, dispatch.Sample{Time: r.Time, Value: v}, nil
}

// Query defines filters for retrieving records. Zero fields match anything.
type Query struct {
	Start   time.Time
	End     time.Time
	Channel string
	Source  string
}

// Match reports whether r passes the filters.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Time.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Time.After(q.End) {
		return false
	}
	if q.Channel != "" && r.Channel != q.Channel {
		return false
	}
	return q.Source == "" || r.Source == q.Source
}

// Store persists Records and supports querying. Query results are ordered
// by time; records sharing a time keep their append order.
type Store interface {
	Append(ctx context.Context, recs []Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

func sortRecords(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })
}
