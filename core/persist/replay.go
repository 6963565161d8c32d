package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/model"
)

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	// Query selects the records to load.
	Query Query
	// Tag, when set, renames every source S to "replay:<Tag>/S" so replayed
	// values never mix with live ones.
	Tag string
}

// ReplayStats summarizes a replay.
type ReplayStats struct {
	Records int
	Skipped int
	Pairs   int
}

// Replay loads records from store into d, inserting the samples of each
// (channel, source) pair as one batch. Records naming an unknown channel are
// skipped; any other decode failure aborts the replay.
func Replay(ctx context.Context, store Store, d *dispatch.Dispatcher, opts ReplayOptions) (ReplayStats, error) {
	var stats ReplayStats
	recs, err := store.Query(ctx, opts.Query)
	if err != nil {
		return stats, fmt.Errorf("query store: %w", err)
	}
	var order []dispatch.SourceKey
	groups := make(map[dispatch.SourceKey][]dispatch.Sample)
	for _, rec := range recs {
		code, s, err := rec.Decode()
		if errors.Is(err, ErrUnknownChannel) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, err
		}
		src := rec.Source
		if opts.Tag != "" {
			src = model.ReplaySource(opts.Tag + "/" + rec.Source)
		}
		key := dispatch.SourceKey{Code: code, Source: src}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
		stats.Records++
	}
	for _, key := range order {
		d.InsertAny(key.Code, key.Source, groups[key])
	}
	stats.Pairs = len(order)
	return stats, nil
}
