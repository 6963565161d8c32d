package persist

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// SourceSummary describes the records of one (channel, source) pair.
type SourceSummary struct {
	Channel        string
	Source         string
	Count          int
	First          time.Time
	Last           time.Time
	MedianInterval time.Duration
	// MaxGap is the longest interval between two consecutive samples.
	MaxGap time.Duration
}

// Summarize groups records by (channel, source). The result is ordered by
// channel then source.
func Summarize(recs []Record) []SourceSummary {
	type key struct{ channel, source string }
	times := make(map[key][]time.Time)
	for _, r := range recs {
		k := key{r.Channel, r.Source}
		times[k] = append(times[k], r.Time)
	}
	out := make([]SourceSummary, 0, len(times))
	for k, ts := range times {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		s := SourceSummary{Channel: k.channel, Source: k.source, Count: len(ts), First: ts[0], Last: ts[len(ts)-1]}
		if len(ts) > 1 {
			gaps := make([]float64, len(ts)-1)
			for i := 1; i < len(ts); i++ {
				gaps[i-1] = ts[i].Sub(ts[i-1]).Seconds()
			}
			sort.Float64s(gaps)
			s.MedianInterval = seconds(stat.Quantile(0.5, stat.Empirical, gaps, nil))
			s.MaxGap = seconds(gaps[len(gaps)-1])
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Channel != out[j].Channel {
			return out[i].Channel < out[j].Channel
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
