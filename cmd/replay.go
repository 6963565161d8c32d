package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/persist"
	"github.com/navbus/navbus/infra/logger"
)

var (
	replayChannel  string
	replaySource   string
	replayTag      string
	replayPriority map[string]int
	replayAt       string
	replayTol      time.Duration
)

var replayCmd = &cobra.Command{
	Use:   "replay <store>",
	Short: "Load a recorded store and print the winning value of every channel",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayChannel, "channel", "", "only replay this channel")
	replayCmd.Flags().StringVar(&replaySource, "source", "", "only replay this source")
	replayCmd.Flags().StringVar(&replayTag, "tag", "", "tag replayed sources as replay:<tag>/<source>")
	replayCmd.Flags().StringToIntVar(&replayPriority, "priority", nil, "source priorities, e.g. NMEA0183=2")
	replayCmd.Flags().StringVar(&replayAt, "at", "", "print the winners' samples nearest to this RFC 3339 instant instead of the latest ones")
	replayCmd.Flags().DurationVar(&replayTol, "tolerance", 2*time.Second, "maximum distance to the --at instant")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	var at time.Time
	if replayAt != "" {
		var err error
		if at, err = time.Parse(time.RFC3339Nano, replayAt); err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}
	store, err := persist.Open(args[0])
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	d := dispatch.New(dispatch.Config{Priorities: replayPriority}, logger.New("replay"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	stats, err := persist.Replay(ctx, store, d, persist.ReplayOptions{
		Query: persist.Query{Channel: replayChannel, Source: replaySource},
		Tag:   replayTag,
	})
	if err != nil {
		return err
	}

	var snap map[channel.Code]dispatch.Reading
	if !at.IsZero() {
		snap = dispatch.Snapshot(d, at, replayTol)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tSOURCE\tTIME\tVALUE\tSOURCES")
	for _, ch := range d.Channels() {
		var r dispatch.Reading
		if snap != nil {
			var ok bool
			if r, ok = snap[ch.Code()]; !ok {
				continue
			}
		} else {
			src, ok := ch.WinningSource()
			if !ok {
				continue
			}
			s, _ := ch.LastSample()
			r = dispatch.Reading{Source: src, Sample: s}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\n", ch.Code(), r.Source, r.Sample.Time.Format(time.RFC3339), r.Sample.Value, len(ch.SourcesForChannel()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d records replayed, %d skipped, %d sources\n", stats.Records, stats.Skipped, stats.Pairs)
	return nil
}
