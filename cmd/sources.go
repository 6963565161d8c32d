package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/navbus/navbus/core/persist"
)

var sourcesChannel string

var sourcesCmd = &cobra.Command{
	Use:   "sources <store>",
	Short: "Summarize the sources recorded in a store",
	Args:  cobra.ExactArgs(1),
	RunE:  runSources,
}

func init() {
	sourcesCmd.Flags().StringVar(&sourcesChannel, "channel", "", "only summarize this channel")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	store, err := persist.Open(args[0])
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	recs, err := store.Query(ctx, persist.Query{Channel: sourcesChannel})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tSOURCE\tCOUNT\tFIRST\tLAST\tMEDIAN\tMAX GAP")
	for _, s := range persist.Summarize(recs) {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n", s.Channel, s.Source, s.Count,
			s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339), s.MedianInterval, s.MaxGap)
	}
	return w.Flush()
}
