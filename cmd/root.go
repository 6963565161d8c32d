package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/navbus/navbus/app"
	"github.com/navbus/navbus/config"
	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/infra/logger"
)

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "navbus",
	Short: "Merge boat instrument data from NMEA 0183 and NMEA 2000 sources",
	Long: `navbus reads NMEA 0183 sentences from a serial port and NMEA 2000 frames from a
candump log, keeps the recent samples of every (channel, source) pair, elects one source
per channel by priority, and records or uploads the winning values.`,
	SilenceUsage:      true,
	PersistentPreRunE: applyLogLevel,
	RunE:              run,
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels known to the dispatcher",
	Args:  cobra.NoArgs,
	RunE:  listChannels,
}

func init() {
	defaultCfg := os.Getenv("NAVBUS_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "/etc/navbus/config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "configuration file (env NAVBUS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.AddCommand(channelsCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func applyLogLevel(cmd *cobra.Command, args []string) error {
	if logLevel == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return fmt.Errorf("--log-level: unknown level %q", logLevel)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

func listChannels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tKIND\tDESCRIPTION")
	for _, code := range channel.Codes() {
		info, _ := code.Info()
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Kind, info.Description)
	}
	return w.Flush()
}
