package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acdcgrid/ghds/config"
	"github.com/acdcgrid/ghds/infra/nyiso"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one date of historical data and print a summary",
	Long: "fetch downloads the configured zones' integrated loads and the " +
		"interface flows for one date without running the pipeline, which is " +
		"useful for checking feed availability and zone naming.",
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	date, err := targetDate()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client := nyiso.NewClient(cfg.NYISO, nil)

	zones := append(append([]string{}, cfg.Areas.PeakAnchored.Zones...), cfg.Areas.Quadratic.Zones...)
	for _, zone := range zones {
		series, err := client.ZoneLoad(ctx, zone, date)
		if err != nil {
			return fmt.Errorf("zone %s: %w", zone, err)
		}
		fmt.Printf("%-12s %3d samples  peak %8.1f MW  mean %8.1f MW\n",
			zone, series.Len(), series.Peak(), series.Mean())
	}

	flows, err := client.InterfaceFlows(ctx, cfg.Interface.Name, date)
	if err != nil {
		return fmt.Errorf("interface %s: %w", cfg.Interface.Name, err)
	}
	flow := flows.FlowSeries()
	fmt.Printf("%-12s %3d samples  peak %8.1f MW  mean %8.1f MW\n",
		cfg.Interface.Name, flow.Len(), flow.Peak(), flow.Mean())
	return nil
}
