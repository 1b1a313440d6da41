package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acdcgrid/ghds/app"
	"github.com/acdcgrid/ghds/config"
	"github.com/acdcgrid/ghds/pkg/export"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate a scenario and print it as JSON",
	Long: "process runs the full pipeline for one date and writes the scenario " +
		"to stdout as JSON, without touching the export directory or the broker.",
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
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
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Runner.Run(ctx, date)
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, res.Scenario)
}
