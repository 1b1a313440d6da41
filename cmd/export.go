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
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate a scenario and write the CSV/JSON bundle",
	Long: "export runs the full pipeline for one date and writes the scenario " +
		"files into the given directory, overriding the configured one.",
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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
	if exportDir != "" {
		cfg.Export.Dir = exportDir
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Run(ctx, date)
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s written to %s\n", res.Scenario.RunID, cfg.Export.Dir)
	return nil
}
