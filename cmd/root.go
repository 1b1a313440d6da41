package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/acdcgrid/ghds/app"
	"github.com/acdcgrid/ghds/config"
)

var (
	cfgPath string
	dateArg string
)

var rootCmd = &cobra.Command{
	Use:   "ghds",
	Short: "Generation and load dispatch scenario generator",
	Long: "ghds builds feasible multi-zone dispatch scenarios from historical " +
		"NYISO operating data, scaled through an AC power-flow feasibility envelope.",
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVarP(&dateArg, "date", "d", "", "historical date (YYYY-MM-DD, default yesterday)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
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

	res, err := svc.Run(ctx, date)
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s generated for %s (%d timesteps)\n",
		res.Scenario.RunID, date.Format("2006-01-02"), len(res.Scenario.Timestamps))
	return nil
}

// targetDate parses the --date flag, defaulting to yesterday so the feeds
// are guaranteed complete.
func targetDate() (time.Time, error) {
	if dateArg == "" {
		return time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse("2006-01-02", dateArg)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateArg, err)
	}
	return date, nil
}
