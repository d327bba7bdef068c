package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "equity-report",
	Short: "Energy equity reports for census geographies",
	Long:  "Normalizes census tract, assisted housing and boundary data, then builds map, table and PDF reports for a tract, city, county, state or tribal area.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
