package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/model"
)

var locationsLevel string

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the selectable locations for a level",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := model.ParseLevel(locationsLevel)
		if err != nil {
			return err
		}
		c, err := artifact.Load(cmd.Context(), cfg.Data.ArtifactDir, cfg.Extract.TargetSRID)
		if err != nil {
			return err
		}
		for _, name := range c.Names(level) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	locationsCmd.Flags().StringVar(&locationsLevel, "level", "county", "geography level: tract, city, county, state, tribe")
	rootCmd.AddCommand(locationsCmd)
}
