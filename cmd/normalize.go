package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/equity-report/internal/extract"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw sources into canonical artifacts",
	Long:  "Reads the raw tract, QCT, housing and boundary sources, reprojects them to the target CRS and writes the five GeoJSON artifacts plus the carto shapefile.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("normalize"); err != nil {
			return err
		}
		sum, err := extract.Run(cmd.Context(), extract.OptionsFromConfig(cfg))
		if err != nil {
			return err
		}

		datasets := make([]string, 0, len(sum.Written))
		for name := range sum.Written {
			datasets = append(datasets, name)
		}
		sort.Strings(datasets)
		for _, name := range datasets {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s written=%d skipped=%d\n", name, sum.Written[name], sum.Skipped[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
