package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/db"
	"github.com/sells-group/equity-report/internal/geospatial"
)

var publishSkipMigrate bool

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Load the artifacts into PostGIS",
	Long:  "Applies the equity schema migrations, then upserts tracts and boundaries and replaces the housing table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("publish"); err != nil {
			return err
		}
		ctx := cmd.Context()

		c, err := artifact.Load(ctx, cfg.Data.ArtifactDir, cfg.Extract.TargetSRID)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if !publishSkipMigrate {
			if err := geospatial.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		st, err := geospatial.NewPublisher(pool).Publish(ctx, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tracts=%d boundaries=%d housing=%d\n", st.Tracts, st.Boundaries, st.Housing)
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishSkipMigrate, "skip-migrate", false, "skip schema migrations")
	rootCmd.AddCommand(publishCmd)
}
