package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"bikeways/internal/database"
)

var storedCmd = &cobra.Command{
	Use:   "stored",
	Short: "Print the report of the latest run saved with --db-driver",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Store.Driver == "" {
			return eris.New("stored: no store.driver configured")
		}
		ctx := cmd.Context()

		db, err := database.NewDatabase(ctx, storeConfig(cfg))
		if err != nil {
			return eris.Wrap(err, "stored: open store")
		}
		defer func() { _ = db.Close() }()

		run, err := db.LatestRun(ctx)
		if err != nil {
			return err
		}
		if run == nil {
			return eris.New("stored: no runs recorded")
		}
		r, err := db.QueryReport(ctx, run.ID)
		if err != nil {
			return err
		}
		return r.Write(cmd.OutOrStdout(), cfg.Boundary.NameField)
	},
}

func init() {
	storedCmd.Flags().StringVar(&dbDriverFlag, "db-driver", "", "database driver (sqlite or oracle)")
	storedCmd.Flags().StringVar(&dbDSNFlag, "db-dsn", "", "database connection string")
}
