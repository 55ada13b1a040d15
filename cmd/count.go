package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bikeways/internal/config"
	"bikeways/internal/database"
	"bikeways/internal/report"
	"bikeways/internal/types"
)

var (
	outputFlag   string
	dbDriverFlag string
	dbDSNFlag    string
	summaryFlag  bool
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Write lane counts by neighborhood and construction year to CSV",
	Long: `Joins every bike lane to the neighborhood containing it and writes one row per
neighborhood with a column per construction year, a total column and an
aaa_total column.

Examples:
  bikeways count
  bikeways count --boundary hoods.shp --name-field NAME --output counts.csv
  bikeways count --db-driver sqlite --db-dsn bikeways.db`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := runCount(cmd.Context(), cfg, summaryFlag)
		return err
	},
}

func init() {
	f := countCmd.Flags()
	f.StringVarP(&outputFlag, "output", "o", "", "report CSV path")
	f.StringVar(&dbDriverFlag, "db-driver", "", "also store results in a database (sqlite or oracle)")
	f.StringVar(&dbDSNFlag, "db-dsn", "", "database connection string")
	f.BoolVar(&summaryFlag, "summary", true, "print a summary table when stdout is a terminal")
}

// runCount executes the whole report pipeline and returns the report.
func runCount(ctx context.Context, c *config.Config, summary bool) (*report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	_, joined, err := loadAndJoin(ctx, c)
	if err != nil {
		return nil, err
	}

	r := report.Build(joined, c.Lanes.AAAValue)
	if err := r.WriteFile(c.Output.Path, c.Boundary.NameField); err != nil {
		return nil, err
	}
	zap.L().Info("report written",
		zap.String("path", c.Output.Path),
		zap.Int("neighborhoods", len(r.Rows)),
		zap.Int("years", len(r.Years)),
	)

	if c.Store.Driver != "" {
		if err := storeResults(ctx, c, joined, r); err != nil {
			return nil, err
		}
	}

	if summary {
		printSummary(os.Stdout, r, report.CountByNeighborhood(joined), len(joined))
	}
	return r, nil
}

func storeResults(ctx context.Context, c *config.Config, joined []types.JoinedLane, r *report.Report) error {
	db, err := database.NewDatabase(ctx, storeConfig(c))
	if err != nil {
		return eris.Wrap(err, "open store")
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	run, err := db.CreateRun(ctx, c.Boundary.Path, c.Lanes.Path, joined)
	if err != nil {
		return err
	}
	if err := db.InsertJoinedLanes(ctx, run.ID, joined); err != nil {
		return err
	}
	if err := db.InsertReport(ctx, run.ID, r); err != nil {
		return err
	}
	zap.L().Info("results stored",
		zap.String("driver", c.Store.Driver),
		zap.String("run_id", run.ID),
		zap.Int("matched", run.MatchedCount),
	)
	return nil
}

func storeConfig(c *config.Config) database.DBConfig {
	return database.DBConfig{
		Driver:         c.Store.Driver,
		DSN:            c.Store.DSN,
		Host:           c.Store.Host,
		Port:           c.Store.Port,
		Service:        c.Store.Service,
		Username:       c.Store.Username,
		Password:       c.Store.Password,
		WalletLocation: c.Store.WalletLocation,
	}
}
