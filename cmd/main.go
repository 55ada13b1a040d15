package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bikeways/internal/config"
)

var cfg *config.Config

// Flags shared by every subcommand. Empty values leave the config untouched.
var (
	boundaryFlag  string
	nameFieldFlag string
	lanesFlag     string
	workersFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "bikeways",
	Short: "Count bike lanes per neighborhood",
	Long:  "Joins bike-lane points to neighborhood polygons and reports lane counts by neighborhood and construction year.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return err
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
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&boundaryFlag, "boundary", "", "neighborhood boundary file (.geojson or .shp)")
	pf.StringVar(&nameFieldFlag, "name-field", "", "boundary attribute holding the neighborhood name")
	pf.StringVar(&lanesFlag, "lanes", "", "delimited bike-lane file")
	pf.IntVar(&workersFlag, "workers", 0, "spatial join workers (0 = one per CPU)")

	rootCmd.AddCommand(countCmd, joinCmd, fieldsCmd, storedCmd)
}

// applyFlags overrides config values with flags the user actually set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("boundary") {
		c.Boundary.Path = boundaryFlag
	}
	if flags.Changed("name-field") {
		c.Boundary.NameField = nameFieldFlag
	}
	if flags.Changed("lanes") {
		c.Lanes.Path = lanesFlag
	}
	if flags.Changed("workers") {
		c.Join.Workers = workersFlag
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		c.Output.Path = outputFlag
	}
	if flags.Lookup("db-driver") != nil && flags.Changed("db-driver") {
		c.Store.Driver = dbDriverFlag
	}
	if flags.Lookup("db-dsn") != nil && flags.Changed("db-dsn") {
		c.Store.DSN = dbDSNFlag
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
