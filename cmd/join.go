package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"bikeways/internal/report"
)

var joinedFlag string

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Write every bike lane with the neighborhood containing it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		columns, joined, err := loadAndJoin(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if joinedFlag != "-" {
			f, err := os.Create(joinedFlag)
			if err != nil {
				return eris.Wrapf(err, "join: create %s", joinedFlag)
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		return report.WriteJoined(w, columns, joined)
	},
}

func init() {
	joinCmd.Flags().StringVar(&joinedFlag, "joined", "-", "joined lanes CSV path (- for stdout)")
}
