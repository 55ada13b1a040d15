package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bikeways/internal/boundary"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the attribute fields of the boundary file",
	Long:  "Prints every attribute name found on the boundary features, marking the one configured as the neighborhood name.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fields, err := boundary.Fields(cfg.Boundary.Path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, f := range fields {
			marker := "  "
			if f == cfg.Boundary.NameField {
				marker = "* "
			}
			fmt.Fprintln(out, marker+f)
		}
		return nil
	},
}
