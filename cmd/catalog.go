package main

import (
	"fmt"

	"github.com/okian/gameaccess/internal/domain/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the games every profile is classified against",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, g := range catalog.Default().Games() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, g); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
