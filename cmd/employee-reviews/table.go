package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaqzi/employee-reviews/internal/platform/database"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

func (c *cli) tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage the reviews table",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create the reviews table if it doesn't exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
					if err := repo.CreateTable(cmd.Context()); err != nil {
						return err
					}

					_, err := fmt.Fprintln(cmd.OutOrStdout(), "reviews table created")
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop the reviews table and every review in it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
					if err := repo.DropTable(cmd.Context()); err != nil {
						return err
					}

					_, err := fmt.Fprintln(cmd.OutOrStdout(), "reviews table dropped")
					return err
				})
			},
		},
	)

	return cmd
}
