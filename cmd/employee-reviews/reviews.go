package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gaqzi/employee-reviews/internal/platform/database"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

func (c *cli) reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reviews",
		Aliases: []string{"review"},
		Short:   "Create, list, change, and delete reviews",
	}

	cmd.AddCommand(
		c.reviewsCreateCmd(),
		c.reviewsListCmd(),
		c.reviewsShowCmd(),
		c.reviewsUpdateCmd(),
		c.reviewsDeleteCmd(),
	)

	return cmd
}

func (c *cli) reviewsCreateCmd() *cobra.Command {
	var year, summary, employee string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a review for an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
				// Numbers are passed on unparsed so the repository reports what's wrong with them.
				review, err := repo.CreateFromValues(cmd.Context(), json.Number(year), summary, json.Number(employee))
				if err != nil {
					return err
				}

				return printReview(cmd.OutOrStdout(), review)
			})
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "year the review is for")
	cmd.Flags().StringVar(&summary, "summary", "", "what the review says")
	cmd.Flags().StringVar(&employee, "employee", "", "id of the employee being reviewed")

	return cmd
}

func (c *cli) reviewsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
				reviews, err := repo.All(cmd.Context())
				if err != nil {
					return err
				}

				for _, r := range reviews {
					if err := printReview(cmd.OutOrStdout(), r); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

func (c *cli) reviewsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
				review, err := findReview(cmd, repo, args[0])
				if err != nil {
					return err
				}

				return printReview(cmd.OutOrStdout(), review)
			})
		},
	}
}

func (c *cli) reviewsUpdateCmd() *cobra.Command {
	var (
		year     int
		summary  string
		employee int64
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a review, only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
				review, err := findReview(cmd, repo, args[0])
				if err != nil {
					return err
				}

				if cmd.Flags().Changed("year") {
					review.Year = year
				}
				if cmd.Flags().Changed("summary") {
					review.Summary = summary
				}
				if cmd.Flags().Changed("employee") {
					if err := repo.SetEmployeeID(cmd.Context(), review, employee); err != nil {
						return err
					}
				}

				if err := repo.Update(cmd.Context(), review); err != nil {
					return err
				}

				return printReview(cmd.OutOrStdout(), review)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year the review is for")
	cmd.Flags().StringVar(&summary, "summary", "", "what the review says")
	cmd.Flags().Int64Var(&employee, "employee", 0, "id of the employee being reviewed")

	return cmd
}

func (c *cli) reviewsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepository(cmd.Context(), func(repo *reviewing.Repository, _ *database.DB) error {
				review, err := findReview(cmd, repo, args[0])
				if err != nil {
					return err
				}

				id := review.ID
				if err := repo.Delete(cmd.Context(), review); err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted review %d\n", id)
				return err
			})
		},
	}
}

func findReview(cmd *cobra.Command, repo *reviewing.Repository, arg string) (*reviewing.Review, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid review id %q", arg)
	}

	review, err := repo.FindByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, fmt.Errorf("review %d: %w", id, reviewing.ErrNotFound)
	}

	return review, nil
}

func printReview(w io.Writer, r *reviewing.Review) error {
	_, err := fmt.Fprintln(w, r.String())
	return err
}
