package main

import (
	"database/sql"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gaqzi/employee-reviews/internal/employees"
	"github.com/gaqzi/employee-reviews/internal/platform/database"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

func (c *cli) employeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"employee"},
		Short:   "Manage the employees that can be reviewed",
	}

	cmd.AddCommand(c.employeesAddCmd(), c.employeesListCmd())

	return cmd
}

func (c *cli) employeesAddCmd() *cobra.Command {
	var (
		e          employees.Employee
		department int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("department") {
				e.DepartmentID = sql.NullInt64{Int64: department, Valid: true}
			}

			return c.withRepository(cmd.Context(), func(_ *reviewing.Repository, db *database.DB) error {
				added, err := employees.NewSQLDirectory(db.DB).Add(cmd.Context(), e)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added employee %d: %s\n", added.ID, added.Name)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&e.Name, "name", "", "the employee's name")
	cmd.Flags().StringVar(&e.JobTitle, "job-title", "", "the employee's job title")
	cmd.Flags().Int64Var(&department, "department", 0, "id of the employee's department")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (c *cli) employeesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRepository(cmd.Context(), func(_ *reviewing.Repository, db *database.DB) error {
				all, err := employees.NewSQLDirectory(db.DB).All(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tNAME\tJOB TITLE")
				for _, e := range all {
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Name, e.JobTitle)
				}

				return tw.Flush()
			})
		},
	}
}
