package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/domain"
)

func newEmployeeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"emp"},
		Short:   "Maintain the employee read model used by rules and notifications",
	}
	cmd.AddCommand(newEmployeeUpsertCmd(app), newEmployeeListCmd(app))
	return cmd
}

func newEmployeeUpsertCmd(app *App) *cobra.Command {
	var e domain.Employee
	cmd := &cobra.Command{
		Use:   "upsert ID",
		Short: "Create or replace an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.ID = args[0]
			if err := app.Employees.Upsert(cmd.Context(), &e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", formatter.Bold(e.Name), e.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&e.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&e.JobTitle, "title", "", "Job title")
	cmd.Flags().StringVar(&e.Location, "work-location", "", "Work location")
	cmd.Flags().StringVar(&e.Role, "employee-role", "", "Role within the organisation")
	cmd.Flags().StringVar(&e.ManagerID, "manager", "", "Manager's employee ID")
	return cmd
}

func newEmployeeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := app.Employees.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(es) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No employees.")
				return nil
			}
			rows := make([][]string, 0, len(es))
			for _, e := range es {
				rows = append(rows, []string{e.ID, e.Name, e.JobTitle, e.Location, e.Role, e.ManagerID})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"ID", "NAME", "TITLE", "LOCATION", "ROLE", "MANAGER"}, rows))
			return nil
		},
	}
}
