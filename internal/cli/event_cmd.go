package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/domain"
)

func newEventCmd(app *App) *cobra.Command {
	var (
		preview  bool
		snapshot domain.Employee
	)
	cmd := &cobra.Command{
		Use:   "event EMPLOYEE_ID hire|job_change|location_change",
		Short: "Feed an employee lifecycle event to the auto-assign rules",
		Long: `Feed an employee lifecycle event to the auto-assign rules. Attribute flags
describe the employee as of the event and update the stored record; without
them the stored record is used.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := domain.EmployeeEvent{EmployeeID: args[0], Type: domain.Trigger(args[1])}
			if cmd.Flags().Changed("name") || cmd.Flags().Changed("title") ||
				cmd.Flags().Changed("work-location") || cmd.Flags().Changed("employee-role") ||
				cmd.Flags().Changed("manager") {
				snapshot.ID = args[0]
				ev.Snapshot = &snapshot
			}
			uc := app.employeeEventUseCase()
			run := uc.HandleEvent
			if preview {
				run = uc.Preview
			}
			p, err := run(cmd.Context(), ev)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRulePreview(p))
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "Show what would be assigned without assigning")
	cmd.Flags().StringVar(&snapshot.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&snapshot.JobTitle, "title", "", "Job title")
	cmd.Flags().StringVar(&snapshot.Location, "work-location", "", "Work location")
	cmd.Flags().StringVar(&snapshot.Role, "employee-role", "", "Role within the organisation")
	cmd.Flags().StringVar(&snapshot.ManagerID, "manager", "", "Manager's employee ID")
	return cmd
}
