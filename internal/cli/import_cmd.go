package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load templates and employees from a YAML or JSON catalog",
		Long: `Load templates and employees from a YAML or JSON catalog. Templates are
matched by name and updated in place; employees are matched by ID. Nothing is
written unless the whole file is valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.importCatalogUseCase().ImportCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Templates: %d created, %d updated. Employees: %d saved.\n",
				res.TemplatesCreated, res.TemplatesUpdated, res.EmployeesUpserted)
			return nil
		},
	}
}
