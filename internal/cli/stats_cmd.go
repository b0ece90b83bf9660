package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/contract"
)

func newStatsCmd(app *App) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "stats [TEMPLATE]",
		Short: "Show per-template progress, compliance or issuance figures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := app.templateStatsUseCase()
			if len(args) == 1 {
				id, err := resolveTemplateID(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}
				s, err := uc.Stats(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStats([]contract.TemplateStats{*s}))
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatusCounts(s.ByStatus))
				return nil
			}
			all, err := uc.AllStats(cmd.Context(), archived)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStats(all))
			return nil
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "Include archived templates")
	return cmd
}
