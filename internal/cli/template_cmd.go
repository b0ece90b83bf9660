package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/domain"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage assignment templates",
	}
	cmd.AddCommand(
		newTemplateListCmd(app),
		newTemplateShowCmd(app),
		newTemplateCreateCmd(app),
		newTemplateArchiveCmd(app, true),
		newTemplateArchiveCmd(app, false),
		newTemplatePolicyCmd(app),
	)
	return cmd
}

func newTemplateListCmd(app *App) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Templates.List(cmd.Context(), archived)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateList(templates))
			return nil
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "Include archived templates")
	return cmd
}

func newTemplateShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|NAME",
		Short: "Show a template with its escalation ladder and rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateShow(t))
			return nil
		},
	}
}

func newTemplateCreateCmd(app *App) *cobra.Command {
	var (
		v           templateFormValues
		interactive bool
		verify      bool
		locations   []string
		roles       []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a template",
		Example: `  docket template create --name "Food Handler" --category certification --steps 3:remind,7:mark_refused
  docket template create --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if !app.interactive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				if err := templateForm(&v).Run(); err != nil {
					return err
				}
			}
			t, err := v.template(app.WarnWindowDays)
			if err != nil {
				return err
			}
			t.Permissions = domain.Permissions{Locations: nonEmpty(locations), Roles: nonEmpty(roles)}
			t.ApplyDefaults()
			if cmd.Flags().Changed("verify") {
				t.RequiresVerification = verify
			}
			if err := app.Templates.Create(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %s %s\n", formatter.Bold(t.Name), formatter.Dim(t.ID))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill the template in with a form")
	cmd.Flags().StringVar(&v.Name, "name", "", "Template name, unique ignoring case")
	cmd.Flags().StringVar(&v.Description, "description", "", "Description shown to recipients")
	cmd.Flags().StringVar(&v.Category, "category", "", "signing, certification, write_up or custom_form")
	cmd.Flags().StringVar(&v.TrackingMode, "tracking", "", "progress, compliance or issuance (defaults by category)")
	cmd.Flags().StringVar(&v.WarnWindow, "warn-window", "", "Days before expiry a certificate counts as expiring")
	cmd.Flags().BoolVar(&v.AllowDecline, "allow-decline", false, "Let recipients decline")
	cmd.Flags().BoolVar(&verify, "verify", false, "Require reviewer approval of submissions")
	cmd.Flags().StringVar(&v.Steps, "steps", "", "Escalation ladder as DAY:ACTION pairs")
	cmd.Flags().StringSliceVar(&locations, "allow-location", nil, "Locations whose staff may assign this template")
	cmd.Flags().StringSliceVar(&roles, "allow-role", nil, "Roles that may assign this template")
	return cmd
}

func newTemplateArchiveCmd(app *App, archive bool) *cobra.Command {
	use, short := "archive ID|NAME", "Stop new assignments of a template"
	if !archive {
		use, short = "unarchive ID|NAME", "Allow new assignments of an archived template"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := app.Templates.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if archive {
				err = app.Templates.Archive(ctx, t.ID)
			} else {
				err = app.Templates.Unarchive(ctx, t.ID)
			}
			if err != nil {
				return err
			}
			verb := "Archived"
			if !archive {
				verb = "Unarchived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, formatter.Bold(t.Name))
			return nil
		},
	}
}

func newTemplatePolicyCmd(app *App) *cobra.Command {
	var refuseAfter int
	cmd := &cobra.Command{
		Use:   "policy ID|NAME [DAY:ACTION,...]",
		Short: "Show or replace a template's escalation ladder",
		Long: `Show or replace a template's escalation ladder. Steps are DAY:ACTION pairs;
append ! to keep a step but disable it. In-flight assignments use the new
ladder from their next sweep.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := app.Templates.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			var policy domain.EscalationPolicy
			switch {
			case cmd.Flags().Changed("refuse-after"):
				policy = domain.DefaultPolicy(refuseAfter)
			case len(args) == 2:
				if policy, err = parseSteps(args[1]); err != nil {
					return err
				}
			default:
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPolicy(t.EscalationPolicy))
				return nil
			}
			updated, err := app.Templates.EditEscalationPolicy(ctx, t.ID, policy)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPolicy(updated.EscalationPolicy))
			return nil
		},
	}
	cmd.Flags().IntVar(&refuseAfter, "refuse-after", 0, "Replace the ladder with a single mark_refused step on this day")
	return cmd
}

// resolveTemplateID accepts an ID or a name.
func resolveTemplateID(ctx context.Context, app *App, idOrName string) (string, error) {
	t, err := app.Templates.Resolve(ctx, idOrName)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}
