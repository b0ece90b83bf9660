package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/domain"
)

func newRuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage a template's auto-assign rules",
	}
	cmd.AddCommand(
		newRuleListCmd(app),
		newRuleAddCmd(app),
		newRuleRemoveCmd(app),
		newRuleTestCmd(app),
	)
	return cmd
}

// ruleFlags are shared by add and test.
type ruleFlags struct {
	id        string
	trigger   string
	titles    []string
	locations []string
	roles     []string
	disabled  bool
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.trigger, "on", string(domain.TriggerHire), "Trigger: hire, job_change or location_change")
	cmd.Flags().StringSliceVar(&f.titles, "match-title", nil, "Match job titles (any of)")
	cmd.Flags().StringSliceVar(&f.locations, "match-location", nil, "Match locations (any of)")
	cmd.Flags().StringSliceVar(&f.roles, "match-role", nil, "Match employee roles (any of)")
}

func (f *ruleFlags) rule() domain.AutoAssignRule {
	return domain.AutoAssignRule{
		ID:      f.id,
		Trigger: domain.Trigger(f.trigger),
		Conditions: domain.RuleConditions{
			JobTitles: nonEmpty(f.titles),
			Locations: nonEmpty(f.locations),
			Roles:     nonEmpty(f.roles),
		},
		Enabled: !f.disabled,
	}
}

func newRuleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list TEMPLATE",
		Short: "List a template's rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(t.AutoAssignRules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules.")
				return nil
			}
			for _, r := range t.AutoAssignRules {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRule(r))
			}
			return nil
		},
	}
}

func newRuleAddCmd(app *App) *cobra.Command {
	var f ruleFlags
	cmd := &cobra.Command{
		Use:   "add TEMPLATE",
		Short: "Add a rule, or replace one with --id",
		Args:  cobra.ExactArgs(1),
		Example: `  docket rule add "Food Handler" --on hire --match-title Cook --match-location Downtown
  docket rule add "Food Handler" --id 3f2a... --on job_change --match-title "Line Cook"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTemplateID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			saved, err := app.Templates.UpsertRule(cmd.Context(), id, f.rule())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRule(saved))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.id, "id", "", "Replace the rule with this ID")
	cmd.Flags().BoolVar(&f.disabled, "disabled", false, "Store the rule without enabling it")
	return cmd
}

func newRuleRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TEMPLATE RULE_ID",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTemplateID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := app.Templates.RemoveRule(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %s\n", args[1])
			return nil
		},
	}
}

func newRuleTestCmd(app *App) *cobra.Command {
	var f ruleFlags
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Show which employees a rule would match today",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.AutoAssign.TestRule(cmd.Context(), f.rule())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRuleTest(res))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
