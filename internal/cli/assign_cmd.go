package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

func newAssignCmd(app *App, who *actorFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assign",
		Aliases: []string{"a"},
		Short:   "Send templates to employees and move assignments through their lifecycle",
	}
	cmd.AddCommand(
		newAssignCreateCmd(app, who),
		newAssignScheduleCmd(app, who),
		newAssignActionCmd(app, who, "send", "Send a draft or scheduled assignment now", false,
			func(c actionCall) (*domain.Assignment, error) {
				return app.Assignments.Send(c.ctx, c.id, c.actor)
			}),
		newAssignSubmitCmd(app, who),
		newAssignActionCmd(app, who, "approve", "Approve a pending submission", false,
			func(c actionCall) (*domain.Assignment, error) {
				return app.Assignments.Approve(c.ctx, c.id, c.actor, c.text)
			}),
		newAssignActionCmd(app, who, "reject", "Return a submission to the recipient", true,
			func(c actionCall) (*domain.Assignment, error) {
				return app.Assignments.Reject(c.ctx, c.id, c.actor, c.text)
			}),
		newAssignActionCmd(app, who, "decline", "Decline an assignment as its recipient", true,
			func(c actionCall) (*domain.Assignment, error) {
				return app.Assignments.Decline(c.ctx, c.id, c.actor, c.text)
			}),
		newAssignActionCmd(app, who, "cancel", "Withdraw an assignment", false,
			func(c actionCall) (*domain.Assignment, error) {
				return app.Assignments.Cancel(c.ctx, c.id, c.actor, c.text)
			}),
		newAssignRemindCmd(app, who),
		newAssignShowCmd(app),
		newAssignHistoryCmd(app),
		newAssignListCmd(app),
	)
	return cmd
}

func newAssignCreateCmd(app *App, who *actorFlags) *cobra.Command {
	var (
		recipients []string
		scheduleAt string
		dueAt      string
		channels   []domain.Channel
		note       string
	)
	cmd := &cobra.Command{
		Use:   "create TEMPLATE",
		Short: "Send a template to one or more employees as one instance",
		Args:  cobra.ExactArgs(1),
		Example: `  docket assign create "Food Handler" --to emp-001,emp-002 --due +14d
  docket assign create Handbook --to emp-003 --at 2025-07-01 --channels email,sms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := who.actor()
			if err != nil {
				return err
			}
			templateID, err := resolveTemplateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			req := contract.NewCreateAssignmentRequest(templateID, actor, nonEmpty(recipients)...)
			now := app.now()
			if req.ScheduleAt, err = optionalWhen(scheduleAt, now); err != nil {
				return err
			}
			if req.DueAt, err = optionalWhen(dueAt, now); err != nil {
				return err
			}
			if len(channels) > 0 {
				req.Channels = channels
			}
			req.Note = note

			res, err := app.createAssignmentUseCase().Create(ctx, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Instance %s: %s\n", formatter.Dim(res.Instance.ID), formatter.Plural(len(res.Assignments), "assignment"))
			for _, a := range res.Assignments {
				fmt.Fprintf(out, "  %s  %-12s %s\n", a.ID, a.RecipientID, a.Status)
			}
			if res.NotifyErrors > 0 {
				fmt.Fprintln(out, formatter.StyleYellow.Render(fmt.Sprintf("%s could not be delivered", formatter.Plural(res.NotifyErrors, "notification"))))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&recipients, "to", nil, "Recipient employee IDs")
	cmd.Flags().StringVar(&scheduleAt, "at", "", "Send later: YYYY-MM-DD, RFC 3339 or +Nd")
	cmd.Flags().StringVar(&dueAt, "due", "", "Due date after which an unanswered assignment lapses")
	cmd.Flags().Var(newChannelsFlag(&channels), "channels", "Comma-separated channels (default email)")
	cmd.Flags().StringVar(&note, "note", "", "Note stored on the instance")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newAssignScheduleCmd(app *App, who *actorFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule ID WHEN",
		Short: "Schedule a draft assignment for later delivery",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := who.actor()
			if err != nil {
				return err
			}
			at, err := parseWhen(args[1], app.now())
			if err != nil {
				return err
			}
			a, err := app.Assignments.Schedule(cmd.Context(), args[0], actor, at)
			if err != nil {
				return err
			}
			return printTransition(cmd, a)
		},
	}
}

func newAssignSubmitCmd(app *App, who *actorFlags) *cobra.Command {
	var (
		documentRef string
		signer      string
		values      map[string]string
		validUntil  string
	)
	cmd := &cobra.Command{
		Use:   "submit ID",
		Short: "Record what the recipient handed in",
		Args:  cobra.ExactArgs(1),
		Example: `  docket assign submit 7c1e... --actor emp-001 --role employee --document s3://certs/ana.pdf --valid-until 2026-06-01
  docket assign submit 7c1e... --actor emp-001 --role employee --sign "Ana Ruiz"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := who.actor()
			if err != nil {
				return err
			}
			now := app.now()
			sub := domain.Submission{DocumentRef: documentRef, Values: values}
			if signer != "" {
				sub.Signature = &domain.Signature{SignerName: signer, SignedAt: now}
			}
			if sub.ValidUntil, err = optionalWhen(validUntil, now); err != nil {
				return err
			}
			a, err := app.Assignments.Submit(cmd.Context(), args[0], actor, sub)
			if err != nil {
				return err
			}
			return printTransition(cmd, a)
		},
	}
	cmd.Flags().StringVar(&documentRef, "document", "", "Reference to the uploaded document")
	cmd.Flags().StringVar(&signer, "sign", "", "Sign as this name")
	cmd.Flags().StringToStringVar(&values, "value", nil, "Form field values as key=value")
	cmd.Flags().StringVar(&validUntil, "valid-until", "", "Expiry printed on an uploaded certificate")
	return cmd
}

// actionCall carries the arguments of a single-assignment command.
type actionCall struct {
	ctx   context.Context
	id    string
	actor domain.Actor
	text  string
}

func newAssignActionCmd(app *App, who *actorFlags, name, short string, needsReason bool, run func(actionCall) (*domain.Assignment, error)) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   name + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := who.actor()
			if err != nil {
				return err
			}
			a, err := run(actionCall{ctx: cmd.Context(), id: args[0], actor: actor, text: text})
			if err != nil {
				return err
			}
			return printTransition(cmd, a)
		},
	}
	if needsReason {
		cmd.Flags().StringVar(&text, "reason", "", "Reason shown to the recipient")
		_ = cmd.MarkFlagRequired("reason")
	} else {
		cmd.Flags().StringVar(&text, "note", "", "Note stored with the transition")
	}
	return cmd
}

func newAssignRemindCmd(app *App, who *actorFlags) *cobra.Command {
	var channels []domain.Channel
	cmd := &cobra.Command{
		Use:   "remind ID",
		Short: "Send the recipient a reminder now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := who.actor()
			if err != nil {
				return err
			}
			a, err := app.Assignments.Remind(cmd.Context(), args[0], actor, channels)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminded %s (%s so far)\n", a.RecipientID, formatter.Plural(a.RemindersSent, "reminder"))
			return nil
		},
	}
	cmd.Flags().Var(newChannelsFlag(&channels, domain.ChannelEmail), "channels", "Comma-separated channels")
	return cmd
}

func newAssignShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an assignment with derived freshness and next step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.Directory.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAssignment(v))
			return nil
		},
	}
}

func newAssignHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show an assignment's transitions and notification log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := app.Directory.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(h))
			return nil
		},
	}
}

func newAssignListCmd(app *App) *cobra.Command {
	var (
		statuses  []string
		freshness string
		recipient string
	)
	cmd := &cobra.Command{
		Use:   "list TEMPLATE",
		Short: "List a template's assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := contract.ListFilter{Freshness: domain.Freshness(freshness), RecipientID: recipient}
			for _, s := range nonEmpty(statuses) {
				filter.Statuses = append(filter.Statuses, domain.Status(s))
			}
			views, err := app.Directory.ListAssignments(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAssignmentList(views, app.now()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only these statuses")
	cmd.Flags().StringVar(&freshness, "freshness", "", "Only valid, expiring_soon, expired or none")
	cmd.Flags().StringVar(&recipient, "recipient", "", "Only this employee")
	return cmd
}

func printTransition(cmd *cobra.Command, a *domain.Assignment) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", a.ID, a.Status)
	return nil
}
