package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/contract"
)

func newSweepCmd(app *App) *cobra.Command {
	var (
		dryRun   bool
		template string
		at       string
		verbose  bool
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Fire due sends, renewals, lapses and escalation steps",
		Long: `Fire everything that is due: scheduled sends first, then compliance
renewals, then due-date lapses and escalation steps. Re-running a sweep at the
same time does nothing; steps missed while the sweeper was down fire once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := contract.NewSweepRequest()
			req.DryRun = dryRun
			if template != "" {
				id, err := resolveTemplateID(ctx, app, template)
				if err != nil {
					return err
				}
				req.TemplateID = id
			}
			if at != "" {
				if watch {
					return fmt.Errorf("--at cannot be combined with --watch")
				}
				when, err := parseWhen(at, app.now())
				if err != nil {
					return err
				}
				req.Now = &when
			}

			once := func(ctx context.Context) error {
				report, err := app.sweepUseCase().Sweep(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSweepReport(report))
				if verbose && len(report.Actions) > 0 {
					fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSweepActions(report))
				}
				return nil
			}
			if !watch {
				return once(ctx)
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchSweeps(ctx, interval, once, func(err error) {
				app.Log.Error().Err(err).Msg("sweep failed")
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would happen without changing anything")
	cmd.Flags().StringVar(&template, "template", "", "Only sweep this template")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate as of this time instead of now")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every action")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep sweeping on an interval until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between sweeps with --watch (default from DOCKET_SWEEP_INTERVAL)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if interval <= 0 {
			interval = app.SweepInterval
		}
		if interval <= 0 {
			interval = 15 * time.Minute
		}
	}
	return cmd
}

// watchSweeps runs sweep immediately and then on every tick until ctx ends.
// A failed sweep is reported and the loop keeps going.
func watchSweeps(ctx context.Context, interval time.Duration, sweep func(context.Context) error, onErr func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := sweep(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			onErr(err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
