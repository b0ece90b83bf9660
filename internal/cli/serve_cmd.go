package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/httpapi"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr  string
		sweep bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.HTTPAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router := httpapi.NewRouter(httpapi.Services{
				Templates:   app.Templates,
				Employees:   app.Employees,
				Assignments: app.Assignments,
				Escalation:  app.Escalation,
				AutoAssign:  app.AutoAssign,
				Directory:   app.Directory,
				Clock:       app.Clock,
			}, app.Metrics, app.Log)

			if sweep && app.SweepInterval > 0 {
				go func() {
					_ = watchSweeps(ctx, app.SweepInterval, func(ctx context.Context) error {
						_, err := app.sweepUseCase().Sweep(ctx, contract.NewSweepRequest())
						return err
					}, func(err error) {
						app.Log.Error().Err(err).Msg("background sweep failed")
					})
				}()
			}
			return httpapi.Serve(ctx, addr, router, app.Log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from DOCKET_HTTP_ADDR)")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "Also run the sweeper every DOCKET_SWEEP_INTERVAL")
	return cmd
}
