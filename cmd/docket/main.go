package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/cli"
	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/config"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/logger"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/notify"
	"github.com/alexanderramin/docket/internal/repository"
	"github.com/alexanderramin/docket/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	clk := clock.System{}
	notifier, closeNotifier, err := buildNotifier(cfg, clk, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// Wire repositories
	templateRepo := repository.NewSQLiteTemplateRepo(database)
	employeeRepo := repository.NewSQLiteEmployeeRepo(database)
	assignmentRepo := repository.NewSQLiteAssignmentRepo(database)
	instanceRepo := repository.NewSQLiteInstanceRepo(database)
	transitionRepo := repository.NewSQLiteTransitionRepo(database)
	notificationRepo := repository.NewSQLiteNotificationRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	rec := metrics.New()
	obs := service.NewLogUseCaseObserver(log)
	dispatcher := service.NewDispatcher(notifier, uow, clk, log, rec, cfg.NotifyChannels)

	app := &cli.App{
		Templates:   service.NewTemplateService(templateRepo, uow, clk, obs),
		Employees:   service.NewEmployeeService(employeeRepo, clk),
		Assignments: service.NewAssignmentService(employeeRepo, uow, clk, dispatcher, rec, obs),
		Escalation:  service.NewEscalationService(templateRepo, assignmentRepo, employeeRepo, uow, clk, dispatcher, rec, log, obs),
		AutoAssign:  service.NewAutoAssignService(templateRepo, employeeRepo, assignmentRepo, uow, clk, dispatcher, rec, obs),
		Directory:   service.NewDirectoryService(templateRepo, employeeRepo, instanceRepo, assignmentRepo, transitionRepo, notificationRepo, clk),
		Import:      service.NewImportService(uow, clk, obs),

		Clock:          clk,
		Metrics:        rec,
		Log:            log,
		WarnWindowDays: cfg.WarnWindowDays,
		SweepInterval:  cfg.SweepInterval,
		HTTPAddr:       cfg.HTTPAddr,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}

// buildNotifier returns the configured notifier and a func releasing its
// resources.
func buildNotifier(cfg config.Config, clk clock.Clock, log zerolog.Logger) (notify.Notifier, func(), error) {
	switch cfg.Notifier {
	case config.NotifierWebhook:
		w, err := notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:        cfg.WebhookURL,
			TimeoutMs:  cfg.WebhookTimeoutMs,
			MaxRetries: cfg.WebhookMaxRetries,
		}, clk, log)
		if err != nil {
			return nil, nil, err
		}
		return w, func() {}, nil
	case config.NotifierNATS:
		conn, err := notify.DialNATS(cfg.NATSURL, log)
		if err != nil {
			return nil, nil, err
		}
		return notify.NewNATSNotifier(conn, cfg.NATSSubjectPrefix, clk, log), func() {
			if err := conn.Drain(); err != nil {
				log.Warn().Err(err).Msg("draining nats connection")
			}
		}, nil
	default:
		return notify.NewLogNotifier(log), func() {}, nil
	}
}
