package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/notify"
	"github.com/alexanderramin/docket/internal/repository"
)

// Notification kinds.
const (
	kindAssigned   = "assigned"
	kindReminder   = "reminder"
	kindEscalation = "escalation"
	kindRefused    = "refused"
	kindRejected   = "rejected"
	kindRenewal    = "renewal_due"
	kindLapsed     = "lapsed"
)

// Dispatcher calls the notifier after a transaction commits and records the
// outcome in the delivery log. Delivery failures are logged and returned for
// counting; they never roll anything back.
type Dispatcher struct {
	notifier notify.Notifier
	uow      db.UnitOfWork
	clock    clock.Clock
	log      zerolog.Logger
	metrics  *metrics.Recorder
	// defaultChannels is used when a caller does not choose channels.
	defaultChannels []domain.Channel
}

func NewDispatcher(
	notifier notify.Notifier,
	uow db.UnitOfWork,
	clk clock.Clock,
	log zerolog.Logger,
	rec *metrics.Recorder,
	defaultChannels []domain.Channel,
) *Dispatcher {
	if len(defaultChannels) == 0 {
		defaultChannels = []domain.Channel{domain.ChannelEmail}
	}
	return &Dispatcher{
		notifier:        notifier,
		uow:             uow,
		clock:           clk,
		log:             log,
		metrics:         rec,
		defaultChannels: defaultChannels,
	}
}

// notice describes a notification before template and employee details are
// filled in.
type notice struct {
	assignment *domain.Assignment
	template   *domain.Template
	audience   domain.Audience
	kind       string
	channels   []domain.Channel
	context    map[string]string
}

func (d *Dispatcher) Deliver(ctx context.Context, n domain.Notification) error {
	if len(n.Channels) == 0 {
		n.Channels = d.defaultChannels
	}
	var err error
	if d.notifier == nil {
		err = fmt.Errorf("%w: no notifier configured", notify.ErrNotConfigured)
	} else {
		err = d.notifier.Send(ctx, n)
	}

	rec := &domain.NotificationRecord{
		ID:           uuid.New().String(),
		AssignmentID: n.AssignmentID,
		Audience:     n.Audience,
		Channels:     n.Channels,
		Kind:         n.Kind,
		Success:      err == nil,
		At:           d.clock.Now(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if logErr := d.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteNotificationRepo(tx).Record(ctx, rec)
	}); logErr != nil {
		d.log.Warn().Err(logErr).Str("assignment_id", n.AssignmentID).Msg("notification: failed to record delivery")
	}

	d.metrics.Notification(string(n.Audience), err == nil)
	if err != nil {
		d.log.Warn().Err(err).
			Str("assignment_id", n.AssignmentID).
			Str("audience", string(n.Audience)).
			Str("kind", n.Kind).
			Str("code", notify.ErrorCode(err)).
			Msg("notification: delivery failed")
		return err
	}
	return nil
}

// deliverAll sends each notice and returns how many failed.
func (d *Dispatcher) deliverAll(ctx context.Context, employees repository.EmployeeRepo, notices []notice) int {
	failed := 0
	for _, nt := range notices {
		if err := d.Deliver(ctx, d.build(ctx, employees, nt)); err != nil {
			failed++
		}
	}
	return failed
}

func (d *Dispatcher) build(ctx context.Context, employees repository.EmployeeRepo, nt notice) domain.Notification {
	a := nt.assignment
	n := domain.Notification{
		AssignmentID: a.ID,
		TemplateID:   a.TemplateID,
		RecipientID:  a.RecipientID,
		Audience:     nt.audience,
		Channels:     nt.channels,
		Kind:         nt.kind,
		Context:      map[string]string{"status": string(a.Status), "cycle": strconv.Itoa(a.Cycle)},
	}
	for k, v := range nt.context {
		n.Context[k] = v
	}
	if nt.template != nil {
		n.TemplateName = nt.template.Name
		n.Context["category"] = string(nt.template.Category)
	}
	if a.DueAt != nil {
		n.Context["due_at"] = a.DueAt.Format("2006-01-02")
	}
	if nt.audience == domain.AudienceManager && employees != nil {
		if e, err := employees.GetByID(ctx, a.RecipientID); err == nil && e.ManagerID != "" {
			n.Context["manager_id"] = e.ManagerID
		}
	}
	return n
}
