package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/repository"
	"github.com/alexanderramin/docket/internal/scheduler"
)

// errStale marks work the sweep planned but another writer made moot before
// the transaction ran: the recipient answered, or a concurrent sweep fired
// the step first. It is skipped, not reported.
var errStale = errors.New("stale sweep item")

type escalationService struct {
	templates   repository.TemplateRepo
	assignments repository.AssignmentRepo
	employees   repository.EmployeeRepo
	uow         db.UnitOfWork
	clock       clock.Clock
	dispatcher  *Dispatcher
	metrics     *metrics.Recorder
	log         zerolog.Logger
	observer    UseCaseObserver
}

func NewEscalationService(
	templates repository.TemplateRepo,
	assignments repository.AssignmentRepo,
	employees repository.EmployeeRepo,
	uow db.UnitOfWork,
	clk clock.Clock,
	dispatcher *Dispatcher,
	rec *metrics.Recorder,
	log zerolog.Logger,
	observers ...UseCaseObserver,
) EscalationService {
	return &escalationService{
		templates:   templates,
		assignments: assignments,
		employees:   employees,
		uow:         uow,
		clock:       clk,
		dispatcher:  dispatcher,
		metrics:     rec,
		log:         log,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// sweepRun carries one sweep's state.
type sweepRun struct {
	now       time.Time
	dryRun    bool
	templates map[string]*domain.Template
	report    *contract.SweepReport
}

func (r *sweepRun) action(a *domain.Assignment, kind contract.SweepActionKind, dayOffset int) {
	r.report.Actions = append(r.report.Actions, contract.SweepAction{
		AssignmentID: a.ID,
		TemplateID:   a.TemplateID,
		RecipientID:  a.RecipientID,
		Kind:         kind,
		Cycle:        a.Cycle,
		DayOffset:    dayOffset,
	})
}

func (r *sweepRun) fail(a *domain.Assignment, kind contract.SweepActionKind, err error) {
	r.report.Failures = append(r.report.Failures, contract.SweepFailure{
		AssignmentID: a.ID,
		Kind:         kind,
		Err:          err.Error(),
	})
}

// Sweep sends due scheduled assignments, renews compliance assignments whose
// validity elapsed, lapses overdue ones and fires due escalation steps. Each
// change commits in its own transaction and per-assignment failures are
// collected in the report; only failing to load the work aborts the sweep.
func (s *escalationService) Sweep(ctx context.Context, req contract.SweepRequest) (report *contract.SweepReport, err error) {
	startedAt := s.clock.Now()
	now := orNow(req.Now, startedAt)
	fields := map[string]any{"dry_run": req.DryRun}
	defer observe(ctx, s.observer, "sweep", startedAt, fields)(&err)

	run := &sweepRun{
		now:       now,
		dryRun:    req.DryRun,
		templates: make(map[string]*domain.Template),
		report:    &contract.SweepReport{Now: now, DryRun: req.DryRun},
	}

	all, err := s.templates.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	for _, t := range all {
		if req.TemplateID == "" || t.ID == req.TemplateID {
			run.templates[t.ID] = t
		}
	}
	if req.TemplateID != "" && len(run.templates) == 0 {
		return nil, fmt.Errorf("template %s: %w", req.TemplateID, repository.ErrNotFound)
	}

	if err = s.sendScheduled(ctx, run); err != nil {
		return nil, err
	}
	if err = s.renewExpired(ctx, run); err != nil {
		return nil, err
	}
	if err = s.escalate(ctx, run); err != nil {
		return nil, err
	}

	run.report.Duration = s.clock.Now().Sub(startedAt)
	if !req.DryRun {
		s.metrics.ObserveSweep(run.report.Duration, len(run.report.Failures))
	}
	fields["actions"] = len(run.report.Actions)
	fields["failures"] = len(run.report.Failures)
	return run.report, nil
}

// candidates loads assignments in status that belong to the swept templates,
// oldest sent first.
func (s *escalationService) candidates(ctx context.Context, run *sweepRun, status domain.Status) ([]*domain.Assignment, error) {
	as, err := s.assignments.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("loading %s assignments: %w", status, err)
	}
	var out []*domain.Assignment
	for _, a := range as {
		if _, ok := run.templates[a.TemplateID]; ok {
			out = append(out, a)
		}
	}
	scheduler.SweepOrder(out)
	run.report.Scanned += len(out)
	return out, nil
}

func (s *escalationService) sendScheduled(ctx context.Context, run *sweepRun) error {
	as, err := s.candidates(ctx, run, domain.StatusScheduled)
	if err != nil {
		return err
	}
	for _, a := range as {
		if a.ScheduledAt == nil || run.now.Before(*a.ScheduledAt) {
			continue
		}
		tpl := run.templates[a.TemplateID]
		if tpl.IsArchived() {
			run.report.Warnings = append(run.report.Warnings,
				fmt.Sprintf("assignment %s is scheduled on archived template %q; not sent", a.ID, tpl.Name))
			continue
		}
		if run.dryRun {
			run.action(a, contract.SweepSend, 0)
			continue
		}
		updated, err := s.transition(ctx, a.ID, eventSend, run.now, func(a *domain.Assignment) error {
			return a.Send(run.now, false)
		})
		if s.settle(run, a, contract.SweepSend, 0, err) {
			s.notify(ctx, run, notice{assignment: updated, template: tpl, audience: domain.AudienceRecipient, kind: kindAssigned})
		}
	}
	return nil
}

func (s *escalationService) renewExpired(ctx context.Context, run *sweepRun) error {
	as, err := s.candidates(ctx, run, domain.StatusResolvedPositive)
	if err != nil {
		return err
	}
	for _, a := range as {
		tpl := run.templates[a.TemplateID]
		if !scheduler.NeedsRenewal(a, tpl, run.now) {
			continue
		}
		if run.dryRun {
			run.action(a, contract.SweepRenew, 0)
			continue
		}
		updated, err := s.transition(ctx, a.ID, eventRenew, run.now, func(a *domain.Assignment) error {
			return a.Renew(run.now)
		})
		if s.settle(run, a, contract.SweepRenew, 0, err) {
			s.notify(ctx, run, notice{assignment: updated, template: tpl, audience: domain.AudienceRecipient, kind: kindRenewal})
		}
	}
	return nil
}

// escalate lapses overdue assignments, then fires due steps on the rest.
// Renewed assignments are picked up here too since their cycle restarted.
func (s *escalationService) escalate(ctx context.Context, run *sweepRun) error {
	as, err := s.candidates(ctx, run, domain.StatusAwaitingAction)
	if err != nil {
		return err
	}
	for _, a := range as {
		tpl := run.templates[a.TemplateID]

		if scheduler.IsOverdue(a, run.now) {
			if run.dryRun {
				run.action(a, contract.SweepLapse, 0)
				continue
			}
			updated, err := s.transition(ctx, a.ID, eventLapse, run.now, func(a *domain.Assignment) error {
				return a.Lapse(run.now)
			})
			if s.settle(run, a, contract.SweepLapse, 0, err) {
				s.notify(ctx, run, notice{assignment: updated, template: tpl, audience: domain.AudienceRecipient, kind: kindLapsed})
			}
			continue
		}

		for _, step := range scheduler.DueSteps(a, tpl.EscalationPolicy, run.now) {
			kind := contract.SweepActionForStep(step.Action)
			if run.dryRun {
				run.action(a, kind, step.DayOffset)
				continue
			}
			updated, err := s.fire(ctx, a.ID, step, run.now)
			if !s.settle(run, a, kind, step.DayOffset, err) {
				// A failed or stale step leaves later steps for the next sweep.
				break
			}
			s.metrics.StepFired(string(step.Action))
			s.notify(ctx, run, stepNotice(updated, tpl, step))
		}
	}
	return nil
}

// fire commits one escalation step: the fired marker and the assignment change
// land in the same transaction, so a step fires at most once per cycle even
// when sweeps overlap.
func (s *escalationService) fire(ctx context.Context, id string, step domain.EscalationStep, now time.Time) (*domain.Assignment, error) {
	var out *domain.Assignment
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		a, err := r.assignments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status != domain.StatusAwaitingAction || a.HasFired(step) {
			return errStale
		}
		from := a.Status
		fired, err := a.MarkFired(step, now)
		if err != nil {
			return err
		}
		if err := r.assignments.RecordFire(ctx, a.ID, fired); err != nil {
			if errors.Is(err, domain.ErrStateConflict) {
				return errStale
			}
			return err
		}

		event, note := eventEscalate, string(step.Action)
		switch step.Action {
		case domain.ActionRemind:
			event = eventRemind
			err = a.RecordReminder(now)
		case domain.ActionMarkRefused:
			event = eventMarkRefused
			note = fmt.Sprintf("no response after %d days", step.DayOffset)
			err = a.MarkRefused(note, now)
		}
		if err != nil {
			return err
		}
		if err := r.assignments.Update(ctx, a); err != nil {
			return err
		}
		if err := r.transitions.Append(ctx, newTransition(a, from, event, domain.SystemActor, note, now)); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// transition reloads an assignment and applies a system-authored change.
func (s *escalationService) transition(ctx context.Context, id, event string, now time.Time, fn func(a *domain.Assignment) error) (*domain.Assignment, error) {
	var out *domain.Assignment
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		a, err := r.assignments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status != statusBefore(event) {
			return errStale
		}
		from := a.Status
		if err := fn(a); err != nil {
			return err
		}
		if err := r.assignments.Update(ctx, a); err != nil {
			return err
		}
		out = a
		return r.transitions.Append(ctx, newTransition(a, from, event, domain.SystemActor, "", now))
	})
	if err == nil {
		s.metrics.Transition(event, string(out.Status))
	}
	return out, err
}

// statusBefore is the status the sweep expects an assignment to be in when
// it applies event.
func statusBefore(event string) domain.Status {
	switch event {
	case eventSend:
		return domain.StatusScheduled
	case eventRenew:
		return domain.StatusResolvedPositive
	default:
		return domain.StatusAwaitingAction
	}
}

// settle records the outcome of one sweep item and reports whether it
// succeeded.
func (s *escalationService) settle(run *sweepRun, a *domain.Assignment, kind contract.SweepActionKind, dayOffset int, err error) bool {
	switch {
	case err == nil:
		run.action(a, kind, dayOffset)
		return true
	case errors.Is(err, errStale):
		return false
	default:
		s.log.Warn().Err(err).Str("assignment_id", a.ID).Str("action", string(kind)).Msg("sweep: item failed")
		run.fail(a, kind, err)
		return false
	}
}

func (s *escalationService) notify(ctx context.Context, run *sweepRun, nt notice) {
	if err := s.dispatcher.Deliver(ctx, s.dispatcher.build(ctx, s.employees, nt)); err != nil {
		run.report.NotifyFailures++
		run.report.Warnings = append(run.report.Warnings,
			fmt.Sprintf("notification %s for assignment %s failed: %v", nt.kind, nt.assignment.ID, err))
	}
}

func stepNotice(a *domain.Assignment, tpl *domain.Template, step domain.EscalationStep) notice {
	nt := notice{
		assignment: a,
		template:   tpl,
		context:    map[string]string{"day_offset": fmt.Sprint(step.DayOffset)},
	}
	switch step.Action {
	case domain.ActionRemind:
		nt.audience, nt.kind = domain.AudienceRecipient, kindReminder
	case domain.ActionNotifyManager:
		nt.audience, nt.kind = domain.AudienceManager, kindEscalation
	case domain.ActionNotifyHR:
		nt.audience, nt.kind = domain.AudienceHR, kindEscalation
	case domain.ActionMarkRefused:
		nt.audience, nt.kind = domain.AudienceRecipient, kindRefused
	}
	return nt
}
