package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/repository"
)

type assignmentService struct {
	employees  repository.EmployeeRepo
	uow        db.UnitOfWork
	clock      clock.Clock
	dispatcher *Dispatcher
	metrics    *metrics.Recorder
	observer   UseCaseObserver
}

func NewAssignmentService(
	employees repository.EmployeeRepo,
	uow db.UnitOfWork,
	clk clock.Clock,
	dispatcher *Dispatcher,
	rec *metrics.Recorder,
	observers ...UseCaseObserver,
) AssignmentService {
	return &assignmentService{
		employees:  employees,
		uow:        uow,
		clock:      clk,
		dispatcher: dispatcher,
		metrics:    rec,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *assignmentService) Create(ctx context.Context, req contract.CreateAssignmentRequest) (result *contract.CreateAssignmentResult, err error) {
	now := s.clock.Now()
	fields := map[string]any{"template": req.TemplateID, "recipients": len(req.RecipientIDs)}
	defer observe(ctx, s.observer, "create-assignment", now, fields)(&err)

	if err = requireID("template", req.TemplateID); err != nil {
		return nil, err
	}
	if len(req.RecipientIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", domain.ErrValidation)
	}
	if err = domain.ValidateChannels(req.Channels); err != nil {
		return nil, err
	}
	if req.ScheduleAt != nil && !req.ScheduleAt.After(now) {
		return nil, fmt.Errorf("%w: schedule time must be in the future", domain.ErrValidation)
	}
	if req.DueAt != nil && !req.DueAt.After(now) {
		return nil, fmt.Errorf("%w: due date must be in the future", domain.ErrValidation)
	}

	result = &contract.CreateAssignmentResult{}
	var tpl *domain.Template
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		var err error
		tpl, err = resolveTemplate(ctx, r.templates, req.TemplateID)
		if err != nil {
			return err
		}
		if tpl.IsArchived() {
			return fmt.Errorf("%w: template %q is archived", domain.ErrStateConflict, tpl.Name)
		}
		if !tpl.Permissions.Allows(req.Actor) {
			return fmt.Errorf("%w: %s may not assign template %q", domain.ErrForbidden, req.Actor.ID, tpl.Name)
		}

		seen := make(map[string]bool, len(req.RecipientIDs))
		for _, id := range req.RecipientIDs {
			if seen[id] {
				return fmt.Errorf("%w: recipient %s listed twice", domain.ErrValidation, id)
			}
			seen[id] = true
			if _, err := r.employees.GetByID(ctx, id); err != nil {
				return fmt.Errorf("recipient %s: %w", id, err)
			}
		}

		inst := &domain.AssignmentInstance{
			ID:         uuid.New().String(),
			TemplateID: tpl.ID,
			AssignedBy: req.Actor.ID,
			AssignedAt: now,
			Source:     domain.SourceManual,
			Note:       req.Note,
		}
		if err := r.instances.Create(ctx, inst); err != nil {
			return err
		}
		result.Instance = inst

		for _, id := range req.RecipientIDs {
			a := domain.NewAssignment(tpl.ID, id, inst.ID, now)
			a.DueAt = req.DueAt
			event := eventSend
			if req.ScheduleAt != nil {
				event = eventSchedule
				err = a.Schedule(*req.ScheduleAt, now)
			} else {
				err = a.Send(now, true)
			}
			if err != nil {
				return err
			}
			if err := r.assignments.Create(ctx, a); err != nil {
				return err
			}
			if err := r.transitions.Append(ctx, newTransition(a, domain.StatusCreated, event, req.Actor, req.Note, now)); err != nil {
				return err
			}
			result.Assignments = append(result.Assignments, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var notices []notice
	for _, a := range result.Assignments {
		s.metrics.Transition(eventCreate, string(a.Status))
		if a.Status == domain.StatusAwaitingAction {
			notices = append(notices, notice{assignment: a, template: tpl, audience: domain.AudienceRecipient, kind: kindAssigned, channels: req.Channels})
		}
	}
	result.NotifyErrors = s.dispatcher.deliverAll(ctx, s.employees, notices)
	fields["instance_id"] = result.Instance.ID
	return result, nil
}

func (s *assignmentService) Schedule(ctx context.Context, id string, actor domain.Actor, at time.Time) (*domain.Assignment, error) {
	a, _, err := s.apply(ctx, id, actor, eventSchedule, func(a *domain.Assignment, _ *domain.Template, now time.Time) (string, error) {
		return "", a.Schedule(at.UTC(), now)
	})
	return a, err
}

// Send delivers a draft or scheduled assignment now.
func (s *assignmentService) Send(ctx context.Context, id string, actor domain.Actor) (*domain.Assignment, error) {
	a, tpl, err := s.apply(ctx, id, actor, eventSend, func(a *domain.Assignment, tpl *domain.Template, now time.Time) (string, error) {
		if tpl.IsArchived() {
			return "", fmt.Errorf("%w: template %q is archived", domain.ErrStateConflict, tpl.Name)
		}
		return "", a.Send(now, true)
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.deliverAll(ctx, s.employees, []notice{{assignment: a, template: tpl, audience: domain.AudienceRecipient, kind: kindAssigned}})
	return a, nil
}

// Submit records the recipient's response. Only the recipient, or an
// administrator acting for them, may submit.
func (s *assignmentService) Submit(ctx context.Context, id string, actor domain.Actor, sub domain.Submission) (*domain.Assignment, error) {
	a, _, err := s.apply(ctx, id, actor, eventSubmit, func(a *domain.Assignment, tpl *domain.Template, now time.Time) (string, error) {
		if actor.ID != a.RecipientID && !actor.IsAdmin() {
			return "", fmt.Errorf("%w: only the recipient may submit", domain.ErrForbidden)
		}
		if sub.SubmittedBy == "" {
			sub.SubmittedBy = actor.ID
		}
		return "", a.Submit(sub, tpl.RequiresVerification, now)
	})
	return a, err
}

func (s *assignmentService) Approve(ctx context.Context, id string, actor domain.Actor, note string) (*domain.Assignment, error) {
	a, _, err := s.apply(ctx, id, actor, eventApprove, func(a *domain.Assignment, _ *domain.Template, now time.Time) (string, error) {
		return note, a.Approve(actor, note, now)
	})
	return a, err
}

// Reject returns the submission to the recipient and tells them why.
func (s *assignmentService) Reject(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Assignment, error) {
	a, tpl, err := s.apply(ctx, id, actor, eventReject, func(a *domain.Assignment, _ *domain.Template, now time.Time) (string, error) {
		return reason, a.Reject(actor, reason, now)
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.deliverAll(ctx, s.employees, []notice{{
		assignment: a, template: tpl, audience: domain.AudienceRecipient, kind: kindRejected,
		context: map[string]string{"reason": a.LastRejectionReason},
	}})
	return a, nil
}

func (s *assignmentService) Decline(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Assignment, error) {
	a, _, err := s.apply(ctx, id, actor, eventDecline, func(a *domain.Assignment, tpl *domain.Template, now time.Time) (string, error) {
		if actor.ID != a.RecipientID && !actor.IsAdmin() {
			return "", fmt.Errorf("%w: only the recipient may decline", domain.ErrForbidden)
		}
		return reason, a.Decline(actor, reason, tpl.AllowDecline, now)
	})
	return a, err
}

func (s *assignmentService) Cancel(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Assignment, error) {
	a, _, err := s.apply(ctx, id, actor, eventCancel, func(a *domain.Assignment, _ *domain.Template, now time.Time) (string, error) {
		return reason, a.Cancel(actor, reason, now)
	})
	return a, err
}

// Remind sends a manual reminder on the chosen channels and counts it.
func (s *assignmentService) Remind(ctx context.Context, id string, actor domain.Actor, channels []domain.Channel) (*domain.Assignment, error) {
	if len(channels) > 0 {
		if err := domain.ValidateChannels(channels); err != nil {
			return nil, err
		}
	}
	a, tpl, err := s.apply(ctx, id, actor, eventRemind, func(a *domain.Assignment, _ *domain.Template, now time.Time) (string, error) {
		if actor.Role == domain.RoleEmployee {
			return "", fmt.Errorf("%w: employees cannot send reminders", domain.ErrForbidden)
		}
		return "manual", a.RecordReminder(now)
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.deliverAll(ctx, s.employees, []notice{{assignment: a, template: tpl, audience: domain.AudienceRecipient, kind: kindReminder, channels: channels}})
	return a, nil
}

// apply runs one guarded transition: reload, mutate, optimistic write and
// history entry commit together.
func (s *assignmentService) apply(
	ctx context.Context,
	id string,
	actor domain.Actor,
	event string,
	fn func(a *domain.Assignment, tpl *domain.Template, now time.Time) (note string, err error),
) (a *domain.Assignment, tpl *domain.Template, err error) {
	now := s.clock.Now()
	fields := map[string]any{"assignment_id": id, "actor": actor.ID}
	defer observe(ctx, s.observer, event+"-assignment", now, fields)(&err)

	if err = requireID("assignment", id); err != nil {
		return nil, nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		var err error
		if a, err = r.assignments.GetByID(ctx, id); err != nil {
			return err
		}
		if tpl, err = r.templates.GetByID(ctx, a.TemplateID); err != nil {
			return err
		}
		from := a.Status
		note, err := fn(a, tpl, now)
		if err != nil {
			return err
		}
		if err := r.assignments.Update(ctx, a); err != nil {
			return err
		}
		return r.transitions.Append(ctx, newTransition(a, from, event, actor, note, now))
	})
	if err != nil {
		return nil, nil, err
	}
	fields["status"] = string(a.Status)
	s.metrics.Transition(event, string(a.Status))
	return a, tpl, nil
}
