package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/docket/internal/autoassign"
	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/repository"
)

type autoAssignService struct {
	templates   repository.TemplateRepo
	employees   repository.EmployeeRepo
	assignments repository.AssignmentRepo
	uow         db.UnitOfWork
	clock       clock.Clock
	dispatcher  *Dispatcher
	metrics     *metrics.Recorder
	observer    UseCaseObserver
}

func NewAutoAssignService(
	templates repository.TemplateRepo,
	employees repository.EmployeeRepo,
	assignments repository.AssignmentRepo,
	uow db.UnitOfWork,
	clk clock.Clock,
	dispatcher *Dispatcher,
	rec *metrics.Recorder,
	observers ...UseCaseObserver,
) AutoAssignService {
	return &autoAssignService{
		templates:   templates,
		employees:   employees,
		assignments: assignments,
		uow:         uow,
		clock:       clk,
		dispatcher:  dispatcher,
		metrics:     rec,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// HandleEvent stores the event's snapshot and creates one sent assignment per
// matching template, unless an active one already exists. Planning and
// creation share a transaction, so a repeated event is a no-op.
func (s *autoAssignService) HandleEvent(ctx context.Context, ev domain.EmployeeEvent) (preview *contract.RulePreview, err error) {
	now := s.clock.Now()
	fields := map[string]any{"employee_id": ev.EmployeeID, "event": string(ev.Type)}
	defer observe(ctx, s.observer, "employee-event", now, fields)(&err)

	if err = ev.Validate(); err != nil {
		return nil, err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = now
	}

	preview = &contract.RulePreview{Event: ev, Applied: true}
	templates := make(map[string]*domain.Template)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if ev.Snapshot != nil {
			snap := *ev.Snapshot
			snap.ID = ev.EmployeeID
			snap.UpdatedAt = now
			if strings.TrimSpace(snap.Name) == "" {
				snap.Name = ev.EmployeeID
			}
			if err := r.employees.Upsert(ctx, &snap); err != nil {
				return err
			}
		}

		emp, plan, err := planEvent(ctx, r.templates, r.employees, r.assignments, ev, nil, now, templates)
		if err != nil {
			return err
		}
		preview.Employee = emp
		preview.Decisions = plan

		var inst *domain.AssignmentInstance
		for _, d := range autoassign.Assignable(plan) {
			inst = &domain.AssignmentInstance{
				ID:         uuid.New().String(),
				TemplateID: d.TemplateID,
				AssignedBy: domain.SystemActor.ID,
				AssignedAt: now,
				Source:     domain.SourceAutoAssign,
				Trigger:    ev.Type,
				Note:       "rule " + d.RuleID,
			}
			if err := r.instances.Create(ctx, inst); err != nil {
				return err
			}
			a := domain.NewAssignment(d.TemplateID, emp.ID, inst.ID, now)
			if err := a.Send(now, true); err != nil {
				return err
			}
			if err := r.assignments.Create(ctx, a); err != nil {
				return err
			}
			if err := r.transitions.Append(ctx, newTransition(a, domain.StatusCreated, eventAutoAssign, domain.SystemActor, inst.Note, now)); err != nil {
				return err
			}
			preview.Created = append(preview.Created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notices := make([]notice, 0, len(preview.Created))
	for _, a := range preview.Created {
		s.metrics.AutoAssigned(string(ev.Type))
		s.metrics.Transition(eventAutoAssign, string(a.Status))
		notices = append(notices, notice{assignment: a, template: templates[a.TemplateID], audience: domain.AudienceRecipient, kind: kindAssigned})
	}
	s.dispatcher.deliverAll(ctx, s.employees, notices)
	fields["created"] = len(preview.Created)
	return preview, nil
}

// Preview runs the planner without writing anything, including the snapshot.
func (s *autoAssignService) Preview(ctx context.Context, ev domain.EmployeeEvent) (*contract.RulePreview, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	emp, plan, err := planEvent(ctx, s.templates, s.employees, s.assignments, ev, ev.Snapshot, s.clock.Now(), nil)
	if err != nil {
		return nil, err
	}
	return &contract.RulePreview{Event: ev, Employee: emp, Decisions: plan}, nil
}

// TestRule reports which employees in the read model a rule would select.
func (s *autoAssignService) TestRule(ctx context.Context, rule domain.AutoAssignRule) (*contract.RuleTestResult, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	return &contract.RuleTestResult{
		Rule:    rule,
		Matches: autoassign.MatchingEmployees(rule, employees),
		Scanned: len(employees),
	}, nil
}

// planEvent is the one planner behind both the dry run and the applying
// path. override, when set, stands in for the stored employee record. seen,
// when non-nil, collects the templates that were loaded.
func planEvent(
	ctx context.Context,
	templates repository.TemplateRepo,
	employees repository.EmployeeRepo,
	assignments repository.AssignmentRepo,
	ev domain.EmployeeEvent,
	override *domain.Employee,
	now time.Time,
	seen map[string]*domain.Template,
) (*domain.Employee, []autoassign.Decision, error) {
	var emp *domain.Employee
	if override != nil {
		e := *override
		e.ID = ev.EmployeeID
		emp = &e
	} else {
		var err error
		if emp, err = employees.GetByID(ctx, ev.EmployeeID); err != nil {
			return nil, nil, fmt.Errorf("employee %s: %w", ev.EmployeeID, err)
		}
	}

	all, err := templates.List(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	existing := make(map[string][]*domain.Assignment)
	for _, t := range all {
		if seen != nil {
			seen[t.ID] = t
		}
		if !hasCandidateRule(t, ev.Type, emp) {
			continue
		}
		as, err := assignments.ListByPair(ctx, t.ID, emp.ID)
		if err != nil {
			return nil, nil, err
		}
		existing[t.ID] = as
	}

	plan := autoassign.Plan(autoassign.Input{
		Trigger:   ev.Type,
		Employee:  emp,
		Templates: all,
		Existing:  existing,
		Now:       now,
	})
	return emp, plan, nil
}

func hasCandidateRule(t *domain.Template, trigger domain.Trigger, e *domain.Employee) bool {
	for _, r := range t.AutoAssignRules {
		if r.Trigger == trigger && autoassign.Matches(r, e) {
			return true
		}
	}
	return false
}
