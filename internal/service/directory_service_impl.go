package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/repository"
	"github.com/alexanderramin/docket/internal/scheduler"
)

type directoryService struct {
	templates     repository.TemplateRepo
	employees     repository.EmployeeRepo
	instances     repository.InstanceRepo
	assignments   repository.AssignmentRepo
	transitions   repository.TransitionRepo
	notifications repository.NotificationRepo
	clock         clock.Clock
}

func NewDirectoryService(
	templates repository.TemplateRepo,
	employees repository.EmployeeRepo,
	instances repository.InstanceRepo,
	assignments repository.AssignmentRepo,
	transitions repository.TransitionRepo,
	notifications repository.NotificationRepo,
	clk clock.Clock,
) DirectoryService {
	return &directoryService{
		templates:     templates,
		employees:     employees,
		instances:     instances,
		assignments:   assignments,
		transitions:   transitions,
		notifications: notifications,
		clock:         clk,
	}
}

func (s *directoryService) Get(ctx context.Context, assignmentID string) (*contract.AssignmentView, error) {
	if err := requireID("assignment", assignmentID); err != nil {
		return nil, err
	}
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.GetByID(ctx, a.TemplateID)
	if err != nil {
		return nil, err
	}
	name := a.RecipientID
	if e, err := s.employees.GetByID(ctx, a.RecipientID); err == nil {
		name = e.Name
	}
	v := view(a, t, name, s.clock.Now())
	return &v, nil
}

func (s *directoryService) History(ctx context.Context, assignmentID string) (*contract.AssignmentHistory, error) {
	if err := requireID("assignment", assignmentID); err != nil {
		return nil, err
	}
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		return nil, err
	}
	transitions, err := s.transitions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	notifications, err := s.notifications.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return &contract.AssignmentHistory{
		AssignmentID:  assignmentID,
		Transitions:   transitions,
		Notifications: notifications,
	}, nil
}

// ListAssignments returns a template's assignments in directory order: open
// items first, then by recipient.
func (s *directoryService) ListAssignments(ctx context.Context, templateID string, filter contract.ListFilter) ([]contract.AssignmentView, error) {
	t, err := resolveTemplate(ctx, s.templates, templateID)
	if err != nil {
		return nil, err
	}
	as, err := s.assignments.ListByTemplate(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	names, err := s.employeeNames(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	scheduler.DirectoryOrder(as)
	out := make([]contract.AssignmentView, 0, len(as))
	for _, a := range as {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, a.Status) {
			continue
		}
		if filter.RecipientID != "" && a.RecipientID != filter.RecipientID {
			continue
		}
		v := view(a, t, domain.Coalesce(names[a.RecipientID], a.RecipientID), now)
		if filter.Freshness != "" && v.Freshness != filter.Freshness {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *directoryService) ListInstances(ctx context.Context, templateID string) ([]*domain.AssignmentInstance, error) {
	t, err := resolveTemplate(ctx, s.templates, templateID)
	if err != nil {
		return nil, err
	}
	return s.instances.ListByTemplate(ctx, t.ID)
}

func (s *directoryService) Stats(ctx context.Context, templateID string) (*contract.TemplateStats, error) {
	t, err := resolveTemplate(ctx, s.templates, templateID)
	if err != nil {
		return nil, err
	}
	st, err := s.stats(ctx, t, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *directoryService) AllStats(ctx context.Context, includeArchived bool) ([]contract.TemplateStats, error) {
	ts, err := s.templates.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]contract.TemplateStats, 0, len(ts))
	for _, t := range ts {
		st, err := s.stats(ctx, t, now)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", t.Name, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *directoryService) stats(ctx context.Context, t *domain.Template, now time.Time) (contract.TemplateStats, error) {
	as, err := s.assignments.ListByTemplate(ctx, t.ID)
	if err != nil {
		return contract.TemplateStats{}, err
	}
	insts, err := s.instances.ListByTemplate(ctx, t.ID)
	if err != nil {
		return contract.TemplateStats{}, err
	}
	st := aggregate(t, as, now)
	st.Instances = len(insts)
	return st, nil
}

// aggregate computes the counts for one template. Cancelled assignments stay
// in Total and ByStatus but are left out of every mode-specific figure.
func aggregate(t *domain.Template, as []*domain.Assignment, now time.Time) contract.TemplateStats {
	st := contract.TemplateStats{
		TemplateID:   t.ID,
		TemplateName: t.Name,
		Category:     t.Category,
		TrackingMode: t.TrackingMode,
		Archived:     t.IsArchived(),
		Total:        len(as),
		ByStatus:     make(map[domain.Status]int),
	}

	counted, completed := 0, 0
	for _, a := range as {
		st.ByStatus[a.Status]++
		if !a.IsTerminal() {
			st.Outstanding++
		}
		if scheduler.IsOverdue(a, now) {
			st.Overdue++
		}
		if cancelled(a) {
			continue
		}
		counted++
		positive := a.Status == domain.StatusResolvedPositive
		if positive {
			completed++
		}

		switch t.TrackingMode {
		case domain.TrackingCompliance:
			switch scheduler.FreshnessOf(a, t.WarnWindowDays, now) {
			case domain.FreshnessValid, domain.FreshnessNone:
				if positive {
					st.Valid++
				} else {
					st.Missing++
				}
			case domain.FreshnessExpiringSoon:
				st.ExpiringSoon++
			case domain.FreshnessExpired:
				st.Expired++
			}
		case domain.TrackingIssuance:
			if a.SentAt != nil {
				st.Issued++
			}
			if positive {
				st.Acknowledged++
			}
			if a.Resolution != nil && a.Resolution.Outcome == domain.OutcomeRefused {
				st.Refused++
			}
		}
	}
	if counted > 0 {
		st.CompletionPct = float64(completed) * 100 / float64(counted)
	}
	return st
}

func cancelled(a *domain.Assignment) bool {
	return a.Resolution != nil && a.Resolution.Outcome == domain.OutcomeCancelled
}

func (s *directoryService) employeeNames(ctx context.Context) (map[string]string, error) {
	es, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(es))
	for _, e := range es {
		names[e.ID] = e.Name
	}
	return names, nil
}

func view(a *domain.Assignment, t *domain.Template, recipientName string, now time.Time) contract.AssignmentView {
	v := contract.AssignmentView{
		Assignment:    a,
		TemplateName:  t.Name,
		Category:      t.Category,
		TrackingMode:  t.TrackingMode,
		RecipientName: recipientName,
		Freshness:     scheduler.FreshnessOf(a, t.WarnWindowDays, now),
		Overdue:       scheduler.IsOverdue(a, now),
	}
	if days, ok := a.DaysSinceSent(now); ok {
		v.DaysSinceSent = &days
	}
	if step, in, ok := scheduler.NextStep(a, t.EscalationPolicy, now); ok {
		v.NextStep = &step
		v.NextStepInDays = in
	}
	return v
}
