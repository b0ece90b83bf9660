package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/repository"
)

// txRepos binds every repository to one transaction.
type txRepos struct {
	templates   repository.TemplateRepo
	employees   repository.EmployeeRepo
	instances   repository.InstanceRepo
	assignments repository.AssignmentRepo
	transitions repository.TransitionRepo
}

func reposFor(q db.DBTX) txRepos {
	return txRepos{
		templates:   repository.NewSQLiteTemplateRepo(q),
		employees:   repository.NewSQLiteEmployeeRepo(q),
		instances:   repository.NewSQLiteInstanceRepo(q),
		assignments: repository.NewSQLiteAssignmentRepo(q),
		transitions: repository.NewSQLiteTransitionRepo(q),
	}
}

// Transition event names recorded in assignment history.
const (
	eventCreate      = "create"
	eventSchedule    = "schedule"
	eventSend        = "send"
	eventSubmit      = "submit"
	eventApprove     = "approve"
	eventReject      = "reject"
	eventDecline     = "decline"
	eventCancel      = "cancel"
	eventRemind      = "remind"
	eventEscalate    = "escalate"
	eventMarkRefused = "mark_refused"
	eventLapse       = "lapse"
	eventRenew       = "renew"
	eventAutoAssign  = "auto_assign"
)

func newTransition(a *domain.Assignment, from domain.Status, event string, actor domain.Actor, note string, now time.Time) *domain.Transition {
	return &domain.Transition{
		ID:           uuid.New().String(),
		AssignmentID: a.ID,
		From:         from,
		To:           a.Status,
		Event:        event,
		Actor:        actor.ID,
		Note:         note,
		At:           now,
	}
}

// resolveTemplate looks a template up by ID, then by name.
func resolveTemplate(ctx context.Context, templates repository.TemplateRepo, idOrName string) (*domain.Template, error) {
	t, err := templates.GetByID(ctx, idOrName)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	t, err = templates.GetByName(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", idOrName, err)
	}
	return t, nil
}

func orNow(now *time.Time, fallback time.Time) time.Time {
	if now != nil {
		return now.UTC()
	}
	return fallback
}

func requireID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", domain.ErrValidation, kind)
	}
	return nil
}
