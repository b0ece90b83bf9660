package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/repository"
)

type templateService struct {
	templates repository.TemplateRepo
	uow       db.UnitOfWork
	clock     clock.Clock
	observer  UseCaseObserver
}

func NewTemplateService(
	templates repository.TemplateRepo,
	uow db.UnitOfWork,
	clk clock.Clock,
	observers ...UseCaseObserver,
) TemplateService {
	return &templateService{
		templates: templates,
		uow:       uow,
		clock:     clk,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *templateService) Create(ctx context.Context, t *domain.Template) (err error) {
	defer observe(ctx, s.observer, "create-template", s.clock.Now(), map[string]any{"name": t.Name})(&err)

	t.Name = strings.TrimSpace(t.Name)
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := s.clock.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.ApplyDefaults()
	if err = t.Validate(); err != nil {
		return err
	}
	rules, err := domain.NormalizeRules(t.AutoAssignRules)
	if err != nil {
		return err
	}
	t.AutoAssignRules = rules
	t.EscalationPolicy = t.EscalationPolicy.Sorted()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		if _, err := templates.GetByName(ctx, t.Name); err == nil {
			return fmt.Errorf("%w: template %q already exists", domain.ErrStateConflict, t.Name)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return templates.Create(ctx, t)
	})
}

func (s *templateService) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *templateService) Resolve(ctx context.Context, idOrName string) (*domain.Template, error) {
	if err := requireID("template", idOrName); err != nil {
		return nil, err
	}
	return resolveTemplate(ctx, s.templates, idOrName)
}

func (s *templateService) List(ctx context.Context, includeArchived bool) ([]*domain.Template, error) {
	return s.templates.List(ctx, includeArchived)
}

func (s *templateService) Archive(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "archive-template", id, func(t *domain.Template) error {
		return t.Archive(s.clock.Now())
	})
	return err
}

func (s *templateService) Unarchive(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "unarchive-template", id, func(t *domain.Template) error {
		return t.Unarchive(s.clock.Now())
	})
	return err
}

// EditEscalationPolicy replaces the policy. Assignments in flight pick it up
// on the next sweep; steps that already fired stay fired.
func (s *templateService) EditEscalationPolicy(ctx context.Context, id string, policy domain.EscalationPolicy) (*domain.Template, error) {
	return s.mutate(ctx, "edit-escalation-policy", id, func(t *domain.Template) error {
		return t.SetEscalationPolicy(policy, s.clock.Now())
	})
}

func (s *templateService) EditAutoAssignRules(ctx context.Context, id string, rules []domain.AutoAssignRule) (*domain.Template, error) {
	return s.mutate(ctx, "edit-auto-assign-rules", id, func(t *domain.Template) error {
		return t.SetAutoAssignRules(rules, s.clock.Now())
	})
}

func (s *templateService) UpsertRule(ctx context.Context, templateID string, rule domain.AutoAssignRule) (domain.AutoAssignRule, error) {
	var saved domain.AutoAssignRule
	_, err := s.mutate(ctx, "upsert-rule", templateID, func(t *domain.Template) error {
		var err error
		saved, err = t.UpsertAutoAssignRule(rule, s.clock.Now())
		return err
	})
	return saved, err
}

func (s *templateService) RemoveRule(ctx context.Context, templateID, ruleID string) error {
	_, err := s.mutate(ctx, "remove-rule", templateID, func(t *domain.Template) error {
		return t.RemoveAutoAssignRule(ruleID, s.clock.Now())
	})
	return err
}

// mutate loads the template by ID or name inside a transaction, applies fn
// and writes the result back.
func (s *templateService) mutate(ctx context.Context, useCase, idOrName string, fn func(t *domain.Template) error) (tpl *domain.Template, err error) {
	defer observe(ctx, s.observer, useCase, s.clock.Now(), map[string]any{"template": idOrName})(&err)

	if err = requireID("template", idOrName); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		t, err := resolveTemplate(ctx, templates, idOrName)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		tpl = t
		return templates.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}
