package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/docket/internal/autoassign"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

type templateJSON struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	Description          string                  `json:"description,omitempty"`
	Category             domain.Category         `json:"category"`
	TrackingMode         domain.TrackingMode     `json:"tracking_mode"`
	WarnWindowDays       int                     `json:"warn_window_days"`
	AllowDecline         bool                    `json:"allow_decline"`
	RequiresVerification bool                    `json:"requires_verification"`
	EscalationPolicy     domain.EscalationPolicy `json:"escalation_policy"`
	AutoAssignRules      []domain.AutoAssignRule `json:"auto_assign_rules"`
	Permissions          domain.Permissions      `json:"permissions"`
	ArchivedAt           *time.Time              `json:"archived_at,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

func toTemplate(t *domain.Template) templateJSON {
	return templateJSON{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		Category:             t.Category,
		TrackingMode:         t.TrackingMode,
		WarnWindowDays:       t.WarnWindowDays,
		AllowDecline:         t.AllowDecline,
		RequiresVerification: t.RequiresVerification,
		EscalationPolicy:     nonNil(t.EscalationPolicy),
		AutoAssignRules:      nonNil(t.AutoAssignRules),
		Permissions:          t.Permissions,
		ArchivedAt:           t.ArchivedAt,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

type assignmentJSON struct {
	ID                  string             `json:"id"`
	TemplateID          string             `json:"template_id"`
	RecipientID         string             `json:"recipient_id"`
	InstanceID          string             `json:"instance_id"`
	Status              domain.Status      `json:"status"`
	ScheduledAt         *time.Time         `json:"scheduled_at,omitempty"`
	SentAt              *time.Time         `json:"sent_at,omitempty"`
	DueAt               *time.Time         `json:"due_at,omitempty"`
	ValidUntil          *time.Time         `json:"valid_until,omitempty"`
	RemindersSent       int                `json:"reminders_sent"`
	RejectionCount      int                `json:"rejection_count"`
	LastRejectionReason string             `json:"last_rejection_reason,omitempty"`
	Cycle               int                `json:"cycle"`
	Submission          *domain.Submission `json:"submission,omitempty"`
	Resolution          *resolutionJSON    `json:"resolution,omitempty"`
	FiredSteps          []firedStepJSON    `json:"fired_steps"`
	Version             int                `json:"version"`
}

type resolutionJSON struct {
	DecidedBy string         `json:"decided_by"`
	DecidedAt time.Time      `json:"decided_at"`
	Outcome   domain.Outcome `json:"outcome"`
	Note      string         `json:"note,omitempty"`
}

type firedStepJSON struct {
	Cycle     int                     `json:"cycle"`
	DayOffset int                     `json:"day_offset"`
	Action    domain.EscalationAction `json:"action"`
	FiredAt   time.Time               `json:"fired_at"`
}

func toAssignment(a *domain.Assignment) assignmentJSON {
	out := assignmentJSON{
		ID:                  a.ID,
		TemplateID:          a.TemplateID,
		RecipientID:         a.RecipientID,
		InstanceID:          a.InstanceID,
		Status:              a.Status,
		ScheduledAt:         a.ScheduledAt,
		SentAt:              a.SentAt,
		DueAt:               a.DueAt,
		ValidUntil:          a.ValidUntil,
		RemindersSent:       a.RemindersSent,
		RejectionCount:      a.RejectionCount,
		LastRejectionReason: a.LastRejectionReason,
		Cycle:               a.Cycle,
		Submission:          a.Submission,
		FiredSteps:          []firedStepJSON{},
		Version:             a.Version,
	}
	if r := a.Resolution; r != nil {
		out.Resolution = &resolutionJSON{DecidedBy: r.DecidedBy, DecidedAt: r.DecidedAt, Outcome: r.Outcome, Note: r.Note}
	}
	for _, f := range a.FiredSteps {
		out.FiredSteps = append(out.FiredSteps, firedStepJSON{Cycle: f.Cycle, DayOffset: f.DayOffset, Action: f.Action, FiredAt: f.FiredAt})
	}
	return out
}

func toAssignments(as []*domain.Assignment) []assignmentJSON {
	out := make([]assignmentJSON, 0, len(as))
	for _, a := range as {
		out = append(out, toAssignment(a))
	}
	return out
}

type viewJSON struct {
	Assignment     assignmentJSON         `json:"assignment"`
	TemplateName   string                 `json:"template_name"`
	Category       domain.Category        `json:"category"`
	TrackingMode   domain.TrackingMode    `json:"tracking_mode"`
	RecipientName  string                 `json:"recipient_name"`
	Freshness      domain.Freshness       `json:"freshness"`
	DaysSinceSent  *int                   `json:"days_since_sent,omitempty"`
	Overdue        bool                   `json:"overdue"`
	NextStep       *domain.EscalationStep `json:"next_step,omitempty"`
	NextStepInDays int                    `json:"next_step_in_days,omitempty"`
}

func toView(v contract.AssignmentView) viewJSON {
	return viewJSON{
		Assignment:     toAssignment(v.Assignment),
		TemplateName:   v.TemplateName,
		Category:       v.Category,
		TrackingMode:   v.TrackingMode,
		RecipientName:  v.RecipientName,
		Freshness:      v.Freshness,
		DaysSinceSent:  v.DaysSinceSent,
		Overdue:        v.Overdue,
		NextStep:       v.NextStep,
		NextStepInDays: v.NextStepInDays,
	}
}

type transitionJSON struct {
	From  domain.Status `json:"from"`
	To    domain.Status `json:"to"`
	Event string        `json:"event"`
	Actor string        `json:"actor"`
	Note  string        `json:"note,omitempty"`
	At    time.Time     `json:"at"`
}

type deliveryJSON struct {
	Audience domain.Audience  `json:"audience"`
	Channels []domain.Channel `json:"channels"`
	Kind     string           `json:"kind"`
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	At       time.Time        `json:"at"`
}

func toHistory(h *contract.AssignmentHistory) gin.H {
	transitions := make([]transitionJSON, 0, len(h.Transitions))
	for _, t := range h.Transitions {
		transitions = append(transitions, transitionJSON{From: t.From, To: t.To, Event: t.Event, Actor: t.Actor, Note: t.Note, At: t.At})
	}
	deliveries := make([]deliveryJSON, 0, len(h.Notifications))
	for _, n := range h.Notifications {
		deliveries = append(deliveries, deliveryJSON{Audience: n.Audience, Channels: n.Channels, Kind: n.Kind, Success: n.Success, Error: n.Error, At: n.At})
	}
	return gin.H{"assignment_id": h.AssignmentID, "transitions": transitions, "notifications": deliveries}
}

type employeeJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	JobTitle  string `json:"job_title,omitempty"`
	Location  string `json:"location,omitempty"`
	Role      string `json:"role,omitempty"`
	ManagerID string `json:"manager_id,omitempty"`
}

func (e employeeJSON) toDomain(id string) *domain.Employee {
	return &domain.Employee{ID: id, Name: e.Name, JobTitle: e.JobTitle, Location: e.Location, Role: e.Role, ManagerID: e.ManagerID}
}

func toEmployee(e *domain.Employee) employeeJSON {
	return employeeJSON{ID: e.ID, Name: e.Name, JobTitle: e.JobTitle, Location: e.Location, Role: e.Role, ManagerID: e.ManagerID}
}

func toEmployees(es []*domain.Employee) []employeeJSON {
	out := make([]employeeJSON, 0, len(es))
	for _, e := range es {
		out = append(out, toEmployee(e))
	}
	return out
}

type decisionJSON struct {
	TemplateID   string                  `json:"template_id"`
	TemplateName string                  `json:"template_name"`
	RuleID       string                  `json:"rule_id"`
	Kind         autoassign.DecisionKind `json:"kind"`
	ExistingID   string                  `json:"existing_id,omitempty"`
}

func toPreview(p *contract.RulePreview) gin.H {
	decisions := make([]decisionJSON, 0, len(p.Decisions))
	for _, d := range p.Decisions {
		decisions = append(decisions, decisionJSON{TemplateID: d.TemplateID, TemplateName: d.TemplateName, RuleID: d.RuleID, Kind: d.Kind, ExistingID: d.ExistingID})
	}
	return gin.H{
		"employee_id": p.Event.EmployeeID,
		"event":       p.Event.Type,
		"applied":     p.Applied,
		"decisions":   decisions,
		"created":     toAssignments(p.Created),
	}
}

type statsJSON struct {
	TemplateID    string                `json:"template_id"`
	TemplateName  string                `json:"template_name"`
	Category      domain.Category       `json:"category"`
	TrackingMode  domain.TrackingMode   `json:"tracking_mode"`
	Archived      bool                  `json:"archived"`
	Total         int                   `json:"total"`
	Instances     int                   `json:"instances"`
	ByStatus      map[domain.Status]int `json:"by_status"`
	Outstanding   int                   `json:"outstanding"`
	Overdue       int                   `json:"overdue"`
	CompletionPct float64               `json:"completion_pct"`
	Valid         int                   `json:"valid"`
	ExpiringSoon  int                   `json:"expiring_soon"`
	Expired       int                   `json:"expired"`
	Missing       int                   `json:"missing"`
	Issued        int                   `json:"issued"`
	Acknowledged  int                   `json:"acknowledged"`
	Refused       int                   `json:"refused"`
}

func toStats(s contract.TemplateStats) statsJSON {
	return statsJSON{
		TemplateID:    s.TemplateID,
		TemplateName:  s.TemplateName,
		Category:      s.Category,
		TrackingMode:  s.TrackingMode,
		Archived:      s.Archived,
		Total:         s.Total,
		Instances:     s.Instances,
		ByStatus:      s.ByStatus,
		Outstanding:   s.Outstanding,
		Overdue:       s.Overdue,
		CompletionPct: s.CompletionPct,
		Valid:         s.Valid,
		ExpiringSoon:  s.ExpiringSoon,
		Expired:       s.Expired,
		Missing:       s.Missing,
		Issued:        s.Issued,
		Acknowledged:  s.Acknowledged,
		Refused:       s.Refused,
	}
}

type sweepActionJSON struct {
	AssignmentID string                   `json:"assignment_id"`
	TemplateID   string                   `json:"template_id"`
	RecipientID  string                   `json:"recipient_id"`
	Kind         contract.SweepActionKind `json:"kind"`
	Cycle        int                      `json:"cycle"`
	DayOffset    int                      `json:"day_offset,omitempty"`
}

type sweepFailureJSON struct {
	AssignmentID string                   `json:"assignment_id"`
	Kind         contract.SweepActionKind `json:"kind"`
	Error        string                   `json:"error"`
}

func toReport(r *contract.SweepReport) gin.H {
	actions := make([]sweepActionJSON, 0, len(r.Actions))
	for _, a := range r.Actions {
		actions = append(actions, sweepActionJSON{AssignmentID: a.AssignmentID, TemplateID: a.TemplateID, RecipientID: a.RecipientID, Kind: a.Kind, Cycle: a.Cycle, DayOffset: a.DayOffset})
	}
	failures := make([]sweepFailureJSON, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, sweepFailureJSON{AssignmentID: f.AssignmentID, Kind: f.Kind, Error: f.Err})
	}
	return gin.H{
		"now":             r.Now,
		"dry_run":         r.DryRun,
		"scanned":         r.Scanned,
		"actions":         actions,
		"failures":        failures,
		"notify_failures": r.NotifyFailures,
		"warnings":        nonNil(r.Warnings),
		"duration_ms":     r.Duration.Milliseconds(),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
