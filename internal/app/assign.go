package app

import (
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

// CreateAssignmentRequest sends one template to one or more recipients as a
// single instance.
type CreateAssignmentRequest struct {
	TemplateID   string
	RecipientIDs []string
	Actor        domain.Actor
	// ScheduleAt defers delivery; nil sends immediately.
	ScheduleAt *time.Time
	DueAt      *time.Time
	Channels   []domain.Channel
	Note       string
}

func NewCreateAssignmentRequest(templateID string, actor domain.Actor, recipientIDs ...string) CreateAssignmentRequest {
	return CreateAssignmentRequest{
		TemplateID:   templateID,
		RecipientIDs: recipientIDs,
		Actor:        actor,
		Channels:     []domain.Channel{domain.ChannelEmail},
	}
}

type CreateAssignmentResult struct {
	Instance    *domain.AssignmentInstance
	Assignments []*domain.Assignment
	// NotifyErrors counts recipient notifications that failed after commit.
	NotifyErrors int
}

// AssignmentView is an assignment decorated with the values derived from the
// clock at read time.
type AssignmentView struct {
	Assignment    *domain.Assignment
	TemplateName  string
	Category      domain.Category
	TrackingMode  domain.TrackingMode
	RecipientName string
	Freshness     domain.Freshness
	DaysSinceSent *int
	Overdue       bool
	// NextStep is the next escalation step that is not yet due.
	NextStep       *domain.EscalationStep
	NextStepInDays int
}

type AssignmentHistory struct {
	AssignmentID  string
	Transitions   []*domain.Transition
	Notifications []*domain.NotificationRecord
}

// ListFilter narrows a template's assignment listing. Zero values match all.
type ListFilter struct {
	Statuses    []domain.Status
	Freshness   domain.Freshness
	RecipientID string
}
