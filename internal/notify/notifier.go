// Package notify hands notifications to external delivery systems. The engine
// treats every notifier as best-effort: errors are reported to the caller for
// logging and never undo engine state.
package notify

import (
	"context"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

// Notifier delivers one notification. Implementations wrap delivery errors
// with domain.ErrNotifierFailure.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n domain.Notification) error

func (f NotifierFunc) Send(ctx context.Context, n domain.Notification) error {
	return f(ctx, n)
}

// Event is the JSON document published by the webhook and NATS notifiers.
type Event struct {
	EventType    string            `json:"event_type"`
	AssignmentID string            `json:"assignment_id"`
	TemplateID   string            `json:"template_id"`
	TemplateName string            `json:"template_name,omitempty"`
	RecipientID  string            `json:"recipient_id"`
	Audience     string            `json:"audience"`
	Channels     []string          `json:"channels"`
	Context      map[string]string `json:"context,omitempty"`
	SentAt       time.Time         `json:"sent_at"`
}

// NewEvent flattens a notification for publishing.
func NewEvent(n domain.Notification, now time.Time) Event {
	channels := make([]string, len(n.Channels))
	for i, c := range n.Channels {
		channels[i] = string(c)
	}
	return Event{
		EventType:    n.Kind,
		AssignmentID: n.AssignmentID,
		TemplateID:   n.TemplateID,
		TemplateName: n.TemplateName,
		RecipientID:  n.RecipientID,
		Audience:     string(n.Audience),
		Channels:     channels,
		Context:      n.Context,
		SentAt:       now,
	}
}
