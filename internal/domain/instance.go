package domain

import "time"

// AssignmentInstance groups the assignments created by one send action.
type AssignmentInstance struct {
	ID         string
	TemplateID string
	AssignedBy string
	AssignedAt time.Time
	Source     InstanceSource
	Trigger    Trigger
	Note       string
}

// Transition is one entry of an assignment's audit history.
type Transition struct {
	ID           string
	AssignmentID string
	From         Status
	To           Status
	Event        string
	Actor        string
	Note         string
	At           time.Time
}

// Notification is handed to the external notifier.
type Notification struct {
	AssignmentID string
	TemplateID   string
	TemplateName string
	RecipientID  string
	Audience     Audience
	Channels     []Channel
	Kind         string
	Context      map[string]string
}

// NotificationRecord is the delivery log entry for one notifier call.
type NotificationRecord struct {
	ID           string
	AssignmentID string
	Audience     Audience
	Channels     []Channel
	Kind         string
	Success      bool
	Error        string
	At           time.Time
}

// ValidateChannels checks that at least one known channel was selected.
func ValidateChannels(channels []Channel) error {
	if len(channels) == 0 {
		return validationf("at least one notification channel is required")
	}
	for _, c := range channels {
		if !ValidChannels[c] {
			return validationf("unknown notification channel %q", c)
		}
	}
	return nil
}
