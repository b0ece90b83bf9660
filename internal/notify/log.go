package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/domain"
)

// LogNotifier writes notifications to the log instead of delivering them. It
// is the default for local use and never fails.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Send(_ context.Context, n domain.Notification) error {
	channels := make([]string, len(n.Channels))
	for i, c := range n.Channels {
		channels[i] = string(c)
	}
	l.log.Info().
		Str("kind", n.Kind).
		Str("assignment_id", n.AssignmentID).
		Str("template", n.TemplateName).
		Str("recipient_id", n.RecipientID).
		Str("audience", string(n.Audience)).
		Strs("channels", channels).
		Msg("notification")
	return nil
}
