package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/domain"
)

// Publisher is the slice of *nats.Conn the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes notifications for a downstream delivery service.
//
// Subject convention: <prefix>.<audience>.<kind>, e.g.
// docket.notifications.manager.escalation
type NATSNotifier struct {
	pub    Publisher
	prefix string
	clock  clock.Clock
	log    zerolog.Logger
}

func NewNATSNotifier(pub Publisher, prefix string, clk clock.Clock, log zerolog.Logger) *NATSNotifier {
	if prefix == "" {
		prefix = "docket.notifications"
	}
	return &NATSNotifier{pub: pub, prefix: prefix, clock: clk, log: log}
}

// DialNATS connects to url with reconnects enabled and logs connection state
// changes.
func DialNATS(url string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("docket"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats: disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats: reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to nats: %v", ErrEndpointUnavailable, err)
	}
	return nc, nil
}

func (p *NATSNotifier) Subject(n domain.Notification) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, n.Audience, n.Kind)
}

func (p *NATSNotifier) Send(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return ErrTimeout
	}
	data, err := json.Marshal(NewEvent(n, p.clock.Now()))
	if err != nil {
		return fmt.Errorf("%w: marshaling event: %v", domain.ErrNotifierFailure, err)
	}

	subject := p.Subject(n)
	if err := p.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("%w: publishing to %s: %v", domain.ErrNotifierFailure, subject, err)
	}
	p.log.Debug().
		Str("subject", subject).
		Str("assignment_id", n.AssignmentID).
		Msg("notification: event published")
	return nil
}
