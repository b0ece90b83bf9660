package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/domain"
)

// WebhookConfig configures the HTTP webhook notifier.
type WebhookConfig struct {
	URL        string
	TimeoutMs  int
	MaxRetries int
}

// WebhookNotifier POSTs each notification as JSON to a delivery service.
type WebhookNotifier struct {
	cfg   WebhookConfig
	http  *http.Client
	clock clock.Clock
	log   zerolog.Logger
}

func NewWebhookNotifier(cfg WebhookConfig, clk clock.Clock, log zerolog.Logger) (*WebhookNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook: %w: url is empty", ErrNotConfigured)
	}
	return &WebhookNotifier{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
		clock: clk,
		log:   log,
	}, nil
}

func (w *WebhookNotifier) Send(ctx context.Context, n domain.Notification) error {
	data, err := json.Marshal(NewEvent(n, w.clock.Now()))
	if err != nil {
		return fmt.Errorf("%w: marshaling event: %v", domain.ErrNotifierFailure, err)
	}

	if w.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(w.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	var lastErr error
	attempts := 1 + w.cfg.MaxRetries
	for i := 0; i < attempts; i++ {
		lastErr = w.post(ctx, data)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		w.log.Debug().Err(lastErr).Int("attempt", i+1).Str("assignment_id", n.AssignmentID).Msg("webhook: delivery attempt failed")
	}

	if ctx.Err() != nil {
		return ErrTimeout
	}
	if isConnectionError(lastErr) {
		return ErrEndpointUnavailable
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (w *WebhookNotifier) post(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
