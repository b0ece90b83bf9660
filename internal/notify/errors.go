package notify

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/docket/internal/domain"
)

var (
	// ErrEndpointUnavailable indicates the delivery endpoint is unreachable.
	ErrEndpointUnavailable = fmt.Errorf("%w: endpoint unavailable", domain.ErrNotifierFailure)

	// ErrTimeout indicates delivery exceeded the configured timeout.
	ErrTimeout = fmt.Errorf("%w: delivery timed out", domain.ErrNotifierFailure)

	// ErrRetryExhausted indicates all delivery attempts failed.
	ErrRetryExhausted = fmt.Errorf("%w: retry attempts exhausted", domain.ErrNotifierFailure)

	// ErrNotConfigured indicates a notifier was selected without its settings.
	ErrNotConfigured = errors.New("notifier not configured")
)

// ErrorCode maps a delivery error to a short label for logs and metrics.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEndpointUnavailable):
		return "unavailable"
	case errors.Is(err, ErrRetryExhausted):
		return "retry_exhausted"
	default:
		return "unknown"
	}
}
