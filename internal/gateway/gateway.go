// Package gateway holds the PIX provider clients. Each provider owns its own
// request/response translation and status vocabulary; everything leaves this
// package in the canonical three-state form.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

// Gateway is implemented once per payment provider. HealthCheck is a cheap
// readiness probe (credentials present), never a network round trip.
type Gateway interface {
	Name() string
	HealthCheck() bool
	CreatePixPayment(ctx context.Context, data models.GatewayPaymentData) (*models.GatewayPaymentResult, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*models.GatewayPaymentStatus, error)
}

// Error carries the provider name and, for HTTP failures, the upstream
// status code. The message is meant for logs, not client responses.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d - %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// IsNotFound reports whether the provider answered 404 for a status lookup.
func IsNotFound(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.StatusCode == http.StatusNotFound
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
