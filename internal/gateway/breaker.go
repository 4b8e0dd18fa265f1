package gateway

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

// Breaker wraps a gateway with a circuit breaker so a provider that keeps
// failing is skipped by the orchestrator without burning a timeout on every
// request. While the breaker is open HealthCheck reports unavailable.
type Breaker struct {
	Gateway
	cb *gobreaker.CircuitBreaker
}

func WithBreaker(g Gateway) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    g.Name(),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Breaker{Gateway: g, cb: cb}
}

func (b *Breaker) HealthCheck() bool {
	return b.Gateway.HealthCheck() && b.cb.State() != gobreaker.StateOpen
}

func (b *Breaker) CreatePixPayment(ctx context.Context, data models.GatewayPaymentData) (*models.GatewayPaymentResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.Gateway.CreatePixPayment(ctx, data)
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.GatewayPaymentResult), nil
}
