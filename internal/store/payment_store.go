package store

import (
	"errors"
	"sync"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidTransition  = errors.New("invalid payment status transition")
	ErrPaymentAlreadyMade = errors.New("payment already stored")
)

// PaymentStore keeps created payments in memory for the lifetime of the
// process. It is the sole owner of StoredPayment records; Get hands out
// copies, never references.
type PaymentStore struct {
	mu        sync.RWMutex
	payments  map[string]*models.StoredPayment
	gatewayID map[string]string
}

func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		payments:  make(map[string]*models.StoredPayment),
		gatewayID: make(map[string]string),
	}
}

func (s *PaymentStore) Save(p *models.StoredPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID]; exists {
		return ErrPaymentAlreadyMade
	}

	stored := *p
	s.payments[p.ID] = &stored
	if p.Result.GatewayPaymentID != "" {
		s.gatewayID[p.Result.GatewayPaymentID] = p.ID
	}
	return nil
}

func (s *PaymentStore) Get(id string) (models.StoredPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return models.StoredPayment{}, ErrPaymentNotFound
	}
	return *p, nil
}

// GetByGatewayID resolves a provider-assigned id (the one carried by
// webhooks) back to the internally stored payment.
func (s *PaymentStore) GetByGatewayID(gatewayPaymentID string) (models.StoredPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.gatewayID[gatewayPaymentID]
	if !ok {
		return models.StoredPayment{}, ErrPaymentNotFound
	}
	p, ok := s.payments[id]
	if !ok {
		return models.StoredPayment{}, ErrPaymentNotFound
	}
	return *p, nil
}

// UpdateStatus applies a status change, rejecting anything outside the
// monotonic PENDING -> APPROVED|EXPIRED lifecycle. Setting the current
// status again is a no-op, not an error.
func (s *PaymentStore) UpdateStatus(id string, status models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	if p.Status == status {
		return nil
	}
	if !p.Status.CanTransitionTo(status) {
		return ErrInvalidTransition
	}
	p.Status = status
	return nil
}

func (s *PaymentStore) All() []models.StoredPayment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.StoredPayment, 0, len(s.payments))
	for _, p := range s.payments {
		all = append(all, *p)
	}
	return all
}
