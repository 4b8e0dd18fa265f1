package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/gateway"
	"github.com/ImPabl0/centralizador-gateways/internal/metrics"
	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

var (
	ErrNoGatewayAvailable = errors.New("nenhum gateway de pagamento está disponível no momento")
	ErrUnknownGateway     = errors.New("gateway não configurado")
)

// PaymentStore is the persistence surface the orchestrator needs. The
// in-memory implementation lives in internal/store.
type PaymentStore interface {
	Save(p *models.StoredPayment) error
	Get(id string) (models.StoredPayment, error)
	GetByGatewayID(gatewayPaymentID string) (models.StoredPayment, error)
	UpdateStatus(id string, status models.PaymentStatus) error
}

// PaymentService tries the configured gateways in priority order and keeps
// the resulting payments in the store. First success wins; gateways are
// never raced in parallel.
type PaymentService struct {
	gateways  []gateway.Gateway
	byName    map[string]gateway.Gateway
	store     PaymentStore
	pixExpiry time.Duration
}

func NewPaymentService(gateways []gateway.Gateway, store PaymentStore, pixExpiry time.Duration) *PaymentService {
	if pixExpiry <= 0 {
		pixExpiry = 30 * time.Minute
	}
	byName := make(map[string]gateway.Gateway, len(gateways))
	for _, g := range gateways {
		byName[strings.ToLower(g.Name())] = g
	}
	return &PaymentService{
		gateways:  gateways,
		byName:    byName,
		store:     store,
		pixExpiry: pixExpiry,
	}
}

func (s *PaymentService) CreatePixPayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	paymentID := uuid.NewString()
	expiration := time.Now().Add(s.pixExpiry)

	for _, g := range s.gateways {
		log := logrus.WithFields(logrus.Fields{
			"gateway":    g.Name(),
			"payment_id": paymentID,
		})

		if !g.HealthCheck() {
			log.Warn("gateway indisponível, pulando")
			metrics.GatewayAttemptsTotal.WithLabelValues(g.Name(), "skipped").Inc()
			continue
		}

		result, err := g.CreatePixPayment(ctx, models.GatewayPaymentData{
			PaymentRequest: *req,
			ID:             paymentID,
			ExpirationDate: expiration,
		})
		if err != nil {
			// Provider detail stays in the logs; the client only ever sees
			// the generic exhaustion error.
			log.WithError(err).Error("erro ao criar PIX no gateway")
			metrics.GatewayAttemptsTotal.WithLabelValues(g.Name(), "error").Inc()
			continue
		}

		stored := &models.StoredPayment{
			ID:           paymentID,
			Gateway:      g.Name(),
			OriginalData: *req,
			Result:       *result,
			CreatedAt:    time.Now(),
			Status:       models.StatusPending,
		}
		if err := s.store.Save(stored); err != nil {
			return nil, err
		}

		metrics.GatewayAttemptsTotal.WithLabelValues(g.Name(), "success").Inc()
		metrics.PaymentsCreatedTotal.WithLabelValues(g.Name()).Inc()
		log.Info("PIX criado com sucesso")

		return &models.PaymentResponse{
			ID:             paymentID,
			Qrcode:         result.Qrcode,
			ExpirationDate: expiration,
			Status:         models.StatusPending,
		}, nil
	}

	return nil, ErrNoGatewayAvailable
}

// GetPixPaymentStatus reads the cached payment. A PENDING payment whose
// expiration has passed transitions to EXPIRED as a side effect of the read;
// there is no background sweep and no gateway re-query on this path.
func (s *PaymentService) GetPixPaymentStatus(id string) (*models.PaymentResponse, error) {
	payment, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	expiration := payment.Result.ExpirationDate
	if expiration.IsZero() {
		expiration = payment.CreatedAt.Add(s.pixExpiry)
	}

	if payment.Status == models.StatusPending && time.Now().After(expiration) {
		if err := s.store.UpdateStatus(id, models.StatusExpired); err == nil {
			payment.Status = models.StatusExpired
		}
	}

	return &models.PaymentResponse{
		ID:             payment.ID,
		Qrcode:         payment.Result.Qrcode,
		ExpirationDate: expiration,
		Status:         payment.Status,
	}, nil
}

// Gateway resolves one named provider for the direct (non-failover) routes.
func (s *PaymentService) Gateway(provider string) (gateway.Gateway, bool) {
	g, ok := s.byName[strings.ToLower(provider)]
	return g, ok
}

// CreateDirect talks to a single named gateway, bypassing failover. The
// response carries the gateway-assigned id, since that is the id provider
// webhooks and status queries will use. Direct payments are not stored.
func (s *PaymentService) CreateDirect(ctx context.Context, provider string, req *models.PaymentRequest, expiresInDays int) (*models.PaymentResponse, error) {
	g, ok := s.Gateway(provider)
	if !ok {
		return nil, ErrUnknownGateway
	}
	if expiresInDays <= 0 {
		expiresInDays = 1
	}

	expiration := time.Now().Add(time.Duration(expiresInDays) * 24 * time.Hour)
	result, err := g.CreatePixPayment(ctx, models.GatewayPaymentData{
		PaymentRequest: *req,
		ID:             uuid.NewString(),
		ExpirationDate: expiration,
	})
	if err != nil {
		return nil, err
	}

	metrics.GatewayAttemptsTotal.WithLabelValues(g.Name(), "success").Inc()
	metrics.PaymentsCreatedTotal.WithLabelValues(g.Name()).Inc()

	return &models.PaymentResponse{
		ID:             result.GatewayPaymentID,
		Qrcode:         result.Qrcode,
		ExpirationDate: result.ExpirationDate,
		Status:         models.StatusPending,
	}, nil
}

// StatusDirect queries one named provider for the authoritative state,
// not the cached store.
func (s *PaymentService) StatusDirect(ctx context.Context, provider, id string) (*models.GatewayPaymentStatus, error) {
	g, ok := s.Gateway(provider)
	if !ok {
		return nil, ErrUnknownGateway
	}
	return g.GetPaymentStatus(ctx, id)
}
