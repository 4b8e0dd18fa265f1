package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/metrics"
	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

var ErrMissingPaymentID = errors.New("payment id missing")

// Notifier is the fanout surface of the SSE registry.
type Notifier interface {
	Publish(gateway, paymentID string, payload interface{})
}

// StatusPublisher mirrors normalized status events to an event bus.
type StatusPublisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
}

// WebhookIngress normalizes inbound provider callbacks into canonical
// status-update events. Provider quirks (field name variants, "paid"
// spellings) are absorbed here so the registry stays provider-agnostic.
type WebhookIngress struct {
	notifier  Notifier
	store     PaymentStore
	publisher StatusPublisher
	topic     string
}

func NewWebhookIngress(notifier Notifier, store PaymentStore, publisher StatusPublisher, topic string) *WebhookIngress {
	if topic == "" {
		topic = models.PaymentStatusUpdatedTopic
	}
	return &WebhookIngress{
		notifier:  notifier,
		store:     store,
		publisher: publisher,
		topic:     topic,
	}
}

// Handle forwards the callback to every subscriber of (gateway, paymentID).
// Providers disagree on field names, so the id is taken from the first of
// id/transaction_id/payment_id and the status from status/payment_status.
// A webhook with no current subscriber is still acknowledged.
func (w *WebhookIngress) Handle(ctx context.Context, gatewayName string, payload map[string]interface{}) error {
	paymentID := firstString(payload, "id", "transaction_id", "payment_id")
	if paymentID == "" {
		return ErrMissingPaymentID
	}

	status := firstString(payload, "status", "payment_status")
	if strings.EqualFold(status, "paid") {
		status = "approved"
	}

	event := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		event[k] = v
	}
	event["status"] = status

	metrics.WebhooksReceivedTotal.WithLabelValues(gatewayName).Inc()
	logrus.WithFields(logrus.Fields{
		"gateway":    gatewayName,
		"payment_id": paymentID,
		"status":     status,
	}).Info("webhook processado")

	w.notifier.Publish(gatewayName, paymentID, event)

	canonical := canonicalStatus(status)
	if canonical != "" && w.store != nil {
		w.reconcile(paymentID, canonical)
	}

	if w.publisher != nil {
		mirror := models.PaymentStatusEvent{
			PaymentID:  paymentID,
			Gateway:    gatewayName,
			Status:     status,
			Canonical:  canonical,
			ReceivedAt: time.Now().UTC(),
		}
		if err := w.publisher.Publish(ctx, w.topic, mirror); err != nil {
			logrus.WithError(err).Warn("falha ao espelhar evento de status")
		}
	}

	return nil
}

// reconcile applies the webhook status to the stored payment, resolving the
// provider-assigned id through the store index. Best effort: a webhook never
// fails because the payment is unknown or already terminal.
func (w *WebhookIngress) reconcile(gatewayPaymentID string, status models.PaymentStatus) {
	payment, err := w.store.GetByGatewayID(gatewayPaymentID)
	if err != nil {
		return
	}
	if err := w.store.UpdateStatus(payment.ID, status); err != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"status":     status,
		}).WithError(err).Debug("status do webhook não aplicado ao pagamento")
	}
}

func canonicalStatus(status string) models.PaymentStatus {
	switch strings.ToLower(status) {
	case "approved":
		return models.StatusApproved
	case "expired":
		return models.StatusExpired
	default:
		return ""
	}
}

// firstString returns the first present, non-empty candidate field.
// Providers send ids both as strings and as JSON numbers.
func firstString(payload map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := payload[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}
