package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
	"github.com/ImPabl0/centralizador-gateways/internal/service"
	"github.com/ImPabl0/centralizador-gateways/internal/store"
)

type published struct {
	gateway   string
	paymentID string
	payload   interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *fakeNotifier) Publish(gateway, paymentID string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{gateway: gateway, paymentID: paymentID, payload: payload})
}

func (n *fakeNotifier) all() []published {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]published(nil), n.events...)
}

type fakeStatusPublisher struct {
	topic    string
	messages []interface{}
}

func (p *fakeStatusPublisher) Publish(_ context.Context, topic string, message interface{}) error {
	p.topic = topic
	p.messages = append(p.messages, message)
	return nil
}

func TestWebhook_MissingPaymentID(t *testing.T) {
	notifier := &fakeNotifier{}
	ingress := service.NewWebhookIngress(notifier, nil, nil, "")

	err := ingress.Handle(context.Background(), "payevo", map[string]interface{}{"status": "paid"})

	assert.ErrorIs(t, err, service.ErrMissingPaymentID)
	assert.Empty(t, notifier.all())
}

func TestWebhook_NormalizesPaidToApproved(t *testing.T) {
	notifier := &fakeNotifier{}
	ingress := service.NewWebhookIngress(notifier, nil, nil, "")

	err := ingress.Handle(context.Background(), "payevo", map[string]interface{}{
		"id":     "gw1",
		"status": "PAID",
	})

	require.NoError(t, err)
	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "payevo", events[0].gateway)
	assert.Equal(t, "gw1", events[0].paymentID)

	payload := events[0].payload.(map[string]interface{})
	assert.Equal(t, "approved", payload["status"])
}

func TestWebhook_AcceptsAlternateFieldNames(t *testing.T) {
	notifier := &fakeNotifier{}
	ingress := service.NewWebhookIngress(notifier, nil, nil, "")

	err := ingress.Handle(context.Background(), "blackcat", map[string]interface{}{
		"transaction_id": "tx-9",
		"payment_status": "pending",
	})

	require.NoError(t, err)
	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "tx-9", events[0].paymentID)
	payload := events[0].payload.(map[string]interface{})
	assert.Equal(t, "pending", payload["status"])
}

func TestWebhook_NumericPaymentID(t *testing.T) {
	notifier := &fakeNotifier{}
	ingress := service.NewWebhookIngress(notifier, nil, nil, "")

	// json.Unmarshal into map[string]interface{} yields float64 for numbers.
	err := ingress.Handle(context.Background(), "blackcat", map[string]interface{}{
		"id":     float64(123456),
		"status": "paid",
	})

	require.NoError(t, err)
	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "123456", events[0].paymentID)
}

func TestWebhook_NoSubscribersStillAcknowledged(t *testing.T) {
	ingress := service.NewWebhookIngress(&fakeNotifier{}, nil, nil, "")

	err := ingress.Handle(context.Background(), "payevo", map[string]interface{}{"id": "gw1"})

	assert.NoError(t, err)
}

func TestWebhook_ReconcilesStoredPayment(t *testing.T) {
	st := store.NewPaymentStore()
	require.NoError(t, st.Save(&models.StoredPayment{
		ID:      "p1",
		Gateway: "PayEvo",
		Result: models.GatewayPaymentResult{
			GatewayPaymentID: "gw1",
			ExpirationDate:   time.Now().Add(30 * time.Minute),
		},
		CreatedAt: time.Now(),
		Status:    models.StatusPending,
	}))
	ingress := service.NewWebhookIngress(&fakeNotifier{}, st, nil, "")

	err := ingress.Handle(context.Background(), "payevo", map[string]interface{}{
		"id":     "gw1",
		"status": "paid",
	})

	require.NoError(t, err)
	stored, err := st.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestWebhook_ReconcileIgnoresUnknownPayment(t *testing.T) {
	ingress := service.NewWebhookIngress(&fakeNotifier{}, store.NewPaymentStore(), nil, "")

	err := ingress.Handle(context.Background(), "payevo", map[string]interface{}{
		"id":     "never-created",
		"status": "paid",
	})

	assert.NoError(t, err)
}

func TestWebhook_MirrorsCanonicalEvent(t *testing.T) {
	pub := &fakeStatusPublisher{}
	ingress := service.NewWebhookIngress(&fakeNotifier{}, nil, pub, "payments.status.updated")

	err := ingress.Handle(context.Background(), "payevo", map[string]interface{}{
		"id":     "gw1",
		"status": "paid",
	})

	require.NoError(t, err)
	assert.Equal(t, "payments.status.updated", pub.topic)
	require.Len(t, pub.messages, 1)

	evt := pub.messages[0].(models.PaymentStatusEvent)
	assert.Equal(t, "gw1", evt.PaymentID)
	assert.Equal(t, "approved", evt.Status)
	assert.Equal(t, models.StatusApproved, evt.Canonical)
}
