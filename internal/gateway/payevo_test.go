package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

func payEvoPaymentData() models.GatewayPaymentData {
	return models.GatewayPaymentData{
		PaymentRequest: models.PaymentRequest{
			Currency: "BRL",
			Amount:   10000,
			Items: []models.PaymentItem{
				{Title: "Gift Card", UnitPrice: 10000, Quantity: 1},
			},
			Customer: models.Customer{
				Name:  "Maria Silva",
				Email: "maria@example.com",
				Document: models.CustomerDocument{
					Number: "12345678901",
					Type:   "cpf",
				},
			},
		},
		ID:             "internal-1",
		ExpirationDate: time.Now().Add(30 * time.Minute),
	}
}

func TestPayEvoHealthCheck(t *testing.T) {
	assert.True(t, NewPayEvo("key", "https://api/", "http://localhost", 0).HealthCheck())
	assert.False(t, NewPayEvo("", "https://api/", "http://localhost", 0).HealthCheck())
}

func TestPayEvoCreatePixPayment(t *testing.T) {
	var received payEvoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/functions/v1/transactions", r.URL.Path)

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("secret-key"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "pe-123",
			"status": "waiting_payment",
			"pix": map[string]interface{}{
				"qrcode":         "00020126qr",
				"expirationDate": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			},
		})
	}))
	defer srv.Close()

	g := NewPayEvo("secret-key", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	result, err := g.CreatePixPayment(context.Background(), payEvoPaymentData())

	require.NoError(t, err)
	assert.Equal(t, "pe-123", result.GatewayPaymentID)
	assert.Equal(t, "00020126qr", result.Qrcode)
	assert.Equal(t, "PayEvo", result.Gateway)

	assert.Equal(t, "PIX", received.PaymentMethod)
	assert.Equal(t, 10000, received.Amount)
	assert.Equal(t, "http://localhost:8080/payments/payevo/webhook", received.PostbackURL)
	assert.Equal(t, "CPF", received.Customer.Document.Type)
	// PayEvo requires a phone, so the default is substituted.
	assert.Equal(t, "11999999999", received.Customer.Phone)
}

func TestPayEvoCreatePixPaymentUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewPayEvo("bad-key", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	_, err := g.CreatePixPayment(context.Background(), payEvoPaymentData())

	require.Error(t, err)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusUnauthorized, gerr.StatusCode)
	assert.Equal(t, "PayEvo", gerr.Provider)
}

func TestPayEvoCreateWithoutKey(t *testing.T) {
	g := NewPayEvo("", "https://api/", "http://localhost", 0)
	_, err := g.CreatePixPayment(context.Background(), payEvoPaymentData())
	assert.Error(t, err)
}

func TestPayEvoGetPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/transactions/pe-123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "pe-123",
			"status": "paid",
			"pix":    map[string]interface{}{"qrcode": "00020126qr"},
		})
	}))
	defer srv.Close()

	g := NewPayEvo("key", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	status, err := g.GetPaymentStatus(context.Background(), "pe-123")

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, status.Status)
	assert.Equal(t, "pe-123", status.GatewayPaymentID)
}

func TestPayEvoGetPaymentStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewPayEvo("key", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	_, err := g.GetPaymentStatus(context.Background(), "missing")

	assert.True(t, IsNotFound(err))
}

func TestMapPayEvoStatus(t *testing.T) {
	assert.Equal(t, models.StatusPending, mapPayEvoStatus("waiting_payment"))
	assert.Equal(t, models.StatusApproved, mapPayEvoStatus("paid"))
	assert.Equal(t, models.StatusExpired, mapPayEvoStatus("expired"))
	assert.Equal(t, models.StatusExpired, mapPayEvoStatus("canceled"))
	assert.Equal(t, models.StatusExpired, mapPayEvoStatus("refunded"))
	// Unknown vocabulary falls back to PENDING.
	assert.Equal(t, models.StatusPending, mapPayEvoStatus("something_new"))
}
