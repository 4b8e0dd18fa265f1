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

func blackCatPaymentData() models.GatewayPaymentData {
	return models.GatewayPaymentData{
		PaymentRequest: models.PaymentRequest{
			Currency: "BRL",
			Amount:   5000,
			Items: []models.PaymentItem{
				{Title: "Camiseta", UnitPrice: 2500, Quantity: 2, Tangible: true},
			},
			Customer: models.Customer{
				Name:  "João Souza",
				Email: "joao@example.com",
				Document: models.CustomerDocument{
					Number: "12345678901",
					Type:   "CPF",
				},
			},
		},
		ID:             "internal-2",
		ExpirationDate: time.Now().Add(30 * time.Minute),
	}
}

func TestBlackCatHealthCheck(t *testing.T) {
	assert.True(t, NewBlackCat("pub", "sec", "", "http://localhost", 0).HealthCheck())
	assert.False(t, NewBlackCat("pub", "", "", "http://localhost", 0).HealthCheck())
	assert.False(t, NewBlackCat("", "sec", "", "http://localhost", 0).HealthCheck())
}

func TestBlackCatCreatePixPayment(t *testing.T) {
	var received blackCatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions", r.URL.Path)

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("pub:sec"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		// BlackCat assigns numeric transaction ids.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     987654,
			"status": "pending",
			"pix": map[string]interface{}{
				"qrcode":         "00020126qr-bc",
				"expirationDate": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			},
		})
	}))
	defer srv.Close()

	g := NewBlackCat("pub", "sec", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	result, err := g.CreatePixPayment(context.Background(), blackCatPaymentData())

	require.NoError(t, err)
	assert.Equal(t, "987654", result.GatewayPaymentID)
	assert.Equal(t, "00020126qr-bc", result.Qrcode)

	assert.Equal(t, "BRL", received.Currency)
	assert.Equal(t, "pix", received.PaymentMethod)
	assert.Equal(t, "http://localhost:8080/payments/blackcat/webhook", received.PostbackURL)
	assert.Equal(t, "cpf", received.Customer.Document.Type)
	require.Len(t, received.Items, 1)
	assert.True(t, received.Items[0].Tangible)
}

func TestBlackCatCreateWithoutKeys(t *testing.T) {
	g := NewBlackCat("", "", "", "http://localhost", 0)
	_, err := g.CreatePixPayment(context.Background(), blackCatPaymentData())
	assert.Error(t, err)
}

func TestBlackCatGetPaymentStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewBlackCat("pub", "sec", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	_, err := g.GetPaymentStatus(context.Background(), "404")

	assert.True(t, IsNotFound(err))
}

func TestBlackCatGetPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions/987654", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     987654,
			"status": "paid",
			"pix":    map[string]interface{}{"qrcode": "00020126qr-bc"},
		})
	}))
	defer srv.Close()

	g := NewBlackCat("pub", "sec", srv.URL+"/", "http://localhost:8080", 5*time.Second)
	status, err := g.GetPaymentStatus(context.Background(), "987654")

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, status.Status)
	assert.Equal(t, "987654", status.GatewayPaymentID)
}

func TestMapBlackCatStatus(t *testing.T) {
	assert.Equal(t, models.StatusPending, mapBlackCatStatus("pending"))
	assert.Equal(t, models.StatusApproved, mapBlackCatStatus("paid"))
	assert.Equal(t, models.StatusExpired, mapBlackCatStatus("refunded"))
	assert.Equal(t, models.StatusExpired, mapBlackCatStatus("refused"))
	assert.Equal(t, models.StatusPending, mapBlackCatStatus("whatever"))
}
