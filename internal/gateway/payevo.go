package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

type PayEvo struct {
	apiKey string
	apiURL string
	domain string
	client *http.Client
}

func NewPayEvo(apiKey, apiURL, domain string, timeout time.Duration) *PayEvo {
	if apiURL == "" {
		apiURL = "https://apiv2.payevo.com.br/"
	}
	return &PayEvo{
		apiKey: apiKey,
		apiURL: apiURL,
		domain: domain,
		client: newHTTPClient(timeout),
	}
}

func (g *PayEvo) Name() string {
	return "PayEvo"
}

func (g *PayEvo) HealthCheck() bool {
	return g.apiKey != "" && g.apiURL != ""
}

type payEvoItem struct {
	Title       string `json:"title"`
	UnitPrice   int    `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	ExternalRef string `json:"externalRef"`
}

type payEvoDocument struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type payEvoCustomer struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Document payEvoDocument `json:"document"`
}

type payEvoRequest struct {
	PostbackURL   string         `json:"postbackUrl"`
	Items         []payEvoItem   `json:"items"`
	Customer      payEvoCustomer `json:"customer"`
	PaymentMethod string         `json:"paymentMethod"`
	Pix           struct {
		ExpiresInDays int `json:"expiresInDays"`
	} `json:"pix"`
	Amount int `json:"amount"`
}

type payEvoResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Pix    struct {
		Qrcode         string `json:"qrcode"`
		ExpirationDate string `json:"expirationDate"`
	} `json:"pix"`
}

func (g *PayEvo) convertRequest(data models.GatewayPaymentData) payEvoRequest {
	items := make([]payEvoItem, len(data.Items))
	for i, item := range data.Items {
		items[i] = payEvoItem{
			Title:       item.Title,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			ExternalRef: fmt.Sprintf("ITEM_%d_%d", time.Now().UnixMilli(), i),
		}
	}

	// PayEvo requires a phone; substitute a default when the customer has none.
	phone := data.Customer.Phone
	if phone == "" {
		phone = "11999999999"
	}

	req := payEvoRequest{
		PostbackURL: g.domain + "/payments/payevo/webhook",
		Items:       items,
		Customer: payEvoCustomer{
			Name:  data.Customer.Name,
			Email: data.Customer.Email,
			Phone: phone,
			Document: payEvoDocument{
				Number: data.Customer.Document.Number,
				Type:   strings.ToUpper(data.Customer.Document.Type),
			},
		},
		PaymentMethod: "PIX",
		Amount:        data.Amount,
	}
	req.Pix.ExpiresInDays = 1
	return req
}

func mapPayEvoStatus(status string) models.PaymentStatus {
	switch status {
	case "waiting_payment":
		return models.StatusPending
	case "paid":
		return models.StatusApproved
	case "expired", "canceled", "refunded":
		return models.StatusExpired
	default:
		// Unmapped vocabulary falls back to PENDING rather than failing.
		return models.StatusPending
	}
}

func (g *PayEvo) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(g.apiKey))
}

func (g *PayEvo) CreatePixPayment(ctx context.Context, data models.GatewayPaymentData) (*models.GatewayPaymentResult, error) {
	if g.apiKey == "" {
		return nil, &Error{Provider: g.Name(), Message: "API Key não configurada"}
	}

	body, err := json.Marshal(g.convertRequest(data))
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"functions/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", g.authHeader())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Provider: g.Name(), StatusCode: resp.StatusCode, Message: readBody(resp.Body)}
	}

	var out payEvoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"gateway":            g.Name(),
		"gateway_payment_id": out.ID,
	}).Info("PIX criado com sucesso")

	return &models.GatewayPaymentResult{
		Qrcode:           out.Pix.Qrcode,
		GatewayPaymentID: out.ID,
		ExpirationDate:   parseExpiration(out.Pix.ExpirationDate, data.ExpirationDate),
		Gateway:          g.Name(),
	}, nil
}

func (g *PayEvo) GetPaymentStatus(ctx context.Context, paymentID string) (*models.GatewayPaymentStatus, error) {
	if g.apiKey == "" {
		return nil, &Error{Provider: g.Name(), Message: "API Key não configurada"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"functions/v1/transactions/"+paymentID, nil)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", g.authHeader())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Provider: g.Name(), StatusCode: resp.StatusCode, Message: readBody(resp.Body)}
	}

	var out payEvoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}

	return &models.GatewayPaymentStatus{
		Status:           mapPayEvoStatus(out.Status),
		Gateway:          g.Name(),
		GatewayPaymentID: out.ID,
		Qrcode:           out.Pix.Qrcode,
	}, nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return strings.TrimSpace(string(b))
}

func parseExpiration(raw string, fallback time.Time) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return fallback
}
