package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

type BlackCat struct {
	publicKey string
	secretKey string
	apiURL    string
	domain    string
	client    *http.Client
}

func NewBlackCat(publicKey, secretKey, apiURL, domain string, timeout time.Duration) *BlackCat {
	if apiURL == "" {
		apiURL = "https://api.blackcatpagamentos.com/"
	}
	return &BlackCat{
		publicKey: publicKey,
		secretKey: secretKey,
		apiURL:    apiURL,
		domain:    domain,
		client:    newHTTPClient(timeout),
	}
}

func (g *BlackCat) Name() string {
	return "BlackCat"
}

func (g *BlackCat) HealthCheck() bool {
	return g.publicKey != "" && g.secretKey != ""
}

type blackCatItem struct {
	Title       string `json:"title"`
	UnitPrice   int    `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Tangible    bool   `json:"tangible"`
	ExternalRef string `json:"externalRef"`
}

type blackCatRequest struct {
	PostbackURL   string `json:"postbackUrl"`
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"paymentMethod"`
	Pix           struct {
		ExpiresInDays int `json:"expiresInDays"`
	} `json:"pix"`
	Items    []blackCatItem `json:"items"`
	Customer struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Document struct {
			Number string `json:"number"`
			Type   string `json:"type"`
		} `json:"document"`
	} `json:"customer"`
}

// BlackCat assigns numeric transaction ids; json.Number keeps the string form.
type blackCatResponse struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
	Pix    struct {
		Qrcode         string `json:"qrcode"`
		ExpirationDate string `json:"expirationDate"`
	} `json:"pix"`
}

func (g *BlackCat) convertRequest(data models.GatewayPaymentData) blackCatRequest {
	items := make([]blackCatItem, len(data.Items))
	for i, item := range data.Items {
		items[i] = blackCatItem{
			Title:       item.Title,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Tangible:    item.Tangible,
			ExternalRef: fmt.Sprintf("ITEM_%d_%d", time.Now().UnixMilli(), i),
		}
	}

	req := blackCatRequest{
		PostbackURL:   g.domain + "/payments/blackcat/webhook",
		Amount:        data.Amount,
		Currency:      "BRL",
		PaymentMethod: "pix",
		Items:         items,
	}
	req.Pix.ExpiresInDays = 1
	req.Customer.Name = data.Customer.Name
	req.Customer.Email = data.Customer.Email
	req.Customer.Document.Number = data.Customer.Document.Number
	req.Customer.Document.Type = strings.ToLower(data.Customer.Document.Type)
	return req
}

func mapBlackCatStatus(status string) models.PaymentStatus {
	switch status {
	case "pending":
		return models.StatusPending
	case "paid":
		return models.StatusApproved
	case "refunded", "refused":
		return models.StatusExpired
	default:
		return models.StatusPending
	}
}

func (g *BlackCat) authHeader() string {
	creds := g.publicKey + ":" + g.secretKey
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

func (g *BlackCat) CreatePixPayment(ctx context.Context, data models.GatewayPaymentData) (*models.GatewayPaymentResult, error) {
	if !g.HealthCheck() {
		return nil, &Error{Provider: g.Name(), Message: "chaves de autenticação não configuradas"}
	}

	body, err := json.Marshal(g.convertRequest(data))
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", g.authHeader())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Provider: g.Name(), StatusCode: resp.StatusCode, Message: readBody(resp.Body)}
	}

	var out blackCatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"gateway":            g.Name(),
		"gateway_payment_id": out.ID.String(),
	}).Info("PIX criado com sucesso")

	return &models.GatewayPaymentResult{
		Qrcode:           out.Pix.Qrcode,
		GatewayPaymentID: out.ID.String(),
		ExpirationDate:   parseExpiration(out.Pix.ExpirationDate, data.ExpirationDate),
		Gateway:          g.Name(),
	}, nil
}

func (g *BlackCat) GetPaymentStatus(ctx context.Context, paymentID string) (*models.GatewayPaymentStatus, error) {
	if !g.HealthCheck() {
		return nil, &Error{Provider: g.Name(), Message: "chaves de autenticação não configuradas"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"v1/transactions/"+paymentID, nil)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", g.authHeader())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &Error{Provider: g.Name(), StatusCode: http.StatusNotFound, Message: "pagamento não encontrado"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Provider: g.Name(), StatusCode: resp.StatusCode, Message: readBody(resp.Body)}
	}

	var out blackCatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Provider: g.Name(), Message: err.Error()}
	}

	return &models.GatewayPaymentStatus{
		Status:           mapBlackCatStatus(out.Status),
		Gateway:          g.Name(),
		GatewayPaymentID: out.ID.String(),
		Qrcode:           out.Pix.Qrcode,
	}, nil
}
