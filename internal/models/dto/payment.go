package dto

import (
	"strings"

	"github.com/ImPabl0/centralizador-gateways/internal/models"
)

type PaymentItem struct {
	Title       string `json:"title" binding:"required"`
	UnitPrice   int    `json:"unitPrice" binding:"required,min=1"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Tangible    bool   `json:"tangible"`
	ExternalRef string `json:"externalRef"`
}

type CustomerDocument struct {
	Number string `json:"number" binding:"required,min=11,max=14"`
	Type   string `json:"type" binding:"required"`
}

type Customer struct {
	Name     string           `json:"name" binding:"required,min=2,max=100"`
	Email    string           `json:"email" binding:"required,email"`
	Phone    string           `json:"phone" binding:"omitempty,min=10,max=15"`
	Document CustomerDocument `json:"document" binding:"required"`
}

type PixOptions struct {
	ExpiresInDays int `json:"expiresInDays" binding:"omitempty,min=1,max=30"`
}

type PaymentRequest struct {
	Currency string        `json:"currency" binding:"omitempty,oneof=BRL"`
	Amount   int           `json:"amount" binding:"required,min=1"`
	Items    []PaymentItem `json:"items" binding:"required,min=1,dive"`
	Customer Customer      `json:"customer" binding:"required"`
	Pix      *PixOptions   `json:"pix" binding:"omitempty"`
}

func (r *PaymentRequest) Sanitize() {
	if r.Currency == "" {
		r.Currency = "BRL"
	}
	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Customer.Email = strings.TrimSpace(strings.ToLower(r.Customer.Email))
	r.Customer.Phone = strings.TrimSpace(r.Customer.Phone)
	r.Customer.Document.Number = strings.TrimSpace(r.Customer.Document.Number)
	r.Customer.Document.Type = strings.ToLower(strings.TrimSpace(r.Customer.Document.Type))
}

// ItemsTotal returns the sum of unitPrice*quantity over all items, which must
// match Amount before the request is accepted.
func (r *PaymentRequest) ItemsTotal() int {
	total := 0
	for _, item := range r.Items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}

// DocumentTypeValid is checked after Sanitize, so casing is already normalized.
func (r *PaymentRequest) DocumentTypeValid() bool {
	switch r.Customer.Document.Type {
	case "cpf", "cnpj":
		return true
	default:
		return false
	}
}

func (r *PaymentRequest) ExpiresInDays() int {
	if r.Pix != nil && r.Pix.ExpiresInDays > 0 {
		return r.Pix.ExpiresInDays
	}
	return 1
}

func (r *PaymentRequest) ToEntity() *models.PaymentRequest {
	items := make([]models.PaymentItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = models.PaymentItem{
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Tangible:  item.Tangible,
		}
	}

	return &models.PaymentRequest{
		Currency: r.Currency,
		Amount:   r.Amount,
		Items:    items,
		Customer: models.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
			Document: models.CustomerDocument{
				Number: r.Customer.Document.Number,
				Type:   r.Customer.Document.Type,
			},
		},
	}
}
