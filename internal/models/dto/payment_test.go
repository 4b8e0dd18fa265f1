package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ImPabl0/centralizador-gateways/internal/models/dto"
)

func validDTO() dto.PaymentRequest {
	return dto.PaymentRequest{
		Amount: 10000,
		Items: []dto.PaymentItem{
			{Title: "Gift Card", UnitPrice: 2500, Quantity: 4},
		},
		Customer: dto.Customer{
			Name:  "  Maria Silva  ",
			Email: " MARIA@Example.COM ",
			Document: dto.CustomerDocument{
				Number: " 12345678901 ",
				Type:   " CPF ",
			},
		},
	}
}

func TestSanitize(t *testing.T) {
	req := validDTO()
	req.Sanitize()

	assert.Equal(t, "BRL", req.Currency)
	assert.Equal(t, "Maria Silva", req.Customer.Name)
	assert.Equal(t, "maria@example.com", req.Customer.Email)
	assert.Equal(t, "12345678901", req.Customer.Document.Number)
	assert.Equal(t, "cpf", req.Customer.Document.Type)
}

func TestItemsTotal(t *testing.T) {
	req := dto.PaymentRequest{
		Items: []dto.PaymentItem{
			{UnitPrice: 2500, Quantity: 4},
			{UnitPrice: 100, Quantity: 2},
		},
	}

	assert.Equal(t, 10200, req.ItemsTotal())
}

func TestDocumentTypeValid(t *testing.T) {
	req := validDTO()
	req.Sanitize()
	assert.True(t, req.DocumentTypeValid())

	req.Customer.Document.Type = "cnpj"
	assert.True(t, req.DocumentTypeValid())

	req.Customer.Document.Type = "rg"
	assert.False(t, req.DocumentTypeValid())
}

func TestExpiresInDays(t *testing.T) {
	req := validDTO()
	assert.Equal(t, 1, req.ExpiresInDays())

	req.Pix = &dto.PixOptions{ExpiresInDays: 7}
	assert.Equal(t, 7, req.ExpiresInDays())
}

func TestToEntity(t *testing.T) {
	req := validDTO()
	req.Sanitize()
	req.Items[0].Tangible = true

	entity := req.ToEntity()

	assert.Equal(t, "BRL", entity.Currency)
	assert.Equal(t, 10000, entity.Amount)
	assert.Len(t, entity.Items, 1)
	assert.True(t, entity.Items[0].Tangible)
	assert.Equal(t, "maria@example.com", entity.Customer.Email)
	assert.Equal(t, "cpf", entity.Customer.Document.Type)
}
