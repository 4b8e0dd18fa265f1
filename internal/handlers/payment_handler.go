package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/gateway"
	"github.com/ImPabl0/centralizador-gateways/internal/models"
	"github.com/ImPabl0/centralizador-gateways/internal/models/dto"
	"github.com/ImPabl0/centralizador-gateways/internal/service"
	"github.com/ImPabl0/centralizador-gateways/internal/store"
)

type PaymentService interface {
	CreatePixPayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error)
	GetPixPaymentStatus(id string) (*models.PaymentResponse, error)
	CreateDirect(ctx context.Context, provider string, req *models.PaymentRequest, expiresInDays int) (*models.PaymentResponse, error)
	StatusDirect(ctx context.Context, provider, id string) (*models.GatewayPaymentStatus, error)
}

type PaymentHandler struct {
	Service PaymentService
	// Dev enables error detail in 500 responses.
	Dev bool
}

func NewPaymentHandler(s PaymentService, dev bool) *PaymentHandler {
	return &PaymentHandler{Service: s, Dev: dev}
}

// POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	req, ok := h.bindPayment(c)
	if !ok {
		return
	}

	resp, err := h.Service.CreatePixPayment(c.Request.Context(), req.ToEntity())
	if err != nil {
		if errors.Is(err, service.ErrNoGatewayAvailable) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Erro no gateway de pagamento",
				"message": "Nenhum gateway de pagamento está disponível no momento",
			})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GET /payments/:provider — the trailing segment is the internal payment id;
// gin requires a single wildcard name per position, shared with the
// provider-specific routes.
func (h *PaymentHandler) Get(c *gin.Context) {
	id := c.Param("provider")

	resp, err := h.Service.GetPixPaymentStatus(id)
	if err != nil {
		if errors.Is(err, store.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Pagamento não encontrado",
				"message": "PIX com ID " + id + " não foi encontrado",
			})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// POST /payments/:provider
func (h *PaymentHandler) CreateDirect(c *gin.Context) {
	provider := c.Param("provider")

	req, ok := h.bindPayment(c)
	if !ok {
		return
	}

	resp, err := h.Service.CreateDirect(c.Request.Context(), provider, req.ToEntity(), req.ExpiresInDays())
	if err != nil {
		h.gatewayError(c, provider, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GET /payments/:provider/:id
func (h *PaymentHandler) StatusDirect(c *gin.Context) {
	provider := c.Param("provider")
	id := c.Param("id")

	resp, err := h.Service.StatusDirect(c.Request.Context(), provider, id)
	if err != nil {
		h.gatewayError(c, provider, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) bindPayment(c *gin.Context) (*dto.PaymentRequest, bool) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return nil, false
	}

	req.Sanitize()

	if !req.DocumentTypeValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Dados inválidos",
			"message": "Os dados enviados não atendem aos requisitos",
			"details": []models.FieldError{{
				Field:   "customer.document.type",
				Message: "tipo de documento deve ser cpf ou cnpj",
			}},
		})
		return nil, false
	}

	if total := req.ItemsTotal(); total != req.Amount {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Valor inconsistente",
			"message": formatAmountMismatch(total, req.Amount),
		})
		return nil, false
	}

	return &req, true
}

func (h *PaymentHandler) gatewayError(c *gin.Context, provider string, err error) {
	if errors.Is(err, service.ErrUnknownGateway) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Gateway não encontrado",
			"message": "O gateway " + provider + " não está configurado",
		})
		return
	}
	if gateway.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Pagamento não encontrado",
			"message": "O gateway não reconhece o pagamento informado",
		})
		return
	}

	logrus.WithField("gateway", provider).WithError(err).Error("erro no gateway de pagamento")
	c.JSON(http.StatusBadGateway, gin.H{
		"error":   "Erro no gateway de pagamento",
		"message": "O gateway de pagamento não pôde processar a requisição",
	})
}

func (h *PaymentHandler) internalError(c *gin.Context, err error) {
	logrus.WithError(err).Error("erro interno")
	body := gin.H{
		"error":   "Erro interno do servidor",
		"message": "Ocorreu um erro inesperado. Tente novamente mais tarde.",
	}
	if h.Dev {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func respondValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]models.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, models.FieldError{
				Field:   fe.Namespace(),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Dados inválidos",
			"message": "Os dados enviados não atendem aos requisitos",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Dados inválidos",
		"message": "Corpo da requisição malformado",
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "email inválido"
	case "min":
		return "valor abaixo do mínimo (" + fe.Param() + ")"
	case "max":
		return "valor acima do máximo (" + fe.Param() + ")"
	case "oneof":
		return "valor deve ser um de: " + fe.Param()
	default:
		return "valor inválido"
	}
}

func formatAmountMismatch(total, amount int) string {
	return fmt.Sprintf("O valor total dos itens (%d) não corresponde ao amount (%d)", total, amount)
}
