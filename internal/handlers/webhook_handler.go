package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ImPabl0/centralizador-gateways/internal/service"
)

type WebhookIngress interface {
	Handle(ctx context.Context, gateway string, payload map[string]interface{}) error
}

type WebhookHandler struct {
	Ingress WebhookIngress
}

func NewWebhookHandler(ingress WebhookIngress) *WebhookHandler {
	return &WebhookHandler{Ingress: ingress}
}

// POST /payments/:provider/webhook
//
// Always acknowledges, even with zero subscribers; the only rejection is a
// payload without a payment id. Malformed callbacks never produce a 5xx.
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if err := h.Ingress.Handle(c.Request.Context(), provider, payload); err != nil {
		if errors.Is(err, service.ErrMissingPaymentID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment ID missing"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
