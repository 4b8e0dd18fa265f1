package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ImPabl0/centralizador-gateways/internal/handlers"
)

func (a *App) RegisterRoutes(
	payments *handlers.PaymentHandler,
	stream *handlers.StreamHandler,
	webhook *handlers.WebhookHandler,
) {
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "Centralizador de Gateways PIX",
		})
	})
	a.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pix := a.Router.Group("/payments")
	pix.POST("", payments.Create)
	pix.GET("/stream/stats", stream.Stats)
	pix.POST("/:provider", payments.CreateDirect)
	pix.GET("/:provider", payments.Get)
	pix.GET("/:provider/:id", payments.StatusDirect)
	pix.GET("/:provider/stream/:id", stream.Stream)
	pix.POST("/:provider/webhook", webhook.Receive)
}
