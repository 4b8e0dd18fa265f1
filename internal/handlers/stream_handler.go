package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/sse"
)

type Registry interface {
	Subscribe(gateway, paymentID string, sink sse.Sink) *sse.Connection
	Unsubscribe(connectionID string)
	Stats() sse.Stats
}

type StreamHandler struct {
	Registry Registry
}

func NewStreamHandler(r Registry) *StreamHandler {
	return &StreamHandler{Registry: r}
}

// streamSink flushes every frame so events reach the client immediately.
type streamSink struct {
	w gin.ResponseWriter
}

func (s streamSink) Write(p []byte) error {
	if _, err := s.w.Write(p); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// GET /payments/:provider/stream/:id
//
// Holds the request open until the client disconnects or the registry
// evicts the connection (sweep or shutdown).
func (h *StreamHandler) Stream(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))
	paymentID := c.Param("id")

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Headers", "Cache-Control")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	conn := h.Registry.Subscribe(provider, paymentID, streamSink{w: c.Writer})

	select {
	case <-c.Request.Context().Done():
		// Unsubscribe waits for in-flight writes, so the writer is never
		// touched after this handler returns.
		h.Registry.Unsubscribe(conn.ID)
		logrus.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"gateway":    provider,
		}).Info("conexão SSE encerrada pelo cliente")
	case <-conn.Done():
	}
}

// GET /payments/stream/stats
func (h *StreamHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.Stats())
}
