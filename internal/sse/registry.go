// Package sse keeps track of open event-stream subscribers and fans
// webhook-originated status updates out to them. Delivery is at-most-once:
// an event published for a key with no subscriber is dropped.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/internal/metrics"
)

var ErrConnectionClosed = errors.New("sse connection closed")

// Sink writes one already-framed SSE chunk and flushes it to the client.
type Sink interface {
	Write(p []byte) error
}

type Event struct {
	Type         string      `json:"type"`
	PaymentID    string      `json:"paymentId,omitempty"`
	Gateway      string      `json:"gateway,omitempty"`
	ConnectionID string      `json:"connectionId,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	Timestamp    string      `json:"timestamp"`
}

func frame(evt Event) []byte {
	b, _ := json.Marshal(evt)
	return []byte("data: " + string(b) + "\n\n")
}

var heartbeat = []byte(": heartbeat\n\n")

// Connection is one open subscriber stream. Writes are serialized through
// writeMu because publishes and the liveness sweep run concurrently.
type Connection struct {
	ID        string
	Gateway   string
	PaymentID string
	CreatedAt time.Time

	sink      Sink
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the registry evicts the connection or shuts down. The
// owning handler must return at that point so the transport gets released.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) write(p []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	return c.sink.Write(p)
}

// close waits for any in-flight write, so once it returns the sink is never
// touched again.
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		close(c.done)
		c.writeMu.Unlock()
	})
}

type Stats struct {
	TotalConnections     int            `json:"totalConnections"`
	ConnectionsByGateway map[string]int `json:"connectionsByGateway"`
	ConnectionsByPayment map[string]int `json:"connectionsByPayment"`
}

// Registry maps (gateway, paymentId) keys to the ordered list of subscriber
// connections watching that payment. Multiple tabs may watch the same
// payment, hence a list rather than a single connection per key.
type Registry struct {
	mu     sync.Mutex
	conns  map[string][]*Connection
	byID   map[string]*Connection
	closed bool

	maxAge time.Duration
	stop   chan struct{}
}

func NewRegistry(sweepInterval, maxAge time.Duration) *Registry {
	r := &Registry{
		conns:  make(map[string][]*Connection),
		byID:   make(map[string]*Connection),
		maxAge: maxAge,
		stop:   make(chan struct{}),
	}
	go r.sweepLoop(sweepInterval)
	return r
}

func key(gateway, paymentID string) string {
	return gateway + "_" + paymentID
}

// Subscribe registers a new connection and emits the connection_established
// acknowledgement before returning, so the client can tell "registered" from
// "silent". The returned connection id is the handle for Unsubscribe.
func (r *Registry) Subscribe(gateway, paymentID string, sink Sink) *Connection {
	conn := &Connection{
		ID:        fmt.Sprintf("%s_%s_%s", gateway, paymentID, uuid.NewString()),
		Gateway:   gateway,
		PaymentID: paymentID,
		CreatedAt: time.Now(),
		sink:      sink,
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.close()
		return conn
	}
	k := key(gateway, paymentID)
	r.conns[k] = append(r.conns[k], conn)
	r.byID[conn.ID] = conn
	total := len(r.byID)
	r.mu.Unlock()

	metrics.SSEActiveConnections.Inc()
	logrus.WithFields(logrus.Fields{
		"connection_id": conn.ID,
		"payment_id":    paymentID,
		"gateway":       gateway,
		"total":         total,
	}).Info("nova conexão SSE registrada")

	ack := frame(Event{
		Type:         "connection_established",
		PaymentID:    paymentID,
		Gateway:      gateway,
		ConnectionID: conn.ID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	if err := conn.write(ack); err != nil {
		r.Unsubscribe(conn.ID)
	}
	return conn
}

// Unsubscribe removes the connection from its key's list, dropping the key
// entirely when the list empties. Unknown ids are a no-op.
func (r *Registry) Unsubscribe(connectionID string) {
	r.mu.Lock()
	conn, ok := r.byID[connectionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byID, connectionID)

	k := key(conn.Gateway, conn.PaymentID)
	list := r.conns[k]
	for i, c := range list {
		if c.ID == connectionID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.conns, k)
	} else {
		r.conns[k] = list
	}
	total := len(r.byID)
	r.mu.Unlock()

	conn.close()
	metrics.SSEActiveConnections.Dec()
	logrus.WithFields(logrus.Fields{
		"connection_id": connectionID,
		"total":         total,
	}).Info("conexão SSE removida")
}

// Publish delivers one payment_status_update event to every connection
// subscribed to (gateway, paymentID). The subscriber list is copied under
// the lock and written outside it, so slow consumers never block subscribe
// or unsubscribe. Connections whose write fails are removed afterwards.
func (r *Registry) Publish(gateway, paymentID string, payload interface{}) {
	r.mu.Lock()
	list := append([]*Connection(nil), r.conns[key(gateway, paymentID)]...)
	r.mu.Unlock()

	if len(list) == 0 {
		logrus.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"gateway":    gateway,
		}).Debug("nenhuma conexão SSE para o pagamento, evento descartado")
		return
	}

	msg := frame(Event{
		Type:      "payment_status_update",
		PaymentID: paymentID,
		Gateway:   gateway,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	var dead []string
	for _, conn := range list {
		if err := conn.write(msg); err != nil {
			logrus.WithField("connection_id", conn.ID).WithError(err).Warn("falha ao enviar evento SSE")
			dead = append(dead, conn.ID)
			continue
		}
		metrics.SSEEventsDeliveredTotal.WithLabelValues(gateway).Inc()
	}
	for _, id := range dead {
		r.Unsubscribe(id)
	}
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		ConnectionsByGateway: make(map[string]int),
		ConnectionsByPayment: make(map[string]int),
	}
	for k, list := range r.conns {
		stats.TotalConnections += len(list)
		stats.ConnectionsByPayment[k] = len(list)
		for _, conn := range list {
			stats.ConnectionsByGateway[conn.Gateway]++
		}
	}
	return stats
}

func (r *Registry) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

// sweep evicts connections past maxAge and probes the rest with a heartbeat
// comment to detect closed transports. Dead connections are removed in one
// batch after the pass.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	all := make([]*Connection, 0, len(r.byID))
	for _, conn := range r.byID {
		all = append(all, conn)
	}
	r.mu.Unlock()

	var dead []string
	for _, conn := range all {
		if now.Sub(conn.CreatedAt) > r.maxAge {
			dead = append(dead, conn.ID)
			continue
		}
		if err := conn.write(heartbeat); err != nil {
			dead = append(dead, conn.ID)
		}
	}

	if len(dead) > 0 {
		logrus.WithField("count", len(dead)).Info("limpando conexões SSE mortas")
		for _, id := range dead {
			r.Unsubscribe(id)
		}
	}
}

// Shutdown stops the sweep, closes every open connection and clears all
// state. Safe to call more than once.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.stop)

	all := make([]*Connection, 0, len(r.byID))
	for _, conn := range r.byID {
		all = append(all, conn)
	}
	r.conns = make(map[string][]*Connection)
	r.byID = make(map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range all {
		conn.close()
	}
	metrics.SSEActiveConnections.Set(0)
	logrus.Info("todas as conexões SSE foram encerradas")
}
