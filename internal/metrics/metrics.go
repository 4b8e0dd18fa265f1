package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_created_total",
			Help: "Número total de cobranças PIX criadas",
		},
		[]string{"gateway"},
	)

	GatewayAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_attempts_total",
			Help: "Tentativas de criação por gateway e resultado",
		},
		[]string{"gateway", "result"},
	)

	WebhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Número total de webhooks recebidos",
		},
		[]string{"gateway"},
	)

	SSEEventsDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_events_delivered_total",
			Help: "Eventos SSE entregues a assinantes",
		},
		[]string{"gateway"},
	)

	SSEActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_active_connections",
			Help: "Conexões SSE abertas no momento",
		},
	)
)

func Register() {
	prometheus.MustRegister(
		PaymentsCreatedTotal,
		GatewayAttemptsTotal,
		WebhooksReceivedTotal,
		SSEEventsDeliveredTotal,
		SSEActiveConnections,
	)
}
