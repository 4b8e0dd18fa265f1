package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ImPabl0/centralizador-gateways/config"
	"github.com/ImPabl0/centralizador-gateways/internal/gateway"
	"github.com/ImPabl0/centralizador-gateways/internal/handlers"
	"github.com/ImPabl0/centralizador-gateways/internal/metrics"
	"github.com/ImPabl0/centralizador-gateways/internal/publisher"
	"github.com/ImPabl0/centralizador-gateways/internal/service"
	"github.com/ImPabl0/centralizador-gateways/internal/sse"
	"github.com/ImPabl0/centralizador-gateways/internal/store"
)

type App struct {
	config   *config.Config
	Router   *gin.Engine
	registry *sse.Registry
}

func (a *App) Initialize(cfg *config.Config) {
	a.config = cfg

	if cfg.APP.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Register()

	paymentStore := store.NewPaymentStore()
	a.registry = sse.NewRegistry(cfg.SSE.SweepInterval, cfg.SSE.MaxAge)

	var statusPublisher service.StatusPublisher = publisher.Noop{}
	if cfg.Kafka.Brokers != "" {
		statusPublisher = publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.GetRetryConfig())
	}

	gateways := buildGateways(cfg)
	paymentService := service.NewPaymentService(gateways, paymentStore, cfg.Gateways.PixExpiry)
	ingress := service.NewWebhookIngress(a.registry, paymentStore, statusPublisher, cfg.Kafka.StatusTopic)

	dev := cfg.APP.ENV == "development"
	paymentHandler := handlers.NewPaymentHandler(paymentService, dev)
	streamHandler := handlers.NewStreamHandler(a.registry)
	webhookHandler := handlers.NewWebhookHandler(ingress)

	a.Router = gin.Default()
	a.RegisterRoutes(paymentHandler, streamHandler, webhookHandler)
}

// buildGateways instantiates the configured providers in priority order,
// each behind a circuit breaker.
func buildGateways(cfg *config.Config) []gateway.Gateway {
	var gateways []gateway.Gateway
	for _, name := range strings.Split(cfg.Gateways.Priority, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "payevo":
			gateways = append(gateways, gateway.WithBreaker(gateway.NewPayEvo(
				cfg.Gateways.PayEvoAPIKey,
				cfg.Gateways.PayEvoAPIURL,
				cfg.APP.CurrentDomain,
				cfg.Gateways.Timeout,
			)))
		case "blackcat":
			gateways = append(gateways, gateway.WithBreaker(gateway.NewBlackCat(
				cfg.Gateways.BlackCatPublicKey,
				cfg.Gateways.BlackCatSecretKey,
				cfg.Gateways.BlackCatAPIURL,
				cfg.APP.CurrentDomain,
				cfg.Gateways.Timeout,
			)))
		default:
			logrus.Warnf("gateway desconhecido na prioridade: %s", name)
		}
	}
	return gateways
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.config.APP.PORT,
		Handler: a.Router,
	}

	go func() {
		logrus.Infof("servidor rodando na porta %s", a.config.APP.PORT)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("erro no servidor HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("sinal recebido, fazendo shutdown graceful")
	a.registry.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("erro no shutdown do servidor: %v", err)
	}
}
