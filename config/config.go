package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func New() (*Config, error) {
	var cfg Config
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warn("arquivo .env não encontrado, usando variáveis de ambiente")
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	APP
	Gateways
	SSE
	Kafka
}

type APP struct {
	PORT          string `env:"APP_PORT" envDefault:"8080"`
	ENV           string `env:"APP_ENV" envDefault:"production"`
	CurrentDomain string `env:"CURRENT_DOMAIN" envDefault:"http://localhost:8080"`
}

type Gateways struct {
	Priority  string        `env:"GATEWAY_PRIORITY" envDefault:"payevo,blackcat"`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	PixExpiry time.Duration `env:"PIX_EXPIRY" envDefault:"30m"`

	PayEvoAPIKey string `env:"PAYEVO_API_KEY"`
	PayEvoAPIURL string `env:"PAYEVO_API_URL" envDefault:"https://apiv2.payevo.com.br/"`

	BlackCatPublicKey string `env:"BLACKCAT_PUBLIC_KEY"`
	BlackCatSecretKey string `env:"BLACKCAT_SECRET_KEY"`
	BlackCatAPIURL    string `env:"BLACKCAT_API_URL" envDefault:"https://api.blackcatpagamentos.com/"`
}

type SSE struct {
	SweepInterval time.Duration `env:"SSE_SWEEP_INTERVAL" envDefault:"30s"`
	MaxAge        time.Duration `env:"SSE_MAX_AGE" envDefault:"5m"`
}

type Kafka struct {
	// Brokers empty means the status mirror is disabled.
	Brokers     string `env:"KAFKA_BROKERS"`
	StatusTopic string `env:"KAFKA_STATUS_TOPIC" envDefault:"payments.status.updated"`

	RetryMaxAttempts int           `env:"KAFKA_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryBaseDelay   time.Duration `env:"KAFKA_RETRY_BASE_DELAY" envDefault:"100ms"`
	RetryMaxDelay    time.Duration `env:"KAFKA_RETRY_MAX_DELAY" envDefault:"10s"`
	RetryJitter      bool          `env:"KAFKA_RETRY_JITTER" envDefault:"true"`
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

func (k Kafka) GetRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: k.RetryMaxAttempts,
		BaseDelay:   k.RetryBaseDelay,
		MaxDelay:    k.RetryMaxDelay,
		Jitter:      k.RetryJitter,
	}
}
