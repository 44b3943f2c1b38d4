package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	HTTPListenAddr string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	RunTimeout     time.Duration `env:"RUN_TIMEOUT,default=2m"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	// Provider base URLs; a provider is only registered when its URL is set.
	CompoundAPIURL  string        `env:"COMPOUND_API_URL"`
	AaveAPIURL      string        `env:"AAVE_API_URL"`
	SparkAPIURL     string        `env:"SPARK_API_URL"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT,default=15s"`

	EvalWorkers         int           `env:"EVAL_WORKERS,default=4"`
	DispatchConcurrency int           `env:"DISPATCH_CONCURRENCY,default=8"`
	WebhookTimeout      time.Duration `env:"WEBHOOK_TIMEOUT,default=10s"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT,default=587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Severity breakpoints, in APR percentage points of breach magnitude.
	SeverityMarketLow        float64 `env:"SEVERITY_MARKET_LOW,default=0.5"`
	SeverityMarketMedium     float64 `env:"SEVERITY_MARKET_MEDIUM,default=1.5"`
	SeverityMarketHigh       float64 `env:"SEVERITY_MARKET_HIGH,default=3.0"`
	SeverityComparisonLow    float64 `env:"SEVERITY_COMPARISON_LOW,default=0.5"`
	SeverityComparisonMedium float64 `env:"SEVERITY_COMPARISON_MEDIUM,default=1.0"`
	SeverityComparisonHigh   float64 `env:"SEVERITY_COMPARISON_HIGH,default=2.0"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
