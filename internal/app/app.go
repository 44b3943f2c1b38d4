package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/config"
	"github.com/RobinNagpal/defi-alerts/internal/delivery/httpapi"
	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/RobinNagpal/defi-alerts/internal/infra/db"
	"github.com/RobinNagpal/defi-alerts/internal/infra/log"
	"github.com/RobinNagpal/defi-alerts/internal/infra/notify"
	"github.com/RobinNagpal/defi-alerts/internal/infra/providers"
	"github.com/RobinNagpal/defi-alerts/internal/usecase"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type App struct {
	server    *http.Server
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	alertRepo := db.NewAlertRepository(dbConn, logger)
	notificationRepo := db.NewNotificationRepository(dbConn)

	var rateProviders []domain.RateProvider
	if cfg.CompoundAPIURL != "" {
		rateProviders = append(rateProviders, providers.NewCompoundProvider(cfg.CompoundAPIURL, cfg.ProviderTimeout, logger))
	}
	if cfg.AaveAPIURL != "" {
		rateProviders = append(rateProviders, providers.NewAaveProvider(cfg.AaveAPIURL, cfg.ProviderTimeout, logger))
	}
	if cfg.SparkAPIURL != "" {
		rateProviders = append(rateProviders, providers.NewSparkProvider(cfg.SparkAPIURL, cfg.ProviderTimeout, logger))
	}
	if len(rateProviders) == 0 {
		logger.Warn("no rate providers configured, snapshots will be empty")
	}

	sinks := []domain.NotificationSink{
		notify.NewWebhookSink(cfg.WebhookTimeout, logger),
	}
	if cfg.SMTPHost != "" {
		sinks = append(sinks, notify.NewSMTPSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, logger))
	}
	if cfg.TelegramBotToken != "" {
		telegramSink, err := notify.NewTelegramSink(cfg.TelegramBotToken, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, telegramSink)
	}

	classifier := usecase.NewClassifier(severityConfig(cfg))
	collector := usecase.NewCollector(rateProviders, cfg.ProviderTimeout, logger)
	evaluator := usecase.NewEvaluator(classifier, cfg.EvalWorkers, logger)
	gate := usecase.NewGate(notificationRepo, logger)
	dispatcher := usecase.NewDispatcher(sinks, gate, cfg.DispatchConcurrency, logger)
	runner := usecase.NewRunner(alertRepo, collector, evaluator, gate, dispatcher, logger)

	runHandler := httpapi.NewRunHandler(runner, cfg.RunTimeout, logger)
	server := httpapi.NewServer(cfg.HTTPListenAddr, runHandler)

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{server: server, logger: logger, cleanupFn: cleanup}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("defi-alerts service starting", zap.String("addr", a.server.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *App) Shutdown() {
	a.logger.Info("defi-alerts service shutting down")
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func severityConfig(cfg config.Config) usecase.SeverityConfig {
	return usecase.SeverityConfig{
		MarketLow:        decimal.NewFromFloat(cfg.SeverityMarketLow),
		MarketMedium:     decimal.NewFromFloat(cfg.SeverityMarketMedium),
		MarketHigh:       decimal.NewFromFloat(cfg.SeverityMarketHigh),
		ComparisonLow:    decimal.NewFromFloat(cfg.SeverityComparisonLow),
		ComparisonMedium: decimal.NewFromFloat(cfg.SeverityComparisonMedium),
		ComparisonHigh:   decimal.NewFromFloat(cfg.SeverityComparisonHigh),
	}
}
