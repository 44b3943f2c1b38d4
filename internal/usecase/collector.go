package usecase

import (
	"context"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/RobinNagpal/defi-alerts/internal/metrics"
	"go.uber.org/zap"
)

// Collector fans out to every registered rate provider and fans the results
// back into one snapshot. A provider that fails or times out contributes
// nothing for the cycle; the run proceeds on partial data so other
// protocols' alerts are still evaluated.
type Collector struct {
	providers []domain.RateProvider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewCollector(providers []domain.RateProvider, timeout time.Duration, logger *zap.Logger) *Collector {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Collector{providers: providers, timeout: timeout, logger: logger}
}

func (c *Collector) Collect(ctx context.Context) *domain.Snapshot {
	type result struct {
		protocol string
		rates    []domain.MarketRate
	}
	results := make(chan result, len(c.providers))

	for _, provider := range c.providers {
		go func(p domain.RateProvider) {
			fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			rates, err := p.FetchRates(fetchCtx)
			metrics.ProviderFetchDuration.WithLabelValues(p.Protocol()).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.ProviderFetchErrors.WithLabelValues(p.Protocol()).Inc()
				c.logger.Warn("provider fetch failed, proceeding without its rates",
					zap.String("protocol", p.Protocol()),
					zap.Error(err),
				)
				rates = nil
			}
			results <- result{protocol: p.Protocol(), rates: rates}
		}(provider)
	}

	var all []domain.MarketRate
	for range c.providers {
		r := <-results
		metrics.RatesCollected.WithLabelValues(r.protocol).Set(float64(len(r.rates)))
		all = append(all, r.rates...)
	}

	snap := domain.NewSnapshot(time.Now().UTC(), all)
	c.logger.Info("rate snapshot collected",
		zap.Int("providers", len(c.providers)),
		zap.Int("rates", snap.Len()),
	)
	return snap
}
