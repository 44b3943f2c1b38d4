package usecase

import (
	"sync"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Evaluator scans active alerts against one rate snapshot and produces
// trigger events. It holds no state between runs; given the same alerts and
// snapshot it emits the same events in the same order: alert order, then
// condition order, then market iteration order.
type Evaluator struct {
	classifier *Classifier
	workers    int
	logger     *zap.Logger
}

func NewEvaluator(classifier *Classifier, workers int, logger *zap.Logger) *Evaluator {
	if workers <= 0 {
		workers = 4
	}
	return &Evaluator{classifier: classifier, workers: workers, logger: logger}
}

// Evaluate maps alerts to events concurrently and merges the per-alert
// results back in alert order. Alerts share no mutable state, so the only
// coordination needed is the indexed merge.
func (e *Evaluator) Evaluate(alerts []domain.Alert, snap *domain.Snapshot) []domain.TriggerEvent {
	results := make([][]domain.TriggerEvent, len(alerts))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)
	for i := range alerts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = e.evaluateAlert(alerts[i], snap)
		}(i)
	}
	wg.Wait()

	var events []domain.TriggerEvent
	for _, r := range results {
		events = append(events, r...)
	}
	return events
}

func (e *Evaluator) evaluateAlert(alert domain.Alert, snap *domain.Snapshot) []domain.TriggerEvent {
	markets := e.candidateMarkets(alert, snap)
	if len(markets) == 0 {
		return nil
	}

	var events []domain.TriggerEvent
	for _, cond := range alert.Conditions {
		switch cond.Kind {
		case domain.ConditionAPROutsideRange:
			for _, market := range markets {
				if ev, ok := e.evaluateRange(alert, cond, market, snap); ok {
					events = append(events, ev)
				}
			}
		case domain.ConditionRateDiffAbove, domain.ConditionRateDiffBelow:
			if cond.ThresholdValue == nil {
				e.logger.Warn("comparison condition has no threshold, skipping",
					zap.Uint("alert_id", alert.ID),
					zap.Uint("condition_id", cond.ID),
				)
				continue
			}
			for _, market := range markets {
				events = append(events, e.evaluateComparison(alert, cond, market, snap)...)
			}
		default:
			e.logger.Warn("unknown condition kind, skipping",
				zap.Uint("alert_id", alert.ID),
				zap.Uint("condition_id", cond.ID),
				zap.String("kind", string(cond.Kind)),
			)
		}
	}
	return events
}

// candidateMarkets resolves the alert's selection to concrete markets. An
// alert with no explicit assets watches every market the benchmark protocol
// has a rate for, filtered by its chain selection.
func (e *Evaluator) candidateMarkets(alert domain.Alert, snap *domain.Snapshot) []domain.Asset {
	source := alert.Assets
	if len(source) == 0 {
		source = snap.MarketsFor(domain.ProtocolCompound)
	}

	var markets []domain.Asset
	for _, asset := range source {
		if alert.WatchesChain(asset.ChainID) {
			markets = append(markets, asset)
		}
	}
	return markets
}

// evaluateRange fires when the benchmark rate is strictly outside
// [low, high]. A rate exactly on either bound does not fire. A condition
// with neither bound set never fires.
func (e *Evaluator) evaluateRange(alert domain.Alert, cond domain.Condition, market domain.Asset, snap *domain.Snapshot) (domain.TriggerEvent, bool) {
	if cond.ThresholdLow == nil && cond.ThresholdHigh == nil {
		return domain.TriggerEvent{}, false
	}

	rate, ok := snap.Rate(market.ChainID, market.Address, domain.ProtocolCompound)
	if !ok {
		return domain.TriggerEvent{}, false
	}
	apr := rate.APR(alert.Direction)

	var magnitude *decimal.Decimal
	if cond.ThresholdLow != nil && apr.LessThan(*cond.ThresholdLow) {
		m := cond.ThresholdLow.Sub(apr)
		magnitude = &m
	} else if cond.ThresholdHigh != nil && apr.GreaterThan(*cond.ThresholdHigh) {
		m := apr.Sub(*cond.ThresholdHigh)
		magnitude = &m
	}
	if magnitude == nil {
		return domain.TriggerEvent{}, false
	}

	return domain.TriggerEvent{
		AlertID:       alert.ID,
		ConditionID:   cond.ID,
		ConditionKind: cond.Kind,
		Direction:     alert.Direction,
		ChainID:       market.ChainID,
		AssetAddress:  market.Address,
		AssetSymbol:   symbolFor(market, rate),
		Protocol:      domain.ProtocolCompound,
		BenchmarkRate: apr,
		ProtocolRate:  apr,
		Magnitude:     *magnitude,
		Severity:      e.classifier.Classify(*magnitude, cond.Kind),
	}, true
}

// evaluateComparison fires on the differential between each non-benchmark
// protocol and the benchmark at the same market. A protocol with no rate for
// the market is skipped; absence of a market is common and not a breach.
func (e *Evaluator) evaluateComparison(alert domain.Alert, cond domain.Condition, market domain.Asset, snap *domain.Snapshot) []domain.TriggerEvent {
	benchmark, ok := snap.Rate(market.ChainID, market.Address, domain.ProtocolCompound)
	if !ok {
		return nil
	}
	benchAPR := benchmark.APR(alert.Direction)

	var events []domain.TriggerEvent
	for _, protocol := range snap.ProtocolsFor(market.ChainID, market.Address) {
		if protocol == domain.ProtocolCompound {
			continue
		}
		observed, ok := snap.Rate(market.ChainID, market.Address, protocol)
		if !ok {
			continue
		}
		protoAPR := observed.APR(alert.Direction)
		diff := protoAPR.Sub(benchAPR)

		fires := false
		switch cond.Kind {
		case domain.ConditionRateDiffAbove:
			fires = diff.GreaterThan(*cond.ThresholdValue)
		case domain.ConditionRateDiffBelow:
			fires = diff.LessThan(*cond.ThresholdValue)
		}
		if !fires {
			continue
		}

		magnitude := diff.Abs()
		events = append(events, domain.TriggerEvent{
			AlertID:       alert.ID,
			ConditionID:   cond.ID,
			ConditionKind: cond.Kind,
			Direction:     alert.Direction,
			ChainID:       market.ChainID,
			AssetAddress:  market.Address,
			AssetSymbol:   symbolFor(market, observed),
			Protocol:      protocol,
			BenchmarkRate: benchAPR,
			ProtocolRate:  protoAPR,
			Magnitude:     magnitude,
			Severity:      e.classifier.Classify(magnitude, cond.Kind),
		})
	}
	return events
}

func symbolFor(market domain.Asset, rate domain.MarketRate) string {
	if market.Symbol != "" {
		return market.Symbol
	}
	return rate.AssetSymbol
}
