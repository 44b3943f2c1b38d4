package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/RobinNagpal/defi-alerts/internal/infra/log"
	"github.com/RobinNagpal/defi-alerts/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary reports the outcome of one scheduled run.
type Summary struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	AlertsEvaluated   int           `json:"alerts_evaluated"`
	RatesCollected    int           `json:"rates_collected"`
	EventsFired       int           `json:"events_fired"`
	EventsSuppressed  int           `json:"events_suppressed"`
	AlertsNotified    int           `json:"alerts_notified"`
	NotificationsSent int           `json:"notifications_sent"`
	ChannelFailures   int           `json:"channel_failures"`
}

// Runner executes one full cycle: collect rates, evaluate alerts, gate, and
// dispatch. A run either completes or is abandoned entirely; the next
// schedule re-evaluates from scratch and the gate keeps re-detection of the
// same breach from double-notifying.
type Runner struct {
	alerts     domain.AlertRepository
	collector  *Collector
	evaluator  *Evaluator
	gate       *Gate
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewRunner(alerts domain.AlertRepository, collector *Collector, evaluator *Evaluator, gate *Gate, dispatcher *Dispatcher, logger *zap.Logger) *Runner {
	return &Runner{
		alerts:     alerts,
		collector:  collector,
		evaluator:  evaluator,
		gate:       gate,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{RunID: uuid.NewString(), StartedAt: started.UTC()}
	logger := log.WithRun(r.logger, summary.RunID)

	// Without the alert set there is nothing safe to evaluate; abort and
	// let the next schedule retry.
	alerts, err := r.alerts.ListActive(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		logger.Error("failed to load active alerts, aborting run", zap.Error(err))
		return summary, fmt.Errorf("list active alerts: %w", err)
	}
	summary.AlertsEvaluated = len(alerts)
	metrics.AlertsEvaluated.Add(float64(len(alerts)))

	snapshot := r.collector.Collect(ctx)
	summary.RatesCollected = snapshot.Len()

	// All rate data is in hand before evaluation starts; from here the
	// pipeline is CPU-bound until dispatch.
	events := r.evaluator.Evaluate(alerts, snapshot)
	summary.EventsFired = len(events)
	for _, ev := range events {
		metrics.EventsFired.WithLabelValues(string(ev.ConditionKind), ev.Severity.String()).Inc()
	}

	frequencies := make(map[uint]domain.Frequency, len(alerts))
	for _, alert := range alerts {
		frequencies[alert.ID] = alert.Frequency
	}

	var allowed []domain.TriggerEvent
	for _, ev := range events {
		if r.gate.Allow(ctx, ev, frequencies[ev.AlertID]) {
			allowed = append(allowed, ev)
		} else {
			summary.EventsSuppressed++
			metrics.EventsSuppressed.Inc()
		}
	}

	result := r.dispatcher.Dispatch(ctx, alerts, allowed)
	summary.AlertsNotified = result.AlertsNotified
	summary.NotificationsSent = result.ChannelSuccesses
	summary.ChannelFailures = result.ChannelFailures
	summary.Duration = time.Since(started)

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	metrics.RunDuration.Observe(summary.Duration.Seconds())
	logger.Info("run complete",
		zap.Int("alerts_evaluated", summary.AlertsEvaluated),
		zap.Int("rates_collected", summary.RatesCollected),
		zap.Int("events_fired", summary.EventsFired),
		zap.Int("events_suppressed", summary.EventsSuppressed),
		zap.Int("alerts_notified", summary.AlertsNotified),
		zap.Int("notifications_sent", summary.NotificationsSent),
		zap.Int("channel_failures", summary.ChannelFailures),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}
