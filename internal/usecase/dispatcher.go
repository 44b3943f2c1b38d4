package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/RobinNagpal/defi-alerts/internal/metrics"
	"go.uber.org/zap"
)

// Dispatcher renders one message per alert per run (multiple breaching
// conditions for the same alert are summarized together) and delivers it to
// every channel of the alert. Channel sends run concurrently under a bounded
// semaphore; all sends for an alert complete before the gate-record decision.
type Dispatcher struct {
	sinks  map[domain.ChannelKind]domain.NotificationSink
	gate   *Gate
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

// DispatchResult summarizes one run's delivery outcome.
type DispatchResult struct {
	AlertsNotified   int
	ChannelSuccesses int
	ChannelFailures  int
	EventsRecorded   int
}

func NewDispatcher(sinks []domain.NotificationSink, gate *Gate, limit int, logger *zap.Logger) *Dispatcher {
	if limit <= 0 {
		limit = 8
	}
	byKind := make(map[domain.ChannelKind]domain.NotificationSink, len(sinks))
	for _, sink := range sinks {
		byKind[sink.Kind()] = sink
	}
	return &Dispatcher{sinks: byKind, gate: gate, limit: limit, logger: logger, now: time.Now}
}

func (d *Dispatcher) Dispatch(ctx context.Context, alerts []domain.Alert, events []domain.TriggerEvent) DispatchResult {
	byAlert := make(map[uint][]domain.TriggerEvent)
	for _, ev := range events {
		byAlert[ev.AlertID] = append(byAlert[ev.AlertID], ev)
	}

	var result DispatchResult
	sem := make(chan struct{}, d.limit)

	for _, alert := range alerts {
		alertEvents := byAlert[alert.ID]
		if len(alertEvents) == 0 {
			continue
		}

		msg := renderMessage(alert, alertEvents, d.now())
		successes, failures := d.sendToChannels(ctx, alert, msg, sem)
		result.ChannelSuccesses += successes
		result.ChannelFailures += failures

		if successes == 0 {
			// Every channel failed: leave the gate unrecorded so the
			// next run re-attempts delivery.
			d.logger.Warn("all channels failed for alert, will retry next run",
				zap.Uint("alert_id", alert.ID),
				zap.Int("channels", len(alert.Channels)),
			)
			continue
		}

		result.AlertsNotified++
		for _, ev := range alertEvents {
			if _, err := d.gate.RecordSent(ctx, ev); err != nil {
				d.logger.Warn("failed to record sent notification",
					zap.Uint("alert_id", ev.AlertID),
					zap.Uint("condition_id", ev.ConditionID),
					zap.Error(err),
				)
				continue
			}
			result.EventsRecorded++
		}
	}
	return result
}

// sendToChannels attempts delivery on every channel of the alert and waits
// for all attempts. Partial success counts as notified.
func (d *Dispatcher) sendToChannels(ctx context.Context, alert domain.Alert, msg domain.Message, sem chan struct{}) (successes, failures int) {
	results := make(chan bool, len(alert.Channels))

	var wg sync.WaitGroup
	for _, channel := range alert.Channels {
		sink, ok := d.sinks[channel.Kind]
		if !ok {
			d.logger.Warn("no sink registered for channel kind",
				zap.Uint("alert_id", alert.ID),
				zap.String("kind", string(channel.Kind)),
			)
			results <- false
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(ch domain.DeliveryChannel, sink domain.NotificationSink) {
			defer wg.Done()
			defer func() { <-sem }()

			err := sink.Send(ctx, ch.Target, msg)
			if err != nil {
				metrics.NotificationsSent.WithLabelValues(string(ch.Kind), "failed").Inc()
				d.logger.Warn("channel delivery failed",
					zap.Uint("alert_id", alert.ID),
					zap.String("kind", string(ch.Kind)),
					zap.Error(err),
				)
			} else {
				metrics.NotificationsSent.WithLabelValues(string(ch.Kind), "success").Inc()
			}
			results <- err == nil
		}(channel, sink)
	}
	wg.Wait()
	close(results)

	for ok := range results {
		if ok {
			successes++
		} else {
			failures++
		}
	}
	return successes, failures
}

func renderMessage(alert domain.Alert, events []domain.TriggerEvent, at time.Time) domain.Message {
	highest := domain.SeverityNone
	var b strings.Builder
	for _, ev := range events {
		if ev.Severity > highest {
			highest = ev.Severity
		}
		b.WriteString(describeEvent(ev))
		b.WriteString("\n")
	}

	noun := "condition"
	if len(events) > 1 {
		noun = "conditions"
	}
	return domain.Message{
		AlertID:  alert.ID,
		Subject:  fmt.Sprintf("Rate alert #%d: %d %s breached", alert.ID, len(events), noun),
		Body:     strings.TrimRight(b.String(), "\n"),
		Severity: highest,
		SentAt:   at,
	}
}

func describeEvent(ev domain.TriggerEvent) string {
	asset := ev.AssetSymbol
	if asset == "" {
		asset = ev.AssetAddress
	}

	switch ev.ConditionKind {
	case domain.ConditionRateDiffAbove, domain.ConditionRateDiffBelow:
		return fmt.Sprintf("%s %s %s APR %s%% vs %s %s%% on chain %d (diff %s pp, severity %s)",
			ev.Protocol, asset, ev.Direction,
			ev.ProtocolRate.StringFixed(2),
			domain.ProtocolCompound, ev.BenchmarkRate.StringFixed(2),
			ev.ChainID,
			ev.ProtocolRate.Sub(ev.BenchmarkRate).StringFixed(2),
			ev.Severity,
		)
	default:
		return fmt.Sprintf("%s %s %s APR %s%% on chain %d is outside the configured range by %s pp (severity %s)",
			ev.Protocol, asset, ev.Direction,
			ev.ProtocolRate.StringFixed(2),
			ev.ChainID,
			ev.Magnitude.StringFixed(2),
			ev.Severity,
		)
	}
}
