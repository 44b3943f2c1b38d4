package usecase

import (
	"context"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"go.uber.org/zap"
)

// Gate is the single authority for "has this breach already been notified".
// Cooldown state lives in the external store, not in process memory: the job
// is a stateless batch run and must dedup across runs.
type Gate struct {
	store  domain.NotificationRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewGate(store domain.NotificationRepository, logger *zap.Logger) *Gate {
	return &Gate{store: store, logger: logger, now: time.Now}
}

// Allow reports whether the event may be delivered now. It only consults the
// last recorded send; checking never suppresses a later check. If the store
// is unreachable the gate fails closed: the breach is dropped for this cycle
// and re-detected on the next run.
func (g *Gate) Allow(ctx context.Context, event domain.TriggerEvent, frequency domain.Frequency) bool {
	last, err := g.store.LastSentAt(ctx, event.Key())
	if err != nil {
		g.logger.Warn("frequency gate check failed, suppressing for this cycle",
			zap.Uint("alert_id", event.AlertID),
			zap.Uint("condition_id", event.ConditionID),
			zap.Error(err),
		)
		return false
	}
	if last == nil {
		return true
	}
	return g.now().Sub(*last) >= frequency.Cooldown()
}

// RecordSent persists that the event was delivered. The store upsert is
// atomic per key; of two concurrent records for the same key, one wins.
func (g *Gate) RecordSent(ctx context.Context, event domain.TriggerEvent) (bool, error) {
	return g.store.RecordSent(ctx, event.Key(), g.now())
}
