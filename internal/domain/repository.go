package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AlertRepository reads alert configuration. The core never writes alerts;
// the management API owns that side.
type AlertRepository interface {
	ListActive(ctx context.Context) ([]Alert, error)
}

// NotificationRepository is the persisted cooldown state behind the
// frequency gate. RecordSent must be atomic per key: of two concurrent calls
// with the same key, exactly one returns true.
type NotificationRepository interface {
	LastSentAt(ctx context.Context, key NotificationKey) (*time.Time, error)
	RecordSent(ctx context.Context, key NotificationKey, at time.Time) (bool, error)
}

// RateProvider fetches the current rates one lending protocol publishes.
// Implementations are independent; a failing provider only costs its own
// protocol's rates for the cycle.
type RateProvider interface {
	Protocol() string
	FetchRates(ctx context.Context) ([]MarketRate, error)
}

// NotificationSink delivers a rendered message to one kind of channel.
type NotificationSink interface {
	Kind() ChannelKind
	Send(ctx context.Context, target string, msg Message) error
}
