package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	AlertTypeMarket     AlertType = "MARKET"
	AlertTypeComparison AlertType = "COMPARISON"
)

type ConditionKind string

const (
	ConditionAPROutsideRange ConditionKind = "APR_OUTSIDE_RANGE"
	ConditionRateDiffAbove   ConditionKind = "RATE_DIFF_ABOVE"
	ConditionRateDiffBelow   ConditionKind = "RATE_DIFF_BELOW"
)

// Condition is a closed set of variants dispatched on Kind.
// APR_OUTSIDE_RANGE uses ThresholdLow/ThresholdHigh (nil means unbounded on
// that side); the RATE_DIFF kinds use ThresholdValue.
type Condition struct {
	ID             uint
	Kind           ConditionKind
	ThresholdLow   *decimal.Decimal
	ThresholdHigh  *decimal.Decimal
	ThresholdValue *decimal.Decimal
}

type ChannelKind string

const (
	ChannelEmail    ChannelKind = "EMAIL"
	ChannelWebhook  ChannelKind = "WEBHOOK"
	ChannelTelegram ChannelKind = "TELEGRAM"
)

// DeliveryChannel is a sink descriptor attached to an alert. Target is
// interpreted per kind: an email address, a webhook URL, or a chat id.
type DeliveryChannel struct {
	ID     uint
	Kind   ChannelKind
	Target string
}

type Frequency string

const (
	FrequencyImmediate Frequency = "IMMEDIATE"
	FrequencyHourly    Frequency = "HOURLY"
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
)

// Cooldown returns the minimum time between two notifications for the same
// notification key. Unknown values fall back to daily rather than to no
// cooldown, so a bad row cannot cause a notification storm.
func (f Frequency) Cooldown() time.Duration {
	switch f {
	case FrequencyImmediate:
		return 0
	case FrequencyHourly:
		return time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Alert is one user's subscription to a rate watch. Active means not
// archived; archived alerts stay in the store while history references them.
type Alert struct {
	ID         uint
	UserID     uint
	Type       AlertType
	Direction  RateDirection
	Chains     []int64
	Assets     []Asset
	Conditions []Condition
	Channels   []DeliveryChannel
	Frequency  Frequency
	Archived   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WatchesChain reports whether the alert selects the chain. An empty chain
// selection matches every chain.
func (a Alert) WatchesChain(chainID int64) bool {
	if len(a.Chains) == 0 {
		return true
	}
	for _, id := range a.Chains {
		if id == chainID {
			return true
		}
	}
	return false
}
