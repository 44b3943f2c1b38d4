package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severity tiers are totally ordered: NONE < LOW < MEDIUM < HIGH.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

// NotificationKey is the throttling identity: distinct matched markets under
// the same alert/condition cool down independently.
type NotificationKey struct {
	AlertID      uint
	ConditionID  uint
	ChainID      int64
	AssetAddress string
	Protocol     string
}

// TriggerEvent is one breach of one condition against one matched market.
// Ephemeral; produced by the evaluator, consumed within the same run.
type TriggerEvent struct {
	AlertID       uint
	ConditionID   uint
	ConditionKind ConditionKind
	Direction     RateDirection
	ChainID       int64
	AssetAddress  string
	AssetSymbol   string
	Protocol      string
	BenchmarkRate decimal.Decimal
	ProtocolRate  decimal.Decimal
	Magnitude     decimal.Decimal
	Severity      Severity
}

func (e TriggerEvent) Key() NotificationKey {
	return NotificationKey{
		AlertID:      e.AlertID,
		ConditionID:  e.ConditionID,
		ChainID:      e.ChainID,
		AssetAddress: NormalizeAddress(e.AssetAddress),
		Protocol:     e.Protocol,
	}
}

// Message is a rendered notification handed to a delivery sink.
type Message struct {
	AlertID  uint
	Subject  string
	Body     string
	Severity Severity
	SentAt   time.Time
}
