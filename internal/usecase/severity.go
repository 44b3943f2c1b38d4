package usecase

import (
	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
)

// SeverityConfig holds the tier breakpoints per condition family, in APR
// percentage points of breach magnitude. Breakpoints are configuration;
// monotonicity over the tiers is the invariant.
type SeverityConfig struct {
	MarketLow        decimal.Decimal
	MarketMedium     decimal.Decimal
	MarketHigh       decimal.Decimal
	ComparisonLow    decimal.Decimal
	ComparisonMedium decimal.Decimal
	ComparisonHigh   decimal.Decimal
}

func DefaultSeverityConfig() SeverityConfig {
	return SeverityConfig{
		MarketLow:        decimal.RequireFromString("0.5"),
		MarketMedium:     decimal.RequireFromString("1.5"),
		MarketHigh:       decimal.RequireFromString("3.0"),
		ComparisonLow:    decimal.RequireFromString("0.5"),
		ComparisonMedium: decimal.RequireFromString("1.0"),
		ComparisonHigh:   decimal.RequireFromString("2.0"),
	}
}

// Classifier converts breach magnitudes into severity tiers. Stateless; a
// larger magnitude never yields a lower tier for the same condition kind.
type Classifier struct {
	cfg SeverityConfig
}

func NewClassifier(cfg SeverityConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

func (c *Classifier) Classify(magnitude decimal.Decimal, kind domain.ConditionKind) domain.Severity {
	low, medium, high := c.cfg.MarketLow, c.cfg.MarketMedium, c.cfg.MarketHigh
	if kind == domain.ConditionRateDiffAbove || kind == domain.ConditionRateDiffBelow {
		low, medium, high = c.cfg.ComparisonLow, c.cfg.ComparisonMedium, c.cfg.ComparisonHigh
	}

	switch {
	case magnitude.GreaterThanOrEqual(high):
		return domain.SeverityHigh
	case magnitude.GreaterThanOrEqual(medium):
		return domain.SeverityMedium
	case magnitude.GreaterThanOrEqual(low):
		return domain.SeverityLow
	default:
		return domain.SeverityNone
	}
}
