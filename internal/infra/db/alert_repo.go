package db

import (
	"context"
	"fmt"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAlertRepository(db *gorm.DB, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{db: db, logger: logger}
}

// ListActive loads every non-archived alert with its conditions, channels,
// and chain/asset selection, in creation order.
func (r *AlertRepository) ListActive(ctx context.Context) ([]domain.Alert, error) {
	var models []alertModel
	err := r.db.WithContext(ctx).
		Where("archived = ?", false).
		Preload("Chains").
		Preload("Assets").
		Preload("Conditions", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Channels", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, r.mapAlertToDomain(model))
	}
	return alerts, nil
}

func (r *AlertRepository) mapAlertToDomain(model alertModel) domain.Alert {
	alert := domain.Alert{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      domain.AlertType(model.Type),
		Direction: domain.RateDirection(model.Direction),
		Frequency: domain.Frequency(model.Frequency),
		Archived:  model.Archived,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	for _, chain := range model.Chains {
		alert.Chains = append(alert.Chains, chain.ChainID)
	}
	for _, asset := range model.Assets {
		alert.Assets = append(alert.Assets, domain.Asset{
			ChainID: asset.ChainID,
			Address: asset.Address,
			Symbol:  asset.Symbol,
		})
	}
	for _, cond := range model.Conditions {
		mapped, err := mapConditionToDomain(cond)
		if err != nil {
			// A condition with an unparsable threshold is dropped; the
			// alert's other conditions still evaluate.
			r.logger.Warn("skipping condition with invalid threshold",
				zap.Uint("alert_id", model.ID),
				zap.Uint("condition_id", cond.ID),
				zap.Error(err),
			)
			continue
		}
		alert.Conditions = append(alert.Conditions, mapped)
	}
	for _, channel := range model.Channels {
		alert.Channels = append(alert.Channels, domain.DeliveryChannel{
			ID:     channel.ID,
			Kind:   domain.ChannelKind(channel.Kind),
			Target: channel.Target,
		})
	}
	return alert
}

func mapConditionToDomain(model conditionModel) (domain.Condition, error) {
	cond := domain.Condition{
		ID:   model.ID,
		Kind: domain.ConditionKind(model.Kind),
	}

	var err error
	if cond.ThresholdLow, err = parseThreshold(model.ThresholdLow); err != nil {
		return domain.Condition{}, fmt.Errorf("threshold_low: %w", err)
	}
	if cond.ThresholdHigh, err = parseThreshold(model.ThresholdHigh); err != nil {
		return domain.Condition{}, fmt.Errorf("threshold_high: %w", err)
	}
	if cond.ThresholdValue, err = parseThreshold(model.ThresholdValue); err != nil {
		return domain.Condition{}, fmt.Errorf("threshold_value: %w", err)
	}
	return cond, nil
}

func parseThreshold(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
