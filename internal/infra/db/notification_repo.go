package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordDedupWindow bounds how close together two RecordSent calls for the
// same key may both claim the write. A second record within the window loses,
// which deduplicates concurrent dispatch attempts inside one run.
const recordDedupWindow = time.Minute

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) LastSentAt(ctx context.Context, key domain.NotificationKey) (*time.Time, error) {
	var model sentNotificationModel
	err := r.db.WithContext(ctx).
		Where("alert_id = ? AND condition_id = ? AND chain_id = ? AND asset_address = ? AND protocol = ?",
			key.AlertID, key.ConditionID, key.ChainID, key.AssetAddress, key.Protocol).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	sentAt := model.SentAt
	return &sentAt, nil
}

// RecordSent upserts the cooldown row for the key. The insert and the
// conditional update ride on the composite unique index, so two concurrent
// callers cannot both win: the database picks exactly one.
func (r *NotificationRepository) RecordSent(ctx context.Context, key domain.NotificationKey, at time.Time) (bool, error) {
	model := sentNotificationModel{
		AlertID:      key.AlertID,
		ConditionID:  key.ConditionID,
		ChainID:      key.ChainID,
		AssetAddress: key.AssetAddress,
		Protocol:     key.Protocol,
		SentAt:       at,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "alert_id"},
			{Name: "condition_id"},
			{Name: "chain_id"},
			{Name: "asset_address"},
			{Name: "protocol"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{"sent_at": at}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lt{
				Column: clause.Column{Table: "sent_notifications", Name: "sent_at"},
				Value:  at.Add(-recordDedupWindow),
			},
		}},
	}).Create(&model)
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, result.Error)
	}
	return result.RowsAffected > 0, nil
}
