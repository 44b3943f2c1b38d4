package db

import (
	"time"
)

type chainModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (chainModel) TableName() string { return "chains" }

type assetModel struct {
	ChainID int64  `gorm:"primaryKey;autoIncrement:false"`
	Address string `gorm:"primaryKey"`
	Symbol  string `gorm:"not null"`
}

func (assetModel) TableName() string { return "assets" }

type alertModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Type      string `gorm:"not null"`
	Direction string `gorm:"not null"`
	Frequency string `gorm:"not null"`
	Archived  bool   `gorm:"index;not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Chains     []alertChainModel      `gorm:"foreignKey:AlertID"`
	Assets     []alertAssetModel      `gorm:"foreignKey:AlertID"`
	Conditions []conditionModel       `gorm:"foreignKey:AlertID"`
	Channels   []deliveryChannelModel `gorm:"foreignKey:AlertID"`
}

func (alertModel) TableName() string { return "alerts" }

type alertChainModel struct {
	AlertID uint  `gorm:"primaryKey;autoIncrement:false"`
	ChainID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (alertChainModel) TableName() string { return "alert_chains" }

type alertAssetModel struct {
	AlertID uint   `gorm:"primaryKey;autoIncrement:false"`
	ChainID int64  `gorm:"primaryKey;autoIncrement:false"`
	Address string `gorm:"primaryKey"`
	Symbol  string `gorm:"not null"`
}

func (alertAssetModel) TableName() string { return "alert_assets" }

// Thresholds are stored as decimal strings; NULL means unset.
type conditionModel struct {
	ID             uint   `gorm:"primaryKey"`
	AlertID        uint   `gorm:"index;not null"`
	Kind           string `gorm:"not null"`
	ThresholdLow   *string
	ThresholdHigh  *string
	ThresholdValue *string
}

func (conditionModel) TableName() string { return "alert_conditions" }

type deliveryChannelModel struct {
	ID      uint   `gorm:"primaryKey"`
	AlertID uint   `gorm:"index;not null"`
	Kind    string `gorm:"not null"`
	Target  string `gorm:"not null"`
}

func (deliveryChannelModel) TableName() string { return "delivery_channels" }

// The composite unique index is what makes RecordSent an atomic
// check-and-set: concurrent inserts for the same key collide on it.
type sentNotificationModel struct {
	ID           uint   `gorm:"primaryKey"`
	AlertID      uint   `gorm:"uniqueIndex:idx_sent_notifications_key,priority:1;not null"`
	ConditionID  uint   `gorm:"uniqueIndex:idx_sent_notifications_key,priority:2;not null"`
	ChainID      int64  `gorm:"uniqueIndex:idx_sent_notifications_key,priority:3;not null"`
	AssetAddress string `gorm:"uniqueIndex:idx_sent_notifications_key,priority:4;not null"`
	Protocol     string `gorm:"uniqueIndex:idx_sent_notifications_key,priority:5;not null"`
	SentAt       time.Time
}

func (sentNotificationModel) TableName() string { return "sent_notifications" }
