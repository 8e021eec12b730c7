package model

import (
	"time"

	"github.com/google/uuid"
)

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionCancelled RedemptionStatus = "cancelled"
)

func (s RedemptionStatus) Valid() bool {
	switch s {
	case RedemptionPending, RedemptionCompleted, RedemptionCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an approval step from s to next is allowed.
func (s RedemptionStatus) CanTransitionTo(next RedemptionStatus) bool {
	switch s {
	case RedemptionPending:
		return next == RedemptionCompleted || next == RedemptionCancelled
	case RedemptionCompleted, RedemptionCancelled:
		return false
	}
	return false
}

type Reward struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `json:"description"`
	PointsCost     int       `gorm:"not null" json:"points_cost"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type RewardRedemption struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null" json:"organization_id"`
	RewardID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"reward_id"`
	Status         RedemptionStatus `gorm:"type:redemption_status;not null" json:"status"`
	PointsSpent    int              `gorm:"not null" json:"points_spent"`
	RedeemedAt     time.Time        `gorm:"not null" json:"redeemed_at"`
	ProcessedAt    *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy    *uuid.UUID       `gorm:"type:uuid" json:"processed_by,omitempty"`

	Reward Reward `gorm:"foreignKey:RewardID" json:"reward"`
}
