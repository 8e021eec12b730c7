package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TransactionType string

const (
	TxTaskCompleted       TransactionType = "task_completed"
	TxTaskUncompleted     TransactionType = "task_uncompleted"
	TxTaskPropertyChanged TransactionType = "task_property_changed"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxTaskCompleted, TxTaskUncompleted, TxTaskPropertyChanged:
		return true
	}
	return false
}

// UserPoints is the running balance of a user inside an organization.
// TotalPoints always equals the sum of the user's PointTransaction deltas.
type UserPoints struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_points_user_org" json:"user_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_points_user_org" json:"organization_id"`
	TotalPoints    int       `gorm:"not null;default:0" json:"total_points"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PointTransaction is an append-only ledger row.
type PointTransaction struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index:idx_point_tx_user_org" json:"user_id"`
	OrganizationID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_point_tx_user_org" json:"organization_id"`
	TaskID          *uuid.UUID        `gorm:"type:uuid;index" json:"task_id,omitempty"`
	TransactionType TransactionType   `gorm:"type:point_transaction_type;not null" json:"transaction_type"`
	PointsChange    int               `gorm:"not null" json:"points_change"`
	PreviousTotal   int               `gorm:"not null" json:"previous_total"`
	NewTotal        int               `gorm:"not null" json:"new_total"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// LedgerEntry is a balance mutation waiting to be applied.
type LedgerEntry struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	TaskID         *uuid.UUID
	Type           TransactionType
	Delta          int
	Metadata       map[string]interface{}
}
