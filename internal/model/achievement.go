package model

import (
	"time"

	"github.com/google/uuid"
)

type AchievementID string

const (
	AchievementFirstSteps      AchievementID = "first_steps"
	AchievementTaskMaster      AchievementID = "task_master"
	AchievementSpeedDemon      AchievementID = "speed_demon"
	AchievementConsistencyKing AchievementID = "consistency_king"
	AchievementCenturyClub     AchievementID = "century_club"
	AchievementPerfectionist   AchievementID = "perfectionist"
	AchievementOnFire          AchievementID = "on_fire"
	AchievementEliteAchiever   AchievementID = "elite_achiever"
	AchievementLegendary       AchievementID = "legendary"
)

// AchievementResult is one entry of an achievement report.
type AchievementResult struct {
	ID           AchievementID `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Unlocked     bool          `json:"unlocked"`
	UnlockedAt   *time.Time    `json:"unlocked_at,omitempty"`
	Acknowledged bool          `json:"acknowledged"`
}

// AchievementAcknowledgement records that a user has seen an unlocked achievement.
type AchievementAcknowledgement struct {
	UserID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"user_id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;primaryKey" json:"organization_id"`
	AchievementID  AchievementID `gorm:"primaryKey" json:"achievement_id"`
	AcknowledgedAt time.Time     `gorm:"not null" json:"acknowledged_at"`
}
