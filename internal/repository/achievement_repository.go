package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskup/internal/model"
)

// AchievementRepository persists which unlocked achievements a user has already seen.
type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListAcknowledged returns the achievement ids the user has acknowledged
func (r *AchievementRepository) ListAcknowledged(ctx context.Context, userID, orgID uuid.UUID) ([]model.AchievementID, error) {
	var ids []model.AchievementID
	err := conn(ctx, r.db).Model(&model.AchievementAcknowledgement{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Order("acknowledged_at").
		Pluck("achievement_id", &ids).Error
	return ids, err
}

// Acknowledge records the ids as seen; ids already recorded keep their first timestamp
func (r *AchievementRepository) Acknowledge(ctx context.Context, userID, orgID uuid.UUID, ids []model.AchievementID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]model.AchievementAcknowledgement, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.AchievementAcknowledgement{
			UserID:         userID,
			OrganizationID: orgID,
			AchievementID:  id,
			AcknowledgedAt: at,
		})
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
