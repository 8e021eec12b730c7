package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskup/internal/model"
)

const uniqueViolation = "23505"

// RewardListItem is a reward with the caller's redemption state.
type RewardListItem struct {
	model.Reward
	Redeemed bool `json:"redeemed"`
}

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create adds a new reward
func (r *RewardRepository) Create(ctx context.Context, reward *model.Reward) error {
	return conn(ctx, r.db).Create(reward).Error
}

// GetByID retrieves a reward of the organization
func (r *RewardRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Reward, error) {
	var reward model.Reward
	err := conn(ctx, r.db).First(&reward, "id = ? AND organization_id = ?", id, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// ListActive returns the organization's active rewards, flagging the ones the user already redeemed
func (r *RewardRepository) ListActive(ctx context.Context, orgID, userID uuid.UUID) ([]RewardListItem, error) {
	var items []RewardListItem
	err := conn(ctx, r.db).Model(&model.Reward{}).
		Select(`rewards.*, EXISTS (
			SELECT 1 FROM reward_redemptions rr
			WHERE rr.reward_id = rewards.id AND rr.user_id = ? AND rr.status <> ?
		) AS redeemed`, userID, model.RedemptionCancelled).
		Where("rewards.organization_id = ? AND rewards.active = ?", orgID, true).
		Order("rewards.points_cost, rewards.title").
		Scan(&items).Error
	return items, err
}

// FindOpenRedemption returns the user's non-cancelled redemption of a reward, or nil
func (r *RewardRepository) FindOpenRedemption(ctx context.Context, userID, rewardID uuid.UUID) (*model.RewardRedemption, error) {
	var redemption model.RewardRedemption
	err := conn(ctx, r.db).
		Where("user_id = ? AND reward_id = ? AND status <> ?", userID, rewardID, model.RedemptionCancelled).
		First(&redemption).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// SpentPoints sums the points held by the user's pending and completed redemptions
func (r *RewardRepository) SpentPoints(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	var spent struct {
		Total int
	}
	err := conn(ctx, r.db).Model(&model.RewardRedemption{}).
		Select("COALESCE(SUM(points_spent), 0) AS total").
		Where("user_id = ? AND organization_id = ? AND status IN ?", userID, orgID,
			[]model.RedemptionStatus{model.RedemptionPending, model.RedemptionCompleted}).
		Scan(&spent).Error
	return spent.Total, err
}

// CreateRedemption inserts a redemption row. The partial unique index on open
// redemptions surfaces as ErrDuplicateRedemption.
func (r *RewardRepository) CreateRedemption(ctx context.Context, redemption *model.RewardRedemption) error {
	err := conn(ctx, r.db).Omit("Reward").Create(redemption).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateRedemption
	}
	return err
}

// ListRedemptions returns the user's redemptions, newest first
func (r *RewardRepository) ListRedemptions(ctx context.Context, userID, orgID uuid.UUID) ([]model.RewardRedemption, error) {
	var redemptions []model.RewardRedemption
	err := conn(ctx, r.db).
		Preload("Reward").
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Order("redeemed_at DESC").
		Find(&redemptions).Error
	return redemptions, err
}

// GetRedemptionForUpdate locks a redemption row of the organization
func (r *RewardRepository) GetRedemptionForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.RewardRedemption, error) {
	var redemption model.RewardRedemption
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&redemption, "id = ? AND organization_id = ?", id, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRedemptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// UpdateRedemption saves the approval fields of a redemption
func (r *RewardRepository) UpdateRedemption(ctx context.Context, redemption *model.RewardRedemption) error {
	return conn(ctx, r.db).Model(&model.RewardRedemption{}).
		Where("id = ?", redemption.ID).
		Updates(map[string]interface{}{
			"status":       redemption.Status,
			"processed_at": redemption.ProcessedAt,
			"processed_by": redemption.ProcessedBy,
		}).Error
}
