package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
)

type CreateRewardInput struct {
	Title       string
	Description string
	PointsCost  int
}

// Wallet is the user's ledger balance minus points held by redemptions.
// Available never drops below zero, even after a completion is reversed.
type Wallet struct {
	TotalPoints int `json:"total_points"`
	PointsSpent int `json:"points_spent"`
	Available   int `json:"available"`
}

type RewardService struct {
	tx      Transactor
	rewards RewardStore
	ledger  LedgerStore
	now     func() time.Time
}

func NewRewardService(tx Transactor, rewards RewardStore, ledger LedgerStore) *RewardService {
	return &RewardService{tx: tx, rewards: rewards, ledger: ledger, now: time.Now}
}

func (s *RewardService) Create(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, in CreateRewardInput) (*model.Reward, error) {
	if !role.CanManage() {
		return nil, ErrForbidden
	}
	if in.PointsCost <= 0 {
		return nil, ErrInvalidPointsCost
	}
	reward := &model.Reward{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		PointsCost:     in.PointsCost,
		Active:         true,
		CreatedBy:      actorID,
	}
	if err := s.rewards.Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	return reward, nil
}

func (s *RewardService) List(ctx context.Context, orgID, userID uuid.UUID) ([]repository.RewardListItem, error) {
	return s.rewards.ListActive(ctx, orgID, userID)
}

func (s *RewardService) Wallet(ctx context.Context, userID, orgID uuid.UUID) (*Wallet, error) {
	total, err := s.ledger.Balance(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	spent, err := s.rewards.SpentPoints(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("spent points: %w", err)
	}
	return &Wallet{TotalPoints: total, PointsSpent: spent, Available: max(total-spent, 0)}, nil
}

// Redeem claims a reward for the user. The balance row stays locked until the
// redemption is written, so concurrent redemptions by one user are serialized.
func (s *RewardService) Redeem(ctx context.Context, rewardID, userID, orgID uuid.UUID) (*model.RewardRedemption, error) {
	var redemption *model.RewardRedemption
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		reward, err := s.rewards.GetByID(ctx, orgID, rewardID)
		if err != nil {
			return err
		}
		if !reward.Active {
			return ErrRewardInactive
		}

		total, err := s.ledger.LockBalance(ctx, userID, orgID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		existing, err := s.rewards.FindOpenRedemption(ctx, userID, rewardID)
		if err != nil {
			return fmt.Errorf("find redemption: %w", err)
		}
		if existing != nil {
			return ErrAlreadyRedeemed
		}

		spent, err := s.rewards.SpentPoints(ctx, userID, orgID)
		if err != nil {
			return fmt.Errorf("spent points: %w", err)
		}
		if total-spent < reward.PointsCost {
			return ErrInsufficientPoints
		}

		redemption = &model.RewardRedemption{
			ID:             uuid.New(),
			UserID:         userID,
			OrganizationID: orgID,
			RewardID:       reward.ID,
			Status:         model.RedemptionPending,
			PointsSpent:    reward.PointsCost,
			RedeemedAt:     s.now(),
			Reward:         *reward,
		}
		if err := s.rewards.CreateRedemption(ctx, redemption); err != nil {
			if errors.Is(err, repository.ErrDuplicateRedemption) {
				return ErrAlreadyRedeemed
			}
			return fmt.Errorf("create redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

func (s *RewardService) ListRedemptions(ctx context.Context, userID, orgID uuid.UUID) ([]model.RewardRedemption, error) {
	return s.rewards.ListRedemptions(ctx, userID, orgID)
}

// SetRedemptionStatus completes or cancels a pending redemption.
// Cancelling releases the held points.
func (s *RewardService) SetRedemptionStatus(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, id uuid.UUID, status model.RedemptionStatus) (*model.RewardRedemption, error) {
	if !role.CanManage() {
		return nil, ErrForbidden
	}

	var updated *model.RewardRedemption
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		redemption, err := s.rewards.GetRedemptionForUpdate(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !redemption.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, redemption.Status, status)
		}

		processedAt := s.now()
		redemption.Status = status
		redemption.ProcessedAt = &processedAt
		redemption.ProcessedBy = &actorID
		if err := s.rewards.UpdateRedemption(ctx, redemption); err != nil {
			return fmt.Errorf("update redemption: %w", err)
		}
		updated = redemption
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
