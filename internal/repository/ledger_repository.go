package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskup/internal/model"
)

// LedgerRepository stores point balances and the append-only transaction log.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Apply mutates a balance and records the matching transaction. The balance
// row is created on first use and locked for the rest of the transaction, so
// concurrent writers for the same user and organization are serialized.
func (r *LedgerRepository) Apply(ctx context.Context, entry model.LedgerEntry) (*model.PointTransaction, error) {
	var recorded *model.PointTransaction
	err := NewTransactor(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		previous, err := r.lockOrSeed(ctx, entry.UserID, entry.OrganizationID)
		if err != nil {
			return fmt.Errorf("lock balance row: %w", err)
		}

		newTotal := previous + entry.Delta
		if newTotal < 0 {
			return ErrNegativeBalance
		}

		db := conn(ctx, r.db)
		err = db.Model(&model.UserPoints{}).
			Where("user_id = ? AND organization_id = ?", entry.UserID, entry.OrganizationID).
			Updates(map[string]interface{}{"total_points": newTotal, "updated_at": time.Now()}).Error
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		tx := &model.PointTransaction{
			ID:              uuid.New(),
			UserID:          entry.UserID,
			OrganizationID:  entry.OrganizationID,
			TaskID:          entry.TaskID,
			TransactionType: entry.Type,
			PointsChange:    entry.Delta,
			PreviousTotal:   previous,
			NewTotal:        newTotal,
		}
		if len(entry.Metadata) > 0 {
			tx.Metadata = datatypes.JSONMap(entry.Metadata)
		}
		if err := db.Create(tx).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		recorded = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// Balance returns the user's total points; a missing row counts as zero
func (r *LedgerRepository) Balance(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	var balance model.UserPoints
	err := conn(ctx, r.db).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.TotalPoints, nil
}

// LockBalance locks the balance row and returns its total. A missing row reads
// as zero and is not created. Must run inside a transaction.
func (r *LedgerRepository) LockBalance(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	var balance model.UserPoints
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.TotalPoints, nil
}

// lockOrSeed creates the balance row on first use and then locks it
func (r *LedgerRepository) lockOrSeed(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	seed := model.UserPoints{ID: uuid.New(), UserID: userID, OrganizationID: orgID}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "organization_id"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return 0, err
	}
	return r.LockBalance(ctx, userID, orgID)
}

// NetCreditsForTask returns, per user, the sum of point changes recorded for a task
func (r *LedgerRepository) NetCreditsForTask(ctx context.Context, orgID, taskID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		UserID uuid.UUID
		Net    int
	}
	err := conn(ctx, r.db).Model(&model.PointTransaction{}).
		Select("user_id, COALESCE(SUM(points_change), 0) AS net").
		Where("organization_id = ? AND task_id = ?", orgID, taskID).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	credits := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		credits[row.UserID] = row.Net
	}
	return credits, nil
}

// ListTransactions returns the user's ledger rows, newest first
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID, orgID uuid.UUID, limit, offset int) ([]model.PointTransaction, error) {
	var txs []model.PointTransaction
	err := conn(ctx, r.db).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	return txs, err
}
