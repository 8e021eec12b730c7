package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
)

// Transactor runs fn inside a database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LedgerStore interface {
	Apply(ctx context.Context, entry model.LedgerEntry) (*model.PointTransaction, error)
	Balance(ctx context.Context, userID, orgID uuid.UUID) (int, error)
	LockBalance(ctx context.Context, userID, orgID uuid.UUID) (int, error)
	NetCreditsForTask(ctx context.Context, orgID, taskID uuid.UUID) (map[uuid.UUID]int, error)
	ListTransactions(ctx context.Context, userID, orgID uuid.UUID, limit, offset int) ([]model.PointTransaction, error)
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task, assigneeIDs []uuid.UUID) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error)
	GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	NextPosition(ctx context.Context, orgID uuid.UUID, status model.TaskStatus) (int, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error)
	RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID) (map[model.TaskStatus]int, error)
}

type TaskLogStore interface {
	Create(ctx context.Context, entry *model.TaskLog) error
	ListByTask(ctx context.Context, orgID, taskID uuid.UUID) ([]model.TaskLog, error)
}

// History is the read side of the task log used by achievement checkers.
type History interface {
	FirstStatusChange(ctx context.Context, userID, orgID uuid.UUID) (*time.Time, error)
	CompletionsSince(ctx context.Context, userID, orgID uuid.UUID, since time.Time) ([]model.Completion, error)
	CountCompletedTasks(ctx context.Context, userID, orgID uuid.UUID) (int64, error)
	CountDoneTasks(ctx context.Context, orgID uuid.UUID) (int64, error)
}

type MemberStore interface {
	Get(ctx context.Context, orgID, userID uuid.UUID) (*model.Member, error)
	List(ctx context.Context, orgID uuid.UUID) ([]model.Member, error)
}

type AcknowledgementStore interface {
	ListAcknowledged(ctx context.Context, userID, orgID uuid.UUID) ([]model.AchievementID, error)
	Acknowledge(ctx context.Context, userID, orgID uuid.UUID, ids []model.AchievementID, at time.Time) error
}

type MetricsStore interface {
	UserPoints(ctx context.Context, orgID, userID uuid.UUID, from, to time.Time) (int, error)
	TeamPoints(ctx context.Context, orgID uuid.UUID, from, to time.Time) (int, error)
	Leaderboard(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit int) ([]repository.LeaderboardRow, error)
}

type RewardStore interface {
	Create(ctx context.Context, reward *model.Reward) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Reward, error)
	ListActive(ctx context.Context, orgID, userID uuid.UUID) ([]repository.RewardListItem, error)
	FindOpenRedemption(ctx context.Context, userID, rewardID uuid.UUID) (*model.RewardRedemption, error)
	SpentPoints(ctx context.Context, userID, orgID uuid.UUID) (int, error)
	CreateRedemption(ctx context.Context, redemption *model.RewardRedemption) error
	ListRedemptions(ctx context.Context, userID, orgID uuid.UUID) ([]model.RewardRedemption, error)
	GetRedemptionForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.RewardRedemption, error)
	UpdateRedemption(ctx context.Context, redemption *model.RewardRedemption) error
}

type GoalStore interface {
	Create(ctx context.Context, goal *model.Goal) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Goal, error)
	List(ctx context.Context, orgID uuid.UUID) ([]model.Goal, error)
	AttachTask(ctx context.Context, goalID, taskID uuid.UUID) error
	AddAssignee(ctx context.Context, goalID, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status model.GoalStatus) error
}
