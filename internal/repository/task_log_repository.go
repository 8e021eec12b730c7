package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskup/internal/model"
)

type TaskLogRepository struct {
	db *gorm.DB
}

func NewTaskLogRepository(db *gorm.DB) *TaskLogRepository {
	return &TaskLogRepository{db: db}
}

// Create appends a log entry
func (r *TaskLogRepository) Create(ctx context.Context, entry *model.TaskLog) error {
	return conn(ctx, r.db).Create(entry).Error
}

// ListByTask returns the history of a task, newest first
func (r *TaskLogRepository) ListByTask(ctx context.Context, orgID, taskID uuid.UUID) ([]model.TaskLog, error) {
	var logs []model.TaskLog
	err := conn(ctx, r.db).
		Where("organization_id = ? AND task_id = ?", orgID, taskID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// FirstStatusChange returns the time of the user's earliest status change, or nil
func (r *TaskLogRepository) FirstStatusChange(ctx context.Context, userID, orgID uuid.UUID) (*time.Time, error) {
	var logs []model.TaskLog
	err := conn(ctx, r.db).
		Select("created_at").
		Where("user_id = ? AND organization_id = ? AND action = ?", userID, orgID, model.ActionStatusChanged).
		Order("created_at").
		Limit(1).
		Find(&logs).Error
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	return &logs[0].CreatedAt, nil
}

// CompletionsSince returns the status changes into done performed by the user at
// or after since, oldest first.
func (r *TaskLogRepository) CompletionsSince(ctx context.Context, userID, orgID uuid.UUID, since time.Time) ([]model.Completion, error) {
	var rows []model.Completion
	err := conn(ctx, r.db).Model(&model.TaskLog{}).
		Select("COALESCE(task_id, id) AS task_id, created_at").
		Where("user_id = ? AND organization_id = ? AND action = ? AND new_value = ?",
			userID, orgID, model.ActionStatusChanged, string(model.StatusDone)).
		Where("created_at >= ?", since).
		Order("created_at").
		Scan(&rows).Error
	return rows, err
}

// CountCompletedTasks counts distinct tasks the user has ever moved into done.
// A completion whose task was deleted still counts once, keyed by its log id.
func (r *TaskLogRepository) CountCompletedTasks(ctx context.Context, userID, orgID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.TaskLog{}).
		Select("COUNT(DISTINCT COALESCE(task_id, id))").
		Where("user_id = ? AND organization_id = ? AND action = ? AND new_value = ?",
			userID, orgID, model.ActionStatusChanged, string(model.StatusDone)).
		Scan(&count).Error
	return count, err
}

// CountDoneTasks counts tasks of the organization currently in done
func (r *TaskLogRepository) CountDoneTasks(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Task{}).
		Where("organization_id = ? AND status = ?", orgID, model.StatusDone).
		Count(&count).Error
	return count, err
}
