package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskup/internal/model"
)

type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create adds a new goal
func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return conn(ctx, r.db).Omit("Tasks", "Assignees").Create(goal).Error
}

// GetByID retrieves a goal of the organization with its tasks and assignees
func (r *GoalRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Goal, error) {
	var goal model.Goal
	err := conn(ctx, r.db).
		Preload("Tasks").
		Preload("Assignees").
		First(&goal, "id = ? AND organization_id = ?", id, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// List returns the organization's goals with their linked tasks
func (r *GoalRepository) List(ctx context.Context, orgID uuid.UUID) ([]model.Goal, error) {
	var goals []model.Goal
	err := conn(ctx, r.db).
		Preload("Tasks").
		Preload("Assignees").
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

// AttachTask links a task to a goal
func (r *GoalRepository) AttachTask(ctx context.Context, goalID, taskID uuid.UUID) error {
	return conn(ctx, r.db).Exec(
		"INSERT INTO goal_tasks (goal_id, task_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		goalID, taskID,
	).Error
}

// AddAssignee makes a user responsible for a goal
func (r *GoalRepository) AddAssignee(ctx context.Context, goalID, userID uuid.UUID) error {
	return conn(ctx, r.db).Exec(
		"INSERT INTO goal_assignees (goal_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		goalID, userID,
	).Error
}

// UpdateStatus changes the status of a goal
func (r *GoalRepository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status model.GoalStatus) error {
	result := conn(ctx, r.db).Model(&model.Goal{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
