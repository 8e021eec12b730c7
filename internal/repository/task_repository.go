package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskup/internal/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

// TaskFilter narrows the table view of tasks.
type TaskFilter struct {
	OrganizationID uuid.UUID
	Statuses       []model.TaskStatus
	Priority       *model.TaskPriority
	AssigneeID     *uuid.UUID
	SortBy         string
	Desc           bool
}

var taskSortColumns = map[string]string{
	"created_at": "tasks.created_at",
	"due_date":   "tasks.due_date",
	"score":      "tasks.score",
	"title":      "tasks.title",
	"position":   "tasks.position",
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task and its assignees
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, assigneeIDs []uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Omit("Assignees").Create(task).Error; err != nil {
		return err
	}
	for _, userID := range assigneeIDs {
		if _, err := r.AddAssignee(ctx, task.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a task of the organization with its assignees
func (r *TaskRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := conn(ctx, r.db).
		Preload("Assignees").
		First(&task, "id = ? AND organization_id = ?", id, orgID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetForUpdate locks the task row for the rest of the transaction and loads its assignees
func (r *TaskRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, "id = ? AND organization_id = ?", id, orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	var assignees []model.User
	err = conn(ctx, r.db).
		Joins("JOIN task_assignees ON task_assignees.user_id = users.id").
		Where("task_assignees.task_id = ?", id).
		Order("users.name").
		Find(&assignees).Error
	if err != nil {
		return nil, err
	}
	task.Assignees = assignees
	return &task, nil
}

// List retrieves tasks matching the filter
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	q := conn(ctx, r.db).
		Preload("Assignees").
		Where("tasks.organization_id = ?", f.OrganizationID)

	if len(f.Statuses) > 0 {
		q = q.Where("tasks.status IN ?", f.Statuses)
	}
	if f.Priority != nil {
		q = q.Where("tasks.priority = ?", *f.Priority)
	}
	if f.AssigneeID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM task_assignees ta WHERE ta.task_id = tasks.id AND ta.user_id = ?)", *f.AssigneeID)
	}

	column, ok := taskSortColumns[f.SortBy]
	if !ok {
		column = "tasks.position"
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: f.Desc}).
		Order("tasks.created_at")

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateFields updates the given columns of a task
func (r *TaskRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := conn(ctx, r.db).Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// NextPosition returns the position after the last task in a status column
func (r *TaskRepository) NextPosition(ctx context.Context, orgID uuid.UUID, status model.TaskStatus) (int, error) {
	var next struct {
		Next int
	}
	err := conn(ctx, r.db).Model(&model.Task{}).
		Select("COALESCE(MAX(position) + 1, 0) AS next").
		Where("organization_id = ? AND status = ?", orgID, status).
		Scan(&next).Error
	return next.Next, err
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&model.Task{}, "id = ? AND organization_id = ?", id, orgID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AddAssignee assigns a user to a task, reporting whether the row was new
func (r *TaskRepository) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).Exec(
		"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		taskID, userID,
	)
	return result.RowsAffected > 0, result.Error
}

// RemoveAssignee removes a user from a task, reporting whether a row was deleted
func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).Exec(
		"DELETE FROM task_assignees WHERE task_id = ? AND user_id = ?",
		taskID, userID,
	)
	return result.RowsAffected > 0, result.Error
}

// CountByStatus returns the number of tasks per status in an organization
func (r *TaskRepository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[model.TaskStatus]int, error) {
	var rows []struct {
		Status model.TaskStatus
		Count  int
	}
	err := conn(ctx, r.db).Model(&model.Task{}).
		Select("status, COUNT(*) AS count").
		Where("organization_id = ?", orgID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.TaskStatus]int, len(model.TaskStatuses))
	for _, s := range model.TaskStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
