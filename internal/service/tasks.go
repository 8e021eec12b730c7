package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
)

type CreateTaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	Difficulty  model.Difficulty
	DueDate     *time.Time
	AssigneeIDs []uuid.UUID
}

// BoardColumn is one status column of the kanban view.
type BoardColumn struct {
	Status model.TaskStatus `json:"status"`
	Label  string           `json:"label"`
	Icon   string           `json:"icon"`
	Tasks  []model.Task     `json:"tasks"`
}

// TaskChange is a task after a mutation together with the ledger rows it produced.
type TaskChange struct {
	Task         *model.Task
	Transactions []model.PointTransaction
}

type TaskService struct {
	tx      Transactor
	tasks   TaskStore
	logs    TaskLogStore
	members MemberStore
	points  *PointsService
	now     func() time.Time
}

func NewTaskService(tx Transactor, tasks TaskStore, logs TaskLogStore, members MemberStore, points *PointsService) *TaskService {
	return &TaskService{
		tx:      tx,
		tasks:   tasks,
		logs:    logs,
		members: members,
		points:  points,
		now:     time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, orgID, actorID uuid.UUID, in CreateTaskInput) (*TaskChange, error) {
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if in.Difficulty == "" {
		in.Difficulty = model.DifficultyMedium
	}

	change := &TaskChange{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assignees := make([]model.User, 0, len(in.AssigneeIDs))
		ids := make([]uuid.UUID, 0, len(in.AssigneeIDs))
		seen := make(map[uuid.UUID]bool, len(in.AssigneeIDs))
		for _, userID := range in.AssigneeIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			member, err := s.members.Get(ctx, orgID, userID)
			if err != nil {
				return fmt.Errorf("assignee %s: %w", userID, err)
			}
			assignees = append(assignees, member.User)
			ids = append(ids, userID)
		}

		position, err := s.tasks.NextPosition(ctx, orgID, in.Status)
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}

		task := &model.Task{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Title:          strings.TrimSpace(in.Title),
			Description:    in.Description,
			Status:         in.Status,
			Priority:       in.Priority,
			Difficulty:     in.Difficulty,
			Score:          in.Difficulty.Score(),
			Position:       position,
			DueDate:        in.DueDate,
			CreatedBy:      actorID,
		}
		if in.Status == model.StatusDone {
			completedAt := s.now()
			task.CompletedAt = &completedAt
		}
		if err := s.tasks.Create(ctx, task, ids); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		task.Assignees = assignees

		if err := s.log(ctx, task, actorID, model.ActionCreated, nil, &task.Title); err != nil {
			return err
		}
		if in.Status == model.StatusDone {
			done := string(model.StatusDone)
			if err := s.log(ctx, task, actorID, model.ActionStatusChanged, nil, &done); err != nil {
				return err
			}
			txs, err := s.points.OnStatusChange(ctx, task, "", model.StatusDone)
			if err != nil {
				return err
			}
			change.Transactions = txs
		}
		change.Task = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *TaskService) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error) {
	return s.tasks.GetByID(ctx, orgID, id)
}

func (s *TaskService) List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error) {
	return s.tasks.List(ctx, f)
}

// Board groups the organization's tasks by status in column order.
func (s *TaskService) Board(ctx context.Context, orgID uuid.UUID) ([]BoardColumn, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{OrganizationID: orgID, SortBy: "position"})
	if err != nil {
		return nil, err
	}

	byStatus := make(map[model.TaskStatus][]model.Task, len(model.TaskStatuses))
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	columns := make([]BoardColumn, 0, len(model.TaskStatuses))
	for _, status := range model.TaskStatuses {
		column := BoardColumn{
			Status: status,
			Label:  status.Label(),
			Icon:   status.Icon(),
			Tasks:  byStatus[status],
		}
		if column.Tasks == nil {
			column.Tasks = []model.Task{}
		}
		columns = append(columns, column)
	}
	return columns, nil
}

func (s *TaskService) Logs(ctx context.Context, orgID, taskID uuid.UUID) ([]model.TaskLog, error) {
	if _, err := s.tasks.GetByID(ctx, orgID, taskID); err != nil {
		return nil, err
	}
	return s.logs.ListByTask(ctx, orgID, taskID)
}

// ChangeStatus moves a task to another status column. Entering or leaving done
// settles the assignees' points in the same transaction.
func (s *TaskService) ChangeStatus(ctx context.Context, orgID, actorID, taskID uuid.UUID, status model.TaskStatus) (*TaskChange, error) {
	change := &TaskChange{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetForUpdate(ctx, orgID, taskID)
		if err != nil {
			return err
		}
		change.Task = task
		from := task.Status
		if from == status {
			return nil
		}

		position, err := s.tasks.NextPosition(ctx, orgID, status)
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		fields := map[string]interface{}{
			"status":   status,
			"position": position,
		}
		switch {
		case status == model.StatusDone:
			completedAt := s.now()
			task.CompletedAt = &completedAt
			fields["completed_at"] = completedAt
		case from == model.StatusDone:
			task.CompletedAt = nil
			fields["completed_at"] = nil
		}
		if err := s.tasks.UpdateFields(ctx, task.ID, fields); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		task.Status = status
		task.Position = position

		oldValue, newValue := string(from), string(status)
		if err := s.log(ctx, task, actorID, model.ActionStatusChanged, &oldValue, &newValue); err != nil {
			return err
		}

		txs, err := s.points.OnStatusChange(ctx, task, from, status)
		if err != nil {
			return err
		}
		change.Transactions = txs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// ChangeDifficulty refreshes the score snapshot; a done task's credits follow the new score.
func (s *TaskService) ChangeDifficulty(ctx context.Context, orgID, actorID, taskID uuid.UUID, difficulty model.Difficulty) (*TaskChange, error) {
	change := &TaskChange{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetForUpdate(ctx, orgID, taskID)
		if err != nil {
			return err
		}
		change.Task = task
		if task.Difficulty == difficulty {
			return nil
		}

		oldValue, newValue := string(task.Difficulty), string(difficulty)
		task.Difficulty = difficulty
		task.Score = difficulty.Score()
		err = s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{
			"difficulty": task.Difficulty,
			"score":      task.Score,
		})
		if err != nil {
			return fmt.Errorf("update difficulty: %w", err)
		}
		if err := s.log(ctx, task, actorID, model.ActionDifficultyChanged, &oldValue, &newValue); err != nil {
			return err
		}

		txs, err := s.points.OnPropertyChange(ctx, task, model.ActionDifficultyChanged)
		if err != nil {
			return err
		}
		change.Transactions = txs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *TaskService) ChangePriority(ctx context.Context, orgID, actorID, taskID uuid.UUID, priority model.TaskPriority) (*model.Task, error) {
	var updated *model.Task
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetForUpdate(ctx, orgID, taskID)
		if err != nil {
			return err
		}
		updated = task
		if task.Priority == priority {
			return nil
		}

		oldValue, newValue := string(task.Priority), string(priority)
		task.Priority = priority
		if err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{"priority": priority}); err != nil {
			return fmt.Errorf("update priority: %w", err)
		}
		return s.log(ctx, task, actorID, model.ActionPriorityChanged, &oldValue, &newValue)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Assign adds a member to the task; on a done task the shares are rebalanced.
func (s *TaskService) Assign(ctx context.Context, orgID, actorID, taskID, userID uuid.UUID) (*TaskChange, error) {
	change := &TaskChange{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetForUpdate(ctx, orgID, taskID)
		if err != nil {
			return err
		}
		change.Task = task

		member, err := s.members.Get(ctx, orgID, userID)
		if err != nil {
			return err
		}
		added, err := s.tasks.AddAssignee(ctx, task.ID, userID)
		if err != nil {
			return fmt.Errorf("add assignee: %w", err)
		}
		if !added {
			return nil
		}
		task.Assignees = append(task.Assignees, member.User)

		assignee := userID.String()
		if err := s.log(ctx, task, actorID, model.ActionAssigned, nil, &assignee); err != nil {
			return err
		}
		txs, err := s.points.OnPropertyChange(ctx, task, model.ActionAssigned)
		if err != nil {
			return err
		}
		change.Transactions = txs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Unassign removes a user from the task; on a done task the shares are rebalanced.
func (s *TaskService) Unassign(ctx context.Context, orgID, actorID, taskID, userID uuid.UUID) (*TaskChange, error) {
	change := &TaskChange{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetForUpdate(ctx, orgID, taskID)
		if err != nil {
			return err
		}
		change.Task = task

		removed, err := s.tasks.RemoveAssignee(ctx, task.ID, userID)
		if err != nil {
			return fmt.Errorf("remove assignee: %w", err)
		}
		if !removed {
			return nil
		}
		remaining := task.Assignees[:0]
		for _, u := range task.Assignees {
			if u.ID != userID {
				remaining = append(remaining, u)
			}
		}
		task.Assignees = remaining

		assignee := userID.String()
		if err := s.log(ctx, task, actorID, model.ActionUnassigned, &assignee, nil); err != nil {
			return err
		}
		txs, err := s.points.OnPropertyChange(ctx, task, model.ActionUnassigned)
		if err != nil {
			return err
		}
		change.Transactions = txs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Delete removes the task. Ledger rows and log entries stay, detached from it.
func (s *TaskService) Delete(ctx context.Context, orgID, actorID, taskID uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetForUpdate(ctx, orgID, taskID)
		if err != nil {
			return err
		}
		if err := s.log(ctx, task, actorID, model.ActionDeleted, &task.Title, nil); err != nil {
			return err
		}
		return s.tasks.Delete(ctx, orgID, task.ID)
	})
}

func (s *TaskService) log(ctx context.Context, task *model.Task, actorID uuid.UUID, action model.TaskLogAction, oldValue, newValue *string) error {
	taskID := task.ID
	entry := &model.TaskLog{
		ID:             uuid.New(),
		TaskID:         &taskID,
		OrganizationID: task.OrganizationID,
		UserID:         actorID,
		Action:         action,
		OldValue:       oldValue,
		NewValue:       newValue,
		CreatedAt:      s.now(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("write %s log: %w", action, err)
	}
	return nil
}
