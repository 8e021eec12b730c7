package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskup/internal/model"
)

type CreateGoalInput struct {
	Title       string
	Description string
	DueDate     *time.Time
}

type GoalService struct {
	goals   GoalStore
	tasks   TaskStore
	members MemberStore
}

func NewGoalService(goals GoalStore, tasks TaskStore, members MemberStore) *GoalService {
	return &GoalService{goals: goals, tasks: tasks, members: members}
}

func (s *GoalService) Create(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, in CreateGoalInput) (*model.Goal, error) {
	if !role.CanManage() {
		return nil, ErrForbidden
	}
	goal := &model.Goal{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Status:         model.GoalNotStarted,
		DueDate:        in.DueDate,
		CreatedBy:      actorID,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, orgID uuid.UUID) ([]model.GoalProgress, error) {
	goals, err := s.goals.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	progress := make([]model.GoalProgress, 0, len(goals))
	for _, goal := range goals {
		progress = append(progress, progressOf(goal))
	}
	return progress, nil
}

// AttachTask links a task of the same organization to the goal.
func (s *GoalService) AttachTask(ctx context.Context, orgID, goalID, taskID uuid.UUID) (*model.GoalProgress, error) {
	if _, err := s.goals.GetByID(ctx, orgID, goalID); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, orgID, taskID); err != nil {
		return nil, err
	}
	if err := s.goals.AttachTask(ctx, goalID, taskID); err != nil {
		return nil, fmt.Errorf("attach task: %w", err)
	}
	return s.progress(ctx, orgID, goalID)
}

func (s *GoalService) AddAssignee(ctx context.Context, orgID, goalID, userID uuid.UUID) (*model.GoalProgress, error) {
	if _, err := s.goals.GetByID(ctx, orgID, goalID); err != nil {
		return nil, err
	}
	if _, err := s.members.Get(ctx, orgID, userID); err != nil {
		return nil, err
	}
	if err := s.goals.AddAssignee(ctx, goalID, userID); err != nil {
		return nil, fmt.Errorf("add goal assignee: %w", err)
	}
	return s.progress(ctx, orgID, goalID)
}

func (s *GoalService) UpdateStatus(ctx context.Context, orgID uuid.UUID, role model.MemberRole, goalID uuid.UUID, status model.GoalStatus) (*model.GoalProgress, error) {
	if !role.CanManage() {
		return nil, ErrForbidden
	}
	if err := s.goals.UpdateStatus(ctx, orgID, goalID, status); err != nil {
		return nil, err
	}
	return s.progress(ctx, orgID, goalID)
}

func (s *GoalService) progress(ctx context.Context, orgID, goalID uuid.UUID) (*model.GoalProgress, error) {
	goal, err := s.goals.GetByID(ctx, orgID, goalID)
	if err != nil {
		return nil, err
	}
	p := progressOf(*goal)
	return &p, nil
}

// progressOf counts the goal's linked tasks that are done.
func progressOf(goal model.Goal) model.GoalProgress {
	p := model.GoalProgress{Goal: goal, TotalTasks: len(goal.Tasks)}
	for _, task := range goal.Tasks {
		if task.Status == model.StatusDone {
			p.DoneTasks++
		}
	}
	if p.TotalTasks > 0 {
		p.Percent = int(math.Round(float64(p.DoneTasks) * 100 / float64(p.TotalTasks)))
	}
	return p
}
