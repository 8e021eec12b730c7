package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/service"
)

type GoalService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, in service.CreateGoalInput) (*model.Goal, error)
	List(ctx context.Context, orgID uuid.UUID) ([]model.GoalProgress, error)
	AttachTask(ctx context.Context, orgID, goalID, taskID uuid.UUID) (*model.GoalProgress, error)
	AddAssignee(ctx context.Context, orgID, goalID, userID uuid.UUID) (*model.GoalProgress, error)
	UpdateStatus(ctx context.Context, orgID uuid.UUID, role model.MemberRole, goalID uuid.UUID, status model.GoalStatus) (*model.GoalProgress, error)
}

type GoalHandler struct {
	goals GoalService
}

func NewGoalHandler(goals GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// GoalRequest представляет запрос на создание цели
type GoalRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// AttachTaskRequest представляет запрос на привязку задачи к цели
type AttachTaskRequest struct {
	TaskID string `json:"task_id" binding:"required,uuid"`
}

// GoalStatusRequest представляет запрос на смену статуса цели
type GoalStatusRequest struct {
	Status model.GoalStatus `json:"status" binding:"required,goal_status"`
}

// Create создает цель (только владелец или администратор)
func (h *GoalHandler) Create(c *gin.Context) {
	session, role, ok := currentSession(c)
	if !ok {
		return
	}

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	goal, err := h.goals.Create(c.Request.Context(), session.ActiveOrganizationID, session.UserID, role, service.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// List возвращает цели организации с прогрессом
func (h *GoalHandler) List(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	goals, err := h.goals.List(c.Request.Context(), session.ActiveOrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if goals == nil {
		goals = []model.GoalProgress{}
	}

	c.JSON(http.StatusOK, goals)
}

// AttachTask привязывает задачу к цели
func (h *GoalHandler) AttachTask(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "id", "goal")
	if !ok {
		return
	}

	var req AttachTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	progress, err := h.goals.AttachTask(c.Request.Context(), session.ActiveOrganizationID, goalID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// AddAssignee добавляет участника к цели
func (h *GoalHandler) AddAssignee(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "id", "goal")
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	progress, err := h.goals.AddAssignee(c.Request.Context(), session.ActiveOrganizationID, goalID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// UpdateStatus меняет статус цели
func (h *GoalHandler) UpdateStatus(c *gin.Context) {
	session, role, ok := currentSession(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "id", "goal")
	if !ok {
		return
	}

	var req GoalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	progress, err := h.goals.UpdateStatus(c.Request.Context(), session.ActiveOrganizationID, role, goalID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
