package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
	"taskup/internal/service"
)

type TaskService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in service.CreateTaskInput) (*service.TaskChange, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error)
	Board(ctx context.Context, orgID uuid.UUID) ([]service.BoardColumn, error)
	Logs(ctx context.Context, orgID, taskID uuid.UUID) ([]model.TaskLog, error)
	ChangeStatus(ctx context.Context, orgID, actorID, taskID uuid.UUID, status model.TaskStatus) (*service.TaskChange, error)
	ChangeDifficulty(ctx context.Context, orgID, actorID, taskID uuid.UUID, difficulty model.Difficulty) (*service.TaskChange, error)
	ChangePriority(ctx context.Context, orgID, actorID, taskID uuid.UUID, priority model.TaskPriority) (*model.Task, error)
	Assign(ctx context.Context, orgID, actorID, taskID, userID uuid.UUID) (*service.TaskChange, error)
	Unassign(ctx context.Context, orgID, actorID, taskID, userID uuid.UUID) (*service.TaskChange, error)
	Delete(ctx context.Context, orgID, actorID, taskID uuid.UUID) error
}

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description"`
	Status      model.TaskStatus   `json:"status" binding:"omitempty,task_status"`
	Priority    model.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
	Difficulty  model.Difficulty   `json:"difficulty" binding:"omitempty,difficulty"`
	DueDate     *time.Time         `json:"due_date"`
	AssigneeIDs []uuid.UUID        `json:"assignee_ids"`
}

// StatusRequest представляет запрос на смену статуса
type StatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required,task_status"`
}

// DifficultyRequest представляет запрос на смену сложности
type DifficultyRequest struct {
	Difficulty model.Difficulty `json:"difficulty" binding:"required,difficulty"`
}

// PriorityRequest представляет запрос на смену приоритета
type PriorityRequest struct {
	Priority model.TaskPriority `json:"priority" binding:"required,task_priority"`
}

// AssignRequest представляет запрос на назначение пользователя на задачу
type AssignRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// TaskResponse представляет задачу с подписями и долей очков на исполнителя
type TaskResponse struct {
	model.Task
	StatusLabel       string `json:"status_label"`
	StatusIcon        string `json:"status_icon"`
	PriorityLabel     string `json:"priority_label"`
	DifficultyLabel   string `json:"difficulty_label"`
	PointsPerAssignee int    `json:"points_per_assignee"`
}

// TaskChangeResponse возвращает задачу и созданные транзакции очков
type TaskChangeResponse struct {
	Task         TaskResponse             `json:"task"`
	Transactions []model.PointTransaction `json:"transactions"`
}

func toTaskResponse(task model.Task) TaskResponse {
	if task.Assignees == nil {
		task.Assignees = []model.User{}
	}
	return TaskResponse{
		Task:              task,
		StatusLabel:       task.Status.Label(),
		StatusIcon:        task.Status.Icon(),
		PriorityLabel:     task.Priority.Label(),
		DifficultyLabel:   task.Difficulty.Label(),
		PointsPerAssignee: model.PerAssigneeShare(task.Score, len(task.Assignees)),
	}
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toChangeResponse(change *service.TaskChange) TaskChangeResponse {
	txs := change.Transactions
	if txs == nil {
		txs = []model.PointTransaction{}
	}
	return TaskChangeResponse{Task: toTaskResponse(*change.Task), Transactions: txs}
}

// Create создает новую задачу в активной организации
func (h *TaskHandler) Create(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	change, err := h.tasks.Create(c.Request.Context(), session.ActiveOrganizationID, session.UserID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Difficulty:  req.Difficulty,
		DueDate:     req.DueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toChangeResponse(change))
}

// List возвращает задачи в табличном виде с фильтрами и сортировкой
func (h *TaskHandler) List(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		OrganizationID: session.ActiveOrganizationID,
		SortBy:         c.DefaultQuery("sort", "position"),
		Desc:           c.Query("order") == "desc",
	}

	// Фильтр по статусам: ?status=todo,in_progress
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := model.TaskStatus(strings.TrimSpace(s))
			if !status.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := c.Query("priority"); raw != "" {
		priority := model.TaskPriority(raw)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority filter"})
			return
		}
		filter.Priority = &priority
	}
	if raw := c.Query("assignee"); raw != "" {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		filter.AssigneeID = &assigneeID
	}

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Board возвращает задачи, сгруппированные по колонкам статусов
func (h *TaskHandler) Board(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	columns, err := h.tasks.Board(c.Request.Context(), session.ActiveOrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}

	type boardColumn struct {
		service.BoardColumn
		Tasks []TaskResponse `json:"tasks"`
	}
	response := make([]boardColumn, 0, len(columns))
	for _, col := range columns {
		response = append(response, boardColumn{BoardColumn: col, Tasks: toTaskResponses(col.Tasks)})
	}

	c.JSON(http.StatusOK, response)
}

// GetByID получает задачу по ID
func (h *TaskHandler) GetByID(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), session.ActiveOrganizationID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// ChangeStatus переводит задачу в другой статус и начисляет или списывает очки
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	change, err := h.tasks.ChangeStatus(c.Request.Context(), session.ActiveOrganizationID, session.UserID, taskID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toChangeResponse(change))
}

// ChangeDifficulty меняет сложность задачи и пересчитывает очки для завершенной задачи
func (h *TaskHandler) ChangeDifficulty(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid difficulty"})
		return
	}

	change, err := h.tasks.ChangeDifficulty(c.Request.Context(), session.ActiveOrganizationID, session.UserID, taskID, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toChangeResponse(change))
}

// ChangePriority меняет приоритет задачи
func (h *TaskHandler) ChangePriority(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req PriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	task, err := h.tasks.ChangePriority(c.Request.Context(), session.ActiveOrganizationID, session.UserID, taskID, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// Assign назначает участника организации на задачу
func (h *TaskHandler) Assign(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
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

	change, err := h.tasks.Assign(c.Request.Context(), session.ActiveOrganizationID, session.UserID, taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toChangeResponse(change))
}

// Unassign снимает пользователя с задачи
func (h *TaskHandler) Unassign(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}

	change, err := h.tasks.Unassign(c.Request.Context(), session.ActiveOrganizationID, session.UserID, taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toChangeResponse(change))
}

// Delete удаляет задачу; история очков сохраняется
func (h *TaskHandler) Delete(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), session.ActiveOrganizationID, session.UserID, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Logs возвращает историю действий по задаче
func (h *TaskHandler) Logs(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	logs, err := h.tasks.Logs(c.Request.Context(), session.ActiveOrganizationID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
