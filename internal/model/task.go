package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists statuses in board column order.
var TaskStatuses = []TaskStatus{
	StatusBacklog,
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusBlocked,
	StatusDone,
	StatusCancelled,
}

func (s TaskStatus) Valid() bool {
	return s.Label() != ""
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusBlocked:
		return "Blocked"
	case StatusDone:
		return "Done"
	case StatusCancelled:
		return "Cancelled"
	}
	return ""
}

func (s TaskStatus) Icon() string {
	switch s {
	case StatusBacklog:
		return "circle-dashed"
	case StatusTodo:
		return "circle"
	case StatusInProgress:
		return "timer"
	case StatusInReview:
		return "eye"
	case StatusBlocked:
		return "octagon-x"
	case StatusDone:
		return "circle-check"
	case StatusCancelled:
		return "circle-off"
	}
	return ""
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	return p.Label() != ""
}

func (p TaskPriority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return ""
}

// Rank orders priorities for sorting, higher is more urgent.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d.Score() > 0
}

// Score is the point value of a task of this difficulty.
func (d Difficulty) Score() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	}
	return 0
}

func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return ""
}

type Task struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `json:"description"`
	Status         TaskStatus   `gorm:"type:task_status;not null" json:"status"`
	Priority       TaskPriority `gorm:"type:task_priority;not null" json:"priority"`
	Difficulty     Difficulty   `gorm:"type:task_difficulty;not null" json:"difficulty"`
	Score          int          `gorm:"not null" json:"score"`
	Position       int          `gorm:"not null" json:"position"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedBy      uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Assignees []User `gorm:"many2many:task_assignees;joinForeignKey:TaskID;joinReferences:UserID" json:"assignees"`
}

// AssigneeIDs returns the ids of the preloaded assignees.
func (t *Task) AssigneeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Assignees))
	for _, u := range t.Assignees {
		ids = append(ids, u.ID)
	}
	return ids
}

// PerAssigneeShare is the amount each of n assignees earns for a task worth score.
// The same value is credited to the ledger and shown to users.
func PerAssigneeShare(score, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(n)))
}

type TaskAssignee struct {
	TaskID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}
