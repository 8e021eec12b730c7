package model

import (
	"time"

	"github.com/google/uuid"
)

type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalCancelled  GoalStatus = "cancelled"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}

type Goal struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `json:"description"`
	Status         GoalStatus `gorm:"type:goal_status;not null" json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Tasks     []Task `gorm:"many2many:goal_tasks;joinForeignKey:GoalID;joinReferences:TaskID" json:"tasks,omitempty"`
	Assignees []User `gorm:"many2many:goal_assignees;joinForeignKey:GoalID;joinReferences:UserID" json:"assignees,omitempty"`
}

// GoalProgress is a goal with its linked task completion counts.
type GoalProgress struct {
	Goal       Goal `json:"goal"`
	TotalTasks int  `json:"total_tasks"`
	DoneTasks  int  `json:"done_tasks"`
	Percent    int  `json:"percent"`
}
