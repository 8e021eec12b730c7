package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskLogAction string

const (
	ActionCreated           TaskLogAction = "created"
	ActionUpdated           TaskLogAction = "updated"
	ActionDeleted           TaskLogAction = "deleted"
	ActionStatusChanged     TaskLogAction = "status_changed"
	ActionPriorityChanged   TaskLogAction = "priority_changed"
	ActionDifficultyChanged TaskLogAction = "difficulty_changed"
	ActionAssigned          TaskLogAction = "assigned"
	ActionUnassigned        TaskLogAction = "unassigned"
	ActionLabelAdded        TaskLogAction = "label_added"
	ActionLabelRemoved      TaskLogAction = "label_removed"
	ActionCommentAdded      TaskLogAction = "comment_added"
)

func (a TaskLogAction) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionStatusChanged,
		ActionPriorityChanged, ActionDifficultyChanged, ActionAssigned,
		ActionUnassigned, ActionLabelAdded, ActionLabelRemoved, ActionCommentAdded:
		return true
	}
	return false
}

// TaskLog is an append-only record of an action performed on a task.
type TaskLog struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaskID         *uuid.UUID    `gorm:"type:uuid;index" json:"task_id,omitempty"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null" json:"organization_id"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null" json:"user_id"`
	Action         TaskLogAction `gorm:"type:task_log_action;not null" json:"action"`
	OldValue       *string       `json:"old_value,omitempty"`
	NewValue       *string       `json:"new_value,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// Completion is a status_changed log entry that moved a task into done.
type Completion struct {
	TaskID    uuid.UUID
	CreatedAt time.Time
}
