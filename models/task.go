package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

type Task struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID    primitive.ObjectID `bson:"projectId" json:"projectId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	AssignedBy   primitive.ObjectID `bson:"assignedBy" json:"assignedBy"`
	AssignedTo   primitive.ObjectID `bson:"assignedTo" json:"assignedTo"`
	Status       TaskStatus         `bson:"status" json:"status"`
	Progress     int                `bson:"progress" json:"progress"`
	DueDate      *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	ReminderDate *time.Time         `bson:"reminderDate,omitempty" json:"reminderDate,omitempty"`
	ReminderSent bool               `bson:"reminderSent" json:"reminderSent"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaskPatch carries the fields a member may change on a task. Nil pointers
// leave the stored value untouched.
type TaskPatch struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Status       *TaskStatus `json:"status,omitempty"`
	Progress     *int        `json:"progress,omitempty"`
	DueDate      *time.Time  `json:"dueDate,omitempty"`
	ReminderDate *time.Time  `json:"reminderDate,omitempty"`
}

// ProgressSummary is the rolled-up task breakdown for a project or a user.
type ProgressSummary struct {
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
	InProgressTasks      int `json:"inProgressTasks"`
	PendingTasks         int `json:"pendingTasks"`
	CompletionPercentage int `json:"completionPercentage"`
}
