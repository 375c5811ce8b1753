package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

type Task struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID   string             `json:"projectId" bson:"projectId"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	DueDate     time.Time          `json:"dueDate" bson:"dueDate"`
	Status      TaskStatus         `json:"status" bson:"status"`
	AssignedTo  []string           `json:"assignedTo" bson:"assignedTo"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
