package db_models

import "github.com/google/uuid"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type Task struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"index"`
	CreatedByID    uuid.UUID `gorm:"index"`

	Title       string
	Description *string
	Status      TaskStatus `gorm:"index;default:'todo'"`
	DueAt       *int64     // unix seconds

	Organization Organization `gorm:"foreignKey:OrganizationID"`
}
