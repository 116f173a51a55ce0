package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Field length limits enforced by the schema and the services.
const (
	ProjectNameMaxLen = 20
	TaskNameMaxLen    = 30
)

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          int64     `bun:"id,pk,autoincrement"`
	CompanyID   int64     `bun:"company_id,notnull"`
	Name        string    `bun:"name,type:varchar(20),notnull"`
	Description string    `bun:"description,notnull,default:''"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64      `bun:"id,pk,autoincrement"`
	CompanyID   int64      `bun:"company_id,notnull"`
	ProjectID   int64      `bun:"project_id,notnull"`
	Name        string     `bun:"name,type:varchar(30),notnull"`
	Description string     `bun:"description,notnull,default:''"`
	AssigneeID  *int64     `bun:"assignee_id"`
	Status      TaskStatus `bun:"status,notnull,default:'TODO'"`
	DueTo       *time.Time `bun:"due_to"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}

type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cm"`

	ID        int64     `bun:"id,pk,autoincrement"`
	CompanyID int64     `bun:"company_id,notnull"`
	TaskID    int64     `bun:"task_id,notnull"`
	AuthorID  int64     `bun:"author_id,notnull"`
	Contents  string    `bun:"contents,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
