/*
Package todo implements the to-do list of the assistant: the task model, the
aggregation of open tasks into display buckets, the chat rendering of those
buckets and the service the chat front-end and the JSON API call into.
*/
package todo

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DateLayout is the stored format of a due date. Lexicographic order on it is date order.
const DateLayout = "2006-01-02"

var (
	ErrNotFound         = errors.New("todo: task not found")
	ErrInvalidTask      = errors.New("todo: invalid task record")
	ErrInvalidTaskID    = errors.New("todo: invalid task id")
	ErrEmptyDescription = errors.New("todo: description is empty")
	ErrInvalidDueDate   = errors.New("todo: due date must be YYYY-MM-DD")
)

// Task is a single to-do record as persisted by the store.
type Task struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date,omitempty"` // YYYY-MM-DD; empty means no deadline
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate reports structural problems only. A malformed due date is not one of them.
func (t Task) Validate() error {
	if t.ID <= 0 {
		return errors.Join(ErrInvalidTask, errors.New("id is required"))
	}
	if strings.TrimSpace(t.Description) == "" {
		return errors.Join(ErrInvalidTask, errors.New("description is required"))
	}
	return nil
}

// HasDueDate reports whether the task carries any due date text at all.
func (t Task) HasDueDate() bool {
	return strings.TrimSpace(t.DueDate) != ""
}

// Store persists tasks. Implementations live in internal/storage.
type Store interface {
	ListTodos(ctx context.Context) ([]Task, error)
	CreateTodo(ctx context.Context, description, dueDate string) (Task, error)
	SetTodoCompleted(ctx context.Context, id int64, completed bool) (Task, error)
	ToggleTodo(ctx context.Context, id int64) (Task, error)
	DeleteTodo(ctx context.Context, id int64) error
}
