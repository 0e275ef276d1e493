package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTodo = `-- name: CreateTodo :one
INSERT INTO todos (task, due_date)
VALUES ($1, $2)
RETURNING id, task, completed, due_date, created_at
`

type CreateTodoParams struct {
	Task    string      `json:"task"`
	DueDate pgtype.Text `json:"due_date"`
}

func (q *Queries) CreateTodo(ctx context.Context, arg CreateTodoParams) (Todo, error) {
	row := q.db.QueryRow(ctx, createTodo, arg.Task, arg.DueDate)
	var i Todo
	err := row.Scan(
		&i.ID,
		&i.Task,
		&i.Completed,
		&i.DueDate,
		&i.CreatedAt,
	)
	return i, err
}

const deleteTodo = `-- name: DeleteTodo :execrows
DELETE FROM todos WHERE id = $1
`

func (q *Queries) DeleteTodo(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTodo, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listTodos = `-- name: ListTodos :many
SELECT id, task, completed, due_date, created_at
FROM todos
ORDER BY due_date ASC, completed ASC, created_at DESC
`

func (q *Queries) ListTodos(ctx context.Context) ([]Todo, error) {
	rows, err := q.db.Query(ctx, listTodos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Todo
	for rows.Next() {
		var i Todo
		if err := rows.Scan(
			&i.ID,
			&i.Task,
			&i.Completed,
			&i.DueDate,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setTodoCompleted = `-- name: SetTodoCompleted :one
UPDATE todos SET completed = $2
WHERE id = $1
RETURNING id, task, completed, due_date, created_at
`

type SetTodoCompletedParams struct {
	ID        int64 `json:"id"`
	Completed bool  `json:"completed"`
}

func (q *Queries) SetTodoCompleted(ctx context.Context, arg SetTodoCompletedParams) (Todo, error) {
	row := q.db.QueryRow(ctx, setTodoCompleted, arg.ID, arg.Completed)
	var i Todo
	err := row.Scan(
		&i.ID,
		&i.Task,
		&i.Completed,
		&i.DueDate,
		&i.CreatedAt,
	)
	return i, err
}

const toggleTodo = `-- name: ToggleTodo :one
UPDATE todos SET completed = NOT completed
WHERE id = $1
RETURNING id, task, completed, due_date, created_at
`

func (q *Queries) ToggleTodo(ctx context.Context, id int64) (Todo, error) {
	row := q.db.QueryRow(ctx, toggleTodo, id)
	var i Todo
	err := row.Scan(
		&i.ID,
		&i.Task,
		&i.Completed,
		&i.DueDate,
		&i.CreatedAt,
	)
	return i, err
}
