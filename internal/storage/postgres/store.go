// Package postgres adapts the generated queries to the domain stores.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"Vitabot/internal/database"
	"Vitabot/internal/health"
	"Vitabot/internal/todo"
)

type Store struct {
	q *database.Queries
}

func New(q *database.Queries) *Store {
	return &Store{q: q}
}

func (s *Store) ListTodos(ctx context.Context) ([]todo.Task, error) {
	rows, err := s.q.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]todo.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, toTask(r))
	}
	return out, nil
}

func (s *Store) CreateTodo(ctx context.Context, description, dueDate string) (todo.Task, error) {
	row, err := s.q.CreateTodo(ctx, database.CreateTodoParams{
		Task:    description,
		DueDate: pgtype.Text{String: dueDate, Valid: dueDate != ""},
	})
	if err != nil {
		return todo.Task{}, err
	}
	return toTask(row), nil
}

func (s *Store) SetTodoCompleted(ctx context.Context, id int64, completed bool) (todo.Task, error) {
	row, err := s.q.SetTodoCompleted(ctx, database.SetTodoCompletedParams{ID: id, Completed: completed})
	if err != nil {
		return todo.Task{}, notFound(err)
	}
	return toTask(row), nil
}

func (s *Store) ToggleTodo(ctx context.Context, id int64) (todo.Task, error) {
	row, err := s.q.ToggleTodo(ctx, id)
	if err != nil {
		return todo.Task{}, notFound(err)
	}
	return toTask(row), nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	n, err := s.q.DeleteTodo(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return todo.ErrNotFound
	}
	return nil
}

func (s *Store) CreateMeal(ctx context.Context, m health.Meal) (health.Meal, error) {
	date, err := toDate(m.Date)
	if err != nil {
		return health.Meal{}, err
	}
	row, err := s.q.CreateMeal(ctx, database.CreateMealParams{
		Date:     date,
		Meal:     m.Name,
		Calories: pgtype.Int4{Int32: int32(m.Calories), Valid: true},
	})
	if err != nil {
		return health.Meal{}, err
	}
	return toMeal(row), nil
}

func (s *Store) ListMeals(ctx context.Context) ([]health.Meal, error) {
	rows, err := s.q.ListMeals(ctx)
	if err != nil {
		return nil, err
	}
	return mapSlice(rows, toMeal), nil
}

func (s *Store) ListMealsByDate(ctx context.Context, date string) ([]health.Meal, error) {
	d, err := toDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.ListMealsByDate(ctx, d)
	if err != nil {
		return nil, err
	}
	return mapSlice(rows, toMeal), nil
}

func (s *Store) CreateExercise(ctx context.Context, e health.Exercise) (health.Exercise, error) {
	date, err := toDate(e.Date)
	if err != nil {
		return health.Exercise{}, err
	}
	row, err := s.q.CreateExercise(ctx, database.CreateExerciseParams{
		Date:     date,
		Exercise: e.Name,
		Duration: pgtype.Int4{Int32: int32(e.DurationMinutes), Valid: e.DurationMinutes > 0},
		Calories: pgtype.Int4{Int32: int32(e.Calories), Valid: true},
	})
	if err != nil {
		return health.Exercise{}, err
	}
	return toExercise(row), nil
}

func (s *Store) ListExercises(ctx context.Context) ([]health.Exercise, error) {
	rows, err := s.q.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	return mapSlice(rows, toExercise), nil
}

func (s *Store) ListExercisesByDate(ctx context.Context, date string) ([]health.Exercise, error) {
	d, err := toDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.ListExercisesByDate(ctx, d)
	if err != nil {
		return nil, err
	}
	return mapSlice(rows, toExercise), nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return todo.ErrNotFound
	}
	return err
}

func toTask(r database.Todo) todo.Task {
	t := todo.Task{
		ID:          r.ID,
		Description: r.Task,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.Time,
	}
	if r.DueDate.Valid {
		t.DueDate = r.DueDate.String
	}
	return t
}

func toMeal(r database.Meal) health.Meal {
	return health.Meal{
		ID:        r.ID,
		Date:      fromDate(r.Date),
		Name:      r.Meal,
		Calories:  int(r.Calories.Int32),
		CreatedAt: r.CreatedAt.Time,
	}
}

func toExercise(r database.Exercise) health.Exercise {
	return health.Exercise{
		ID:              r.ID,
		Date:            fromDate(r.Date),
		Name:            r.Exercise,
		DurationMinutes: int(r.Duration.Int32),
		Calories:        int(r.Calories.Int32),
		CreatedAt:       r.CreatedAt.Time,
	}
}

func toDate(s string) (pgtype.Date, error) {
	t, err := time.Parse(todo.DateLayout, s)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func fromDate(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(todo.DateLayout)
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

var (
	_ todo.Store   = (*Store)(nil)
	_ health.Store = (*Store)(nil)
)
