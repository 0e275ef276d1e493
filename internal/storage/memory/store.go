// Package memory is an in-process store used when STORAGE=memory and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"Vitabot/internal/health"
	"Vitabot/internal/todo"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	todos     []todo.Task
	meals     []health.Meal
	exercises []health.Exercise
	nextID    int64
}

func New() *Store {
	return &Store{now: time.Now, todos: make([]todo.Task, 0, 16)}
}

// WithClock sets the clock used for created_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ListTodos mirrors the SQL ordering: due date ascending with undated last,
// open before completed, newest first.
func (s *Store) ListTodos(_ context.Context) ([]todo.Task, error) {
	s.mu.RLock()
	out := make([]todo.Task, len(s.todos))
	copy(out, s.todos)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DueDate != b.DueDate {
			if a.DueDate == "" || b.DueDate == "" {
				return b.DueDate == ""
			}
			return a.DueDate < b.DueDate
		}
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateTodo(_ context.Context, description, dueDate string) (todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := todo.Task{ID: s.id(), Description: description, DueDate: dueDate, CreatedAt: s.now()}
	s.todos = append(s.todos, t)
	return t, nil
}

func (s *Store) SetTodoCompleted(_ context.Context, id int64, completed bool) (todo.Task, error) {
	return s.updateTodo(id, func(t *todo.Task) { t.Completed = completed })
}

func (s *Store) ToggleTodo(_ context.Context, id int64) (todo.Task, error) {
	return s.updateTodo(id, func(t *todo.Task) { t.Completed = !t.Completed })
}

func (s *Store) DeleteTodo(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return todo.ErrNotFound
}

func (s *Store) updateTodo(id int64, fn func(*todo.Task)) (todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			fn(&s.todos[i])
			return s.todos[i], nil
		}
	}
	return todo.Task{}, todo.ErrNotFound
}

func (s *Store) CreateMeal(_ context.Context, m health.Meal) (health.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	m.CreatedAt = s.now()
	s.meals = append(s.meals, m)
	return m, nil
}

func (s *Store) ListMeals(_ context.Context) ([]health.Meal, error) {
	s.mu.RLock()
	out := make([]health.Meal, len(s.meals))
	copy(out, s.meals)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) ListMealsByDate(_ context.Context, date string) ([]health.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []health.Meal{}
	for _, m := range s.meals {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) CreateExercise(_ context.Context, e health.Exercise) (health.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	e.CreatedAt = s.now()
	s.exercises = append(s.exercises, e)
	return e, nil
}

func (s *Store) ListExercises(_ context.Context) ([]health.Exercise, error) {
	s.mu.RLock()
	out := make([]health.Exercise, len(s.exercises))
	copy(out, s.exercises)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) ListExercisesByDate(_ context.Context, date string) ([]health.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []health.Exercise{}
	for _, e := range s.exercises {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

var (
	_ todo.Store   = (*Store)(nil)
	_ health.Store = (*Store)(nil)
)
