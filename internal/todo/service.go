package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Topic is published to the Notifier after every mutation.
const Topic = "todos"

// Notifier is told when the task list changed.
type Notifier interface {
	Publish(topic string)
}

type Service struct {
	store      Store
	aggregator Aggregator
	formatter  Formatter
	notifier   Notifier
	now        func() time.Time
}

func NewService(store Store, offset time.Duration, completedLimit int) *Service {
	return &Service{
		store:      store,
		aggregator: NewAggregator(offset),
		formatter:  NewFormatter(offset, completedLimit),
		now:        time.Now,
	}
}

// WithNotifier attaches n and returns the service for chaining.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List fetches every task and aggregates it. Invalid records are logged and left out.
func (s *Service) List(ctx context.Context) (Result, error) {
	tasks, err := s.store.ListTodos(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list todos: %w", err)
	}
	res := s.aggregator.Aggregate(tasks, s.now())
	for _, bad := range res.Invalid {
		log.Warn().Err(bad.Err).Int64("todo_id", bad.Task.ID).Msg("Skipping malformed todo record")
	}
	return res, nil
}

// Render returns the chat message for the current task list.
func (s *Service) Render(ctx context.Context) (string, error) {
	res, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	return s.formatter.Format(res, s.now()), nil
}

// Add creates a task. dueDate may be empty; otherwise it must be YYYY-MM-DD.
func (s *Service) Add(ctx context.Context, description, dueDate string) (Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Task{}, ErrEmptyDescription
	}
	dueDate = NormalizeDueDate(dueDate)
	if dueDate != "" {
		if _, ok := ParseDueDate(dueDate, s.aggregator.Location()); !ok {
			return Task{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, dueDate)
		}
	}
	task, err := s.store.CreateTodo(ctx, description, dueDate)
	if err != nil {
		return Task{}, fmt.Errorf("create todo: %w", err)
	}
	log.Info().Int64("todo_id", task.ID).Str("due_date", dueDate).Msg("Todo saved")
	s.publish()
	return task, nil
}

// Toggle flips the completed flag of the task.
func (s *Service) Toggle(ctx context.Context, id int64) (Task, error) {
	task, err := s.store.ToggleTodo(ctx, id)
	if err != nil {
		return Task{}, fmt.Errorf("toggle todo %d: %w", id, err)
	}
	log.Info().Int64("todo_id", id).Bool("completed", task.Completed).Msg("Todo toggled")
	s.publish()
	return task, nil
}

// Complete sets the completed flag explicitly.
func (s *Service) Complete(ctx context.Context, id int64, completed bool) (Task, error) {
	task, err := s.store.SetTodoCompleted(ctx, id, completed)
	if err != nil {
		return Task{}, fmt.Errorf("set todo %d completed: %w", id, err)
	}
	s.publish()
	return task, nil
}

// Delete removes the task permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	log.Info().Int64("todo_id", id).Msg("Todo deleted")
	s.publish()
	return nil
}

// Today returns the local calendar date, YYYY-MM-DD.
func (s *Service) Today() string {
	return s.aggregator.Today(s.now()).Format(DateLayout)
}

func (s *Service) publish() {
	if s.notifier != nil {
		s.notifier.Publish(Topic)
	}
}

// NormalizeDueDate maps the model's "no date" spellings to the empty string.
func NormalizeDueDate(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "none", "unknown":
		return ""
	}
	return s
}
