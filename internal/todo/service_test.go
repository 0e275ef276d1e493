package todo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vitabot/internal/storage/memory"
	"Vitabot/internal/todo"
)

type recorder struct{ topics []string }

func (r *recorder) Publish(topic string) { r.topics = append(r.topics, topic) }

type failingStore struct{ todo.Store }

var errDown = errors.New("connection refused")

func (failingStore) ListTodos(context.Context) ([]todo.Task, error) { return nil, errDown }
func (failingStore) ToggleTodo(context.Context, int64) (todo.Task, error) {
	return todo.Task{}, errDown
}

func newService(t *testing.T) (*todo.Service, *recorder) {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }
	rec := &recorder{}
	svc := todo.NewService(memory.New().WithClock(now), todo.DefaultOffset, 5).
		WithClock(now).
		WithNotifier(rec)
	return svc, rec
}

func TestServiceAddAndRender(t *testing.T) {
	ctx := context.Background()
	svc, rec := newService(t)

	out, err := svc.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, todo.EmptyMessage, out)

	tk, err := svc.Add(ctx, "  llamar al médico ", "2025-03-06")
	require.NoError(t, err)
	assert.Equal(t, "llamar al médico", tk.Description)

	_, err = svc.Add(ctx, "comprar pan", "null")
	require.NoError(t, err)

	out, err = svc.Render(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "`/done_1` llamar al médico")
	assert.Contains(t, out, "_(mañana)_")
	assert.Contains(t, out, "📌 *Tareas Sin Fecha:*\n• `/done_2` comprar pan")
	assert.Equal(t, []string{todo.Topic, todo.Topic}, rec.topics)
	assert.Equal(t, "2025-03-05", svc.Today())
}

func TestServiceAddValidation(t *testing.T) {
	ctx := context.Background()
	svc, rec := newService(t)

	_, err := svc.Add(ctx, "   ", "")
	assert.ErrorIs(t, err, todo.ErrEmptyDescription)

	_, err = svc.Add(ctx, "algo", "el viernes")
	assert.ErrorIs(t, err, todo.ErrInvalidDueDate)
	assert.Empty(t, rec.topics)
}

func TestServiceToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tk, err := svc.Add(ctx, "pagar luz", "2025-03-01")
	require.NoError(t, err)

	res, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, res.Overdue, 1)

	_, err = svc.Toggle(ctx, tk.ID)
	require.NoError(t, err)
	res, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Overdue)
	require.Len(t, res.Completed, 1)

	back, err := svc.Toggle(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, back.Completed)
	assert.Equal(t, "2025-03-01", back.DueDate)

	done, err := svc.Complete(ctx, tk.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
}

func TestServiceDeleteMissing(t *testing.T) {
	svc, _ := newService(t)
	err := svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, todo.ErrNotFound)
}

func TestServiceWrapsStoreErrors(t *testing.T) {
	ctx := context.Background()
	svc := todo.NewService(failingStore{}, todo.DefaultOffset, 5)

	_, err := svc.Render(ctx)
	assert.ErrorIs(t, err, errDown)

	_, err = svc.Toggle(ctx, 3)
	assert.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "toggle todo 3")
}
