package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vitabot/internal/geminiservice"
	"Vitabot/internal/health"
	"Vitabot/internal/storage/memory"
	"Vitabot/internal/todo"
)

type fakeAnalyzer struct {
	food      geminiservice.Food
	exercise  geminiservice.ExerciseAnalysis
	eval      geminiservice.Evaluation
	err       error
	gotMeals  []geminiservice.MealEntry
	gotExList []geminiservice.ExerciseEntry
}

func (f *fakeAnalyzer) AnalyzeFood(context.Context, string) (geminiservice.Food, error) {
	return f.food, f.err
}

func (f *fakeAnalyzer) AnalyzeExercise(context.Context, string) (geminiservice.ExerciseAnalysis, error) {
	return f.exercise, f.err
}

func (f *fakeAnalyzer) EvaluateDay(_ context.Context, m []geminiservice.MealEntry, e []geminiservice.ExerciseEntry) (geminiservice.Evaluation, error) {
	f.gotMeals, f.gotExList = m, e
	return f.eval, f.err
}

func (f *fakeAnalyzer) GenerateMealPlan(context.Context) (geminiservice.MealPlan, error) {
	return geminiservice.MealPlan{WeeklyCalories: geminiservice.Known(13000)}, f.err
}

func (f *fakeAnalyzer) GenerateExercisePlan(context.Context) (geminiservice.ExercisePlan, error) {
	return geminiservice.ExercisePlan{WeeklyGoal: "moverse"}, f.err
}

type fakeReporter struct{ subjects []string }

func (r *fakeReporter) SendReport(_ context.Context, subject, _ string) error {
	r.subjects = append(r.subjects, subject)
	return errors.New("smtp down")
}

type topics []string

func (t *topics) Publish(topic string) { *t = append(*t, topic) }

// 2025-03-06 01:00 UTC is still the 5th at UTC-3.
var now = func() time.Time { return time.Date(2025, 3, 6, 1, 0, 0, 0, time.UTC) }

func newService(ai *fakeAnalyzer) (*health.Service, *memory.Store, *topics) {
	store := memory.New().WithClock(now)
	pub := &topics{}
	svc := health.NewService(store, ai, todo.DefaultOffset).WithClock(now).WithNotifier(pub)
	return svc, store, pub
}

func TestLogMealUsesLocalDate(t *testing.T) {
	ai := &fakeAnalyzer{food: geminiservice.Food{Name: " milanesa ", Calories: geminiservice.Known(650)}}
	svc, _, pub := newService(ai)

	m, err := svc.LogMeal(context.Background(), "milanesa con puré")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", m.Date)
	assert.Equal(t, "milanesa", m.Name)
	assert.Equal(t, 650, m.Calories)
	assert.Equal(t, topics{health.TopicMeals}, *pub)
}

func TestLogMealEmpty(t *testing.T) {
	svc, _, _ := newService(&fakeAnalyzer{})
	_, err := svc.LogMeal(context.Background(), "  ")
	assert.ErrorIs(t, err, health.ErrEmptyDescription)
}

func TestLogExerciseAnalyzerError(t *testing.T) {
	svc, store, _ := newService(&fakeAnalyzer{err: errors.New("quota")})
	_, err := svc.LogExercise(context.Background(), "correr 30 minutos")
	require.Error(t, err)

	ex, _ := store.ListExercises(context.Background())
	assert.Empty(t, ex)
}

func TestEvaluateDayNothingLogged(t *testing.T) {
	svc, _, _ := newService(&fakeAnalyzer{})
	_, err := svc.EvaluateDay(context.Background())
	assert.ErrorIs(t, err, health.ErrNothingToEvaluate)
}

func TestEvaluateDayTotals(t *testing.T) {
	ctx := context.Background()
	ai := &fakeAnalyzer{eval: geminiservice.Evaluation{MealsAnalysis: "bien", Score: geminiservice.Known(8)}}
	svc, store, _ := newService(ai)
	rep := &fakeReporter{}
	svc.WithReporter(rep)

	_, err := store.CreateMeal(ctx, health.Meal{Date: "2025-03-04", Name: "ayer", Calories: 999})
	require.NoError(t, err)
	_, err = svc.SaveMeal(ctx, "ensalada", 200)
	require.NoError(t, err)
	_, err = svc.SaveMeal(ctx, "pollo", 500)
	require.NoError(t, err)
	_, err = svc.SaveExercise(ctx, "correr", 30, 300)
	require.NoError(t, err)

	got, err := svc.EvaluateDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", got.Date)
	assert.Equal(t, health.Totals{Consumed: 700, Burned: 300, Net: 400}, got.Totals)
	assert.Len(t, ai.gotMeals, 2)
	assert.Equal(t, []geminiservice.ExerciseEntry{{Name: "correr", Calories: 300, DurationMinutes: 30}}, ai.gotExList)
	// a failing reporter does not fail the evaluation
	assert.Equal(t, []string{"Evaluación del día 2025-03-05"}, rep.subjects)

	text := health.FormatEvaluation(got)
	assert.Contains(t, text, "⭐ *Calificación del Día*: 8/10")
	assert.Contains(t, text, "Balance: 400 kcal")
}

func TestPlans(t *testing.T) {
	svc, _, _ := newService(&fakeAnalyzer{})
	mp, err := svc.MealPlan(context.Background())
	require.NoError(t, err)
	assert.Contains(t, health.FormatMealPlan(mp), "📊 Calorías semanales: 13000")

	ep, err := svc.ExercisePlan(context.Background())
	require.NoError(t, err)
	out := health.FormatExercisePlan(ep)
	assert.Contains(t, out, "🎯 Objetivo: moverse")
	assert.Less(t, strings.Index(out, "LUNES"), strings.Index(out, "DOMINGO"))
}

func TestHandlers(t *testing.T) {
	ai := &fakeAnalyzer{food: geminiservice.Food{Name: "pan", Calories: geminiservice.Known(250)}}
	svc, _, _ := newService(ai)
	e := echo.New()
	health.NewHandler(svc).Register(e.Group("/api"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/meals", strings.NewReader(`{"description":"pan con manteca"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"pan"`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/exercises", strings.NewReader(`{"description":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exercises", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluation", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
