package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"Vitabot/internal/geminiservice"
	"Vitabot/internal/todo"
)

// Topics published after a mutation.
const (
	TopicMeals     = "meals"
	TopicExercises = "exercises"
)

// Analyzer is the part of the model client the log needs.
type Analyzer interface {
	AnalyzeFood(ctx context.Context, text string) (geminiservice.Food, error)
	AnalyzeExercise(ctx context.Context, text string) (geminiservice.ExerciseAnalysis, error)
	EvaluateDay(ctx context.Context, meals []geminiservice.MealEntry, exercises []geminiservice.ExerciseEntry) (geminiservice.Evaluation, error)
	GenerateMealPlan(ctx context.Context) (geminiservice.MealPlan, error)
	GenerateExercisePlan(ctx context.Context) (geminiservice.ExercisePlan, error)
}

// Reporter receives a copy of every daily evaluation, e.g. by email.
type Reporter interface {
	SendReport(ctx context.Context, subject, markdown string) error
}

type Notifier interface {
	Publish(topic string)
}

// DayEvaluation is the model's verdict plus the data it was based on.
type DayEvaluation struct {
	Date       string                   `json:"date"`
	Meals      []Meal                   `json:"meals"`
	Exercises  []Exercise               `json:"exercises"`
	Totals     Totals                   `json:"totals"`
	Evaluation geminiservice.Evaluation `json:"evaluation"`
}

type Service struct {
	store    Store
	ai       Analyzer
	loc      *time.Location
	now      func() time.Time
	notifier Notifier
	reporter Reporter
}

func NewService(store Store, ai Analyzer, offset time.Duration) *Service {
	return &Service{
		store: store,
		ai:    ai,
		loc:   todo.FixedZone(offset),
		now:   time.Now,
	}
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithReporter(r Reporter) *Service {
	s.reporter = r
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the local calendar date, YYYY-MM-DD.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(todo.DateLayout)
}

// LogMeal analyses a free text description and stores the result for today.
func (s *Service) LogMeal(ctx context.Context, text string) (Meal, error) {
	if strings.TrimSpace(text) == "" {
		return Meal{}, ErrEmptyDescription
	}
	food, err := s.ai.AnalyzeFood(ctx, text)
	if err != nil {
		return Meal{}, fmt.Errorf("analyze meal: %w", err)
	}
	return s.SaveMeal(ctx, food.Name, food.Calories.Value)
}

// SaveMeal stores an already analysed meal for today.
func (s *Service) SaveMeal(ctx context.Context, name string, calories int) (Meal, error) {
	m, err := s.store.CreateMeal(ctx, Meal{Date: s.Today(), Name: strings.TrimSpace(name), Calories: calories})
	if err != nil {
		return Meal{}, fmt.Errorf("save meal: %w", err)
	}
	log.Info().Str("meal", m.Name).Int("calories", m.Calories).Msg("Meal saved")
	s.publish(TopicMeals)
	return m, nil
}

func (s *Service) LogExercise(ctx context.Context, text string) (Exercise, error) {
	if strings.TrimSpace(text) == "" {
		return Exercise{}, ErrEmptyDescription
	}
	ex, err := s.ai.AnalyzeExercise(ctx, text)
	if err != nil {
		return Exercise{}, fmt.Errorf("analyze exercise: %w", err)
	}
	return s.SaveExercise(ctx, ex.Name, ex.Duration.Value, ex.Calories.Value)
}

func (s *Service) SaveExercise(ctx context.Context, name string, durationMinutes, calories int) (Exercise, error) {
	e, err := s.store.CreateExercise(ctx, Exercise{
		Date:            s.Today(),
		Name:            strings.TrimSpace(name),
		DurationMinutes: durationMinutes,
		Calories:        calories,
	})
	if err != nil {
		return Exercise{}, fmt.Errorf("save exercise: %w", err)
	}
	log.Info().Str("exercise", e.Name).Int("minutes", e.DurationMinutes).Int("calories", e.Calories).Msg("Exercise saved")
	s.publish(TopicExercises)
	return e, nil
}

func (s *Service) MealHistory(ctx context.Context) ([]Meal, error) {
	meals, err := s.store.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

func (s *Service) ExerciseHistory(ctx context.Context) ([]Exercise, error) {
	ex, err := s.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return ex, nil
}

// EvaluateDay loads today's meals and exercises concurrently and asks the model
// for an evaluation. ErrNothingToEvaluate when both are empty.
func (s *Service) EvaluateDay(ctx context.Context) (DayEvaluation, error) {
	day := s.Today()
	var (
		meals     []Meal
		exercises []Exercise
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meals, err = s.store.ListMealsByDate(gctx, day)
		return err
	})
	g.Go(func() error {
		var err error
		exercises, err = s.store.ListExercisesByDate(gctx, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return DayEvaluation{}, fmt.Errorf("load day %s: %w", day, err)
	}
	if len(meals) == 0 && len(exercises) == 0 {
		return DayEvaluation{}, ErrNothingToEvaluate
	}

	me := make([]geminiservice.MealEntry, 0, len(meals))
	for _, m := range meals {
		me = append(me, geminiservice.MealEntry{Name: m.Name, Calories: m.Calories})
	}
	ee := make([]geminiservice.ExerciseEntry, 0, len(exercises))
	for _, e := range exercises {
		ee = append(ee, geminiservice.ExerciseEntry{Name: e.Name, Calories: e.Calories, DurationMinutes: e.DurationMinutes})
	}

	eval, err := s.ai.EvaluateDay(ctx, me, ee)
	if err != nil {
		return DayEvaluation{}, fmt.Errorf("evaluate day: %w", err)
	}
	out := DayEvaluation{
		Date:       day,
		Meals:      meals,
		Exercises:  exercises,
		Totals:     ComputeTotals(meals, exercises),
		Evaluation: eval,
	}

	if s.reporter != nil {
		if err := s.reporter.SendReport(ctx, "Evaluación del día "+day, FormatEvaluation(out)); err != nil {
			log.Warn().Err(err).Msg("Failed to send evaluation report")
		}
	}
	return out, nil
}

func (s *Service) MealPlan(ctx context.Context) (geminiservice.MealPlan, error) {
	plan, err := s.ai.GenerateMealPlan(ctx)
	if err != nil {
		return geminiservice.MealPlan{}, fmt.Errorf("meal plan: %w", err)
	}
	return plan, nil
}

func (s *Service) ExercisePlan(ctx context.Context) (geminiservice.ExercisePlan, error) {
	plan, err := s.ai.GenerateExercisePlan(ctx)
	if err != nil {
		return geminiservice.ExercisePlan{}, fmt.Errorf("exercise plan: %w", err)
	}
	return plan, nil
}

func (s *Service) publish(topic string) {
	if s.notifier != nil {
		s.notifier.Publish(topic)
	}
}
