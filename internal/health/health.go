/*
Package health keeps the meal and exercise log and asks the model for daily
evaluations and weekly plans.
*/
package health

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNothingToEvaluate = errors.New("health: no meals or exercises logged today")
	ErrEmptyDescription  = errors.New("health: description is empty")
)

// Meal is one logged food intake. Date is the local calendar day, YYYY-MM-DD.
type Meal struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	CreatedAt time.Time `json:"created_at"`
}

type Exercise struct {
	ID              int64     `json:"id"`
	Date            string    `json:"date"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Calories        int       `json:"calories"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store persists the log. List* return newest date first; List*ByDate return insertion order.
type Store interface {
	CreateMeal(ctx context.Context, m Meal) (Meal, error)
	ListMeals(ctx context.Context) ([]Meal, error)
	ListMealsByDate(ctx context.Context, date string) ([]Meal, error)
	CreateExercise(ctx context.Context, e Exercise) (Exercise, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
	ListExercisesByDate(ctx context.Context, date string) ([]Exercise, error)
}

// Totals is the calorie balance of one day.
type Totals struct {
	Consumed int `json:"consumed"`
	Burned   int `json:"burned"`
	Net      int `json:"net"`
}

func ComputeTotals(meals []Meal, exercises []Exercise) Totals {
	var t Totals
	for _, m := range meals {
		t.Consumed += m.Calories
	}
	for _, e := range exercises {
		t.Burned += e.Calories
	}
	t.Net = t.Consumed - t.Burned
	return t
}
