package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createExercise = `-- name: CreateExercise :one
INSERT INTO exercises (date, exercise, duration, calories)
VALUES ($1, $2, $3, $4)
RETURNING id, date, exercise, duration, calories, created_at
`

type CreateExerciseParams struct {
	Date     pgtype.Date `json:"date"`
	Exercise string      `json:"exercise"`
	Duration pgtype.Int4 `json:"duration"`
	Calories pgtype.Int4 `json:"calories"`
}

func (q *Queries) CreateExercise(ctx context.Context, arg CreateExerciseParams) (Exercise, error) {
	row := q.db.QueryRow(ctx, createExercise,
		arg.Date,
		arg.Exercise,
		arg.Duration,
		arg.Calories,
	)
	var i Exercise
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Exercise,
		&i.Duration,
		&i.Calories,
		&i.CreatedAt,
	)
	return i, err
}

const createMeal = `-- name: CreateMeal :one
INSERT INTO meals (date, meal, calories)
VALUES ($1, $2, $3)
RETURNING id, date, meal, calories, created_at
`

type CreateMealParams struct {
	Date     pgtype.Date `json:"date"`
	Meal     string      `json:"meal"`
	Calories pgtype.Int4 `json:"calories"`
}

func (q *Queries) CreateMeal(ctx context.Context, arg CreateMealParams) (Meal, error) {
	row := q.db.QueryRow(ctx, createMeal, arg.Date, arg.Meal, arg.Calories)
	var i Meal
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Meal,
		&i.Calories,
		&i.CreatedAt,
	)
	return i, err
}

const listExercises = `-- name: ListExercises :many
SELECT id, date, exercise, duration, calories, created_at
FROM exercises
ORDER BY date DESC, created_at ASC
`

func (q *Queries) ListExercises(ctx context.Context) ([]Exercise, error) {
	rows, err := q.db.Query(ctx, listExercises)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExercises(rows)
}

const listExercisesByDate = `-- name: ListExercisesByDate :many
SELECT id, date, exercise, duration, calories, created_at
FROM exercises
WHERE date = $1
ORDER BY created_at ASC
`

func (q *Queries) ListExercisesByDate(ctx context.Context, date pgtype.Date) ([]Exercise, error) {
	rows, err := q.db.Query(ctx, listExercisesByDate, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExercises(rows)
}

const listMeals = `-- name: ListMeals :many
SELECT id, date, meal, calories, created_at
FROM meals
ORDER BY date DESC, created_at ASC
`

func (q *Queries) ListMeals(ctx context.Context) ([]Meal, error) {
	rows, err := q.db.Query(ctx, listMeals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeals(rows)
}

const listMealsByDate = `-- name: ListMealsByDate :many
SELECT id, date, meal, calories, created_at
FROM meals
WHERE date = $1
ORDER BY created_at ASC
`

func (q *Queries) ListMealsByDate(ctx context.Context, date pgtype.Date) ([]Meal, error) {
	rows, err := q.db.Query(ctx, listMealsByDate, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeals(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMeals(rows rowScanner) ([]Meal, error) {
	var items []Meal
	for rows.Next() {
		var i Meal
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Meal,
			&i.Calories,
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

func scanExercises(rows rowScanner) ([]Exercise, error) {
	var items []Exercise
	for rows.Next() {
		var i Exercise
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Exercise,
			&i.Duration,
			&i.Calories,
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
