package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Exercise struct {
	ID        int64              `json:"id"`
	Date      pgtype.Date        `json:"date"`
	Exercise  string             `json:"exercise"`
	Duration  pgtype.Int4        `json:"duration"`
	Calories  pgtype.Int4        `json:"calories"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Meal struct {
	ID        int64              `json:"id"`
	Date      pgtype.Date        `json:"date"`
	Meal      string             `json:"meal"`
	Calories  pgtype.Int4        `json:"calories"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Todo struct {
	ID        int64              `json:"id"`
	Task      string             `json:"task"`
	Completed bool               `json:"completed"`
	DueDate   pgtype.Text        `json:"due_date"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}
