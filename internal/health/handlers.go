package health

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type logRequest struct {
	Description string `json:"description"`
}

// Register mounts the meal, exercise and evaluation routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/meals", h.ListMealsHandler)
	g.POST("/meals", h.LogMealHandler)
	g.GET("/exercises", h.ListExercisesHandler)
	g.POST("/exercises", h.LogExerciseHandler)
	g.GET("/evaluation", h.EvaluateDayHandler)
}

// ListMealsHandler handles GET /api/meals
func (h *Handler) ListMealsHandler(c echo.Context) error {
	meals, err := h.svc.MealHistory(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve meals")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve meals"})
	}
	if meals == nil {
		meals = []Meal{}
	}
	return c.JSON(http.StatusOK, meals)
}

// LogMealHandler handles POST /api/meals
func (h *Handler) LogMealHandler(c echo.Context) error {
	var req logRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	meal, err := h.svc.LogMeal(c.Request().Context(), req.Description)
	if errors.Is(err, ErrEmptyDescription) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Description is required"})
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to log meal")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save meal"})
	}
	return c.JSON(http.StatusCreated, meal)
}

// ListExercisesHandler handles GET /api/exercises
func (h *Handler) ListExercisesHandler(c echo.Context) error {
	ex, err := h.svc.ExerciseHistory(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve exercises")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve exercises"})
	}
	if ex == nil {
		ex = []Exercise{}
	}
	return c.JSON(http.StatusOK, ex)
}

// LogExerciseHandler handles POST /api/exercises
func (h *Handler) LogExerciseHandler(c echo.Context) error {
	var req logRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	ex, err := h.svc.LogExercise(c.Request().Context(), req.Description)
	if errors.Is(err, ErrEmptyDescription) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Description is required"})
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to log exercise")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save exercise"})
	}
	return c.JSON(http.StatusCreated, ex)
}

// EvaluateDayHandler handles GET /api/evaluation
func (h *Handler) EvaluateDayHandler(c echo.Context) error {
	eval, err := h.svc.EvaluateDay(c.Request().Context())
	if errors.Is(err, ErrNothingToEvaluate) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Nothing logged today"})
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to evaluate day")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to evaluate day"})
	}
	return c.JSON(http.StatusOK, eval)
}
