package todo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

type completedRequest struct {
	Completed *bool `json:"completed"`
}

// Register mounts the task routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/todos", h.ListTodosHandler)
	g.POST("/todos", h.CreateTodoHandler)
	g.POST("/todos/:id/toggle", h.ToggleTodoHandler)
	g.PUT("/todos/:id/completed", h.SetCompletedHandler)
	g.DELETE("/todos/:id", h.DeleteTodoHandler)
}

// ListTodosHandler handles GET /api/todos and returns the aggregated buckets.
func (h *Handler) ListTodosHandler(c echo.Context) error {
	res, err := h.svc.List(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve todos")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve todos"})
	}
	return c.JSON(http.StatusOK, res)
}

// CreateTodoHandler handles POST /api/todos
func (h *Handler) CreateTodoHandler(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	task, err := h.svc.Add(c.Request().Context(), req.Description, req.DueDate)
	switch {
	case errors.Is(err, ErrEmptyDescription):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Description is required"})
	case errors.Is(err, ErrInvalidDueDate):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "due_date must be YYYY-MM-DD"})
	case err != nil:
		log.Error().Err(err).Msg("Failed to create todo")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create todo"})
	}
	return c.JSON(http.StatusCreated, task)
}

// ToggleTodoHandler handles POST /api/todos/:id/toggle
func (h *Handler) ToggleTodoHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid todo ID"})
	}
	task, err := h.svc.Toggle(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err, "Failed to update todo")
	}
	return c.JSON(http.StatusOK, task)
}

// SetCompletedHandler handles PUT /api/todos/:id/completed
func (h *Handler) SetCompletedHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid todo ID"})
	}
	var req completedRequest
	if err := c.Bind(&req); err != nil || req.Completed == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "completed is required"})
	}
	task, err := h.svc.Complete(c.Request().Context(), id, *req.Completed)
	if err != nil {
		return h.writeError(c, err, "Failed to update todo")
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTodoHandler handles DELETE /api/todos/:id
func (h *Handler) DeleteTodoHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid todo ID"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err, "Failed to delete todo")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) writeError(c echo.Context, err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Todo not found"})
	}
	log.Error().Err(err).Msg(msg)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": msg})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidTaskID
	}
	return id, nil
}
