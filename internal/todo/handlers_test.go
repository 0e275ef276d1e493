package todo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vitabot/internal/todo"
)

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTodoHandlers(t *testing.T) {
	svc, rec := newService(t)
	e := echo.New()
	todo.NewHandler(svc).Register(e.Group("/api"))

	res := serve(e, http.MethodPost, "/api/todos", `{"description":"pagar la luz","due_date":"2025-03-04"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var created todo.Task
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)

	res = serve(e, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, res.Code)
	var list todo.Result
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	assert.Equal(t, "2025-03-05", list.Today)
	require.Len(t, list.Overdue, 1)
	assert.Equal(t, "pagar la luz", list.Overdue[0].Description)

	res = serve(e, http.MethodPost, "/api/todos/1/toggle", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"completed":true`)

	res = serve(e, http.MethodPut, "/api/todos/1/completed", `{"completed":false}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"completed":false`)

	res = serve(e, http.MethodDelete, "/api/todos/1", "")
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = serve(e, http.MethodDelete, "/api/todos/1", "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	assert.Len(t, rec.topics, 4)
}

func TestTodoHandlersValidation(t *testing.T) {
	svc, _ := newService(t)
	e := echo.New()
	todo.NewHandler(svc).Register(e.Group("/api"))

	tests := []struct {
		name, method, path, body string
		status                   int
	}{
		{"blank description", http.MethodPost, "/api/todos", `{"description":"  "}`, http.StatusBadRequest},
		{"relative date", http.MethodPost, "/api/todos", `{"description":"x","due_date":"mañana"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/todos", `{`, http.StatusBadRequest},
		{"non numeric id", http.MethodPost, "/api/todos/abc/toggle", "", http.StatusBadRequest},
		{"missing completed", http.MethodPut, "/api/todos/1/completed", `{}`, http.StatusBadRequest},
		{"unknown id", http.MethodPost, "/api/todos/99/toggle", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(e, tt.method, tt.path, tt.body).Code)
		})
	}
}
