package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vitabot/internal/auth"
	"Vitabot/internal/database"
	"Vitabot/internal/storage/memory"
	"Vitabot/internal/telegram"
	"Vitabot/internal/todo"
	"Vitabot/internal/utility"
)

type fakeBot struct{ updates chan telegram.Update }

func (f *fakeBot) HandleUpdate(_ context.Context, upd telegram.Update) { f.updates <- upd }

type fakeDB struct{ status string }

func (f fakeDB) Health(context.Context) map[string]string { return map[string]string{"status": f.status} }
func (fakeDB) Close()                                      {}
func (fakeDB) Queries() *database.Queries                  { return nil }
func (fakeDB) Pool() *pgxpool.Pool                         { return nil }

const jwtSecret = "jwt-secret"

func newTestServer(t *testing.T, opts Options) (*Server, http.Handler) {
	t.Helper()
	if opts.Todos == nil {
		opts.Todos = todo.NewService(memory.New(), todo.DefaultOffset, 5)
	}
	s := New(opts)
	return s, s.RegisterRoutes()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthMemory(t *testing.T) {
	_, h := newTestServer(t, Options{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, map[string]any{"status": "memory"}, body["database"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthDatabaseDown(t *testing.T) {
	_, h := newTestServer(t, Options{DB: fakeDB{status: "down"}})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, h := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", do(h, req).Header().Get("X-Request-ID"))
}

func webhookRequest(body, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	return req
}

func TestWebhook(t *testing.T) {
	bot := &fakeBot{updates: make(chan telegram.Update, 1)}
	s, h := newTestServer(t, Options{Bot: bot, WebhookSecret: "hook"})
	body := `{"update_id":77,"message":{"message_id":1,"chat":{"id":5,"type":"private"},"text":"/todos"}}`

	assert.Equal(t, http.StatusUnauthorized, do(h, webhookRequest(body, "")).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, webhookRequest(body, "wrong")).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, webhookRequest(`{`, "hook")).Code)

	require.Equal(t, http.StatusOK, do(h, webhookRequest(body, "hook")).Code)
	select {
	case upd := <-bot.updates:
		assert.Equal(t, int64(77), upd.UpdateID)
		require.NotNil(t, upd.Message)
		assert.Equal(t, "/todos", upd.Message.Text)
	case <-time.After(time.Second):
		t.Fatal("update not delivered to the bot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Wait(ctx))
}

func TestWebhookRejectedWithoutConfiguredSecret(t *testing.T) {
	bot := &fakeBot{updates: make(chan telegram.Update, 1)}
	_, h := newTestServer(t, Options{Bot: bot})
	body := `{"update_id":1,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"/delete_1"}}`

	assert.Equal(t, http.StatusUnauthorized, do(h, webhookRequest(body, "")).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, webhookRequest(body, "anything")).Code)
	select {
	case upd := <-bot.updates:
		t.Fatalf("update %d reached the bot", upd.UpdateID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWebhookDisabledWithoutBot(t *testing.T) {
	_, h := newTestServer(t, Options{})
	rec := do(h, webhookRequest(`{"update_id":1}`, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	_, h := newTestServer(t, Options{JWTSecret: jwtSecret, Hub: utility.NewHub()})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.GenerateAccessToken(jwtSecret, "owner", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"overdue":[]`)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = do(h, req)
	assert.JSONEq(t, `{"subject":"owner"}`, rec.Body.String())
}

func TestAPIDisabledWithoutSecret(t *testing.T) {
	_, h := newTestServer(t, Options{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
