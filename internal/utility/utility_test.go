package utility

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\_b \\*c\\* \\`d\\` \\[e]", EscapeMarkdown("a_b *c* `d` [e]"))
}

func TestSpanishDates(t *testing.T) {
	d := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "miércoles, 5 de marzo de 2025", FormatLongDate(d))
	assert.Equal(t, "5 de marzo de 2025", FormatDate(d))
	assert.Equal(t, "5 mar 2025", FormatShortDate(d))
	assert.Equal(t, "sábado", WeekdayES(time.Saturday))
	assert.Equal(t, "diciembre", MonthES(time.December))
}

func TestKeyedLimiter(t *testing.T) {
	l, err := NewKeyedLimiter(rate.Every(time.Hour), 2, 10)
	require.NoError(t, err)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have independent buckets")
}

func TestKeyedLimiterRejectsZeroSize(t *testing.T) {
	_, err := NewKeyedLimiter(rate.Inf, 1, 0)
	assert.Error(t, err)
}

func TestGetRealIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "203.0.113.7", GetRealIP(c))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.2")
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "198.51.100.2", GetRealIP(c))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("s3cret", "s3cret"))
	assert.False(t, SecureCompare("s3cret", "s3cre"))
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	e := echo.New()
	e.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("todos")
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg RefreshMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, RefreshMessage{Type: "REFRESH", Topic: "todos"}, msg)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}
