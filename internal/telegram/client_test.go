package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessagePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":5,"type":"private"}}}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN").WithBaseURL(srv.URL)
	err := c.SendMessage(context.Background(), 5, "hola", SendOptions{ParseMode: ParseModeMarkdown, ForceReply: true})
	require.NoError(t, err)

	assert.Equal(t, float64(5), got["chat_id"])
	assert.Equal(t, "hola", got["text"])
	assert.Equal(t, "Markdown", got["parse_mode"])
	assert.Equal(t, map[string]any{"force_reply": true}, got["reply_markup"])
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
	}))
	defer srv.Close()

	err := NewClient("TOKEN").WithBaseURL(srv.URL).SendMessage(context.Background(), 5, "*", SendOptions{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Contains(t, apiErr.Description, "can't parse entities")
}

func TestGetUpdatesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("timeout"))
		assert.Equal(t, "11", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":11,"message":{"message_id":3,"chat":{"id":9,"type":"private"},"text":"/todos","reply_to_message":{"message_id":2,"from":{"id":1,"is_bot":true},"chat":{"id":9,"type":"private"},"text":"¿Qué comiste?"}}}]}`))
	}))
	defer srv.Close()

	updates, err := NewClient("TOKEN").WithBaseURL(srv.URL).GetUpdates(context.Background(), 11, 25*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	msg := updates[0].Message
	require.NotNil(t, msg)
	assert.Equal(t, int64(9), msg.Chat.ID)
	require.NotNil(t, msg.ReplyToMessage)
	assert.True(t, msg.ReplyToMessage.From.IsBot)
}

func TestGetFileAndDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getFile":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"abc","file_path":"voice/file_1.oga"}}`))
		case "/file/botTOKEN/voice/file_1.oga":
			_, _ = w.Write([]byte("OggS"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("TOKEN").WithBaseURL(srv.URL)
	f, err := c.GetFile(context.Background(), "abc")
	require.NoError(t, err)
	data, err := c.DownloadFile(context.Background(), f.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("OggS"), data)

	_, err = c.DownloadFile(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSetWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	err := NewClient("TOKEN").WithBaseURL(srv.URL).SetWebhook(context.Background(), "https://bot.example/telegram/webhook", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got["secret_token"])
	assert.Equal(t, "https://bot.example/telegram/webhook", got["url"])
}

func TestTransportErrorHidesToken(t *testing.T) {
	c := NewClient("SECRET-TOKEN").WithBaseURL("http://127.0.0.1:1")
	err := c.SendMessage(context.Background(), 1, "x", SendOptions{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
}
