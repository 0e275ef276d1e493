// Package telegram is the chat front-end: a small Bot API client and the
// command dispatcher that drives the todo and health services.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	// MaxDownloadSize is the Bot API getFile limit.
	MaxDownloadSize = 20 << 20

	ParseModeMarkdown = "Markdown"
)

type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: 70 * time.Second,
		},
	}
}

// WithBaseURL points the client at another Bot API server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

/* =================================================================================
                                 WIRE TYPES
==================================================================================*/

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID      int64    `json:"message_id"`
	From           *User    `json:"from,omitempty"`
	Chat           Chat     `json:"chat"`
	Date           int64    `json:"date"`
	Text           string   `json:"text,omitempty"`
	Voice          *Voice   `json:"voice,omitempty"`
	ReplyToMessage *Message `json:"reply_to_message,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type Voice struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Duration     int    `json:"duration"`
	MimeType     string `json:"mime_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type File struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size,omitempty"`
	FilePath string `json:"file_path"`
}

// SendOptions are the optional sendMessage parameters the bot uses.
type SendOptions struct {
	ParseMode  string
	ForceReply bool
}

type apiResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Result      T      `json:"result"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// APIError is an ok=false answer from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

/* =================================================================================
                                 METHODS
==================================================================================*/

func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	q.Set("allowed_updates", `["message"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return do[[]Update](c, req)
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if opts.ParseMode != "" {
		payload["parse_mode"] = opts.ParseMode
	}
	if opts.ForceReply {
		payload["reply_markup"] = map[string]any{"force_reply": true}
	}
	_, err := post[Message](ctx, c, "sendMessage", payload)
	return err
}

func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	return post[File](ctx, c, "getFile", map[string]any{"file_id": fileID})
}

// DownloadFile fetches the content behind a File.FilePath.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	u := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", redact(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: telegram http status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("download file: larger than %d bytes", MaxDownloadSize)
	}
	return data, nil
}

// SetWebhook registers url; Telegram echoes secret in X-Telegram-Bot-Api-Secret-Token.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	payload := map[string]any{
		"url":             webhookURL,
		"allowed_updates": []string{"message"},
	}
	if secret != "" {
		payload["secret_token"] = secret
	}
	_, err := post[bool](ctx, c, "setWebhook", payload)
	return err
}

// DeleteWebhook switches the bot back to getUpdates.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := post[bool](ctx, c, "deleteWebhook", map[string]any{"drop_pending_updates": false})
	return err
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func post[T any](ctx context.Context, c *Client, method string, payload any) (T, error) {
	var zero T
	body, err := json.Marshal(payload)
	if err != nil {
		return zero, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do[T](c, req)
}

// do decodes the envelope even on 4xx, where Telegram explains the failure.
func do[T any](c *Client, req *http.Request) (T, error) {
	var res apiResponse[T]
	resp, err := c.http.Do(req)
	if err != nil {
		return res.Result, redact(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return res.Result, fmt.Errorf("telegram http status: %s", resp.Status)
		}
		return res.Result, fmt.Errorf("decode telegram response: %w", err)
	}
	if !res.Ok {
		code := res.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return res.Result, &APIError{Code: code, Description: res.Description}
	}
	return res.Result, nil
}

// redact drops the request URL, which carries the bot token.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("telegram %s: %w", strings.ToLower(uerr.Op), uerr.Err)
	}
	return err
}
