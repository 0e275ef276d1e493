package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// --- Gemini API Configuration ---
const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com"
	DefaultModel       = "gemini-1.5-flash"
	maxRetries         = 3
	initialBackoff     = 1 * time.Second
	requestTimeout     = 30 * time.Second
	pollInterval       = 2 * time.Second
	structuredMimeType = "application/json"
	APIKeyHeader       = "x-goog-api-key"
)

var (
	ErrNoContent = errors.New("gemini: no content in response")
	ErrNoAPIKey  = errors.New("gemini: api key is not configured")
)

// APIError is a non-200 answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned non-200 status: %s, Body: %s", e.Status, e.Body)
}

// retryable reports whether another attempt may succeed.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxRetries     int
	InitialBackoff time.Duration
	RequestTimeout time.Duration
	PollInterval   time.Duration
	// PlanProfile describes the person the weekly plans are written for.
	PlanProfile string
}

// Client talks to the Gemini REST API. It holds no global state and is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = maxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = initialBackoff
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = requestTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = pollInterval
	}
	if cfg.PlanProfile == "" {
		cfg.PlanProfile = DefaultPlanProfile
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
		log:  logger.With().Str("component", "gemini").Str("model", cfg.Model).Logger(),
	}
}

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

type FileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type GenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *GeminiSchema `json:"responseSchema,omitempty"`
	Temperature      *float64      `json:"temperature,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// TextPart is a convenience for a plain text part.
func TextPart(s string) GeminiPart {
	return GeminiPart{Text: s}
}

// GenerateStructured sends system and parts with schema as the response schema
// and decodes the model's JSON answer into out. name only labels the logs.
func (c *Client) GenerateStructured(ctx context.Context, name, system string, parts []GeminiPart, schema *GeminiSchema, out any) error {
	payload := GeminiPayload{
		Contents: []GeminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   schema,
		},
	}
	if system != "" {
		payload.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: system}}}
	}

	raw, err := c.generate(ctx, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), out); err != nil {
		c.log.Error().Err(err).Str("call", name).Str("raw", raw).Msg("Failed to parse model JSON")
		return fmt.Errorf("%s: decode model output: %w", name, err)
	}
	return nil
}

// generate performs the request with exponential backoff and returns the first text part.
func (c *Client) generate(ctx context.Context, payload GeminiPayload) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))

	var lastErr error
	for i := 0; i < c.cfg.MaxRetries; i++ {
		if i > 0 {
			backoff := c.cfg.InitialBackoff * time.Duration(math.Pow(2, float64(i-1)))
			if err := sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		c.log.Debug().Msgf("Attempt %d: Calling Gemini API...", i+1)
		text, err := c.generateOnce(ctx, endpoint, payloadBytes)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Msgf("Attempt %d failed", i+1)

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return "", err
		}
		if errors.Is(err, ErrNoContent) || ctx.Err() != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to call Gemini API after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

// newRequest authenticates with the x-goog-api-key header so the key never
// appears in a URL that transport errors and logs would echo.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(APIKeyHeader, c.cfg.APIKey)
	return req, nil
}

func (c *Client) generateOnce(ctx context.Context, endpoint string, body []byte) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", ErrNoContent
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StripFences removes a surrounding ```json ... ``` block if the model added one.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
