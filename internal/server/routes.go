package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"Vitabot/internal/auth"
	"Vitabot/internal/health"
	"Vitabot/internal/telegram"
	"Vitabot/internal/todo"
	"Vitabot/internal/utility"
)

// SecretHeader is the header Telegram echoes the webhook secret_token in.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/health", s.healthHandler)

	if s.opts.Bot != nil {
		e.POST("/telegram/webhook", s.webhookHandler)
	}

	if s.opts.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, JSON API disabled")
		return e
	}

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	api.Use(auth.JwtAuthMiddleware(s.opts.JWTSecret))

	if s.opts.Todos != nil {
		todo.NewHandler(s.opts.Todos).Register(api)
	}
	if s.opts.Health != nil {
		health.NewHandler(s.opts.Health).Register(api)
	}
	if s.opts.Hub != nil {
		api.GET("/ws", s.opts.Hub.ServeWS)
	}
	api.GET("/me", meHandler)

	return e
}

// LoggerMiddleware tags every request with an X-Request-ID, stores a request
// scoped logger and logs the outcome.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Set("logger", &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		level := zerolog.InfoLevel
		if c.Response().Status >= http.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		logger.WithLevel(level).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("ip", utility.GetRealIP(c)).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}

func (s *Server) healthHandler(c echo.Context) error {
	ctx := c.Request().Context()
	status := http.StatusOK
	resp := map[string]interface{}{
		"status":  "online",
		"runtime": s.runtimeStats(),
	}

	if s.opts.DB == nil {
		resp["database"] = map[string]string{"status": "memory"}
	} else {
		db := s.opts.DB.Health(ctx)
		resp["database"] = db
		if db["status"] != "up" {
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	return c.JSON(status, resp)
}

// runtimeStats collects host metrics. Failures leave a field out rather than failing the probe.
func (s *Server) runtimeStats() map[string]interface{} {
	stats := map[string]interface{}{
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"start_time": s.startTime.Format(time.RFC3339),
	}
	if v, err := mem.VirtualMemory(); err == nil {
		stats["memory"] = map[string]string{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats["cpu_usage_percent"] = fmt.Sprintf("%.2f%%", pct[0])
	}
	if h, err := host.Info(); err == nil {
		stats["os"] = h.OS
		stats["platform"] = h.Platform
		stats["hostname"] = h.Hostname
	}
	return stats
}

// webhookHandler acknowledges the delivery at once and handles the update in
// the background; Telegram redelivers when the answer is slow.
func (s *Server) webhookHandler(c echo.Context) error {
	if s.opts.WebhookSecret == "" {
		log.Error().Msg("Webhook call rejected: no secret token configured")
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Webhook secret not configured"})
	}
	if !utility.SecureCompare(c.Request().Header.Get(SecretHeader), s.opts.WebhookSecret) {
		log.Warn().Str("ip", utility.GetRealIP(c)).Msg("Webhook call with a bad secret token")
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid secret token"})
	}

	var upd telegram.Update
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid update"})
	}

	ctx := context.WithoutCancel(c.Request().Context())
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.opts.Bot.HandleUpdate(ctx, upd)
	}()
	return c.NoContent(http.StatusOK)
}

// meHandler handles GET /api/me
func meHandler(c echo.Context) error {
	sub, err := utility.GetSubjectFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"subject": sub})
}
