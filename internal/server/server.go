/*
Package server implements the application's network transport layer.
It builds the echo router, configures timeouts and owns the in-flight
webhook deliveries so shutdown can wait for them.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"Vitabot/internal/database"
	"Vitabot/internal/health"
	"Vitabot/internal/telegram"
	"Vitabot/internal/todo"
	"Vitabot/internal/utility"
)

// UpdateHandler processes one Telegram update. *telegram.Bot implements it.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// Options carries the server's dependencies. DB and Bot may be nil.
type Options struct {
	Port int

	// DB is nil when running on the in-memory store.
	DB database.Service

	// Bot receives webhook deliveries; nil disables the webhook route.
	Bot           UpdateHandler
	WebhookSecret string

	// JWTSecret guards /api; empty disables the JSON API.
	JWTSecret string

	Todos  *todo.Service
	Health *health.Service
	Hub    *utility.Hub
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	opts      Options
	startTime time.Time

	// inflight tracks webhook updates still being handled after the response.
	inflight sync.WaitGroup
}

func New(opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	return &Server{opts: opts, startTime: time.Now()}
}

// HTTPServer returns a configured *http.Server with production network timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Wait blocks until every accepted webhook update has been handled or ctx ends.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
