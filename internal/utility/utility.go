package utility

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// GetRealIP returns the caller's address, preferring proxy headers.
func GetRealIP(c echo.Context) string {
	// "client, proxy1, proxy2"
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xRealIP := c.Request().Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}
	return c.RealIP()
}

// KeyedLimiter hands out one token bucket per key (chat id, IP). Buckets live
// in a bounded LRU so idle keys are forgotten.
type KeyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets *lru.Cache[string, *rate.Limiter]
}

func NewKeyedLimiter(limit rate.Limit, burst, maxKeys int) (*KeyedLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("rate limiter cache: %w", err)
	}
	return &KeyedLimiter{limit: limit, burst: burst, buckets: cache}, nil
}

// Allow consumes a token for key and reports whether one was available.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

// GetSubjectFromContext returns the authenticated subject stored by the JWT middleware.
func GetSubjectFromContext(c echo.Context) (string, error) {
	sub, ok := c.Get("subject").(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("subject not found in context")
	}
	return sub, nil
}

// SecureCompare compares secrets in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
