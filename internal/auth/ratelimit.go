package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter — in-process token bucket по ключу "операция|клиент".
// Состояние не переживает рестарт; для одного инстанса этого достаточно.
type Limiter struct {
	mu      sync.Mutex
	rate    float64 // токенов в секунду
	burst   float64
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewLimiter(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 10
	}
	return &Limiter{
		rate:    float64(perMinute) / 60.0,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
	}
}

// Allow — одна попытка именованной операции для данного клиента.
func (l *Limiter) Allow(op, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := op + "|" + key
	now := time.Now()
	b, ok := l.buckets[k]
	if !ok {
		l.buckets[k] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}
	elapsed := now.Sub(b.last).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
