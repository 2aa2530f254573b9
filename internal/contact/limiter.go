package contact

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles submissions per client address.
type Limiter struct {
	mu      sync.Mutex
	every   time.Duration
	burst   int
	clients map[string]*limiterEntry
	now     func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows burst submissions, refilling one every interval.
func NewLimiter(every time.Duration, burst int) *Limiter {
	return &Limiter{
		every:   every,
		burst:   burst,
		clients: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *Limiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.clients[addr]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.clients[addr] = e
	}
	e.lastSeen = now
	l.sweep(now)
	return e.limiter.AllowN(now, 1)
}

// sweep drops clients idle long enough for their bucket to be full again.
func (l *Limiter) sweep(now time.Time) {
	idle := l.every * time.Duration(l.burst)
	for addr, e := range l.clients {
		if now.Sub(e.lastSeen) > idle {
			delete(l.clients, addr)
		}
	}
}
