package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
)

// InFlightKeyPrefix namespaces the guard keys in Redis.
const InFlightKeyPrefix = "inflight"

// InFlightGuard allows at most one outstanding submission per session.
// Acquire returns a release token, or "" when the session is busy.
type InFlightGuard interface {
	Acquire(ctx context.Context, sessionID string) (string, error)
	Release(ctx context.Context, sessionID, token string) error
}

// releaseScript deletes the key only if it still holds our token, so a
// submission that outlived the TTL cannot free a newer one.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisInFlightGuard keeps the guard in Redis so it holds across replicas.
type RedisInFlightGuard struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisInFlightGuard creates a guard whose keys expire after ttl, which
// should exceed the recommendation client timeout.
func NewRedisInFlightGuard(client *redis.Client, ttl time.Duration) *RedisInFlightGuard {
	return &RedisInFlightGuard{redis: client, ttl: ttl}
}

func inflightKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", InFlightKeyPrefix, sessionID)
}

func (g *RedisInFlightGuard) Acquire(ctx context.Context, sessionID string) (string, error) {
	token := uuid.New().String()
	ok, err := g.redis.SetNX(ctx, inflightKey(sessionID), token, g.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (g *RedisInFlightGuard) Release(ctx context.Context, sessionID, token string) error {
	return releaseScript.Run(ctx, g.redis, []string{inflightKey(sessionID)}, token).Err()
}

// MemoryInFlightGuard is a process-local guard for tests and single-node runs.
type MemoryInFlightGuard struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	active map[string]inflightLease
}

type inflightLease struct {
	token   string
	expires time.Time
}

func NewMemoryInFlightGuard(ttl time.Duration) *MemoryInFlightGuard {
	return &MemoryInFlightGuard{ttl: ttl, now: time.Now, active: make(map[string]inflightLease)}
}

func (g *MemoryInFlightGuard) Acquire(_ context.Context, sessionID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lease, ok := g.active[sessionID]; ok && g.now().Before(lease.expires) {
		return "", nil
	}
	token := uuid.New().String()
	g.active[sessionID] = inflightLease{token: token, expires: g.now().Add(g.ttl)}
	return token, nil
}

func (g *MemoryInFlightGuard) Release(_ context.Context, sessionID, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lease, ok := g.active[sessionID]; ok && lease.token == token {
		delete(g.active, sessionID)
	}
	return nil
}

// SingleSubmission rejects a submission with 409 while another from the
// same session is still outstanding. The guard is released when the handler
// returns. If the guard store is unreachable the request is let through.
func SingleSubmission(guard InFlightGuard, log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := SessionID(c)
		if sessionID == "" {
			c.Next()
			return
		}

		token, err := guard.Acquire(c.Request.Context(), sessionID)
		if err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("in-flight guard unavailable")
			c.Next()
			return
		}
		if token == "" {
			RespondError(c, log, apperr.Busy())
			return
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
			defer cancel()
			if err := guard.Release(ctx, sessionID, token); err != nil {
				log.Warn().Err(err).Str("session", sessionID).Msg("failed to release in-flight guard")
			}
		}()
		c.Next()
	}
}
