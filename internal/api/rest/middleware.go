package rest

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"face-shape-bot/internal/infrastructure/logger"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(logger.RequestIDField, id)
		c.Set(RequestIDHeader, id)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), id))

		return c.Next()
	}
}

func (s *Server) logging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// ответ на ошибку пишем здесь, чтобы в журнал попал итоговый статус
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}

		status := c.Response().StatusCode()
		entry := logger.FromContext(c.UserContext(), s.log).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		})

		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		default:
			entry.Info("success")
		}
		return nil
	}
}

// Лимитеры по IP живут в LRU: не больше maxClients записей,
// запись без обращений дольше idleTTL удаляется
const (
	maxClients = 10000
	idleTTL    = 10 * time.Minute
)

type rateLimiter struct {
	mu     sync.Mutex
	bucket *expirable.LRU[string, *rate.Limiter]
	rate   rate.Limit
	burst  int
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	return newRateLimiterSized(r, burst, maxClients, idleTTL)
}

func newRateLimiterSized(r rate.Limit, burst, size int, ttl time.Duration) *rateLimiter {
	return &rateLimiter{
		bucket: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
		rate:   r,
		burst:  burst,
	}
}

func (r *rateLimiter) limiterFor(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.bucket.Get(ip)
	if !ok {
		l = rate.NewLimiter(r.rate, r.burst)
	}
	// повторный Add продлевает срок жизни активного клиента
	r.bucket.Add(ip, l)
	return l
}

func (s *Server) limit(r *rateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.limiterFor(c.IP()).Allow() {
			logger.FromContext(c.UserContext(), s.log).WithField("ip", c.IP()).Warn("too many requests")
			return writeError(c, fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}
