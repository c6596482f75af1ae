// Package rest отдаёт анализ формы лица по HTTP.
package rest

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	app "face-shape-bot/internal/application"
)

// Config параметры HTTP-сервера
type Config struct {
	BodyLimit int        // максимальный размер тела запроса
	RateLimit rate.Limit // запросов в секунду с одного IP на /api/v1/analyze
	Burst     int
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		BodyLimit: 20 * 1024 * 1024,
		RateLimit: 2,
		Burst:     5,
	}
}

// Server HTTP API поверх сервиса анализа
type Server struct {
	app      *fiber.App
	analysis *app.AnalysisService
	validate *validator.Validate
	log      *logrus.Entry
}

// NewServer создаёт сервер и регистрирует маршруты
func NewServer(analysis *app.AnalysisService, cfg Config, log *logrus.Entry) *Server {
	def := DefaultConfig()
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = def.BodyLimit
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "Face Shape API",
			BodyLimit:             cfg.BodyLimit,
			StrictRouting:         true,
			CaseSensitive:         true,
			DisableStartupMessage: true,
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
		}),
		analysis: analysis,
		validate: validator.New(),
		log:      log.WithField("component", "http"),
	}
	s.routes(newRateLimiter(cfg.RateLimit, cfg.Burst))
	return s
}

func (s *Server) routes(limiter *rateLimiter) {
	s.app.Use(requestID())
	s.app.Use(s.logging())

	s.app.Get("/healthz", s.health)

	v1 := s.app.Group("/api/v1")
	v1.Post("/analyze", s.limit(limiter), s.analyze)
	v1.Get("/shapes", s.shapes)
	v1.Get("/shapes/:id", s.shape)
	v1.Post("/backend/reset", s.resetBackend)
}

// App возвращает fiber-приложение, нужно тестам
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen блокируется, пока сервер не остановлен
func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("http api listening")
	return s.app.Listen(addr)
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
