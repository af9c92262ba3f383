package server

import (
	"time"

	"wavvly/internal/config"
	"wavvly/internal/handlers"
	"wavvly/internal/metrics"
	"wavvly/internal/middleware"
	"wavvly/internal/repositories"
	"wavvly/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const bodyLimit = 10 * 1024 * 1024

// Deps are the backends the HTTP server is built over. Publisher may be nil
// when no broker is configured.
type Deps struct {
	Store     *repositories.Store
	Publisher services.EventPublisher
}

type Server struct {
	App *fiber.App
	Cfg config.Config

	auth          *services.AuthService
	posts         *services.PostService
	feed          *services.FeedService
	users         *services.UserService
	graph         *services.GraphService
	notifications *services.NotificationService
}

// NewServer wires services and handlers over deps and registers every route.
func NewServer(cfg config.Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "wavvly",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction()),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(compress.New())
	app.Use(metrics.Middleware())

	store := deps.Store
	notifications := services.NewNotificationService(store.Notifications, store.Users, deps.Publisher)
	s := &Server{
		App:           app,
		Cfg:           cfg,
		auth:          services.NewAuthService(store.Users, cfg.JWTSecret, cfg.TokenTTL),
		posts:         services.NewPostService(store.Posts, store.Users, notifications),
		feed:          services.NewFeedService(store.Posts, store.Users),
		users:         services.NewUserService(store.Users, store.Posts),
		graph:         services.NewGraphService(store.Users, notifications),
		notifications: notifications,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":     "Wavvly API is running!",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": s.Cfg.Env,
		})
	})
	s.App.Get("/metrics", metrics.Handler())

	requireAuth := middleware.AuthRequired(s.auth)
	optionalAuth := middleware.OptionalAuth(s.auth)

	api := s.App.Group("/api", rateLimit(s.Cfg.APIRateLimit, s.Cfg.RateLimitWindow, "Too many requests, please try again later."))

	handlers.NewAuthHandler(s.auth).RegisterRoutes(api, requireAuth,
		rateLimit(s.Cfg.AuthRateLimit, s.Cfg.RateLimitWindow, "Too many authentication attempts, please try again later."))
	handlers.NewPostHandler(s.posts, s.feed).RegisterRoutes(api, requireAuth, optionalAuth)
	handlers.NewUserHandler(s.users, s.graph).RegisterRoutes(api, requireAuth, optionalAuth)
	handlers.NewNotificationHandler(s.notifications).RegisterRoutes(api, requireAuth)
}

// rateLimit limits each client IP to max requests per window. A
// non-positive max disables the limit.
func rateLimit(max int, window time.Duration, message string) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message":    message,
				"retryAfter": int(window.Seconds()),
			})
		},
	})
}
