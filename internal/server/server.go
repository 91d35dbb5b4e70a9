package server

import (
	"backend-traceview/internal/auth"
	"backend-traceview/internal/config"
	"backend-traceview/internal/routing"
	"backend-traceview/internal/selection"
	"backend-traceview/internal/stream"
	"backend-traceview/internal/track"
	"backend-traceview/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // GPX exports from watches get big
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	selectionSvc := selection.NewService(s.DB)

	// Both providers share one outbound client so the rate limit covers
	// the process, not each provider separately.
	routingClient := routing.NewClient(s.Cfg.RoutingRPS)
	routingSvc := routing.NewService(s.Redis,
		routing.NewGraphHopper(s.Cfg.GraphHopperURL, s.Cfg.GraphHopperKey, routingClient),
		routing.NewOpenRouteService(s.Cfg.ORSBaseURL, s.Cfg.ORSKey, routingClient),
	)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	track.RegisterRoutes(s.App.Group("/tracks"), track.NewService(s.DB, s.Redis, s.Stream), jwtMiddleware)
	selection.RegisterRoutes(s.App.Group("/tracks"), selectionSvc, jwtMiddleware)
	routing.RegisterRoutes(s.App.Group("/routing"), routingSvc, selectionSvc, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
	web.RegisterRoutes(s.App)
}
