package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/LoneDev6/review-user-bot/internal/app"
	"github.com/LoneDev6/review-user-bot/internal/config"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.Service
	pool      *pgxpool.Pool
	redis     *goredis.Client // nil when Redis is not configured
	startTime time.Time
}

// NewServer creates the HTTP server. redisClient may be nil.
func NewServer(cfg *config.Config, appSvc *app.Service, pool *pgxpool.Pool, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       appSvc,
		pool:      pool,
		redis:     redisClient,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
