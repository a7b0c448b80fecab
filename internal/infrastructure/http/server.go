package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/vipgate/internal/adapter/handler/http"
	"github.com/wekeepgrowing/vipgate/internal/config"
	"github.com/wekeepgrowing/vipgate/internal/middleware/auth"
	"github.com/wekeepgrowing/vipgate/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Route paths registered by the server.
const (
	PaymentEventsPath   = "/payment-events"
	TelegramWebhookPath = "/telegram/webhook"
	HealthPath          = "/health"
)

// Handlers groups the endpoint handlers. Admin is optional.
type Handlers struct {
	Webhook  *handlers.WebhookHandler
	Telegram *handlers.TelegramHandler
	Admin    *handlers.AdminHandler
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers Handlers
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		handlers: h,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET(HealthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	s.echo.POST(PaymentEventsPath, s.handlers.Webhook.HandleWebhook)
	s.echo.POST(TelegramWebhookPath, s.handlers.Telegram.HandleUpdate, s.updateLimiter())

	if s.handlers.Admin == nil || s.config.Admin.JWTSecret == "" {
		s.logger.Info("Admin API disabled")
		return
	}

	jwtConfig := auth.JWTConfig{
		Secret: s.config.Admin.JWTSecret,
		Logger: s.logger,
	}
	admin := s.echo.Group("/api/v1/admin", auth.JWTMiddleware(jwtConfig))
	admin.GET("/offerings", s.handlers.Admin.ListOfferings)
	admin.DELETE("/offerings/:id", s.handlers.Admin.DeleteOffering)
	admin.GET("/buyers/:buyerId/grants", s.handlers.Admin.ListBuyerGrants)
}

// updateLimiter caps the chat-update endpoint as a whole, not per address.
func (s *Server) updateLimiter() echo.MiddlewareFunc {
	perSecond := s.config.Telegram.UpdatesPerSecond
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perSecond),
				Burst:     max(1, int(perSecond)*2),
				ExpiresIn: time.Minute,
			},
		),
		IdentifierExtractor: func(echo.Context) (string, error) {
			return "telegram", nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn("Telegram update rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
