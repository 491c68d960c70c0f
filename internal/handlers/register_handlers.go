package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/middleware"
	"github.com/moneypools/money_pools_app/pkg/config"
)

// RegisterRoutes wires all HTTP routes. Public routes (health, auth) sit at
// the root; everything under /api/v1 requires a valid JWT.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc *services.ServiceContainer, logger *slog.Logger) {
	r.GET("/health", GetHome)

	loginLimiter, err := middleware.NewIPRateLimiter(cfg.LoginRateLimit)
	if err != nil {
		logger.Warn("Invalid login rate limit, login will not be rate limited",
			slog.String("rate", cfg.LoginRateLimit),
			slog.String("error", err.Error()))
		loginLimiter = nil
	}
	registerAuthRoutes(r, cfg, svc.User, loginLimiter)

	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		registerMeRoutes(protected, svc.User, cfg)
		registerUserRoutes(protected, svc.User)
		registerPoolRoutes(protected, svc.Pool)
		registerTransferRoutes(protected, svc.Transfer, svc.Pool)
	}
}
