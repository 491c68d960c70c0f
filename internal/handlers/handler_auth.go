package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/dto"
	"github.com/moneypools/money_pools_app/internal/middleware"
	"github.com/moneypools/money_pools_app/internal/utils"
	"github.com/moneypools/money_pools_app/pkg/config"
)

// authHandler handles registration, login and the current-user endpoint.
type authHandler struct {
	userService services.UserSvcFacade
	cfg         *config.Config
}

func newAuthHandler(userService services.UserSvcFacade, cfg *config.Config) *authHandler {
	return &authHandler{userService: userService, cfg: cfg}
}

// registerAuthRoutes registers the public auth routes. Login is rate limited
// per client IP when a limiter is supplied.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, userService services.UserSvcFacade, loginLimiter *limiter.Limiter) {
	h := newAuthHandler(userService, cfg)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		if loginLimiter != nil {
			auth.POST("/login", middleware.RateLimit(loginLimiter), h.login)
		} else {
			auth.POST("/login", h.login)
		}
	}
}

// registerMeRoutes registers the authenticated current-user route.
func registerMeRoutes(rg *gin.RouterGroup, userService services.UserSvcFacade, cfg *config.Config) {
	h := newAuthHandler(userService, cfg)
	rg.GET("/me", h.me)
}

// register godoc
// @Summary Register a new user
// @Description Creates a user account with a bcrypt-hashed password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for register", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), dto.CreateUserRequest{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Registration with already-used email", slog.String("email", req.Email))
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already registered"})
			return
		}
		logger.Error("Failed to create user", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	c.JSON(http.StatusCreated, dto.ToUserResponse(*user, utils.FormatAmount))
}

// login godoc
// @Summary Log in
// @Description Verifies credentials and issues a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.userService.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}
		// Same response for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("Failed login attempt", slog.String("user_id", user.UserID))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.UserID, h.cfg.JWTSecret, h.cfg.JWTExpiryDuration, h.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign JWT", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

// me godoc
// @Summary Get the current user
// @Description Returns the profile of the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /me [get]
func (h *authHandler) me(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to load current user", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(*user, utils.FormatAmount))
}
