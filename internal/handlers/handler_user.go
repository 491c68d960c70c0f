package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/dto"
	"github.com/moneypools/money_pools_app/internal/middleware"
	"github.com/moneypools/money_pools_app/internal/utils"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService services.UserSvcFacade
}

func newUserHandler(us services.UserSvcFacade) *userHandler {
	return &userHandler{userService: us}
}

// registerUserRoutes registers routes related to users.
func registerUserRoutes(rg *gin.RouterGroup, userService services.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("", h.listUsers)
		users.GET("/:userID", h.getUser)
		users.PUT("/:userID", h.updateUser)
		users.DELETE("/:userID", h.deleteUser)
	}
}

// listUsers godoc
// @Summary List users
// @Description Retrieves a page of active users
// @Tags users
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListUsersResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	users, err := h.userService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list users", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	resp := dto.ListUsersResponse{Users: make([]dto.UserResponse, len(users))}
	for i, u := range users {
		resp.Users[i] = dto.ToUserResponse(u, utils.FormatAmount)
	}
	c.JSON(http.StatusOK, resp)
}

// getUser godoc
// @Summary Get a user by ID
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{userID} [get]
func (h *userHandler) getUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
			return
		}
		logger.Error("Failed to get user", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(*user, utils.FormatAmount))
}

// updateUser godoc
// @Summary Update a user's profile
// @Description Users may only update their own profile
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param user body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{userID} [put]
func (h *userHandler) updateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateUser", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), userID, req, updaterUserID)
	if err != nil {
		logger.Warn("Failed to update user", slog.String("target_user_id", userID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("User updated", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.ToUserResponse(*user, utils.FormatAmount))
}

// deleteUser godoc
// @Summary Delete a user
// @Description Soft-deletes the user; users may only delete themselves
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{userID} [delete]
func (h *userHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	deleterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID, deleterUserID); err != nil {
		logger.Warn("Failed to delete user", slog.String("target_user_id", userID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("User deleted", slog.String("user_id", userID))
	c.Status(http.StatusNoContent)
}
