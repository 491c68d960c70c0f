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

// poolHandler handles HTTP requests related to pools and their members.
type poolHandler struct {
	poolService services.PoolSvcFacade
}

func newPoolHandler(ps services.PoolSvcFacade) *poolHandler {
	return &poolHandler{poolService: ps}
}

// registerPoolRoutes registers routes related to pools.
func registerPoolRoutes(rg *gin.RouterGroup, poolService services.PoolSvcFacade) {
	h := newPoolHandler(poolService)

	pools := rg.Group("/pools")
	{
		pools.POST("", h.createPool)
		pools.GET("", h.listPools)
		pools.GET("/:poolID", h.getPool)
		pools.PUT("/:poolID", h.updatePool)
		pools.DELETE("/:poolID", h.deletePool)
		pools.POST("/:poolID/members", h.addMember)
		pools.DELETE("/:poolID/members/:userID", h.removeMember)
		pools.PUT("/:poolID/members/:userID/role", h.changeMemberRole)
	}
}

// createPool godoc
// @Summary Create a pool
// @Description Creates a pool with the caller as admin; listed member emails that match existing users are enrolled as members
// @Tags pools
// @Accept json
// @Produce json
// @Param pool body dto.CreatePoolRequest true "Pool details"
// @Success 201 {object} dto.CreatePoolResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Security BearerAuth
// @Router /pools [post]
func (h *poolHandler) createPool(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPool", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pool, nonExistent, err := h.poolService.CreatePool(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create pool", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Pool created", slog.String("pool_id", pool.PoolID), slog.String("creator_user_id", creatorUserID))
	c.JSON(http.StatusCreated, dto.CreatePoolResponse{
		Pool:               dto.ToPoolResponse(*pool, utils.FormatAmount),
		NonExistentMembers: nonExistent,
	})
}

// listPools godoc
// @Summary List the caller's pools
// @Tags pools
// @Produce json
// @Success 200 {object} dto.ListPoolsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /pools [get]
func (h *poolHandler) listPools(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pools, err := h.poolService.ListUserPools(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list pools", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	resp := dto.ListPoolsResponse{Pools: make([]dto.PoolResponse, len(pools))}
	for i, p := range pools {
		resp.Pools[i] = dto.ToPoolResponse(p, utils.FormatAmount)
	}
	c.JSON(http.StatusOK, resp)
}

// getPool godoc
// @Summary Get a pool with its members
// @Description Only members of the pool may view it
// @Tags pools
// @Produce json
// @Param poolID path string true "Pool ID"
// @Success 200 {object} dto.PoolWithMembersResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Pool not found"
// @Security BearerAuth
// @Router /pools/{poolID} [get]
func (h *poolHandler) getPool(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pool, members, err := h.poolService.GetPoolWithMembers(c.Request.Context(), poolID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Pool not found"})
			return
		}
		logger.Warn("Failed to get pool", slog.String("pool_id", poolID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	memberResponses := make([]dto.PoolMemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = dto.ToPoolMemberResponse(m)
	}
	c.JSON(http.StatusOK, dto.PoolWithMembersResponse{
		Pool:    dto.ToPoolResponse(*pool, utils.FormatAmount),
		Members: memberResponses,
	})
}

// updatePool godoc
// @Summary Update a pool
// @Description Admins only; updates name and description
// @Tags pools
// @Accept json
// @Produce json
// @Param poolID path string true "Pool ID"
// @Param pool body dto.UpdatePoolRequest true "Fields to update"
// @Success 200 {object} dto.PoolResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Pool not found"
// @Security BearerAuth
// @Router /pools/{poolID} [put]
func (h *poolHandler) updatePool(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")

	var req dto.UpdatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updatePool", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pool, err := h.poolService.UpdatePool(c.Request.Context(), poolID, req, userID)
	if err != nil {
		logger.Warn("Failed to update pool", slog.String("pool_id", poolID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Pool updated", slog.String("pool_id", pool.PoolID))
	c.JSON(http.StatusOK, dto.ToPoolResponse(*pool, utils.FormatAmount))
}

// deletePool godoc
// @Summary Deactivate a pool
// @Description Admins only; soft-deletes the pool
// @Tags pools
// @Produce json
// @Param poolID path string true "Pool ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Pool not found"
// @Security BearerAuth
// @Router /pools/{poolID} [delete]
func (h *poolHandler) deletePool(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.poolService.DeactivatePool(c.Request.Context(), poolID, userID); err != nil {
		logger.Warn("Failed to deactivate pool", slog.String("pool_id", poolID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Pool deactivated", slog.String("pool_id", poolID))
	c.Status(http.StatusNoContent)
}

// addMember godoc
// @Summary Add a member to a pool
// @Description Admins only; the member is looked up by email
// @Tags pools
// @Accept json
// @Produce json
// @Param poolID path string true "Pool ID"
// @Param member body dto.AddPoolMemberRequest true "Member details"
// @Success 201 {object} dto.PoolMemberResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Pool or user not found"
// @Failure 409 {object} ErrorResponse "Already a member"
// @Security BearerAuth
// @Router /pools/{poolID}/members [post]
func (h *poolHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")

	var req dto.AddPoolMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	member, err := h.poolService.AddMember(c.Request.Context(), poolID, req, userID)
	if err != nil {
		logger.Warn("Failed to add pool member", slog.String("pool_id", poolID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Pool member added", slog.String("pool_id", poolID), slog.String("member_user_id", member.UserID))
	c.JSON(http.StatusCreated, dto.ToPoolMemberResponse(*member))
}

// removeMember godoc
// @Summary Remove a member from a pool
// @Description Admins only; if the removed member was the last admin, another member is promoted first
// @Tags pools
// @Produce json
// @Param poolID path string true "Pool ID"
// @Param userID path string true "User ID of the member to remove"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Cannot remove the only member"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Pool or member not found"
// @Security BearerAuth
// @Router /pools/{poolID}/members/{userID} [delete]
func (h *poolHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")
	targetUserID := c.Param("userID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.poolService.RemoveMember(c.Request.Context(), poolID, targetUserID, userID); err != nil {
		logger.Warn("Failed to remove pool member",
			slog.String("pool_id", poolID),
			slog.String("target_user_id", targetUserID),
			slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Pool member removed", slog.String("pool_id", poolID), slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}

// changeMemberRole godoc
// @Summary Change a member's role
// @Description Admins only
// @Tags pools
// @Accept json
// @Produce json
// @Param poolID path string true "Pool ID"
// @Param userID path string true "User ID of the member"
// @Param role body dto.ChangeMemberRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid role"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Pool or member not found"
// @Security BearerAuth
// @Router /pools/{poolID}/members/{userID}/role [put]
func (h *poolHandler) changeMemberRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")
	targetUserID := c.Param("userID")

	var req dto.ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for changeMemberRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.poolService.ChangeMemberRole(c.Request.Context(), poolID, targetUserID, req.Role, userID)
	if err != nil {
		logger.Warn("Failed to change member role",
			slog.String("pool_id", poolID),
			slog.String("target_user_id", targetUserID),
			slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Pool member role changed", slog.String("pool_id", poolID), slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}
