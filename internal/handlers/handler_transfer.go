package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	"github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/dto"
	"github.com/moneypools/money_pools_app/internal/middleware"
	"github.com/moneypools/money_pools_app/internal/utils"
)

// transferHandler handles HTTP requests for the transfer engine and its
// history queries.
type transferHandler struct {
	transferService services.TransferSvcFacade
	poolAuthorizer  services.PoolAuthorizerSvc
}

func newTransferHandler(ts services.TransferSvcFacade, pa services.PoolAuthorizerSvc) *transferHandler {
	return &transferHandler{transferService: ts, poolAuthorizer: pa}
}

// registerTransferRoutes registers the transfer routes, including the
// per-user and per-pool history endpoints.
func registerTransferRoutes(rg *gin.RouterGroup, transferService services.TransferSvcFacade, poolAuthorizer services.PoolAuthorizerSvc) {
	h := newTransferHandler(transferService, poolAuthorizer)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.GET("/:transferID", h.getTransfer)
	}
	rg.GET("/users/:userID/transfers", h.listUserTransfers)
	rg.GET("/pools/:poolID/transfers", h.listPoolTransfers)
}

// createTransfer godoc
// @Summary Execute a transfer
// @Description Appends a transfer record and applies balance adjustments atomically; on any failure no balance changes
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse "Rejected: invalid amount, kind or parties"
// @Failure 404 {object} ErrorResponse "Rolled back: a referenced account does not exist"
// @Failure 409 {object} ErrorResponse "Idempotency key already used by a different request"
// @Failure 422 {object} ErrorResponse "Rolled back: insufficient funds"
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	transfer, balances, err := h.transferService.CreateTransfer(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Transfer rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Transfer rolled back, account not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error() + " (no balances were changed)"})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Warn("Transfer rolled back, insufficient funds", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error() + " (no balances were changed)"})
		case errors.Is(err, apperrors.ErrDuplicate):
			logger.Warn("Transfer idempotency conflict", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to execute transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to execute transfer (no balances were changed)"})
		}
		return
	}

	logger.Info("Transfer committed",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("kind", string(transfer.Kind)),
		slog.Int64("amount", transfer.Amount))
	c.JSON(http.StatusCreated, dto.ToTransferResponse(*transfer, balances, utils.FormatAmount))
}

// getTransfer godoc
// @Summary Get a transfer by ID
// @Tags transfers
// @Produce json
// @Param transferID path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse
// @Failure 404 {object} ErrorResponse "Transfer not found"
// @Security BearerAuth
// @Router /transfers/{transferID} [get]
func (h *transferHandler) getTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("transferID")

	transfer, err := h.transferService.GetTransferByID(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transfer not found"})
			return
		}
		logger.Error("Failed to get transfer", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(*transfer, nil, utils.FormatAmount))
}

// listUserTransfers godoc
// @Summary List a user's transfer history
// @Description Users may only read their own history; newest first
// @Tags transfers
// @Produce json
// @Param userID path string true "User ID"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListTransfersResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /users/{userID}/transfers [get]
func (h *transferHandler) listUserTransfers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	callerUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	if callerUserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Cannot read another user's transfer history"})
		return
	}

	limit, offset := parsePagination(c)
	transfers, err := h.transferService.ListTransfersByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		logger.Error("Failed to list user transfers", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListTransfersResponse(transfers))
}

// listPoolTransfers godoc
// @Summary List a pool's transfer history
// @Description Pool members only; newest first
// @Tags transfers
// @Produce json
// @Param poolID path string true "Pool ID"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListTransfersResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /pools/{poolID}/transfers [get]
func (h *transferHandler) listPoolTransfers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	poolID := c.Param("poolID")

	callerUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	if err := h.poolAuthorizer.AuthorizePoolAction(c.Request.Context(), callerUserID, poolID, domain.RoleMember); err != nil {
		logger.Warn("Pool history access denied", slog.String("pool_id", poolID), slog.String("caller_user_id", callerUserID))
		respondError(c, err)
		return
	}

	limit, offset := parsePagination(c)
	transfers, err := h.transferService.ListTransfersByPool(c.Request.Context(), poolID, limit, offset)
	if err != nil {
		logger.Error("Failed to list pool transfers", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListTransfersResponse(transfers))
}

func toListTransfersResponse(transfers []domain.Transfer) dto.ListTransfersResponse {
	resp := dto.ListTransfersResponse{Transfers: make([]dto.TransferResponse, len(transfers))}
	for i, t := range transfers {
		resp.Transfers[i] = dto.ToTransferResponse(t, nil, utils.FormatAmount)
	}
	return resp
}
