package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/dto"
	"github.com/finovest/invest_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler handles administrator settlement decisions.
type adminHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// newAdminHandler creates a new adminHandler.
func newAdminHandler(ss portssvc.SettlementSvcFacade) *adminHandler {
	return &adminHandler{settlementService: ss}
}

// registerAdminRoutes registers the settlement routes behind the admin guard.
func registerAdminRoutes(rg *gin.RouterGroup, ss portssvc.SettlementSvcFacade) {
	h := newAdminHandler(ss)

	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/withdrawals/:id/approve", h.approveWithdrawal)
		admin.POST("/withdrawals/:id/reject", h.rejectWithdrawal)
		admin.POST("/deposits/:id/approve", h.approveDeposit)
		admin.POST("/deposits/:id/reject", h.rejectDeposit)
	}
}

// approveWithdrawal godoc
// @Summary Approve a pending withdrawal
// @Description Settles a pending withdrawal: validates the freshly recomputed balance, deducts profit then commission, and records the approval snapshot atomically
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.SettleRequest false "Optional amount override and remarks"
// @Success 200 {object} dto.WithdrawalSettlementResult
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already processed"
// @Failure 500 {object} map[string]string "Failed to settle withdrawal"
// @Security BearerAuth
// @Router /admin/withdrawals/{id}/approve [post]
func (h *adminHandler) approveWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		logger.Warn("Failed to bind JSON for approveWithdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.settlementService.ApproveWithdrawal(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to settle withdrawal")
		return
	}

	c.JSON(http.StatusOK, result)
}

// rejectWithdrawal godoc
// @Summary Reject a pending withdrawal
// @Description Marks a pending withdrawal rejected with remarks; no balance mutation
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.RejectRequest true "Rejection remarks"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already processed"
// @Failure 500 {object} map[string]string "Failed to reject withdrawal"
// @Security BearerAuth
// @Router /admin/withdrawals/{id}/reject [post]
func (h *adminHandler) rejectWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for rejectWithdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.settlementService.RejectWithdrawal(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to reject withdrawal")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// approveDeposit godoc
// @Summary Approve a pending deposit
// @Description Settles a pending deposit: resolves plan terms, creates an accruing deposit, credits principal, and credits the referrer's commission atomically
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.SettleRequest false "Optional amount override and remarks"
// @Success 200 {object} dto.DepositSettlementResult
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already processed"
// @Failure 500 {object} map[string]string "Failed to settle deposit"
// @Security BearerAuth
// @Router /admin/deposits/{id}/approve [post]
func (h *adminHandler) approveDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		logger.Warn("Failed to bind JSON for approveDeposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.settlementService.ApproveDeposit(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to settle deposit")
		return
	}

	c.JSON(http.StatusOK, result)
}

// rejectDeposit godoc
// @Summary Reject a pending deposit
// @Description Marks a pending deposit rejected with remarks; no balance mutation
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   request body dto.RejectRequest true "Rejection remarks"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already processed"
// @Failure 500 {object} map[string]string "Failed to reject deposit"
// @Security BearerAuth
// @Router /admin/deposits/{id}/reject [post]
func (h *adminHandler) rejectDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for rejectDeposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.settlementService.RejectDeposit(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to reject deposit")
		return
	}

	c.JSON(http.StatusOK, resp)
}
