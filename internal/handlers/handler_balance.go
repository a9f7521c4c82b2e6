package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finovest/invest_ledger_app/internal/apperrors"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/dto"
	"github.com/finovest/invest_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// balanceHandler handles HTTP requests for the investor's ledger views.
type balanceHandler struct {
	balanceService  portssvc.BalanceSvcFacade
	referralService portssvc.ReferralSvcFacade
}

// newBalanceHandler creates a new balanceHandler.
func newBalanceHandler(bs portssvc.BalanceSvcFacade, rs portssvc.ReferralSvcFacade) *balanceHandler {
	return &balanceHandler{
		balanceService:  bs,
		referralService: rs,
	}
}

// registerBalanceRoutes registers the ledger read routes.
func registerBalanceRoutes(rg *gin.RouterGroup, bs portssvc.BalanceSvcFacade, rs portssvc.ReferralSvcFacade) {
	h := newBalanceHandler(bs, rs)

	rg.GET("/balance", h.getBalance)
	rg.GET("/referrals", h.getReferrals)
}

// getBalance godoc
// @Summary Get the refreshed balance overview
// @Description Finalizes matured deposits, recomputes available net profit, and returns the refreshed ledger for the logged-in account
// @Tags balance
// @Produce  json
// @Success 200 {object} dto.BalanceOverviewResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to refresh balance"
// @Security BearerAuth
// @Router /balance [get]
func (h *balanceHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.balanceService.GetBalanceOverview(c.Request.Context(), actor.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found", slog.String("account_id", actor.AccountID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to refresh balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceOverviewResponse(account))
}

// getReferrals godoc
// @Summary Get the referral commission overview
// @Description Returns the logged-in account's referral entries merged against live referred-account records
// @Tags balance
// @Produce  json
// @Success 200 {array} dto.ReferralEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to load referrals"
// @Security BearerAuth
// @Router /referrals [get]
func (h *balanceHandler) getReferrals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.referralService.GetReferralOverview(c.Request.Context(), actor.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to load referral overview", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load referrals"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToReferralEntryResponses(entries))
}
