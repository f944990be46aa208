package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sunucar/sunucar_backend/internal/core/domain"
	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
	"github.com/sunucar/sunucar_backend/internal/dto"
	"github.com/sunucar/sunucar_backend/internal/middleware"
)

// walletHandler handles HTTP requests for driver wallets.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

func newWalletHandler(ws portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{walletService: ws}
}

// RegisterWalletRoutes registers routes related to wallets.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := rg.Group("/wallets")
	{
		wallets.GET("/me", h.getMyWallet)
		wallets.GET("/:walletID", h.getWallet)
		wallets.GET("/:walletID/summary", h.getSummary)
		wallets.GET("/:walletID/entries", h.listEntries)
		wallets.GET("/:walletID/withdrawal-eligibility", h.withdrawalEligibility)
		wallets.GET("/:walletID/ride-eligibility", h.rideEligibility)

		wallets.POST("/:walletID/recharges", h.requestRecharge)
		wallets.POST("/recharges/:entryID/confirm", h.confirmRecharge)

		wallets.POST("/:walletID/commissions", h.chargeCommission)

		wallets.POST("/:walletID/withdrawals", h.requestWithdrawal)
		wallets.POST("/withdrawals/:entryID/confirm", h.confirmWithdrawal)

		wallets.PUT("/:walletID/auto-recharge", h.configureAutoRecharge)
		wallets.DELETE("/:walletID/auto-recharge", h.disableAutoRecharge)
		wallets.POST("/:walletID/auto-recharge/evaluate", h.evaluateAutoRecharge)

		wallets.PUT("/:walletID/payout-settings", h.configurePayout)
	}
}

// getMyWallet godoc
// @Summary Get the logged-in user's wallet
// @Description Retrieves the wallet owned by the authenticated user
// @Tags wallets
// @Produce json
// @Success 200 {object} dto.WalletResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No wallet for this user"
// @Security BearerAuth
// @Router /wallets/me [get]
func (h *walletHandler) getMyWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	wallet, err := h.walletService.GetWalletByUserID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// getWallet godoc
// @Summary Get a wallet by ID
// @Description Retrieves wallet configuration and balance
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} dto.WalletResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID} [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	wallet, err := h.walletService.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// getSummary godoc
// @Summary Get the account summary for a wallet
// @Description Returns balance, lifetime and windowed totals, and withdrawal eligibility
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} dto.SummaryResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/summary [get]
func (h *walletHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	summary, err := h.walletService.GetSummary(c.Request.Context(), walletID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}

// listEntries godoc
// @Summary List ledger entries for a wallet
// @Description Returns the wallet history, newest first, with optional type/status/date filters and cursor pagination
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param type query string false "Entry type filter" Enums(RECHARGE, COMMISSION, WITHDRAWAL)
// @Param status query string false "Entry status filter" Enums(PENDING, SUCCEEDED, FAILED, CHARGED, CANCELLED)
// @Param from query string false "Inclusive lower bound (YYYY-MM-DD)"
// @Param to query string false "Exclusive upper bound (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/entries [get]
func (h *walletHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	entries, nextToken, err := h.walletService.ListEntries(c.Request.Context(), walletID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponseList(entries),
		NextToken: nextToken,
	})
}

// withdrawalEligibility godoc
// @Summary Check whether a withdrawal would be allowed
// @Description Runs the withdrawal checks without reserving anything. Amount 0 checks preconditions only.
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param amount query int false "Withdrawal amount in FCFA" default(0)
// @Success 200 {object} dto.WithdrawalDecisionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/withdrawal-eligibility [get]
func (h *walletHandler) withdrawalEligibility(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	amount, err := strconv.ParseInt(c.DefaultQuery("amount", "0"), 10, 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid amount"})
		return
	}

	decision, err := h.walletService.CanWithdraw(c.Request.Context(), walletID, amount)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to evaluate withdrawal")
		return
	}
	c.JSON(http.StatusOK, dto.WithdrawalDecisionResponse{
		Allowed: decision.Allowed,
		Reasons: decision.Reasons,
	})
}

// rideEligibility godoc
// @Summary Check whether the driver may accept a ride
// @Description Combines wallet funding, identity verification, and suspension for the given payment mode
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param paymentMode query string true "Payment mode of the ride" Enums(WALLET, CASH)
// @Success 200 {object} dto.RideEligibilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/ride-eligibility [get]
func (h *walletHandler) rideEligibility(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	mode := domain.PaymentMode(c.Query("paymentMode"))
	if mode != domain.PaymentModeWallet && mode != domain.PaymentModeCash {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "paymentMode must be WALLET or CASH"})
		return
	}

	eligibility, err := h.walletService.CanAcceptRide(c.Request.Context(), walletID, mode)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to evaluate ride eligibility")
		return
	}
	c.JSON(http.StatusOK, dto.RideEligibilityResponse{
		WalletID:    eligibility.WalletID,
		PaymentMode: eligibility.Mode,
		Eligible:    eligibility.Eligible,
		Funded:      eligibility.Funded,
		Verified:    eligibility.Verified,
		Suspended:   eligibility.Suspended,
		Reasons:     eligibility.Reasons,
	})
}

// requestRecharge godoc
// @Summary Request a wallet recharge
// @Description Records a pending funding entry. Retries with the same idempotency key return the original entry.
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param recharge body dto.RechargeRequest true "Recharge details"
// @Success 202 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/recharges [post]
func (h *walletHandler) requestRecharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for requestRecharge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requesterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	entry, err := h.walletService.RequestRecharge(c.Request.Context(), walletID, req, requesterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to request recharge")
		return
	}

	logger.Info("Recharge requested",
		slog.String("wallet_id", walletID),
		slog.String("entry_id", entry.EntryID),
		slog.Int64("amount", entry.Amount))
	c.JSON(http.StatusAccepted, dto.ToEntryResponse(entry))
}

// confirmRecharge godoc
// @Summary Settle a pending recharge
// @Description Marks a pending recharge as succeeded (credits the balance) or failed. Idempotent.
// @Tags wallets
// @Accept json
// @Produce json
// @Param entryID path string true "Recharge entry ID"
// @Param confirm body dto.ConfirmRequest true "Settlement outcome"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/recharges/{entryID}/confirm [post]
func (h *walletHandler) confirmRecharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.walletService.ConfirmRecharge(c.Request.Context(), entryID, *req.Succeeded)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to confirm recharge")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// chargeCommission godoc
// @Summary Charge the platform commission for a ride
// @Description Debits the commission atomically. Duplicate ride references are no-ops returning the original entry.
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param commission body dto.CommissionRequest true "Commission details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /wallets/{walletID}/commissions [post]
func (h *walletHandler) chargeCommission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.CommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.walletService.ChargeCommission(c.Request.Context(), walletID, req.Amount, req.RideRef)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to charge commission")
		return
	}

	logger.Info("Commission charged",
		slog.String("wallet_id", walletID),
		slog.String("ride_ref", req.RideRef),
		slog.Int64("amount", entry.Amount))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// requestWithdrawal godoc
// @Summary Request a withdrawal
// @Description Runs the withdrawal gate, reserves the limit counters, and records a pending payout entry
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param withdrawal body dto.WithdrawalRequest true "Withdrawal details"
// @Success 202 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 412 {object} ErrorResponse "Missing payout settings or verification"
// @Failure 422 {object} ErrorResponse "Insufficient funds or limit exceeded"
// @Security BearerAuth
// @Router /wallets/{walletID}/withdrawals [post]
func (h *walletHandler) requestWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requesterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	entry, err := h.walletService.RequestWithdrawal(c.Request.Context(), walletID, req.Amount, requesterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to request withdrawal")
		return
	}

	logger.Info("Withdrawal requested",
		slog.String("wallet_id", walletID),
		slog.String("entry_id", entry.EntryID),
		slog.Int64("amount", entry.Amount))
	c.JSON(http.StatusAccepted, dto.ToEntryResponse(entry))
}

// confirmWithdrawal godoc
// @Summary Settle a pending withdrawal
// @Description Marks a pending withdrawal as succeeded (debits the balance) or failed (releases the limit counters). Idempotent.
// @Tags wallets
// @Accept json
// @Produce json
// @Param entryID path string true "Withdrawal entry ID"
// @Param confirm body dto.ConfirmRequest true "Settlement outcome"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Settlement would overdraw the wallet"
// @Security BearerAuth
// @Router /wallets/withdrawals/{entryID}/confirm [post]
func (h *walletHandler) confirmWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.walletService.ConfirmWithdrawal(c.Request.Context(), entryID, *req.Succeeded)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to confirm withdrawal")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// configureAutoRecharge godoc
// @Summary Configure the auto-recharge policy
// @Description Sets the threshold, amount, and payment method for automatic top-ups
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param policy body dto.AutoRechargeRequest true "Auto-recharge policy"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/auto-recharge [put]
func (h *walletHandler) configureAutoRecharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.AutoRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	wallet, err := h.walletService.ConfigureAutoRecharge(c.Request.Context(), walletID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to configure auto-recharge")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// disableAutoRecharge godoc
// @Summary Disable the auto-recharge policy
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} dto.WalletResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/auto-recharge [delete]
func (h *walletHandler) disableAutoRecharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	wallet, err := h.walletService.DisableAutoRecharge(c.Request.Context(), walletID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to disable auto-recharge")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// evaluateAutoRecharge godoc
// @Summary Evaluate the auto-recharge policy now
// @Description Triggers a system recharge if the balance is below the configured threshold and none is already pending
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} dto.AutoRechargeOutcomeResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/auto-recharge/evaluate [post]
func (h *walletHandler) evaluateAutoRecharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	outcome, err := h.walletService.EvaluateAutoRecharge(c.Request.Context(), walletID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to evaluate auto-recharge")
		return
	}

	resp := dto.AutoRechargeOutcomeResponse{Triggered: outcome.Triggered}
	if outcome.Entry != nil {
		entry := dto.ToEntryResponse(outcome.Entry)
		resp.Entry = &entry
	}
	c.JSON(http.StatusOK, resp)
}

// configurePayout godoc
// @Summary Configure the payout destination
// @Description Sets the mobile-money number, operator, and account holder for withdrawals
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param settings body dto.PayoutSettingsRequest true "Payout settings"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallets/{walletID}/payout-settings [put]
func (h *walletHandler) configurePayout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.PayoutSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	wallet, err := h.walletService.ConfigurePayout(c.Request.Context(), walletID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to configure payout settings")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}
