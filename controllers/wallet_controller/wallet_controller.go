package wallet_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/clients"
	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/wallet_models"
	"github.com/rechargetravels/booking/utils"
)

// WalletController exposes the customer wallet: balance, recharge through the
// payment gateway and the transaction ledger.
type WalletController struct {
	DB      *pgxpool.Pool
	Gateway clients.PaymentGateway
}

func NewWalletController(db *pgxpool.Pool, gateway clients.PaymentGateway) *WalletController {
	return &WalletController{DB: db, Gateway: gateway}
}

// GetWallet returns (and lazily creates) the caller's wallet.
func (wc *WalletController) GetWallet(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	wallet, err := wallet_models.GetOrCreateWallet(c.Request.Context(), wc.DB, userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load wallet for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

type rechargeRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required,min=100"`
	Method      string `json:"method" binding:"required,oneof=card paypal"`
}

// Recharge charges the gateway and credits the wallet. Card captures
// synchronously; the credit happens in the same request.
func (wc *WalletController) Recharge(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req rechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	receipt := "wallet-" + userID.String()
	auth, err := wc.Gateway.Authorize(c.Request.Context(), req.AmountCents, "USD", req.Method, receipt)
	if err != nil {
		var payErr *utils.PaymentError
		if errors.As(err, &payErr) && payErr.Declined {
			c.JSON(http.StatusPaymentRequired, gin.H{"code": "PAYMENT_DECLINED", "error": "Payment was declined."})
			return
		}
		logger.ErrorLogger.Errorf("Wallet recharge authorization failed for user %s: %v", userID, err)
		c.JSON(http.StatusPaymentRequired, gin.H{"code": "PAYMENT_UNAVAILABLE", "error": "Payment could not be processed right now."})
		return
	}

	if req.Method == "paypal" {
		// Credited by the gateway webhook after buyer approval.
		c.JSON(http.StatusAccepted, gin.H{"order_id": auth.OrderID, "redirect_url": auth.RedirectURL})
		return
	}

	if err := wallet_models.Credit(c.Request.Context(), wc.DB, userID, req.AmountCents, wallet_models.KindRecharge, auth.OrderID); err != nil {
		logger.ErrorLogger.Errorf("RECONCILIATION NEEDED for wallet recharge (user %s, payment %s, amount %d): %v",
			userID, auth.OrderID, req.AmountCents, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "NEEDS_RECONCILIATION",
			"error": "Your payment went through but the wallet credit failed. Our team will contact you.",
		})
		return
	}

	wallet, err := wallet_models.GetOrCreateWallet(c.Request.Context(), wc.DB, userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"order_id": auth.OrderID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": auth.OrderID, "wallet": wallet})
}

// GetTransactions returns the caller's wallet ledger, newest first.
func (wc *WalletController) GetTransactions(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	txs, err := wallet_models.GetTransactions(c.Request.Context(), wc.DB, userID, page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load wallet transactions for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs, "page": page, "limit": limit})
}

func authedUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Authentication required."})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	var n int
	for _, r := range v {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
