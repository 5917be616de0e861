package booking_controller

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/models/payment_transaction_models"
	"github.com/rechargetravels/booking/models/wallet_models"
)

// webhookEvent is the subset of the gateway's webhook payload this service
// acts on. The receipt carries our booking reference (or wallet marker) set
// at authorization time.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Order struct {
			Entity struct {
				ID      string `json:"id"`
				Receipt string `json:"receipt"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// HandlePaymentWebhook settles redirect-based payments. PayPal bookings stay
// pending until the gateway confirms capture here.
func (bc *BookingController) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	secret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	if signature == "" || !bc.Gateway.VerifyWebhookSignature(string(body), signature, secret) {
		logger.WarnLogger.Warnf("Rejected payment webhook with bad signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if event.Event != "order.paid" {
		// Other events are acknowledged but not acted on.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	order := event.Payload.Order.Entity
	ctx := c.Request.Context()

	if userID, ok := walletReceipt(order.Receipt); ok {
		if err := wallet_models.Credit(ctx, bc.DB, userID, order.Amount, wallet_models.KindRecharge, order.ID); err != nil {
			logger.ErrorLogger.Errorf("RECONCILIATION NEEDED for wallet recharge (user %s, payment %s, amount %d): %v",
				userID, order.ID, order.Amount, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "credit failed"})
			return
		}
		logger.InfoLogger.Infof("Wallet recharge settled for user %s (payment %s)", userID, order.ID)
		c.JSON(http.StatusOK, gin.H{"status": "processed"})
		return
	}

	booking, err := booking_models.GetBookingByReference(ctx, bc.DB, order.Receipt)
	if err != nil {
		logger.ErrorLogger.Errorf("Payment webhook for unknown booking %q (payment %s)", order.Receipt, order.ID)
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	if booking.PaymentStatus == booking_models.PaymentPaid {
		// Gateway retries deliver the same event more than once.
		c.JSON(http.StatusOK, gin.H{"status": "already processed"})
		return
	}

	if err := booking_models.UpdatePaymentStatus(ctx, bc.DB, booking.ID, booking_models.PaymentPaid, order.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
		return
	}
	if err := booking_models.UpdateBookingStatus(ctx, bc.DB, booking.ID, booking_models.StatusConfirmed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm booking"})
		return
	}

	markTransactionPaid(c, bc, booking.Reference, order.ID)

	logger.InfoLogger.Infof("Booking %s confirmed by payment webhook (payment %s)", booking.Reference, order.ID)
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func markTransactionPaid(c *gin.Context, bc *BookingController, reference, orderID string) {
	txs, err := payment_transaction_models.GetByBookingReference(c.Request.Context(), bc.DB, reference)
	if err != nil {
		logger.WarnLogger.Warnf("Could not load payment transactions for %s: %v", reference, err)
		return
	}
	for _, tx := range txs {
		if tx.GatewayOrderID == orderID {
			if err := payment_transaction_models.UpdateStatus(c.Request.Context(), bc.DB, tx.ID, payment_transaction_models.StatusPaid, nil); err != nil {
				logger.WarnLogger.Warnf("Could not mark payment transaction %s paid: %v", tx.ID, err)
			}
			return
		}
	}
}

// walletReceipt recognizes recharge receipts of the form wallet-<user uuid>.
func walletReceipt(receipt string) (uuid.UUID, bool) {
	if !strings.HasPrefix(receipt, "wallet-") {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(receipt, "wallet-"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
