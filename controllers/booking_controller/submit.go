package booking_controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/models/payment_transaction_models"
	"github.com/rechargetravels/booking/models/pricing_models"
	"github.com/rechargetravels/booking/models/transfer_models"
	"github.com/rechargetravels/booking/models/wallet_models"
	"github.com/rechargetravels/booking/models/wizard_models"
	"github.com/rechargetravels/booking/utils"
	"github.com/rechargetravels/booking/utils/mail"
)

// Persistence entry points, package-level so tests can stub the database.
var (
	persistBooking     = booking_models.CreateTransferBooking
	persistTransaction = payment_transaction_models.CreatePaymentTransaction
)

// paymentOutcome is what the payment phase hands to the persistence phase.
type paymentOutcome struct {
	captured    bool
	orderID     string
	redirectURL string
	status      string // booking status after payment
	payStatus   string // payment status after payment
}

// Submit runs the booking submission end to end: lock, validate, price,
// charge, persist. Payment runs before persistence so a write failure after
// capture is flagged for reconciliation rather than silently losing money.
func (bc *BookingController) Submit(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	locked, err := wizard_models.AcquireSubmitLock(ctx, bc.Redis, w.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start submission"})
		return
	}
	if !locked {
		c.JSON(http.StatusConflict, gin.H{"code": "SUBMIT_IN_PROGRESS", "error": "A submission for this booking is already in progress."})
		return
	}
	defer wizard_models.ReleaseSubmitLock(context.WithoutCancel(ctx), bc.Redis, w.ID)

	if fieldErrs := w.ValidateAll(); len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_FAILED", "field_errors": fieldErrs})
		return
	}

	estimate, breakdown, err := bc.computeQuote(ctx, w)
	if err != nil {
		var cfgErr *utils.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.ErrorLogger.Errorf("Submission pricing failed for wizard %s: %v", w.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": "PRICING_CONFIG", "error": "Pricing configuration problem, please contact support."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to price booking"})
		return
	}

	booking, err := buildBooking(w, estimate.DistanceKm, breakdown)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assemble booking"})
		return
	}

	outcome, done := bc.collectPayment(c, w, booking)
	if done {
		return
	}

	booking.Status = outcome.status
	booking.PaymentStatus = outcome.payStatus
	booking.PaymentRef = outcome.orderID

	created, err := persistBooking(ctx, bc.DB, booking)
	if err != nil {
		bc.handlePersistFailure(c, w, booking, outcome, err)
		return
	}

	bc.recordPayment(ctx, created, outcome)

	w.Reset()
	if err := wizard_models.SaveSession(ctx, bc.Redis, w); err != nil {
		logger.WarnLogger.Warnf("Failed to reset wizard %s after submission: %v", w.ID, err)
	}

	go bc.sendConfirmation(created)

	logger.InfoLogger.Infof("Booking %s created (%s, %s, %s)",
		created.Reference, created.PaymentMethod, created.Status, created.PaymentStatus)

	resp := gin.H{"booking": created, "reference": created.Reference}
	if outcome.redirectURL != "" {
		resp["redirect_url"] = outcome.redirectURL
	}
	c.JSON(http.StatusCreated, resp)
}

// collectPayment runs the per-method payment phase. When it has already
// written a response, done is true and the caller must return.
func (bc *BookingController) collectPayment(c *gin.Context, w *wizard_models.Wizard, booking *booking_models.TransferBooking) (paymentOutcome, bool) {
	ctx := c.Request.Context()
	amount := totalCents(booking.Pricing.Total)

	switch w.Fields.PaymentMethod {
	case "cash":
		// Settled with the driver; no gateway round-trip.
		return paymentOutcome{
			status:    booking_models.StatusPending,
			payStatus: booking_models.PaymentPending,
		}, false

	case "wallet":
		userID, err := utils.GetUserIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Wallet payment requires a signed-in account."})
			return paymentOutcome{}, true
		}

		if err := wallet_models.ReserveAndDebit(ctx, bc.DB, userID, amount, booking.Reference); err != nil {
			if errors.Is(err, wallet_models.ErrInsufficientFunds) {
				c.JSON(http.StatusPaymentRequired, gin.H{"code": "INSUFFICIENT_FUNDS", "error": "Wallet balance is too low for this booking."})
				return paymentOutcome{}, true
			}
			logger.ErrorLogger.Errorf("Wallet debit failed for booking %s: %v", booking.Reference, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to charge wallet"})
			return paymentOutcome{}, true
		}

		return paymentOutcome{
			captured:  true,
			status:    booking_models.StatusConfirmed,
			payStatus: booking_models.PaymentPaid,
		}, false

	case "card", "paypal":
		auth, err := bc.Gateway.Authorize(ctx, amount, booking.Pricing.Currency, w.Fields.PaymentMethod, booking.Reference)
		if err != nil {
			var payErr *utils.PaymentError
			if errors.As(err, &payErr) {
				if payErr.Declined {
					logger.WarnLogger.Warnf("Payment declined for booking %s: %v", booking.Reference, err)
					c.JSON(http.StatusPaymentRequired, gin.H{"code": "PAYMENT_DECLINED", "error": "Payment was declined. Please try another method."})
				} else {
					logger.ErrorLogger.Errorf("Payment gateway unreachable for booking %s: %v", booking.Reference, err)
					c.JSON(http.StatusPaymentRequired, gin.H{"code": "PAYMENT_UNAVAILABLE", "error": "Payment could not be processed right now. Please retry."})
				}
				return paymentOutcome{}, true
			}
			logger.ErrorLogger.Errorf("Payment authorization failed for booking %s: %v", booking.Reference, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed"})
			return paymentOutcome{}, true
		}

		out := paymentOutcome{orderID: auth.OrderID}
		if w.Fields.PaymentMethod == "paypal" {
			// Buyer still has to approve at the redirect target.
			out.redirectURL = auth.RedirectURL
			out.status = booking_models.StatusPending
			out.payStatus = booking_models.PaymentPending
		} else {
			out.captured = true
			out.status = booking_models.StatusConfirmed
			out.payStatus = booking_models.PaymentPaid
		}
		return out, false

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported payment method"})
		return paymentOutcome{}, true
	}
}

// handlePersistFailure deals with a booking write that failed after the
// payment phase. A captured payment is never dropped: the transaction is
// recorded for reconciliation and the client told money moved.
func (bc *BookingController) handlePersistFailure(c *gin.Context, w *wizard_models.Wizard, booking *booking_models.TransferBooking, outcome paymentOutcome, persistErr error) {
	ctx := context.WithoutCancel(c.Request.Context())

	if !outcome.captured {
		logger.ErrorLogger.Errorf("Failed to persist booking %s: %v", booking.Reference, persistErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save booking"})
		return
	}

	perr := &utils.PersistenceError{Reconciliation: true, PaymentRef: outcome.orderID, Err: persistErr}
	logger.ErrorLogger.Errorf("RECONCILIATION NEEDED for booking %s (payment %s, method %s, amount %d): %v",
		booking.Reference, outcome.orderID, booking.PaymentMethod, totalCents(booking.Pricing.Total), perr)

	tx, err := payment_transaction_models.NewPaymentTransaction(
		booking.ID, booking.Reference, outcome.orderID, booking.PaymentMethod,
		totalCents(booking.Pricing.Total), booking.Pricing.Currency)
	if err == nil {
		tx.Status = payment_transaction_models.StatusReconcile
		desc := persistErr.Error()
		tx.ErrorDescription = &desc
		if _, err := persistTransaction(ctx, bc.DB, tx); err != nil {
			logger.ErrorLogger.Errorf("Failed to queue reconciliation record for booking %s: %v", booking.Reference, err)
		}
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"code":      "NEEDS_RECONCILIATION",
		"error":     "Your payment went through but the booking could not be saved. Our team will contact you; keep this reference.",
		"reference": booking.Reference,
	})
}

// recordPayment writes the payment transaction row for gateway and wallet
// payments. Cash has no transaction to record.
func (bc *BookingController) recordPayment(ctx context.Context, booking *booking_models.TransferBooking, outcome paymentOutcome) {
	if booking.PaymentMethod == "cash" {
		return
	}

	tx, err := payment_transaction_models.NewPaymentTransaction(
		booking.ID, booking.Reference, outcome.orderID, booking.PaymentMethod,
		totalCents(booking.Pricing.Total), booking.Pricing.Currency)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build payment transaction for booking %s: %v", booking.Reference, err)
		return
	}
	if outcome.captured {
		tx.Status = payment_transaction_models.StatusPaid
		now := time.Now()
		tx.CapturedAt = &now
	}
	if _, err := persistTransaction(ctx, bc.DB, tx); err != nil {
		logger.ErrorLogger.Errorf("Failed to record payment transaction for booking %s: %v", booking.Reference, err)
	}
}

func (bc *BookingController) sendConfirmation(booking *booking_models.TransferBooking) {
	if err := mail.SendBookingConfirmation(booking); err != nil {
		logger.WarnLogger.Warnf("Confirmation email for booking %s not sent: %v", booking.Reference, err)
	}
}

// buildBooking snapshots the wizard's fields into an immutable record.
func buildBooking(w *wizard_models.Wizard, distanceKm float64, breakdown pricing_models.Breakdown) (*booking_models.TransferBooking, error) {
	b, err := booking_models.NewTransferBooking()
	if err != nil {
		return nil, err
	}

	f := w.Fields
	b.BookingType = string(w.BookingType)
	b.TransferType = f.TransferType
	b.AirportCode = f.AirportCode
	if airport, ok := transfer_models.FindAirport(f.AirportCode); ok {
		b.AirportName = airport.Name
	}
	b.DestinationName = f.DestinationName
	b.DestinationArea = f.DestinationArea
	b.FlightNumber = f.FlightNumber
	b.PickupDate = f.PickupDate
	b.PickupTime = f.PickupTime
	if w.IsRoundTrip() {
		rd, rt := f.ReturnDate, f.ReturnTime
		b.ReturnDate = &rd
		b.ReturnTime = &rt
	}
	b.Adults = f.Adults
	b.Children = f.Children
	b.Infants = f.Infants
	b.Luggage = f.Luggage
	b.VehicleID = f.VehicleID
	if v, ok := pricing_models.FindVehicle(f.VehicleID); ok {
		b.VehicleName = v.Name
	}
	b.Extras = append([]string(nil), f.Extras...)
	b.ChildSeatCount = f.ExtraQuantities["child-seat"]
	b.Customer = booking_models.Customer{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		Country:   f.Country,
	}
	b.SpecialRequests = f.SpecialRequests
	b.DistanceKm = distanceKm
	b.Pricing = breakdown
	b.PaymentMethod = f.PaymentMethod
	return b, nil
}
