package payment_transaction_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/logger"
)

// Transaction statuses.
const (
	StatusActive   = "ACTIVE"
	StatusPaid     = "PAID"
	StatusFailed   = "FAILED"
	StatusRefunded = "REFUNDED"

	// StatusReconcile marks a captured payment whose booking write failed.
	// These rows are the manual-reconciliation queue.
	StatusReconcile = "NEEDS_RECONCILIATION"
)

// PaymentTransaction is a record of one gateway interaction.
type PaymentTransaction struct {
	ID               uuid.UUID  `json:"id"`
	BookingID        uuid.UUID  `json:"booking_id"`
	BookingReference string     `json:"booking_reference"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	Amount           int64      `json:"amount"` // cents
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	Method           string     `json:"method"` // card, paypal, wallet
	CapturedAt       *time.Time `json:"captured_at"`
	ErrorDescription *string    `json:"error_description"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewPaymentTransaction creates a transaction in its initial state.
func NewPaymentTransaction(bookingID uuid.UUID, bookingReference, gatewayOrderID, method string, amount int64, currency string) (*PaymentTransaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for payment transaction: %w", err)
	}
	now := time.Now()
	return &PaymentTransaction{
		ID:               id,
		BookingID:        bookingID,
		BookingReference: bookingReference,
		GatewayOrderID:   gatewayOrderID,
		Amount:           amount,
		Currency:         currency,
		Status:           StatusActive,
		Method:           method,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CreatePaymentTransaction inserts a new payment transaction record.
func CreatePaymentTransaction(ctx context.Context, db *pgxpool.Pool, tx *PaymentTransaction) (*PaymentTransaction, error) {
	logger.InfoLogger.Infof("Recording payment transaction for booking %s (%s)", tx.BookingReference, tx.Method)

	if tx.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID: %w", err)
		}
		tx.ID = id
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `
		INSERT INTO payment_transactions (
			id, booking_id, booking_reference, gateway_order_id,
			amount, currency, status, method, captured_at,
			error_description, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		tx.ID, tx.BookingID, tx.BookingReference, tx.GatewayOrderID,
		tx.Amount, tx.Currency, tx.Status, tx.Method, tx.CapturedAt,
		tx.ErrorDescription, tx.CreatedAt, tx.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert payment transaction for booking %s: %v", tx.BookingReference, err)
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}

	tx.ID = insertedID
	return tx, nil
}

// UpdateStatus records the gateway outcome for a transaction.
func UpdateStatus(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, status string, errDescription *string) error {
	var capturedAt *time.Time
	if status == StatusPaid {
		now := time.Now()
		capturedAt = &now
	}

	cmdTag, err := db.Exec(ctx, `
		UPDATE payment_transactions
		SET status = $2, captured_at = COALESCE($3, captured_at),
		    error_description = $4, updated_at = $5
		WHERE id = $1`,
		id, status, capturedAt, errDescription, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update payment transaction %s: %v", id, err)
		return fmt.Errorf("failed to update payment transaction: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("payment transaction %s not found for update", id)
	}
	return nil
}

// GetByBookingReference fetches the transactions recorded for a booking.
func GetByBookingReference(ctx context.Context, db *pgxpool.Pool, reference string) ([]PaymentTransaction, error) {
	rows, err := db.Query(ctx, `
		SELECT id, booking_id, booking_reference, gateway_order_id,
		       amount, currency, status, method, captured_at,
		       error_description, created_at, updated_at
		FROM payment_transactions
		WHERE booking_reference = $1
		ORDER BY created_at DESC`,
		reference,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.ErrorLogger.Errorf("Failed to fetch payment transactions for %s: %v", reference, err)
		return nil, fmt.Errorf("failed to fetch payment transactions: %w", err)
	}
	defer rows.Close()

	var txns []PaymentTransaction
	for rows.Next() {
		var t PaymentTransaction
		if err := rows.Scan(
			&t.ID, &t.BookingID, &t.BookingReference, &t.GatewayOrderID,
			&t.Amount, &t.Currency, &t.Status, &t.Method, &t.CapturedAt,
			&t.ErrorDescription, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
