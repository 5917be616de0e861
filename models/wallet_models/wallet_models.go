package wallet_models

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

// Amounts are stored in minor units (cents) to keep the ledger exact.

var ErrInsufficientFunds = errors.New("insufficient wallet balance")

// Transaction kinds.
const (
	KindRecharge = "recharge"
	KindDebit    = "debit"
	KindRefund   = "refund"
)

// Wallet is one customer's prepaid balance.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"` // cents
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is one signed ledger entry against a wallet.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	WalletID  uuid.UUID `json:"wallet_id"`
	Amount    int64     `json:"amount"` // cents, negative for debits
	Kind      string    `json:"kind"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// GetOrCreateWallet returns the user's wallet, creating an empty USD wallet
// on first use.
func GetOrCreateWallet(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (*Wallet, error) {
	w := &Wallet{}
	err := db.QueryRow(ctx,
		`SELECT id, user_id, balance, currency, created_at, updated_at FROM wallet_accounts WHERE user_id = $1`,
		userID,
	).Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.ErrorLogger.Errorf("Failed to fetch wallet for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch wallet: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet UUID: %w", err)
	}
	now := time.Now()
	w = &Wallet{ID: id, UserID: userID, Balance: 0, Currency: "USD", CreatedAt: now, UpdatedAt: now}

	_, err = db.Exec(ctx, `
		INSERT INTO wallet_accounts (id, user_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING`,
		w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create wallet for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	logger.InfoLogger.Infof("Wallet created for user %s", userID)
	return w, nil
}

// ReserveAndDebit takes amountCents from the user's wallet as a single
// conditional update. Balance check and debit are one statement, so two
// concurrent bookings cannot both pass a stale balance check.
func ReserveAndDebit(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, amountCents int64, reference string) error {
	if amountCents <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amountCents)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin wallet transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var walletID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE wallet_accounts
		SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2
		RETURNING id`,
		userID, amountCents,
	).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Wallet debit of %d declined for user %s (insufficient funds or no wallet)", amountCents, userID)
			return ErrInsufficientFunds
		}
		logger.ErrorLogger.Errorf("Wallet debit failed for user %s: %v", userID, err)
		return fmt.Errorf("wallet debit failed: %w", err)
	}

	if err := insertTransaction(ctx, tx, walletID, -amountCents, KindDebit, reference); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wallet debit: %w", err)
	}

	logger.InfoLogger.Infof("Debited %d cents from wallet of user %s (ref %s)", amountCents, userID, reference)
	return nil
}

// Credit adds funds to the user's wallet, e.g. after a gateway recharge or a
// refund of a failed booking.
func Credit(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, amountCents int64, kind, reference string) error {
	if amountCents <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amountCents)
	}
	if kind != KindRecharge && kind != KindRefund {
		return fmt.Errorf("invalid credit kind %q", kind)
	}

	w, err := GetOrCreateWallet(ctx, db, userID)
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin wallet transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE wallet_accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`,
		w.ID, amountCents,
	); err != nil {
		logger.ErrorLogger.Errorf("Wallet credit failed for user %s: %v", userID, err)
		return fmt.Errorf("wallet credit failed: %w", err)
	}

	if err := insertTransaction(ctx, tx, w.ID, amountCents, kind, reference); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wallet credit: %w", err)
	}

	logger.InfoLogger.Infof("Credited %d cents to wallet of user %s (%s, ref %s)", amountCents, userID, kind, reference)
	return nil
}

// GetTransactions returns a wallet's ledger entries, newest first.
func GetTransactions(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, page, limit int) ([]Transaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := db.Query(ctx, `
		SELECT t.id, t.wallet_id, t.amount, t.kind, t.reference, t.created_at
		FROM wallet_transactions t
		JOIN wallet_accounts w ON w.id = t.wallet_id
		WHERE w.user_id = $1
		ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch wallet transactions for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Kind, &t.Reference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func insertTransaction(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64, kind, reference string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate transaction UUID: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, amount, kind, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		id, walletID, amount, kind, reference,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert wallet transaction: %v", err)
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}
	return nil
}
