package booking_models

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/pricing_models"
)

// Booking lifecycle states.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusAssigned   = "assigned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"

	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true, StatusAssigned: true,
	StatusInProgress: true, StatusCompleted: true, StatusCancelled: true,
}

// Customer is the contact block captured at the details step.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
}

// TransferBooking is the immutable record assembled at submission time. The
// pricing block is a snapshot; it is never recomputed after submit.
type TransferBooking struct {
	ID           uuid.UUID `json:"id"`
	Reference    string    `json:"reference"`
	BookingType  string    `json:"booking_type"`
	TransferType string    `json:"transfer_type"`

	AirportCode     string `json:"airport_code"`
	AirportName     string `json:"airport_name"`
	DestinationName string `json:"destination_name"`
	DestinationArea string `json:"destination_area"`

	FlightNumber string  `json:"flight_number,omitempty"`
	PickupDate   string  `json:"pickup_date"`
	PickupTime   string  `json:"pickup_time"`
	ReturnDate   *string `json:"return_date,omitempty"`
	ReturnTime   *string `json:"return_time,omitempty"`

	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Luggage  int `json:"luggage"`

	VehicleID   string `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`

	Extras         []string `json:"extras"`
	ChildSeatCount int      `json:"child_seat_count"`

	Customer        Customer `json:"customer"`
	SpecialRequests string   `json:"special_requests,omitempty"`

	DistanceKm float64                  `json:"distance_km"`
	Pricing    pricing_models.Breakdown `json:"pricing"`

	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_ref,omitempty"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`

	AssignedDriverID   *uuid.UUID `json:"assigned_driver_id,omitempty"`
	AssignedDriverName string     `json:"assigned_driver_name,omitempty"`
	DriverPhone        string     `json:"driver_phone,omitempty"`
	AssignedVehicleID  string     `json:"assigned_vehicle_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateReference produces a short human-readable booking reference of the
// form AT<timestamp36><4 random chars>.
func GenerateReference() string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand is only unavailable in broken environments;
			// degrade to a fixed filler rather than failing the booking.
			suffix[i] = 'X'
			continue
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return "AT" + ts + string(suffix)
}

// NewTransferBooking allocates ids, reference and timestamps for a record
// assembled by the submission flow.
func NewTransferBooking() (*TransferBooking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now()
	return &TransferBooking{
		ID:            id,
		Reference:     GenerateReference(),
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

const bookingColumns = `
	id, reference, booking_type, transfer_type,
	airport_code, airport_name, destination_name, destination_area,
	flight_number, pickup_date, pickup_time, return_date, return_time,
	adults, children, infants, luggage,
	vehicle_id, vehicle_name, extras, child_seat_count,
	first_name, last_name, email, phone, country, special_requests,
	distance_km, base_price, distance_price, extras_price, total_price, currency,
	payment_method, payment_ref, status, payment_status,
	assigned_driver_id, assigned_driver_name, driver_phone, assigned_vehicle_id,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*TransferBooking, error) {
	b := &TransferBooking{}
	err := row.Scan(
		&b.ID, &b.Reference, &b.BookingType, &b.TransferType,
		&b.AirportCode, &b.AirportName, &b.DestinationName, &b.DestinationArea,
		&b.FlightNumber, &b.PickupDate, &b.PickupTime, &b.ReturnDate, &b.ReturnTime,
		&b.Adults, &b.Children, &b.Infants, &b.Luggage,
		&b.VehicleID, &b.VehicleName, &b.Extras, &b.ChildSeatCount,
		&b.Customer.FirstName, &b.Customer.LastName, &b.Customer.Email, &b.Customer.Phone, &b.Customer.Country, &b.SpecialRequests,
		&b.DistanceKm, &b.Pricing.BasePrice, &b.Pricing.DistancePrice, &b.Pricing.ExtrasPrice, &b.Pricing.Total, &b.Pricing.Currency,
		&b.PaymentMethod, &b.PaymentRef, &b.Status, &b.PaymentStatus,
		&b.AssignedDriverID, &b.AssignedDriverName, &b.DriverPhone, &b.AssignedVehicleID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateTransferBooking inserts a new booking record.
func CreateTransferBooking(ctx context.Context, db *pgxpool.Pool, b *TransferBooking) (*TransferBooking, error) {
	logger.InfoLogger.Infof("Attempting to create booking %s (%s -> %s)", b.Reference, b.AirportCode, b.DestinationName)

	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID: %w", err)
		}
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		now := time.Now()
		b.CreatedAt = now
		b.UpdatedAt = now
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41,
			$42, $43
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		b.ID, b.Reference, b.BookingType, b.TransferType,
		b.AirportCode, b.AirportName, b.DestinationName, b.DestinationArea,
		b.FlightNumber, b.PickupDate, b.PickupTime, b.ReturnDate, b.ReturnTime,
		b.Adults, b.Children, b.Infants, b.Luggage,
		b.VehicleID, b.VehicleName, b.Extras, b.ChildSeatCount,
		b.Customer.FirstName, b.Customer.LastName, b.Customer.Email, b.Customer.Phone, b.Customer.Country, b.SpecialRequests,
		b.DistanceKm, b.Pricing.BasePrice, b.Pricing.DistancePrice, b.Pricing.ExtrasPrice, b.Pricing.Total, b.Pricing.Currency,
		b.PaymentMethod, b.PaymentRef, b.Status, b.PaymentStatus,
		b.AssignedDriverID, b.AssignedDriverName, b.DriverPhone, b.AssignedVehicleID,
		b.CreatedAt, b.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking %s: %v", b.Reference, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	b.ID = insertedID
	logger.InfoLogger.Infof("Booking %s created with ID %s", b.Reference, b.ID)
	return b, nil
}

// GetBookingByReference fetches one booking by its public reference.
func GetBookingByReference(ctx context.Context, db *pgxpool.Pool, reference string) (*TransferBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`

	b, err := scanBooking(db.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking with reference %s not found", reference)
			return nil, fmt.Errorf("booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", reference, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetBookingByID fetches a booking by primary key.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*TransferBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetBookingsByEmail retrieves a customer's bookings, newest first.
func GetBookingsByEmail(ctx context.Context, db *pgxpool.Pool, email string, page, limit int) ([]TransferBooking, int, error) {
	logger.InfoLogger.Infof("Fetching bookings for customer %s", email)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE email = $1`, email).Scan(&total); err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings for %s: %v", email, err)
		return nil, 0, fmt.Errorf("failed to get booking count: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE email = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := db.Query(ctx, query, email, limit, offset)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for %s: %v", email, err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}

	logger.InfoLogger.Infof("Fetched %d bookings for %s (total: %d)", len(bookings), email, total)
	return bookings, total, nil
}

// GetAllBookings retrieves bookings with an optional status filter (admin).
func GetAllBookings(ctx context.Context, db *pgxpool.Pool, status string, page, limit int) ([]TransferBooking, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status filter %q", status)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if status != "" {
		if err = db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&total); err == nil {
			rows, err = db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
				WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
		}
	} else {
		if err = db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err == nil {
			rows, err = db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
				ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
		}
	}
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// GetBookingsByDriver retrieves bookings assigned to a driver, newest first.
func GetBookingsByDriver(ctx context.Context, db *pgxpool.Pool, driverID uuid.UUID, status string) ([]TransferBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE assigned_driver_id = $1`
	args := []interface{}{driverID}
	if status != "" {
		if !validStatuses[status] {
			return nil, fmt.Errorf("invalid status filter %q", status)
		}
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for driver %s: %v", driverID, err)
		return nil, fmt.Errorf("failed to fetch driver bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// UpdateBookingStatus moves a booking through its lifecycle.
func UpdateBookingStatus(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid booking status %q", status)
	}

	cmdTag, err := db.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update booking %s status: %v", id, err)
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("booking with ID %s not found for update", id)
	}

	logger.InfoLogger.Infof("Booking %s status updated to %s", id, status)
	return nil
}

// AssignDriver attaches a driver and vehicle to a booking and marks it assigned.
func AssignDriver(ctx context.Context, db *pgxpool.Pool, bookingID, driverID uuid.UUID, driverName, driverPhone, vehicleID string) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE bookings
		SET assigned_driver_id = $2, assigned_driver_name = $3, driver_phone = $4,
		    assigned_vehicle_id = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		bookingID, driverID, driverName, driverPhone, vehicleID, StatusAssigned, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to assign driver %s to booking %s: %v", driverID, bookingID, err)
		return fmt.Errorf("failed to assign driver: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("booking with ID %s not found for driver assignment", bookingID)
	}

	logger.InfoLogger.Infof("Driver %s assigned to booking %s", driverID, bookingID)
	return nil
}

// UpdatePaymentStatus records the payment outcome on the booking row.
func UpdatePaymentStatus(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, paymentStatus, paymentRef string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE bookings SET payment_status = $2, payment_ref = $3, updated_at = $4 WHERE id = $1`,
		id, paymentStatus, paymentRef, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update payment status for booking %s: %v", id, err)
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("booking with ID %s not found for payment update", id)
	}
	return nil
}

func collectBookings(rows pgx.Rows) ([]TransferBooking, error) {
	var bookings []TransferBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan booking row: %v", err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
