package pricing_models

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/transfer_models"
	"github.com/rechargetravels/booking/utils"
)

// Vehicle is a bookable vehicle class with its fare rates in USD.
type Vehicle struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Passengers  int     `json:"passengers"`
	Luggage     int     `json:"luggage"`
	BasePrice   float64 `json:"base_price"`
	PerKmRate   float64 `json:"per_km_rate"`
}

// Breakdown is a fully derived price. Total always equals the sum of the
// three components; it is recomputed from scratch, never mutated.
type Breakdown struct {
	BasePrice     float64 `json:"base_price"`
	DistancePrice float64 `json:"distance_price"`
	ExtrasPrice   float64 `json:"extras_price"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

// DefaultVehicles is the built-in fleet. Admin overrides in the
// vehicle_pricing table take precedence over these rates.
var DefaultVehicles = []Vehicle{
	{ID: "economy", Name: "Economy Sedan", Description: "Toyota Axio, Honda Fit", Passengers: 3, Luggage: 2, BasePrice: 15, PerKmRate: 0.35},
	{ID: "sedan", Name: "Premium Sedan", Description: "Toyota Premio, Honda Grace", Passengers: 3, Luggage: 3, BasePrice: 20, PerKmRate: 0.5},
	{ID: "suv", Name: "SUV", Description: "Toyota Prado, Mitsubishi Montero", Passengers: 6, Luggage: 4, BasePrice: 30, PerKmRate: 0.75},
	{ID: "van", Name: "Mini Van", Description: "Toyota KDH, Nissan Caravan", Passengers: 8, Luggage: 6, BasePrice: 25, PerKmRate: 0.65},
	{ID: "luxury", Name: "Luxury Vehicle", Description: "Mercedes E-Class, BMW 5 Series", Passengers: 3, Luggage: 3, BasePrice: 45, PerKmRate: 1.2},
	{ID: "luxury-suv", Name: "Luxury SUV", Description: "Land Cruiser V8, Range Rover", Passengers: 6, Luggage: 4, BasePrice: 60, PerKmRate: 1.5},
	{ID: "coach", Name: "Mini Coach", Description: "Toyota Coaster, Rosa Bus", Passengers: 25, Luggage: 25, BasePrice: 40, PerKmRate: 1.0},
}

// FindVehicle returns the built-in vehicle for id.
func FindVehicle(id string) (Vehicle, bool) {
	for _, v := range DefaultVehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// SuitableVehicles narrows a fleet to vehicles that fit the party size and
// luggage count.
func SuitableVehicles(vehicles []Vehicle, passengers, luggage int) []Vehicle {
	var out []Vehicle
	for _, v := range vehicles {
		if v.Passengers >= passengers && v.Luggage >= luggage {
			out = append(out, v)
		}
	}
	return out
}

// GetVehicle resolves a vehicle id against the admin pricing overrides, then
// the built-in fleet. A nil pool skips the override lookup. Unknown ids are a
// configuration bug, not user error.
func GetVehicle(ctx context.Context, db *pgxpool.Pool, id string) (Vehicle, error) {
	v, ok := FindVehicle(id)
	if !ok {
		return Vehicle{}, &utils.ConfigurationError{Kind: "vehicle", ID: id}
	}
	if db == nil {
		return v, nil
	}

	var base, perKm float64
	err := db.QueryRow(ctx,
		`SELECT base_price, per_km_rate FROM vehicle_pricing WHERE vehicle_id = $1`, id,
	).Scan(&base, &perKm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return v, nil
		}
		logger.WarnLogger.Warnf("Vehicle pricing override lookup failed for %s, using defaults: %v", id, err)
		return v, nil
	}

	v.BasePrice = base
	v.PerKmRate = perKm
	return v, nil
}

// UpsertVehiclePricing stores an admin rate override for a vehicle.
func UpsertVehiclePricing(ctx context.Context, db *pgxpool.Pool, vehicleID string, basePrice, perKmRate float64) error {
	if _, ok := FindVehicle(vehicleID); !ok {
		return &utils.ConfigurationError{Kind: "vehicle", ID: vehicleID}
	}
	if basePrice < 0 || perKmRate < 0 {
		return fmt.Errorf("pricing override must be non-negative")
	}

	_, err := db.Exec(ctx, `
		INSERT INTO vehicle_pricing (vehicle_id, base_price, per_km_rate, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (vehicle_id) DO UPDATE
		SET base_price = EXCLUDED.base_price,
		    per_km_rate = EXCLUDED.per_km_rate,
		    updated_at = now()`,
		vehicleID, basePrice, perKmRate,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to upsert vehicle pricing for %s: %v", vehicleID, err)
		return fmt.Errorf("failed to upsert vehicle pricing: %w", err)
	}

	logger.InfoLogger.Infof("Vehicle pricing override stored for %s (base %.2f, per-km %.2f)", vehicleID, basePrice, perKmRate)
	return nil
}

// ListVehicles returns the fleet with any admin overrides applied.
func ListVehicles(ctx context.Context, db *pgxpool.Pool) []Vehicle {
	out := make([]Vehicle, len(DefaultVehicles))
	copy(out, DefaultVehicles)
	if db == nil {
		return out
	}

	rows, err := db.Query(ctx, `SELECT vehicle_id, base_price, per_km_rate FROM vehicle_pricing`)
	if err != nil {
		logger.WarnLogger.Warnf("Vehicle pricing override list failed, using defaults: %v", err)
		return out
	}
	defer rows.Close()

	overrides := make(map[string][2]float64)
	for rows.Next() {
		var id string
		var base, perKm float64
		if err := rows.Scan(&id, &base, &perKm); err != nil {
			logger.WarnLogger.Warnf("Failed to scan vehicle pricing row: %v", err)
			continue
		}
		overrides[id] = [2]float64{base, perKm}
	}

	for i := range out {
		if o, ok := overrides[out[i].ID]; ok {
			out[i].BasePrice = o[0]
			out[i].PerKmRate = o[1]
		}
	}
	return out
}

// ExtrasPrice sums the selected extras. Included extras contribute zero;
// quantity-based extras multiply by their count. Unknown ids are a
// configuration bug.
func ExtrasPrice(extraIDs []string, quantities map[string]int) (float64, error) {
	var total float64
	for _, id := range extraIDs {
		extra, ok := transfer_models.FindExtra(id)
		if !ok {
			return 0, &utils.ConfigurationError{Kind: "extra", ID: id}
		}
		if extra.IsIncluded {
			continue
		}
		if extra.RequiresQuantity {
			qty := quantities[id]
			if qty < 0 {
				qty = 0
			}
			total += float64(qty) * extra.PriceUSD
			continue
		}
		total += extra.PriceUSD
	}
	return total, nil
}

// CalculatePrice derives a full breakdown for one transfer. Round-trip
// doubles the base and distance components only; flat-fee extras are one-way
// add-ons. Components are rounded to cents exactly once, and the total is the
// sum of the rounded components so the invariant holds under floating point.
func CalculatePrice(distanceKm float64, vehicle Vehicle, extraIDs []string, quantities map[string]int, roundTrip bool) (Breakdown, error) {
	if distanceKm < 0 {
		return Breakdown{}, fmt.Errorf("distance must be non-negative, got %.2f", distanceKm)
	}

	extras, err := ExtrasPrice(extraIDs, quantities)
	if err != nil {
		return Breakdown{}, err
	}

	base := vehicle.BasePrice
	distance := distanceKm * vehicle.PerKmRate
	if roundTrip {
		base *= 2
		distance *= 2
	}

	b := Breakdown{
		BasePrice:     roundCents(base),
		DistancePrice: roundCents(distance),
		ExtrasPrice:   roundCents(extras),
		Currency:      "USD",
	}
	b.Total = roundCents(b.BasePrice + b.DistancePrice + b.ExtrasPrice)
	return b, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
