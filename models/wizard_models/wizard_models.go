package wizard_models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rechargetravels/booking/models/pricing_models"
	"github.com/rechargetravels/booking/models/transfer_models"
	"github.com/rechargetravels/booking/utils"
)

// BookingType selects the step sequence a wizard runs through.
type BookingType string

const (
	TypeAirportTransfer BookingType = "airport-transfer"
	TypeTour            BookingType = "tour"
	TypeCustom          BookingType = "custom"
)

// StepKey identifies one wizard step.
type StepKey string

const (
	StepRoute     StepKey = "route"
	StepFlight    StepKey = "flight"
	StepTravelers StepKey = "travelers"
	StepVehicle   StepKey = "vehicle"
	StepExtras    StepKey = "extras"
	StepDetails   StepKey = "details"
	StepPayment   StepKey = "payment"
)

// StepDefinition describes one step in a booking flow. Step count and
// ordering are data selected by booking type, not scattered conditionals.
type StepDefinition struct {
	Key      StepKey `json:"key"`
	Label    string  `json:"label"`
	Optional bool    `json:"optional"`
}

var stepsByType = map[BookingType][]StepDefinition{
	TypeAirportTransfer: {
		{Key: StepRoute, Label: "Route"},
		{Key: StepFlight, Label: "Flight", Optional: true},
		{Key: StepVehicle, Label: "Vehicle"},
		{Key: StepExtras, Label: "Extras", Optional: true},
		{Key: StepDetails, Label: "Details"},
		{Key: StepPayment, Label: "Payment"},
	},
	TypeTour: {
		{Key: StepRoute, Label: "Trip Details"},
		{Key: StepTravelers, Label: "Travelers"},
		{Key: StepDetails, Label: "Contact"},
		{Key: StepPayment, Label: "Payment"},
	},
	TypeCustom: {
		{Key: StepRoute, Label: "Trip Details"},
		{Key: StepTravelers, Label: "Travelers"},
		{Key: StepVehicle, Label: "Vehicle"},
		{Key: StepDetails, Label: "Contact"},
		{Key: StepPayment, Label: "Payment"},
	},
}

// PaymentMethods accepted at the payment step.
var PaymentMethods = map[string]bool{
	"card":   true,
	"paypal": true,
	"wallet": true,
	"cash":   true,
}

// Fields is the accumulated form state across all steps. Back navigation
// never clears it.
type Fields struct {
	TransferType string `json:"transfer_type"` // arrival, departure, round-trip

	AirportCode     string                 `json:"airport_code"`
	DestinationName string                 `json:"destination_name"`
	DestinationArea string                 `json:"destination_area"`
	DestCoords      *transfer_models.LatLng `json:"dest_coords,omitempty"`

	PickupDate string `json:"pickup_date"`
	PickupTime string `json:"pickup_time"`
	ReturnDate string `json:"return_date"`
	ReturnTime string `json:"return_time"`

	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Luggage  int `json:"luggage"`

	FlightNumber string `json:"flight_number"`

	VehicleID       string         `json:"vehicle_id"`
	Extras          []string       `json:"extras"`
	ExtraQuantities map[string]int `json:"extra_quantities"`

	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Country         string `json:"country"`
	SpecialRequests string `json:"special_requests"`

	PaymentMethod string `json:"payment_method"`
	AgreedToTerms bool   `json:"agreed_to_terms"`
}

// Wizard is one booking session. CurrentStep is 1-based and bounded by the
// booking type's step list; Completed is the monotonic watermark of the
// highest step whose validation has passed.
type Wizard struct {
	ID          uuid.UUID   `json:"id"`
	BookingType BookingType `json:"booking_type"`
	CurrentStep int         `json:"current_step"`
	Completed   int         `json:"completed"`
	Fields      Fields      `json:"fields"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// New creates a wizard at step 1 for the given booking type.
func New(bt BookingType) (*Wizard, error) {
	if _, ok := stepsByType[bt]; !ok {
		return nil, fmt.Errorf("unknown booking type %q", bt)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate wizard UUID: %w", err)
	}
	now := time.Now()
	return &Wizard{
		ID:          id,
		BookingType: bt,
		CurrentStep: 1,
		Fields: Fields{
			TransferType: "arrival",
			Adults:       2,
			Extras:       includedExtraIDs(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Steps returns the step list for this wizard's booking type.
func (w *Wizard) Steps() []StepDefinition {
	return stepsByType[w.BookingType]
}

// TotalSteps returns the step count for this wizard's booking type.
func (w *Wizard) TotalSteps() int {
	return len(stepsByType[w.BookingType])
}

// StepAt returns the definition of the 1-based step n.
func (w *Wizard) StepAt(n int) (StepDefinition, bool) {
	steps := w.Steps()
	if n < 1 || n > len(steps) {
		return StepDefinition{}, false
	}
	return steps[n-1], true
}

// Validate runs the predicate for the 1-based step n and returns field
// errors. Optional steps may be left empty, but whatever was entered on them
// is still checked. Validation failures are values, never process errors.
func (w *Wizard) Validate(n int) []utils.ValidationError {
	def, ok := w.StepAt(n)
	if !ok {
		return []utils.ValidationError{{Field: "step", Message: fmt.Sprintf("step %d out of range", n)}}
	}
	return w.validateStep(def.Key)
}

// CanProceed reports whether every step before target has passed validation.
func (w *Wizard) CanProceed(target int) bool {
	if target < 1 || target > w.TotalSteps() {
		return false
	}
	for n := 1; n < target; n++ {
		if len(w.Validate(n)) > 0 {
			return false
		}
	}
	return true
}

// Advance moves to the next step if the current one validates. It is a no-op
// when validation fails or the wizard is already on the last step; the field
// errors are returned either way so they can be surfaced inline.
func (w *Wizard) Advance() (bool, []utils.ValidationError) {
	if errs := w.Validate(w.CurrentStep); len(errs) > 0 {
		return false, errs
	}
	if w.CurrentStep > w.Completed {
		w.Completed = w.CurrentStep
	}
	if w.CurrentStep >= w.TotalSteps() {
		return false, nil
	}
	w.CurrentStep++
	w.UpdatedAt = time.Now()
	return true, nil
}

// Retreat moves one step back without clearing entered data.
func (w *Wizard) Retreat() bool {
	if w.CurrentStep <= 1 {
		return false
	}
	w.CurrentStep--
	w.UpdatedAt = time.Now()
	return true
}

// JumpTo moves directly to a previously reached step. Steps beyond the
// completed watermark cannot be skipped into.
func (w *Wizard) JumpTo(n int) bool {
	if n < 1 || n > w.TotalSteps() {
		return false
	}
	if n > w.Completed+1 {
		return false
	}
	w.CurrentStep = n
	w.UpdatedAt = time.Now()
	return true
}

// ValidateAll re-runs every step predicate. Submission must not trust the
// per-step gating alone because steps can be revisited and edited.
func (w *Wizard) ValidateAll() []utils.ValidationError {
	var errs []utils.ValidationError
	for n := 1; n <= w.TotalSteps(); n++ {
		errs = append(errs, w.Validate(n)...)
	}
	return errs
}

// Reset returns the wizard to step 1 with all fields cleared. Called after a
// successful submission.
func (w *Wizard) Reset() {
	w.CurrentStep = 1
	w.Completed = 0
	w.Fields = Fields{
		TransferType: "arrival",
		Adults:       2,
		Extras:       includedExtraIDs(),
	}
	w.UpdatedAt = time.Now()
}

// IsRoundTrip reports whether the wizard describes a two-leg journey.
func (w *Wizard) IsRoundTrip() bool {
	return w.Fields.TransferType == "round-trip"
}

func (w *Wizard) validateStep(key StepKey) []utils.ValidationError {
	var errs []utils.ValidationError
	add := func(field, msg string) {
		errs = append(errs, utils.ValidationError{Field: field, Message: msg})
	}
	f := w.Fields

	switch key {
	case StepRoute:
		if w.BookingType == TypeAirportTransfer {
			if f.AirportCode == "" {
				add("airport_code", "pickup airport is required")
			} else if _, ok := transfer_models.FindAirport(f.AirportCode); !ok {
				add("airport_code", "unknown airport code")
			}
		}
		if f.DestinationName == "" && f.DestinationArea == "" && f.DestCoords == nil {
			add("destination", "destination is required")
		}
		if f.PickupDate == "" {
			add("pickup_date", "pickup date is required")
		}
		if f.PickupTime == "" {
			add("pickup_time", "pickup time is required")
		}
		if f.TransferType == "round-trip" {
			if f.ReturnDate == "" {
				add("return_date", "return date is required for round trips")
			}
			if f.ReturnTime == "" {
				add("return_time", "return time is required for round trips")
			}
		}

	case StepTravelers:
		if f.Adults < 1 {
			add("adults", "at least one adult is required")
		}

	case StepVehicle:
		if f.VehicleID == "" {
			add("vehicle_id", "vehicle selection is required")
			break
		}
		v, ok := pricing_models.FindVehicle(f.VehicleID)
		if !ok {
			add("vehicle_id", "unknown vehicle type")
			break
		}
		if f.Adults+f.Children > v.Passengers {
			add("vehicle_id", fmt.Sprintf("%s seats %d passengers", v.Name, v.Passengers))
		}

	case StepExtras:
		for _, id := range f.Extras {
			extra, ok := transfer_models.FindExtra(id)
			if !ok {
				add("extras", fmt.Sprintf("unknown extra %q", id))
				continue
			}
			if extra.RequiresQuantity && f.ExtraQuantities[id] < 1 {
				add("extras", fmt.Sprintf("%s requires a quantity", extra.Name))
			}
		}

	case StepDetails:
		if f.FirstName == "" {
			add("first_name", "first name is required")
		}
		if f.LastName == "" {
			add("last_name", "last name is required")
		}
		if f.Email == "" || !strings.Contains(f.Email, "@") {
			add("email", "a valid email is required")
		}
		if f.Phone == "" {
			add("phone", "phone number is required")
		}
		if f.Country == "" {
			add("country", "country is required")
		}

	case StepPayment:
		if !PaymentMethods[f.PaymentMethod] {
			add("payment_method", "a payment method is required")
		}
		if !f.AgreedToTerms {
			add("agreed_to_terms", "terms must be accepted")
		}
	}

	return errs
}

func includedExtraIDs() []string {
	var ids []string
	for _, e := range transfer_models.TransferExtras {
		if e.IsIncluded {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
