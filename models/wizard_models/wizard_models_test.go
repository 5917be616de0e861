package wizard_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAirportTransfer() *Wizard {
	w, _ := New(TypeAirportTransfer)
	w.Fields.AirportCode = "CMB"
	w.Fields.DestinationName = "Kandy City"
	w.Fields.DestinationArea = "Kandy"
	w.Fields.PickupDate = "2026-09-15"
	w.Fields.PickupTime = "14:30"
	w.Fields.VehicleID = "sedan"
	w.Fields.FirstName = "Amal"
	w.Fields.LastName = "Perera"
	w.Fields.Email = "amal@example.com"
	w.Fields.Phone = "+94771234567"
	w.Fields.Country = "Sri Lanka"
	w.Fields.PaymentMethod = "card"
	w.Fields.AgreedToTerms = true
	return w
}

func TestNew(t *testing.T) {
	t.Run("AirportTransferHasSixSteps", func(t *testing.T) {
		w, err := New(TypeAirportTransfer)
		require.NoError(t, err)

		assert.Equal(t, 6, w.TotalSteps())
		assert.Equal(t, 1, w.CurrentStep)
		assert.Equal(t, 0, w.Completed)
		assert.Equal(t, "arrival", w.Fields.TransferType)
		assert.Equal(t, 2, w.Fields.Adults)
		assert.Contains(t, w.Fields.Extras, "meet-greet")
	})

	t.Run("TourHasFourSteps", func(t *testing.T) {
		w, err := New(TypeTour)
		require.NoError(t, err)
		assert.Equal(t, 4, w.TotalSteps())
	})

	t.Run("CustomHasFiveSteps", func(t *testing.T) {
		w, err := New(TypeCustom)
		require.NoError(t, err)
		assert.Equal(t, 5, w.TotalSteps())
	})

	t.Run("UnknownTypeRejected", func(t *testing.T) {
		_, err := New(BookingType("cruise"))
		assert.Error(t, err)
	})
}

func TestAdvance(t *testing.T) {
	t.Run("InvalidStepIsNoOp", func(t *testing.T) {
		w, _ := New(TypeAirportTransfer)

		moved, errs := w.Advance()

		assert.False(t, moved)
		assert.NotEmpty(t, errs)
		assert.Equal(t, 1, w.CurrentStep)
		assert.Equal(t, 0, w.Completed)
	})

	t.Run("ValidStepMovesAndRaisesWatermark", func(t *testing.T) {
		w := validAirportTransfer()

		moved, errs := w.Advance()

		assert.True(t, moved)
		assert.Empty(t, errs)
		assert.Equal(t, 2, w.CurrentStep)
		assert.Equal(t, 1, w.Completed)
	})

	t.Run("LastStepDoesNotOverflow", func(t *testing.T) {
		w := validAirportTransfer()
		for i := 0; i < 10; i++ {
			w.Advance()
		}
		assert.Equal(t, w.TotalSteps(), w.CurrentStep)
		assert.Equal(t, w.TotalSteps(), w.Completed)
	})

	t.Run("RoundTripRequiresReturnLeg", func(t *testing.T) {
		w := validAirportTransfer()
		w.Fields.TransferType = "round-trip"

		moved, errs := w.Advance()

		assert.False(t, moved)
		fields := make([]string, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, e.Field)
		}
		assert.Contains(t, fields, "return_date")
		assert.Contains(t, fields, "return_time")
	})
}

func TestRetreat(t *testing.T) {
	w := validAirportTransfer()
	w.Advance()
	require.Equal(t, 2, w.CurrentStep)

	email := w.Fields.Email
	assert.True(t, w.Retreat())
	assert.Equal(t, 1, w.CurrentStep)
	assert.Equal(t, email, w.Fields.Email, "going back keeps entered data")

	assert.False(t, w.Retreat(), "cannot retreat before step 1")
}

func TestJumpTo(t *testing.T) {
	w := validAirportTransfer()
	w.Advance()
	w.Advance()
	require.Equal(t, 3, w.CurrentStep)
	require.Equal(t, 2, w.Completed)

	assert.True(t, w.JumpTo(1), "completed steps are reachable")
	assert.Equal(t, 1, w.CurrentStep)

	assert.True(t, w.JumpTo(3), "one past the watermark is reachable")
	assert.False(t, w.JumpTo(5), "cannot skip past the watermark")
	assert.False(t, w.JumpTo(0))
	assert.False(t, w.JumpTo(99))
}

func TestVehicleCapacity(t *testing.T) {
	w := validAirportTransfer()
	w.CurrentStep = 3 // vehicle step
	w.Fields.Adults = 3
	w.Fields.Children = 2 // sedan seats 3

	errs := w.Validate(3)
	require.Len(t, errs, 1)
	assert.Equal(t, "vehicle_id", errs[0].Field)
}

func TestOptionalStepsPassWhenEmpty(t *testing.T) {
	w, _ := New(TypeAirportTransfer)
	assert.Empty(t, w.Validate(2), "flight step may be left empty")
	assert.Empty(t, w.Validate(4), "extras step may be left empty")
}

func TestOptionalStepStillChecksEnteredData(t *testing.T) {
	t.Run("UnknownExtraRejected", func(t *testing.T) {
		w := validAirportTransfer()
		w.Fields.Extras = append(w.Fields.Extras, "jetpack")

		errs := w.Validate(4)
		require.Len(t, errs, 1)
		assert.Equal(t, "extras", errs[0].Field)
		assert.Contains(t, errs[0].Message, "jetpack")
		assert.NotEmpty(t, w.ValidateAll(), "submission re-check must catch it too")
	})

	t.Run("ChildSeatNeedsQuantity", func(t *testing.T) {
		w := validAirportTransfer()
		w.Fields.Extras = append(w.Fields.Extras, "child-seat")

		errs := w.Validate(4)
		require.Len(t, errs, 1)
		assert.Equal(t, "extras", errs[0].Field)

		w.Fields.ExtraQuantities = map[string]int{"child-seat": 1}
		assert.Empty(t, w.Validate(4))
		assert.Empty(t, w.ValidateAll())
	})
}

func TestValidateAll(t *testing.T) {
	w := validAirportTransfer()
	assert.Empty(t, w.ValidateAll())

	w.Fields.Email = "not-an-email"
	errs := w.ValidateAll()
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestReset(t *testing.T) {
	w := validAirportTransfer()
	w.Advance()
	w.Advance()

	w.Reset()

	assert.Equal(t, 1, w.CurrentStep)
	assert.Equal(t, 0, w.Completed)
	assert.Empty(t, w.Fields.Email)
	assert.Contains(t, w.Fields.Extras, "meet-greet")
}

func TestIsRoundTrip(t *testing.T) {
	w, _ := New(TypeAirportTransfer)
	assert.False(t, w.IsRoundTrip())
	w.Fields.TransferType = "round-trip"
	assert.True(t, w.IsRoundTrip())
}
