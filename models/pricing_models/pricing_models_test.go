package pricing_models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechargetravels/booking/utils"
)

func TestCalculatePrice(t *testing.T) {
	sedan, ok := FindVehicle("sedan")
	require.True(t, ok)

	t.Run("OneWaySedan", func(t *testing.T) {
		b, err := CalculatePrice(85, sedan, nil, nil, false)
		require.NoError(t, err)

		assert.Equal(t, 20.0, b.BasePrice)
		assert.Equal(t, 42.5, b.DistancePrice)
		assert.Equal(t, 0.0, b.ExtrasPrice)
		assert.Equal(t, 62.5, b.Total)
		assert.Equal(t, "USD", b.Currency)
	})

	t.Run("RoundTripDoublesBaseAndDistanceOnly", func(t *testing.T) {
		b, err := CalculatePrice(85, sedan, []string{"wifi"}, nil, true)
		require.NoError(t, err)

		assert.Equal(t, 40.0, b.BasePrice)
		assert.Equal(t, 85.0, b.DistancePrice)
		assert.Equal(t, 8.0, b.ExtrasPrice, "flat-fee extras are not doubled")
		assert.Equal(t, 133.0, b.Total)
	})

	t.Run("IncludedExtrasAreFree", func(t *testing.T) {
		with, err := CalculatePrice(85, sedan, []string{"meet-greet"}, nil, false)
		require.NoError(t, err)
		without, err := CalculatePrice(85, sedan, nil, nil, false)
		require.NoError(t, err)

		assert.Equal(t, without.Total, with.Total)
	})

	t.Run("QuantityExtras", func(t *testing.T) {
		b, err := CalculatePrice(85, sedan, []string{"child-seat"}, map[string]int{"child-seat": 2}, false)
		require.NoError(t, err)

		assert.Equal(t, 10.0, b.ExtrasPrice)
		assert.Equal(t, 72.5, b.Total)
	})

	t.Run("TotalIsSumOfComponents", func(t *testing.T) {
		// Rates that produce sub-cent components under floating point.
		v := Vehicle{ID: "sedan", BasePrice: 19.995, PerKmRate: 0.333}
		b, err := CalculatePrice(77.7, v, []string{"water"}, nil, false)
		require.NoError(t, err)

		assert.Equal(t, b.Total, b.BasePrice+b.DistancePrice+b.ExtrasPrice)
	})

	t.Run("UnknownExtraIsConfigurationError", func(t *testing.T) {
		_, err := CalculatePrice(85, sedan, []string{"jetpack"}, nil, false)
		require.Error(t, err)

		var cfgErr *utils.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("NegativeDistanceRejected", func(t *testing.T) {
		_, err := CalculatePrice(-1, sedan, nil, nil, false)
		assert.Error(t, err)
	})

	t.Run("ZeroDistance", func(t *testing.T) {
		b, err := CalculatePrice(0, sedan, nil, nil, false)
		require.NoError(t, err)
		assert.Equal(t, 20.0, b.Total, "base fare still applies")
	})
}

func TestExtrasPrice(t *testing.T) {
	t.Run("MissingQuantityCountsZero", func(t *testing.T) {
		total, err := ExtrasPrice([]string{"child-seat"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, total)
	})

	t.Run("NegativeQuantityClamped", func(t *testing.T) {
		total, err := ExtrasPrice([]string{"child-seat"}, map[string]int{"child-seat": -3})
		require.NoError(t, err)
		assert.Equal(t, 0.0, total)
	})
}

func TestSuitableVehicles(t *testing.T) {
	for _, v := range SuitableVehicles(DefaultVehicles, 7, 0) {
		assert.GreaterOrEqual(t, v.Passengers, 7)
	}
	for _, v := range SuitableVehicles(DefaultVehicles, 2, 5) {
		assert.GreaterOrEqual(t, v.Luggage, 5)
	}
	assert.Empty(t, SuitableVehicles(DefaultVehicles, 100, 0))
	assert.Len(t, SuitableVehicles(DefaultVehicles, 0, 0), len(DefaultVehicles))
}
