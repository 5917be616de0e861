package transfer_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeArea(t *testing.T) {
	assert.Equal(t, "nuwara-eliya", NormalizeArea("Nuwara Eliya"))
	assert.Equal(t, "kandy", NormalizeArea("  Kandy "))
	assert.Equal(t, "arugam-bay", NormalizeArea("Arugam Bay"))
}

func TestFindAirport(t *testing.T) {
	a, ok := FindAirport("cmb")
	require.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "CMB", a.Code)
	require.NotNil(t, a.Coordinates)
	assert.InDelta(t, 7.1808, a.Coordinates.Lat, 0.0001)

	_, ok = FindAirport("XXX")
	assert.False(t, ok)
}

func TestDomesticAirportsHaveNoCoordinates(t *testing.T) {
	a, ok := FindAirport("RML")
	require.True(t, ok)
	assert.Nil(t, a.Coordinates, "domestic airports rely on the route table")
}

func TestSearchAirports(t *testing.T) {
	all := SearchAirports("")
	assert.Len(t, all, len(Airports))

	hits := SearchAirports("jaffna")
	require.NotEmpty(t, hits)
	for _, a := range hits {
		assert.Equal(t, "JAF", a.Code)
	}
}

func TestSearchDestinations(t *testing.T) {
	hits := SearchDestinations("beach")
	assert.NotEmpty(t, hits)

	assert.Empty(t, SearchDestinations("mordor"))
}

func TestEveryDestinationAreaHasRouteDistance(t *testing.T) {
	// Pasikuda's destination is keyed under Batticaloa but measured as
	// pasikuda; the remaining areas must resolve through the table so the
	// estimator never falls back for catalogued destinations.
	for _, d := range Destinations {
		key := NormalizeArea(d.Area)
		if key == "batticaloa" {
			continue
		}
		_, ok := RouteDistances[key]
		assert.True(t, ok, "no route distance for area %q", d.Area)
	}
}

func TestFindExtra(t *testing.T) {
	e, ok := FindExtra("child-seat")
	require.True(t, ok)
	assert.True(t, e.RequiresQuantity)
	assert.Equal(t, 5.0, e.PriceUSD)

	mg, ok := FindExtra("meet-greet")
	require.True(t, ok)
	assert.True(t, mg.IsIncluded)
	assert.Equal(t, 0.0, mg.PriceUSD)

	_, ok = FindExtra("jetpack")
	assert.False(t, ok)
}
