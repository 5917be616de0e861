package transfer_controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechargetravels/booking/logger"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewTransferController(nil, nil)

	r := gin.New()
	r.GET("/transfers/airports", controller.ListAirports)
	r.GET("/transfers/destinations", controller.ListDestinations)
	r.GET("/transfers/vehicles", controller.ListVehicles)
	r.GET("/transfers/extras", controller.ListExtras)
	r.POST("/transfers/quote", controller.Quote)
	return r
}

func TestListAirports(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/transfers/airports?q=colombo", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Airports []struct {
			Code string `json:"code"`
		} `json:"airports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Airports)
	for _, a := range resp.Airports {
		assert.Contains(t, []string{"CMB", "RML"}, a.Code)
	}
}

func TestListVehiclesFiltersByCapacity(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/transfers/vehicles?passengers=7", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Vehicles []struct {
			ID         string `json:"id"`
			Passengers int    `json:"passengers"`
		} `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Vehicles)
	for _, v := range resp.Vehicles {
		assert.GreaterOrEqual(t, v.Passengers, 7)
	}
}

func TestQuote(t *testing.T) {
	r := testRouter()

	doQuote := func(t *testing.T, payload map[string]interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
		t.Helper()
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", "/transfers/quote", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var resp map[string]json.RawMessage
		if w.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		}
		return w, resp
	}

	t.Run("NamedAreaQuote", func(t *testing.T) {
		w, resp := doQuote(t, map[string]interface{}{
			"airport_code":     "RML",
			"destination_area": "Kandy",
			"vehicle_id":       "sedan",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var pricing struct {
			BasePrice     float64 `json:"base_price"`
			DistancePrice float64 `json:"distance_price"`
			Total         float64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp["pricing"], &pricing))
		assert.Equal(t, 20.0, pricing.BasePrice)
		assert.Equal(t, 60.0, pricing.DistancePrice, "120km from the route table at 0.5/km")
		assert.Equal(t, 80.0, pricing.Total)
	})

	t.Run("RoundTripDoubles", func(t *testing.T) {
		w, resp := doQuote(t, map[string]interface{}{
			"airport_code":     "RML",
			"destination_area": "Kandy",
			"vehicle_id":       "sedan",
			"round_trip":       true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var pricing struct {
			Total float64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp["pricing"], &pricing))
		assert.Equal(t, 160.0, pricing.Total)
	})

	t.Run("UnknownAirportRejected", func(t *testing.T) {
		w, _ := doQuote(t, map[string]interface{}{
			"airport_code": "XXX",
			"vehicle_id":   "sedan",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownVehicleRejected", func(t *testing.T) {
		w, _ := doQuote(t, map[string]interface{}{
			"airport_code":     "RML",
			"destination_area": "Kandy",
			"vehicle_id":       "spaceship",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownAreaDegradesToFallback", func(t *testing.T) {
		w, resp := doQuote(t, map[string]interface{}{
			"airport_code":     "RML",
			"destination_area": "Atlantis",
			"vehicle_id":       "sedan",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var estimate bool
		require.NoError(t, json.Unmarshal(resp["estimate"], &estimate))
		assert.True(t, estimate, "fallback quotes are flagged as estimates")

		var route struct {
			DistanceKm float64 `json:"distance_km"`
		}
		require.NoError(t, json.Unmarshal(resp["route"], &route))
		assert.Equal(t, 30.0, route.DistanceKm)
	})
}
