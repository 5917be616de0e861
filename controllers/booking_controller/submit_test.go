package booking_controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechargetravels/booking/clients"
	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/models/payment_transaction_models"
	"github.com/rechargetravels/booking/models/pricing_models"
	"github.com/rechargetravels/booking/models/wizard_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

type recordingGateway struct {
	calls      int
	auth       *clients.PaymentAuth
	err        error
	signatures bool
}

func (g *recordingGateway) Authorize(ctx context.Context, amountCents int64, currency, method, receipt string) (*clients.PaymentAuth, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.auth, nil
}

func (g *recordingGateway) VerifyWebhookSignature(body, signature, secret string) bool {
	return g.signatures
}

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c
}

func submittableWizard(t *testing.T, method string) *wizard_models.Wizard {
	t.Helper()
	w, err := wizard_models.New(wizard_models.TypeAirportTransfer)
	require.NoError(t, err)
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
	w.Fields.PaymentMethod = method
	w.Fields.AgreedToTerms = true
	return w
}

func TestCollectPaymentCashSkipsGateway(t *testing.T) {
	gateway := &recordingGateway{}
	bc := &BookingController{Gateway: gateway}
	w := submittableWizard(t, "cash")
	booking, err := buildBooking(w, 120, pricing_models.Breakdown{Total: 80, Currency: "USD"})
	require.NoError(t, err)

	outcome, done := bc.collectPayment(testContext(t), w, booking)

	assert.False(t, done)
	assert.Equal(t, 0, gateway.calls, "cash must never touch the gateway")
	assert.False(t, outcome.captured)
	assert.Equal(t, booking_models.StatusPending, outcome.status)
	assert.Equal(t, booking_models.PaymentPending, outcome.payStatus)
}

func TestCollectPaymentCard(t *testing.T) {
	gateway := &recordingGateway{auth: &clients.PaymentAuth{OrderID: "order_123"}}
	bc := &BookingController{Gateway: gateway}
	w := submittableWizard(t, "card")
	booking, err := buildBooking(w, 120, pricing_models.Breakdown{Total: 80, Currency: "USD"})
	require.NoError(t, err)

	outcome, done := bc.collectPayment(testContext(t), w, booking)

	assert.False(t, done)
	assert.Equal(t, 1, gateway.calls)
	assert.True(t, outcome.captured)
	assert.Equal(t, "order_123", outcome.orderID)
	assert.Equal(t, booking_models.StatusConfirmed, outcome.status)
	assert.Equal(t, booking_models.PaymentPaid, outcome.payStatus)
}

func TestCollectPaymentPaypalRedirects(t *testing.T) {
	gateway := &recordingGateway{auth: &clients.PaymentAuth{OrderID: "order_9", RedirectURL: "https://pay.example/approve?order_id=order_9"}}
	bc := &BookingController{Gateway: gateway}
	w := submittableWizard(t, "paypal")
	booking, err := buildBooking(w, 120, pricing_models.Breakdown{Total: 80, Currency: "USD"})
	require.NoError(t, err)

	outcome, done := bc.collectPayment(testContext(t), w, booking)

	assert.False(t, done)
	assert.False(t, outcome.captured, "paypal is captured after buyer approval")
	assert.NotEmpty(t, outcome.redirectURL)
	assert.Equal(t, booking_models.StatusPending, outcome.status)
	assert.Equal(t, booking_models.PaymentPending, outcome.payStatus)
}

func TestCollectPaymentWalletRequiresIdentity(t *testing.T) {
	bc := &BookingController{Gateway: &recordingGateway{}}
	w := submittableWizard(t, "wallet")
	booking, err := buildBooking(w, 120, pricing_models.Breakdown{Total: 80, Currency: "USD"})
	require.NoError(t, err)

	c := testContext(t)
	_, done := bc.collectPayment(c, w, booking)

	assert.True(t, done, "anonymous wallet payment must be rejected")
	assert.Equal(t, http.StatusUnauthorized, c.Writer.Status())
}

func TestBuildBooking(t *testing.T) {
	w := submittableWizard(t, "card")
	w.Fields.TransferType = "round-trip"
	w.Fields.ReturnDate = "2026-09-20"
	w.Fields.ReturnTime = "10:00"
	w.Fields.Extras = []string{"meet-greet", "child-seat"}
	w.Fields.ExtraQuantities = map[string]int{"child-seat": 2}

	breakdown := pricing_models.Breakdown{BasePrice: 40, DistancePrice: 120, ExtrasPrice: 10, Total: 170, Currency: "USD"}
	b, err := buildBooking(w, 120, breakdown)
	require.NoError(t, err)

	assert.Equal(t, "airport-transfer", b.BookingType)
	assert.Equal(t, "CMB", b.AirportCode)
	assert.Equal(t, "Bandaranaike International Airport", b.AirportName)
	assert.Equal(t, "Premium Sedan", b.VehicleName)
	require.NotNil(t, b.ReturnDate)
	assert.Equal(t, "2026-09-20", *b.ReturnDate)
	assert.Equal(t, 2, b.ChildSeatCount)
	assert.Equal(t, 120.0, b.DistanceKm)
	assert.Equal(t, breakdown, b.Pricing)
	assert.Equal(t, "amal@example.com", b.Customer.Email)
	assert.Equal(t, booking_models.StatusPending, b.Status, "status is decided by the payment phase")
}

func TestPinIncludedExtras(t *testing.T) {
	out := pinIncludedExtras([]string{"wifi"})
	assert.Contains(t, out, "meet-greet", "included extras cannot be deselected")
	assert.Contains(t, out, "wifi")

	out = pinIncludedExtras(nil)
	assert.Contains(t, out, "meet-greet")

	out = pinIncludedExtras([]string{"meet-greet", "meet-greet"})
	count := 0
	for _, id := range out {
		if id == "meet-greet" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTotalCents(t *testing.T) {
	assert.Equal(t, int64(6250), totalCents(62.5))
	assert.Equal(t, int64(13300), totalCents(133.0))
	assert.Equal(t, int64(1), totalCents(0.005))
}

func newSubmitServer(t *testing.T, gateway clients.PaymentGateway) (*gin.Engine, *BookingController, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	bc := NewBookingController(nil, rdb, gateway, nil, nil)
	r := gin.New()
	r.POST("/wizard/:wizard_id/submit", bc.Submit)
	return r, bc, mr
}

func stubPersistedBookings(t *testing.T, failWith error) *[]*booking_models.TransferBooking {
	t.Helper()
	var persisted []*booking_models.TransferBooking
	orig := persistBooking
	persistBooking = func(ctx context.Context, db *pgxpool.Pool, b *booking_models.TransferBooking) (*booking_models.TransferBooking, error) {
		if failWith != nil {
			return nil, failWith
		}
		persisted = append(persisted, b)
		return b, nil
	}
	t.Cleanup(func() { persistBooking = orig })
	return &persisted
}

func stubPersistedTransactions(t *testing.T) *[]*payment_transaction_models.PaymentTransaction {
	t.Helper()
	var recorded []*payment_transaction_models.PaymentTransaction
	orig := persistTransaction
	persistTransaction = func(ctx context.Context, db *pgxpool.Pool, tx *payment_transaction_models.PaymentTransaction) (*payment_transaction_models.PaymentTransaction, error) {
		recorded = append(recorded, tx)
		return tx, nil
	}
	t.Cleanup(func() { persistTransaction = orig })
	return &recorded
}

func postSubmit(r *gin.Engine, id uuid.UUID) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wizard/"+id.String()+"/submit", nil)
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSubmit(t *testing.T) {
	t.Run("CardHappyPath", func(t *testing.T) {
		gateway := &recordingGateway{auth: &clients.PaymentAuth{OrderID: "order_77"}}
		r, bc, mr := newSubmitServer(t, gateway)
		persisted := stubPersistedBookings(t, nil)
		recorded := stubPersistedTransactions(t)

		w := submittableWizard(t, "card")
		require.NoError(t, wizard_models.SaveSession(context.Background(), bc.Redis, w))

		rec := postSubmit(r, w.ID)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["reference"])

		assert.Equal(t, 1, gateway.calls)
		require.Len(t, *persisted, 1)
		b := (*persisted)[0]
		assert.Equal(t, booking_models.StatusConfirmed, b.Status)
		assert.Equal(t, booking_models.PaymentPaid, b.PaymentStatus)
		assert.Equal(t, "order_77", b.PaymentRef)

		require.Len(t, *recorded, 1)
		tx := (*recorded)[0]
		assert.Equal(t, payment_transaction_models.StatusPaid, tx.Status)
		assert.NotNil(t, tx.CapturedAt)
		assert.Equal(t, int64(8000), tx.Amount, "120km sedan one-way")

		reloaded, err := wizard_models.LoadSession(context.Background(), bc.Redis, w.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.CurrentStep, "session is reset after submission")
		assert.Empty(t, reloaded.Fields.Email)

		for _, key := range mr.Keys() {
			assert.False(t, strings.HasSuffix(key, ":submit"), "submit lock must be released")
		}
	})

	t.Run("ConcurrentSubmitRejected", func(t *testing.T) {
		gateway := &recordingGateway{auth: &clients.PaymentAuth{OrderID: "order_1"}}
		r, bc, _ := newSubmitServer(t, gateway)
		persisted := stubPersistedBookings(t, nil)
		stubPersistedTransactions(t)

		w := submittableWizard(t, "card")
		require.NoError(t, wizard_models.SaveSession(context.Background(), bc.Redis, w))

		locked, err := wizard_models.AcquireSubmitLock(context.Background(), bc.Redis, w.ID)
		require.NoError(t, err)
		require.True(t, locked)

		rec := postSubmit(r, w.ID)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "SUBMIT_IN_PROGRESS", decodeBody(t, rec)["code"])
		assert.Equal(t, 0, gateway.calls, "no double charge while a submission is pending")
		assert.Empty(t, *persisted)
	})

	t.Run("ValidationFailureReleasesLock", func(t *testing.T) {
		gateway := &recordingGateway{}
		r, bc, _ := newSubmitServer(t, gateway)
		stubPersistedBookings(t, nil)
		stubPersistedTransactions(t)

		w, err := wizard_models.New(wizard_models.TypeAirportTransfer)
		require.NoError(t, err)
		require.NoError(t, wizard_models.SaveSession(context.Background(), bc.Redis, w))

		rec := postSubmit(r, w.ID)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", body["code"])
		assert.NotEmpty(t, body["field_errors"])

		rec = postSubmit(r, w.ID)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "lock is freed after a failed attempt")
	})

	t.Run("UnknownExtraBlocksSubmission", func(t *testing.T) {
		gateway := &recordingGateway{}
		r, bc, _ := newSubmitServer(t, gateway)
		stubPersistedBookings(t, nil)
		stubPersistedTransactions(t)

		w := submittableWizard(t, "card")
		w.Fields.Extras = append(w.Fields.Extras, "jetpack")
		require.NoError(t, wizard_models.SaveSession(context.Background(), bc.Redis, w))

		rec := postSubmit(r, w.ID)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", decodeBody(t, rec)["code"])
		assert.Equal(t, 0, gateway.calls)
	})
}

func TestSubmitPersistFailure(t *testing.T) {
	t.Run("CapturedPaymentFlaggedForReconciliation", func(t *testing.T) {
		gateway := &recordingGateway{auth: &clients.PaymentAuth{OrderID: "order_42"}}
		r, bc, _ := newSubmitServer(t, gateway)
		stubPersistedBookings(t, errors.New("insert failed"))
		recorded := stubPersistedTransactions(t)

		w := submittableWizard(t, "card")
		require.NoError(t, wizard_models.SaveSession(context.Background(), bc.Redis, w))

		rec := postSubmit(r, w.ID)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "NEEDS_RECONCILIATION", body["code"])
		assert.NotEmpty(t, body["reference"], "the customer keeps a reference to quote")

		require.Len(t, *recorded, 1)
		tx := (*recorded)[0]
		assert.Equal(t, payment_transaction_models.StatusReconcile, tx.Status)
		assert.Equal(t, "order_42", tx.GatewayOrderID)
		assert.Equal(t, "card", tx.Method)
		assert.Equal(t, int64(8000), tx.Amount)
		require.NotNil(t, tx.ErrorDescription)
		assert.Contains(t, *tx.ErrorDescription, "insert failed")
	})

	t.Run("UncapturedFailureStaysPlain", func(t *testing.T) {
		gateway := &recordingGateway{}
		r, bc, _ := newSubmitServer(t, gateway)
		stubPersistedBookings(t, errors.New("insert failed"))
		recorded := stubPersistedTransactions(t)

		w := submittableWizard(t, "cash")
		require.NoError(t, wizard_models.SaveSession(context.Background(), bc.Redis, w))

		rec := postSubmit(r, w.ID)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Nil(t, body["code"], "no reconciliation queue entry without captured money")
		assert.Empty(t, *recorded)
	})
}
