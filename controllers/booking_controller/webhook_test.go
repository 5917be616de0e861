package booking_controller

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookRouter(gateway *recordingGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	bc := &BookingController{Gateway: gateway}
	r := gin.New()
	r.POST("/payments/webhook", bc.HandlePaymentWebhook)
	return r
}

func TestHandlePaymentWebhookRejectsBadSignature(t *testing.T) {
	r := webhookRouter(&recordingGateway{signatures: false})

	body := []byte(`{"event":"order.paid"}`)
	req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", "forged")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlePaymentWebhookRejectsMissingSignature(t *testing.T) {
	r := webhookRouter(&recordingGateway{signatures: true})

	req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlePaymentWebhookIgnoresOtherEvents(t *testing.T) {
	r := webhookRouter(&recordingGateway{signatures: true})

	body := []byte(`{"event":"order.created"}`)
	req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", "valid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}

func TestWalletReceipt(t *testing.T) {
	userID := uuid.New()

	got, ok := walletReceipt("wallet-" + userID.String())
	require.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = walletReceipt("AT123XYZ")
	assert.False(t, ok)

	_, ok = walletReceipt("wallet-not-a-uuid")
	assert.False(t, ok)
}
