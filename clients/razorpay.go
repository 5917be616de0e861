package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/razorpay/razorpay-go"
	razorpayutils "github.com/razorpay/razorpay-go/utils"

	"github.com/rechargetravels/booking/utils"
)

// PaymentAuth is the result of a successful gateway authorization. RedirectURL
// is set for redirect-based methods so the caller can send the user there.
type PaymentAuth struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// PaymentGateway abstracts the payment provider so submission logic and tests
// do not depend on the Razorpay SDK directly.
type PaymentGateway interface {
	// Authorize creates a gateway order for amountCents. It returns a
	// *utils.PaymentError distinguishing declined from unreachable.
	Authorize(ctx context.Context, amountCents int64, currency, method, receipt string) (*PaymentAuth, error)
	VerifyWebhookSignature(body, signature, secret string) bool
}

// RazorpayGateway implements PaymentGateway using the Razorpay SDK.
type RazorpayGateway struct {
	Client *razorpay.Client
}

// NewRazorpayGateway initializes the underlying SDK client with the given key
// pair.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		Client: razorpay.NewClient(keyID, keySecret),
	}
}

// Authorize creates a gateway order. Redirect-based methods get a redirect
// URL assembled from PAYMENT_REDIRECT_URL.
func (g *RazorpayGateway) Authorize(ctx context.Context, amountCents int64, currency, method, receipt string) (*PaymentAuth, error) {
	data := map[string]interface{}{
		"amount":   amountCents,
		"currency": currency,
		"receipt":  receipt,
		"notes": map[string]interface{}{
			"method": method,
		},
	}

	order, err := g.Client.Order.Create(data, nil)
	if err != nil {
		if isUnreachable(err) {
			return nil, &utils.PaymentError{Gateway: "razorpay", Err: err}
		}
		return nil, &utils.PaymentError{Declined: true, Gateway: "razorpay", Err: err}
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, &utils.PaymentError{Gateway: "razorpay", Err: fmt.Errorf("order response missing id")}
	}

	auth := &PaymentAuth{OrderID: orderID}
	if method == "paypal" {
		if base := os.Getenv("PAYMENT_REDIRECT_URL"); base != "" {
			auth.RedirectURL = base + "?order_id=" + url.QueryEscape(orderID)
		}
	}
	return auth, nil
}

// VerifyWebhookSignature verifies the authenticity of a gateway webhook.
func (g *RazorpayGateway) VerifyWebhookSignature(body, signature, secret string) bool {
	return razorpayutils.VerifyWebhookSignature(body, signature, secret)
}

func isUnreachable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
