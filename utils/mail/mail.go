package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/models/transfer_models"
)

// Email template paths inside the embedded FS.
const (
	bookingConfirmationTemplate = "templates/email/booking_confirmation.html"
)

var emailTemplates embed.FS

// InitTemplates hands the embedded template FS to this package. Called once
// from main before any email is sent.
func InitTemplates(fs embed.FS) {
	emailTemplates = fs
}

func sendEmail(toEmail, subject, templatePath string, data interface{}) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)

	t, err := template.ParseFS(emailTemplates, templatePath)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}
	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	dialer := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// bookingEmailData flattens a booking into template fields.
type bookingEmailData struct {
	FirstName     string
	Reference     string
	AirportName   string
	Destination   string
	PickupDate    string
	PickupTime    string
	ReturnDate    string
	ReturnTime    string
	VehicleName   string
	Passengers    int
	Extras        string
	Total         string
	Currency      string
	PaymentMethod string
	PaymentStatus string
}

// SendBookingConfirmation emails the customer their booking summary. Called
// asynchronously after submission; a failure only loses the email.
func SendBookingConfirmation(b *booking_models.TransferBooking) error {
	logger.InfoLogger.Infof("Sending booking confirmation for %s to %s", b.Reference, b.Customer.Email)

	data := bookingEmailData{
		FirstName:     b.Customer.FirstName,
		Reference:     b.Reference,
		AirportName:   b.AirportName,
		Destination:   b.DestinationName,
		PickupDate:    b.PickupDate,
		PickupTime:    b.PickupTime,
		VehicleName:   b.VehicleName,
		Passengers:    b.Adults + b.Children + b.Infants,
		Extras:        extraNames(b.Extras),
		Total:         fmt.Sprintf("%.2f", b.Pricing.Total),
		Currency:      b.Pricing.Currency,
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
	}
	if b.ReturnDate != nil {
		data.ReturnDate = *b.ReturnDate
	}
	if b.ReturnTime != nil {
		data.ReturnTime = *b.ReturnTime
	}

	return sendEmail(b.Customer.Email, "Your transfer booking "+b.Reference, bookingConfirmationTemplate, data)
}

func extraNames(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if e, ok := transfer_models.FindExtra(id); ok {
			names = append(names, e.Name)
		}
	}
	return strings.Join(names, ", ")
}
