package conversation

import (
	"fmt"
	"strings"
)

// BookingConfirmation is pushed by the backend when an agent confirms a booking.
type BookingConfirmation struct {
	CustomerName string
	BookingID    string
	Destination  string
	TravelDate   string
	Guests       string
	Status       string
}

// Text renders the confirmation.
func (c BookingConfirmation) Text(brand string) string {
	name := fallbackText(c.CustomerName, "there")
	destination := fallbackText(c.Destination, "your selected destination")
	date := fallbackText(c.TravelDate, "your selected date")
	guests := fallbackText(c.Guests, "1")

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Booking Confirmed!\n\nHello %s!\n\n", name)
	fmt.Fprintf(&b, "Your booking for %s on %s for %s guest(s) has been confirmed.\n", destination, date, guests)
	if c.BookingID != "" {
		fmt.Fprintf(&b, "🔖 Booking ID: %s\n", c.BookingID)
	}
	if c.Status != "" && !strings.EqualFold(c.Status, "confirmed") {
		fmt.Fprintf(&b, "📌 Status: %s\n", c.Status)
	}
	fmt.Fprintf(&b, "\nThank you for choosing %s! 🌍✨\n\nPlease contact us if you need any assistance.", brand)
	return b.String()
}

// CustomerUpdate is a backend profile, payment or booking event.
type CustomerUpdate struct {
	CustomerName string
	UpdateType   string
	Details      string
	Message      string
}

// Text renders the update according to its type.
func (u CustomerUpdate) Text() string {
	name := fallbackText(u.CustomerName, "there")
	switch u.UpdateType {
	case "profile_updated":
		return fmt.Sprintf("Hello %s! Your profile has been updated successfully. 🌟", name)
	case "booking_confirmed":
		return fmt.Sprintf("Hello %s! Your booking has been confirmed! 🎉\n\n%s", name, fallbackText(u.Details, "Please check your booking details."))
	case "payment_received":
		return fmt.Sprintf("Hello %s! Payment received successfully. 💳\n\n%s", name, fallbackText(u.Details, "Thank you for your payment!"))
	case "inquiry_response":
		return fmt.Sprintf("Hello %s! You have a new response to your inquiry. 📧\n\n%s", name, fallbackText(u.Message, "Please check your inquiry details."))
	default:
		if u.Message != "" {
			return fmt.Sprintf("Hello %s! %s", name, u.Message)
		}
		return fmt.Sprintf("Hello %s! Your account has been updated. 📋", name)
	}
}

// InquiryResponse relays a vendor's answer to an earlier price inquiry.
type InquiryResponse struct {
	CustomerName string
	VendorName   string
	InquiryID    string
	Response     string
}

// Text renders the response.
func (r InquiryResponse) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📧 New Inquiry Response\n\nHello %s!\n\n", fallbackText(r.CustomerName, "there"))
	fmt.Fprintf(&b, "%s has responded to your inquiry:\n\n%s\n\n", fallbackText(r.VendorName, "Our team"), r.Response)
	b.WriteString("Please reply to this message or contact us for more details.")
	return b.String()
}

func fallbackText(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
