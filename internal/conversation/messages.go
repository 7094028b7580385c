package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/intent"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

// Fixed customer-facing texts. None of these are ever produced by a provider.
const (
	MsgApology            = "I'm sorry, I'm having trouble processing your request right now. Please try again later."
	MsgNameRequest        = "👋 Hello! Can I have your full name for the booking?"
	MsgPartySizeRequest   = "Great! How many people will be traveling?"
	MsgPriceInquiryAck    = "Thank you for your inquiry! Our team will get back to you with pricing details soon."
	MsgPriceInquiryFailed = "Sorry, we couldn't process your inquiry right now. Please try again later."
	MsgBookingUnavailable = "Sorry, our booking system is temporarily unavailable. Please try again later."
	MsgHandoffFailed      = "Sorry, there was an error processing your booking request. Please try again or contact our support team."

	MsgFinalizeFailed = "❌ **BOOKING ERROR**\n\n" +
		"Sorry, there was an issue processing your booking request.\n" +
		"Please try again in a few minutes or contact our support team."

	MsgQuotesMissing = "❌ **QUOTES NOT RECEIVED**\n\n" +
		"You can only use 'book my trip now' after receiving travel quotes.\n" +
		"Please wait for our team to send you pricing options, then reply with this command.\n\n" +
		"Thank you for your patience! 🌟"

	MsgTravelDocumentFallback = "For international trips please carry a passport valid for at least six months " +
		"from your travel date. Visa rules depend on your nationality, so our team will share the exact " +
		"document checklist once your booking is confirmed."
)

var fieldLabels = map[booking.Field]string{
	booking.FieldName:      "full name",
	booking.FieldPackage:   "package",
	booking.FieldStartDate: "trip start date",
	booking.FieldEndDate:   "trip end date",
	booking.FieldPartySize: "number of travelers",
	booking.FieldEmail:     "email address",
}

// fieldCues must appear in any phrasing that asks for the field, so the next
// turn's extractors recognise the reply.
var fieldCues = map[booking.Field]string{
	booking.FieldName:      "full name",
	booking.FieldStartDate: "start",
	booking.FieldPartySize: "how many people",
}

// FieldPrompt is the deterministic question for a missing field.
func FieldPrompt(field booking.Field, state booking.State) string {
	switch field {
	case booking.FieldName:
		return MsgNameRequest
	case booking.FieldStartDate:
		return fmt.Sprintf("Hi %s! When would you like your trip to start? (Please provide the date in DD/MM/YYYY format)", state.CustomerName)
	case booking.FieldPartySize:
		return MsgPartySizeRequest
	default:
		return fmt.Sprintf("Could you share your %s?", fieldLabels[field])
	}
}

func hasFieldCue(text string, field booking.Field) bool {
	cue, ok := fieldCues[field]
	if !ok {
		return true
	}
	return strings.Contains(strings.ToLower(text), cue)
}

// FormatBookingSummary lists the collected fields and asks for "finalize".
func FormatBookingSummary(state booking.State) string {
	end := state.EndDate
	if end == "" {
		end = booking.DeriveEndDate(state.StartDate)
	}
	var b strings.Builder
	b.WriteString("📋 **BOOKING SUMMARY**\n\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", state.CustomerName)
	if state.Package != "" {
		fmt.Fprintf(&b, "📦 Package: %s\n", state.Package)
	}
	fmt.Fprintf(&b, "📅 Start Date: %s\n", state.StartDate)
	fmt.Fprintf(&b, "📅 End Date: %s\n", end)
	fmt.Fprintf(&b, "👥 Travelers: %s\n\n", state.NumberOfPeople)
	b.WriteString("✅ All details collected!\n\n")
	b.WriteString(`Please send **"finalize"** to get quotes from our vendors.`)
	return b.String()
}

// FinalizeRejected names the fields still needed before "finalize" is accepted.
func FinalizeRejected(missing []booking.Field) string {
	labels := make([]string, 0, len(missing))
	for _, f := range missing {
		labels = append(labels, fieldLabels[f])
	}
	return "❌ **BOOKING INCOMPLETE**\n\n" +
		fmt.Sprintf("I still need your %s before I can finalize your booking.\n", strings.Join(labels, ", ")) +
		"Please share the missing details and send \"finalize\" again."
}

// FinalizeConfirmed promises the 24-hour turnaround.
func FinalizeConfirmed(brand string) string {
	return "🎉 **BOOKING FINALIZED!**\n\n" +
		"✅ Your booking request has been successfully submitted!\n" +
		"📧 Our team will review your details and send you the final pricing within 24 hours.\n" +
		"📞 We will contact you soon to confirm availability.\n\n" +
		fmt.Sprintf("Thank you for choosing **%s**! 🌍✨\n\n", brand) +
		"*Please keep this chat open for updates.*"
}

// HandoffConfirmed acknowledges "book my trip".
func HandoffConfirmed(brand string) string {
	return "✅ Great! Your booking request has been forwarded to our executive team. " +
		"They will contact you shortly to finalize your trip details and payment. " +
		fmt.Sprintf("Thank you for choosing %s!", brand)
}

// HandoffWithQuotesConfirmed acknowledges "book my trip now".
func HandoffWithQuotesConfirmed(brand string) string {
	return "✅ **BOOKING REQUEST SENT!**\n\n" +
		"Your booking request with the received quotes has been forwarded to our executive team.\n" +
		"They will contact you shortly to finalize your trip details and process payment.\n\n" +
		fmt.Sprintf("Thank you for choosing %s! 🌍✨", brand)
}

// Greeting personalises the configured greeting for known customers.
func Greeting(greeting, brand, customerName string) string {
	if strings.TrimSpace(customerName) == "" {
		return greeting
	}
	return fmt.Sprintf("Hello %s! Welcome back to %s 🌍✨\n\n%s", customerName, brand, greeting)
}

// FormatQuoteMessage renders vendor quotes for the customer.
func FormatQuoteMessage(record transcript.QuoteRecord, brand string) string {
	var b strings.Builder
	b.WriteString("💰 **TRAVEL QUOTES RECEIVED!**\n\n")
	if record.Destination != "" {
		fmt.Fprintf(&b, "📍 **Destination:** %s\n", record.Destination)
	}
	if record.ServiceType != "" {
		fmt.Fprintf(&b, "🏷️ **Service:** %s\n", record.ServiceType)
	}
	b.WriteString("\n")
	for i, q := range record.Quotes {
		if q.VendorName != "" {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.VendorName)
		} else {
			fmt.Fprintf(&b, "%d.\n", i+1)
		}
		fmt.Fprintf(&b, "   💵 **Price:** $%s\n", q.FinalPrice)
		if q.Details != "" {
			fmt.Fprintf(&b, "   📝 **Details:** %s\n", q.Details)
		}
		if q.ValidUntil != "" {
			fmt.Fprintf(&b, "   📅 **Valid until:** %s\n", q.ValidUntil)
		}
		b.WriteString("\n")
	}
	b.WriteString("✅ **Next Steps:**\n\n")
	b.WriteString("• send **\"book my trip now\"** to proceed with booking\n")
	b.WriteString("• Our executive will contact you to complete the booking process\n\n")
	fmt.Fprintf(&b, "🌟 Thank you for choosing **%s**!", brand)
	return b.String()
}

// ExecutiveSummary is everything the executive needs to call the customer back.
type ExecutiveSummary struct {
	Phone        string
	Name         string
	Email        string
	Package      string
	Destination  string
	Travelers    string
	StartDate    string
	EndDate      string
	Budget       string
	Quotes       []transcript.Quote
	Conversation string
	At           time.Time
}

const executiveConversationLimit = 500

// FormatExecutiveSummary renders s for the executive's WhatsApp.
func FormatExecutiveSummary(s ExecutiveSummary) string {
	var b strings.Builder
	b.WriteString("🚨 NEW BOOKING REQUEST\n")
	fmt.Fprintf(&b, "⏰ Time: %s\n\n", s.At.Format("02 Jan 2006 15:04 MST"))
	b.WriteString("👤 CUSTOMER DETAILS:\n")
	fmt.Fprintf(&b, "📱 Phone: %s\n", s.Phone)
	if s.Name != "" {
		fmt.Fprintf(&b, "👤 Name: %s\n", s.Name)
	}
	b.WriteString("\n🎯 TRIP DETAILS:\n")
	if s.Package != "" {
		fmt.Fprintf(&b, "📦 Package: %s\n", s.Package)
	}
	if s.Destination != "" {
		fmt.Fprintf(&b, "📍 Destination: %s\n", s.Destination)
	}
	if s.Travelers != "" {
		fmt.Fprintf(&b, "👥 Travelers: %s person(s)\n", s.Travelers)
	}
	if s.StartDate != "" {
		if s.EndDate != "" {
			fmt.Fprintf(&b, "📅 Dates: %s to %s\n", s.StartDate, s.EndDate)
		} else {
			fmt.Fprintf(&b, "📅 Dates: %s\n", s.StartDate)
		}
	}
	if s.Budget != "" {
		fmt.Fprintf(&b, "💰 Budget: %s\n", s.Budget)
	}
	if len(s.Quotes) > 0 {
		b.WriteString("\n💵 VENDOR QUOTES:\n")
		for i, q := range s.Quotes {
			fmt.Fprintf(&b, "%d. %s: $%s", i+1, orDash(q.VendorName), q.FinalPrice)
			if q.ValidUntil != "" {
				fmt.Fprintf(&b, " (valid until %s)", q.ValidUntil)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n💬 CONVERSATION SUMMARY:\n")
	b.WriteString(truncateRunes(s.Conversation, executiveConversationLimit))
	b.WriteString("\n\n⚡ ACTION REQUIRED: Please contact this customer to finalize booking details and payment.")
	return b.String()
}

// PackageTopicReply answers a package question from catalog data alone.
func PackageTopicReply(pkg booking.Package, topic intent.Topic) string {
	switch topic {
	case intent.TopicAccommodation:
		if pkg.Accommodation != "" {
			return fmt.Sprintf("🏨 On the %s package you stay in %s. Reply \"ready to book\" whenever you'd like to reserve.", pkg.Name, pkg.Accommodation)
		}
	case intent.TopicFood:
		if pkg.Meals != "" {
			return fmt.Sprintf("🍽️ Meals on the %s package: %s. Let us know about any dietary needs.", pkg.Name, pkg.Meals)
		}
	case intent.TopicAttractions:
		if len(pkg.Attractions) > 0 {
			return fmt.Sprintf("📍 Places you'll visit on the %s package include %s.", pkg.Name, strings.Join(pkg.Attractions, ", "))
		}
	}
	reply := fmt.Sprintf("✨ %s covers %s over %s.", pkg.Name, pkg.Destination, pkg.Duration)
	if len(pkg.Highlights) > 0 {
		reply += " Highlights: " + strings.Join(pkg.Highlights, ", ") + "."
	}
	return reply + " Reply \"ready to book\" to start your booking."
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
