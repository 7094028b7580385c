package conversation

import (
	"fmt"
	"strings"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/intent"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

const assistantPersona = `You are a friendly travel booking assistant for %s on WhatsApp.
Help the customer understand travel packages and collect their booking details.
Keep answers concise: at most 25 words when asking a question.
Never invent prices, availability or confirmation numbers.`

type promptContext struct {
	brand   string
	catalog booking.Catalog
	history []transcript.Entry
	message string
	state   booking.State
}

func (p promptContext) header() string {
	var b strings.Builder
	fmt.Fprintf(&b, assistantPersona, p.brand)
	b.WriteString("\n\nAVAILABLE PACKAGES:\n")
	b.WriteString(p.catalog.Describe())
	if len(p.history) > 0 {
		b.WriteString("\n\nCONVERSATION HISTORY:\n")
		b.WriteString(transcript.Render(p.history))
	}
	fmt.Fprintf(&b, "\n\nCUSTOMER MESSAGE: %q\n", p.message)
	return b.String()
}

func bookingStatus(state booking.State) string {
	var b strings.Builder
	for _, f := range []booking.Field{booking.FieldName, booking.FieldPackage, booking.FieldStartDate, booking.FieldEndDate, booking.FieldPartySize, booking.FieldEmail} {
		v := state.Value(f)
		if v == "" {
			v = "(missing)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", fieldLabels[f], v)
	}
	return strings.TrimRight(b.String(), "\n")
}

// collectPrompt asks the provider to phrase the question for one missing field.
func collectPrompt(p promptContext, field booking.Field) string {
	var b strings.Builder
	b.WriteString(p.header())
	b.WriteString("\nCURRENT BOOKING STATUS:\n")
	b.WriteString(bookingStatus(p.state))
	fmt.Fprintf(&b, "\n\nYour job: acknowledge the customer briefly, then ask ONLY for their %s.", fieldLabels[field])
	if cue, ok := fieldCues[field]; ok {
		fmt.Fprintf(&b, " Your question must contain the exact words %q.", cue)
	}
	if field == booking.FieldStartDate {
		b.WriteString(" Ask for the date in DD/MM/YYYY format.")
	}
	b.WriteString(" Do not include example dates or numbers.")
	return b.String()
}

// generalPrompt covers small talk and anything the rules did not classify.
func generalPrompt(p promptContext) string {
	var b strings.Builder
	b.WriteString(p.header())
	b.WriteString("\nCURRENT BOOKING STATUS:\n")
	b.WriteString(bookingStatus(p.state))
	b.WriteString("\n\nYour job:\n")
	b.WriteString("- Answer naturally and conversationally.\n")
	b.WriteString("- If the customer wants to book, tell them to reply \"ready to book\".\n")
	b.WriteString("- If the customer asks for a correction, confirm the corrected detail.")
	return b.String()
}

func packageQuestionPrompt(p promptContext, pkg booking.Package, topic intent.Topic) string {
	var b strings.Builder
	b.WriteString(p.header())
	fmt.Fprintf(&b, "\nSELECTED PACKAGE: %s (%s, %s)\n", pkg.Label(), pkg.Destination, pkg.Duration)
	if pkg.Accommodation != "" {
		fmt.Fprintf(&b, "Accommodation: %s\n", pkg.Accommodation)
	}
	if pkg.Meals != "" {
		fmt.Fprintf(&b, "Meals: %s\n", pkg.Meals)
	}
	if len(pkg.Attractions) > 0 {
		fmt.Fprintf(&b, "Attractions: %s\n", strings.Join(pkg.Attractions, ", "))
	}
	fmt.Fprintf(&b, "\nYour job: answer the customer's question about %s using only the package details above.", topic)
	return b.String()
}

func travelDocumentPrompt(p promptContext) string {
	var b strings.Builder
	b.WriteString(p.header())
	if p.state.Destination != "" {
		fmt.Fprintf(&b, "\nTRIP DESTINATION: %s\n", p.state.Destination)
	}
	b.WriteString("\nYour job: answer the customer's question about passports, visas or travel documents in general terms. ")
	b.WriteString("Recommend confirming the exact requirements with our team before travel.")
	return b.String()
}
