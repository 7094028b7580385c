package booking

import (
	"reflect"
	"testing"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

func TestAggregateEmptyTranscript(t *testing.T) {
	if got := Aggregate(nil, ""); got != (State{}) {
		t.Fatalf("expected empty state, got %+v", got)
	}
}

func TestAggregateDatesThenPartySize(t *testing.T) {
	entries := []transcript.Entry{user("23/06/2026"), bot("Lovely, noted.")}
	got := Aggregate(entries, "8")
	if got.StartDate != "2026-06-23" || got.EndDate != "2026-06-28" || got.NumberOfPeople != "8" {
		t.Fatalf("unexpected state %+v", got)
	}
	if got.CustomerName != "" || got.Package != "" {
		t.Fatalf("expected no name or package, got %+v", got)
	}
}

func completeTranscript() []transcript.Entry {
	return []transcript.Entry{
		user("ready to book"),
		bot("👋 Hello! Can I have your full name for the booking?"),
		user("Pratham Rathore"),
		bot("Hi Pratham Rathore! When would you like your trip to start?"),
		user("bali explorer on 23/06/2026"),
		bot("Great! How many people will be traveling?"),
		user("8"),
		bot("Please send \"finalize\" to confirm your booking."),
	}
}

func TestAggregateCorrectionOverwritesPartySize(t *testing.T) {
	entries := completeTranscript()
	before := Aggregate(entries, "")
	if !before.Has(coreFields...) {
		t.Fatalf("expected all core fields before correction, got %+v", before)
	}
	if before.NumberOfPeople != "8" {
		t.Fatalf("expected 8 travellers before correction, got %q", before.NumberOfPeople)
	}

	after := Aggregate(entries, "no for 3 people")
	if after.NumberOfPeople != "3" {
		t.Fatalf("expected correction to 3, got %q", after.NumberOfPeople)
	}
	after.NumberOfPeople = before.NumberOfPeople
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected other fields unchanged:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestApplyCorrectionGuards(t *testing.T) {
	full := State{
		CustomerName:   "Pratham Rathore",
		Package:        "Bali Explorer (P001)",
		StartDate:      "2026-06-23",
		EndDate:        "2026-06-28",
		NumberOfPeople: "8",
	}
	if got := applyCorrection(full, "november works, 4 people"); got.NumberOfPeople != "8" {
		t.Fatalf("words starting with no must not trigger a correction, got %q", got.NumberOfPeople)
	}
	partial := full
	partial.CustomerName = ""
	if got := applyCorrection(partial, "no, 4"); got.NumberOfPeople != "8" {
		t.Fatalf("correction requires every core field, got %q", got.NumberOfPeople)
	}
	if got := applyCorrection(full, "No, 4"); got.NumberOfPeople != "4" {
		t.Fatalf("expected bare number correction, got %q", got.NumberOfPeople)
	}
	if got := applyCorrection(full, "no 40 people"); got.NumberOfPeople != "8" {
		t.Fatalf("out of range correction must be ignored, got %q", got.NumberOfPeople)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	entries := completeTranscript()
	first := Aggregate(entries, "no for 3 people")
	for i := 0; i < 5; i++ {
		if got := Aggregate(entries, "no for 3 people"); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestAggregatorMemoizesPerSnapshot(t *testing.T) {
	agg := NewAggregator(time.Minute)
	entries := completeTranscript()

	first := agg.Aggregate("u1", entries, "")
	if agg.memo.ItemCount() != 1 {
		t.Fatalf("expected one memo entry, got %d", agg.memo.ItemCount())
	}
	if again := agg.Aggregate("u1", entries, ""); again != first {
		t.Fatalf("memoized state differs")
	}
	if agg.memo.ItemCount() != 1 {
		t.Fatalf("expected memo hit, got %d entries", agg.memo.ItemCount())
	}

	changed := append(append([]transcript.Entry(nil), entries...), user("make it 2 people"))
	if got := agg.Aggregate("u1", changed, ""); got.NumberOfPeople != "2" {
		t.Fatalf("expected recomputation after transcript change, got %q", got.NumberOfPeople)
	}
	if agg.memo.ItemCount() != 2 {
		t.Fatalf("expected a second memo entry, got %d", agg.memo.ItemCount())
	}

	var nilAgg *Aggregator
	if got := nilAgg.Aggregate("u1", entries, ""); got != first {
		t.Fatalf("nil aggregator should compute directly")
	}
}

func TestStateMissing(t *testing.T) {
	s := State{CustomerName: "Asha Verma", NumberOfPeople: "  "}
	missing := s.Missing(ChatRequired...)
	if !reflect.DeepEqual(missing, []Field{FieldStartDate, FieldPartySize}) {
		t.Fatalf("unexpected missing fields %v", missing)
	}
	if s.Has(FieldName) != true {
		t.Fatalf("expected name present")
	}
}
