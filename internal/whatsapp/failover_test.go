package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
)

type stubMessenger struct {
	calls   int
	err     error
	receipt conversation.Receipt
}

func (s *stubMessenger) SendText(ctx context.Context, to, body string) (conversation.Receipt, error) {
	s.calls++
	if s.err != nil {
		return conversation.Receipt{}, s.err
	}
	return s.receipt, nil
}

func TestFailoverMessengerUsesPrimary(t *testing.T) {
	primary := &stubMessenger{receipt: conversation.Receipt{MessageID: "p"}}
	secondary := &stubMessenger{receipt: conversation.Receipt{MessageID: "s"}}
	f := NewFailoverMessenger(primary, ProviderMeta, secondary, ProviderTwilio, nil)

	receipt, err := f.SendText(context.Background(), "919876543210", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.MessageID != "p" || secondary.calls != 0 {
		t.Fatalf("expected primary only, got %#v secondary=%d", receipt, secondary.calls)
	}
}

func TestFailoverMessengerFallsBack(t *testing.T) {
	primary := &stubMessenger{err: errors.New("meta down")}
	secondary := &stubMessenger{receipt: conversation.Receipt{MessageID: "s"}}
	f := NewFailoverMessenger(primary, ProviderMeta, secondary, ProviderTwilio, nil)

	receipt, err := f.SendText(context.Background(), "919876543210", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.MessageID != "s" {
		t.Fatalf("expected secondary receipt, got %#v", receipt)
	}

	secondary.err = errors.New("twilio down")
	if _, err := f.SendText(context.Background(), "919876543210", "hi"); err == nil || err.Error() != "twilio down" {
		t.Fatalf("expected secondary error, got %v", err)
	}
}

func TestFailoverMessengerWithoutPrimary(t *testing.T) {
	var f *FailoverMessenger
	if _, err := f.SendText(context.Background(), "1", "hi"); err == nil {
		t.Fatalf("expected error for nil messenger")
	}
}

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	status := "queued"
	return &twilioApi.ApiV2010Message{Sid: &sid, Status: &status}, nil
}

func TestTwilioSenderSendText(t *testing.T) {
	creator := &fakeCreator{}
	sender := NewTwilioSenderWithAPI(creator, "14155550100", nil)

	receipt, err := sender.SendText(context.Background(), "9876543210", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.MessageID != "SM123" || receipt.Status != "queued" {
		t.Fatalf("unexpected receipt %#v", receipt)
	}
	if *creator.params.To != "whatsapp:+919876543210" {
		t.Fatalf("unexpected to %q", *creator.params.To)
	}
	if *creator.params.From != "whatsapp:+14155550100" {
		t.Fatalf("unexpected from %q", *creator.params.From)
	}
	if *creator.params.Body != "hello" {
		t.Fatalf("unexpected body %q", *creator.params.Body)
	}
}

func TestTwilioSenderErrors(t *testing.T) {
	creator := &fakeCreator{err: errors.New("boom")}
	sender := NewTwilioSenderWithAPI(creator, "14155550100", nil)
	if _, err := sender.SendText(context.Background(), "9876543210", "hello"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := NewTwilioSenderWithAPI(creator, "", nil).SendText(context.Background(), "9876543210", "hello"); err == nil {
		t.Fatalf("expected from validation error")
	}
}

func TestBuildMessenger(t *testing.T) {
	full := ProviderSelectionConfig{
		Meta:             Config{Token: "t", PhoneNumberID: "1"},
		TwilioAccountSID: "AC123",
		TwilioAuthToken:  "secret",
		TwilioFromNumber: "14155550100",
	}

	m, provider, reason := BuildMessenger(full, nil)
	if m == nil || provider != "meta+twilio" || reason != "" {
		t.Fatalf("expected failover, got %T %q %q", m, provider, reason)
	}
	if _, ok := m.(*FailoverMessenger); !ok {
		t.Fatalf("expected failover messenger, got %T", m)
	}

	full.Preference = ProviderTwilio
	m, provider, _ = BuildMessenger(full, nil)
	if _, ok := m.(*TwilioSender); !ok || provider != ProviderTwilio {
		t.Fatalf("expected twilio sender, got %T %q", m, provider)
	}

	metaOnly := ProviderSelectionConfig{Preference: ProviderTwilio, Meta: Config{Token: "t", PhoneNumberID: "1"}}
	m, _, reason = BuildMessenger(metaOnly, nil)
	if m != nil || !strings.Contains(reason, "TWILIO_ACCOUNT_SID missing") {
		t.Fatalf("expected twilio reason, got %T %q", m, reason)
	}

	m, _, reason = BuildMessenger(ProviderSelectionConfig{}, nil)
	if m != nil || !strings.Contains(reason, "WHATSAPP_TOKEN missing") || !strings.Contains(reason, "twilio:") {
		t.Fatalf("expected combined reason, got %q", reason)
	}
}
