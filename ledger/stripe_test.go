package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v81"

	"cartpulse/api/models"
)

func TestCardLedger_MissingCredential(t *testing.T) {
	l := &CardLedger{}
	if _, err := l.ListCharges(context.Background(), time.Now(), time.Now()); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestChargeFromStripe(t *testing.T) {
	ch := &stripe.Charge{
		ID:           "ch_123",
		Amount:       2599,
		Currency:     stripe.CurrencyUSD,
		Status:       stripe.ChargeStatusSucceeded,
		Refunded:     true,
		Created:      1717236000, // 2024-06-01T10:00:00Z
		ReceiptEmail: "buyer@shop.test",
		Customer:     &stripe.Customer{ID: "cus_9"},
		Metadata:     map[string]string{"product": "pro-plan"},
		PaymentMethodDetails: &stripe.ChargePaymentMethodDetails{
			Card: &stripe.ChargePaymentMethodDetailsCard{
				Brand:   "visa",
				Funding: "credit",
				Last4:   "4242",
			},
		},
	}

	got := ChargeFromStripe(ch)
	if got.ID != "ch_123" || got.AmountMinor != 2599 || got.Currency != "usd" {
		t.Errorf("got %s %d %s", got.ID, got.AmountMinor, got.Currency)
	}
	if got.Status != "succeeded" || !got.Refunded {
		t.Errorf("got status %s refunded=%v", got.Status, got.Refunded)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("got createdAt %v", got.CreatedAt)
	}
	if got.CustomerID != "cus_9" || got.CustomerEmail != "buyer@shop.test" {
		t.Errorf("got customer %s / %s", got.CustomerID, got.CustomerEmail)
	}
	if got.Metadata["product"] != "pro-plan" {
		t.Errorf("provider metadata must be carried over, got %v", got.Metadata)
	}
	if got.Metadata["card_brand"] != "visa" || got.Metadata["card_funding"] != "credit" || got.Metadata["card_last4"] != "4242" {
		t.Errorf("card details must land in metadata, got %v", got.Metadata)
	}
}

func TestChargeFromStripe_EmailFallback(t *testing.T) {
	ch := &stripe.Charge{
		ID:             "ch_456",
		Amount:         100,
		Currency:       stripe.CurrencyEUR,
		Status:         stripe.ChargeStatusSucceeded,
		BillingDetails: &stripe.ChargeBillingDetails{Email: "billing@shop.test"},
	}

	got := ChargeFromStripe(ch)
	if got.CustomerEmail != "billing@shop.test" {
		t.Errorf("expected billing-details email fallback, got %q", got.CustomerEmail)
	}
	if got.CustomerID != "" {
		t.Errorf("nil customer must map to empty id, got %q", got.CustomerID)
	}
	if got.Metadata == nil {
		t.Errorf("metadata map must be non-nil")
	}
}

type strictSource struct{ err error }

func (s strictSource) Name() string           { return "card" }
func (s strictSource) DegradeOnFailure() bool { return false }
func (s strictSource) ListCharges(context.Context, time.Time, time.Time) ([]models.LedgerCharge, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func TestCollect_StrictSourcePropagates(t *testing.T) {
	boom := errors.New("provider down")
	if _, err := Collect(context.Background(), strictSource{err: boom}, time.Now(), time.Now()); !errors.Is(err, boom) {
		t.Fatalf("strict source errors must propagate, got %v", err)
	}

	charges, err := Collect(context.Background(), strictSource{}, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charges == nil {
		t.Errorf("nil result must normalize to empty non-nil set")
	}
}
