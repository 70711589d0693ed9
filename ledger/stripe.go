// api/ledger/stripe.go
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/charge"

	"cartpulse/api/models"
)

// stripePageSize is the list page size requested from the charge iterator.
const stripePageSize = 100

// CardLedger lists card charges from Stripe. Fetch failures propagate and
// abort the request (strict policy).
type CardLedger struct {
	apiKey string
}

// NewCardLedger configures the Stripe SDK with the given API key.
func NewCardLedger(apiKey string) *CardLedger {
	stripe.Key = apiKey
	return &CardLedger{apiKey: apiKey}
}

func (l *CardLedger) Name() string           { return "card" }
func (l *CardLedger) DegradeOnFailure() bool { return false }

// ListCharges returns succeeded charges created within the inclusive Unix-time
// window, mapped to the normalized ledger shape.
func (l *CardLedger) ListCharges(ctx context.Context, start, end time.Time) ([]models.LedgerCharge, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("%w: STRIPE_API_KEY is not set", ErrMissingCredential)
	}

	params := &stripe.ChargeListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: start.Unix(),
			LesserThanOrEqual:  end.Unix(),
		},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(stripePageSize)

	var charges []models.LedgerCharge
	it := charge.List(params)
	for it.Next() {
		ch := it.Charge()
		if ch.Status != stripe.ChargeStatusSucceeded {
			continue
		}
		charges = append(charges, ChargeFromStripe(ch))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("failed to list card charges: %w", err)
	}
	if charges == nil {
		charges = []models.LedgerCharge{}
	}
	return charges, nil
}

// ChargeFromStripe maps one Stripe charge onto the normalized ledger shape.
// Card brand/funding/last4 travel in metadata so the rollup engine can surface
// a leading-brand insight without a provider-specific field.
func ChargeFromStripe(ch *stripe.Charge) models.LedgerCharge {
	out := models.LedgerCharge{
		ID:          ch.ID,
		AmountMinor: ch.Amount,
		Currency:    string(ch.Currency),
		Status:      string(ch.Status),
		Refunded:    ch.Refunded,
		CreatedAt:   time.Unix(ch.Created, 0).UTC(),
		Metadata:    map[string]string{},
	}
	for k, v := range ch.Metadata {
		out.Metadata[k] = v
	}
	if ch.Customer != nil {
		out.CustomerID = ch.Customer.ID
	}
	out.CustomerEmail = ch.ReceiptEmail
	if out.CustomerEmail == "" && ch.BillingDetails != nil {
		out.CustomerEmail = ch.BillingDetails.Email
	}
	if pmd := ch.PaymentMethodDetails; pmd != nil && pmd.Card != nil {
		if pmd.Card.Brand != "" {
			out.Metadata["card_brand"] = string(pmd.Card.Brand)
		}
		if pmd.Card.Funding != "" {
			out.Metadata["card_funding"] = string(pmd.Card.Funding)
		}
		if pmd.Card.Last4 != "" {
			out.Metadata["card_last4"] = pmd.Card.Last4
		}
	}
	return out
}
