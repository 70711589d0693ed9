// api/models/ledger.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerCharge is the provider-agnostic shape both payment ledgers are mapped
// into before rollup. Amounts are integer minor units (cents, or whole units
// for zero-decimal currencies).
type LedgerCharge struct {
	ID            string            `json:"id"`
	AmountMinor   int64             `json:"amountMinor"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	Refunded      bool              `json:"refunded"`
	CreatedAt     time.Time         `json:"createdAt"`
	CustomerID    string            `json:"customerId,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CurrencyBreakdown aggregates charges for one currency.
type CurrencyBreakdown struct {
	Currency       string           `json:"currency"`
	Count          int              `json:"count"`
	RefundedCount  int              `json:"refundedCount"`
	GrossMinor     int64            `json:"grossMinor"`
	GrossMajor     decimal.Decimal  `json:"grossMajor"`
	AvgTicketMajor *decimal.Decimal `json:"avgTicketMajor,omitempty"`
}

// CustomerBreakdown aggregates charges for one derived customer key.
type CustomerBreakdown struct {
	CustomerKey       string              `json:"customerKey"`
	Count             int                 `json:"count"`
	GrossMinor        int64               `json:"grossMinor"`
	GrossMajor        decimal.Decimal     `json:"grossMajor"`
	LastChargeID      string              `json:"lastChargeId"`
	LastChargeAt      time.Time           `json:"lastChargeAt"`
	CurrencyBreakdown []CurrencyBreakdown `json:"currencyBreakdown"`
}

// ConvertedTotal is an optional FX-normalized view of a report's gross,
// expressed in a single target currency.
type ConvertedTotal struct {
	Currency   string          `json:"currency"`
	GrossMajor decimal.Decimal `json:"grossMajor"`
}

// RevenueReport is the full rollup for one provider over a date range.
// Collections are always non-nil, even when no charges were found.
type RevenueReport struct {
	Provider       string              `json:"provider"`
	StartDate      string              `json:"startDate"`
	EndDate        string              `json:"endDate"`
	TotalCharges   int                 `json:"totalCharges"`
	Currencies     []CurrencyBreakdown `json:"currencies"`
	TotalCustomers int                 `json:"totalCustomers"`
	TopCustomers   []CustomerBreakdown `json:"topCustomers"`
	ConvertedTotal *ConvertedTotal     `json:"convertedTotal,omitempty"`
	Insights       []string            `json:"insights"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}
