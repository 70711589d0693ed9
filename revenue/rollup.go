// api/revenue/rollup.go
package revenue

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cartpulse/api/models"
)

// zeroDecimalCurrencies have no fractional subdivision: minor units equal
// major units.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// refundStatuses is the refund/reversal/cancellation vocabulary matched (case
// insensitively) against charge statuses when counting refunds.
var refundStatuses = map[string]struct{}{
	"refunded": {}, "refund": {}, "reversed": {}, "reversal": {},
	"canceled": {}, "cancelled": {}, "chargeback": {}, "charged_back": {},
}

// Top-customer bounds for the customer rollup.
const (
	DefaultTopCustomers = 10
	MaxTopCustomers     = 50
)

// MajorUnits converts an integer minor-unit amount into its human-readable
// major-unit value: divided by 100, or by 1 for zero-decimal currencies.
func MajorUnits(minor int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(minor)
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(currency)]; ok {
		return d
	}
	return d.Shift(-2)
}

// IsRefundLike reports whether a charge counts toward the refunded tally,
// either via its refunded flag or a status in the refund vocabulary.
func IsRefundLike(c models.LedgerCharge) bool {
	if c.Refunded {
		return true
	}
	_, ok := refundStatuses[strings.ToLower(c.Status)]
	return ok
}

// RollupByCurrency groups charges by upper-cased currency code and computes
// count, refunded count, gross minor/major, and average ticket (nil when the
// group is empty, which cannot happen here but keeps the field optional in the
// output schema). Sorted descending by gross major, ties broken by currency
// code for a deterministic order.
func RollupByCurrency(charges []models.LedgerCharge) []models.CurrencyBreakdown {
	byCurrency := make(map[string]*models.CurrencyBreakdown)
	var order []string
	for _, c := range charges {
		code := strings.ToUpper(c.Currency)
		b, ok := byCurrency[code]
		if !ok {
			b = &models.CurrencyBreakdown{Currency: code}
			byCurrency[code] = b
			order = append(order, code)
		}
		b.Count++
		if IsRefundLike(c) {
			b.RefundedCount++
		}
		b.GrossMinor += c.AmountMinor
	}

	out := make([]models.CurrencyBreakdown, 0, len(order))
	for _, code := range order {
		b := byCurrency[code]
		b.GrossMajor = MajorUnits(b.GrossMinor, code)
		if b.Count > 0 {
			avg := b.GrossMajor.Div(decimal.NewFromInt(int64(b.Count))).Round(2)
			b.AvgTicketMajor = &avg
		}
		out = append(out, *b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].GrossMajor.Equal(out[j].GrossMajor) {
			return out[i].GrossMajor.GreaterThan(out[j].GrossMajor)
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

// CustomerKey derives the rollup grouping key for a charge: the customer
// identifier when present, the contact email otherwise, else "unknown".
func CustomerKey(c models.LedgerCharge) string {
	if c.CustomerID != "" {
		return c.CustomerID
	}
	if c.CustomerEmail != "" {
		return c.CustomerEmail
	}
	return "unknown"
}

// RollupByCustomer groups charges by derived customer key, tracks the most
// recent charge per customer, nests a per-customer currency rollup, sorts
// descending by gross major, and truncates to topN (clamped to [1, 50]).
// The second return value is the total number of distinct customers before
// truncation.
func RollupByCustomer(charges []models.LedgerCharge, topN int) ([]models.CustomerBreakdown, int) {
	if topN <= 0 {
		topN = DefaultTopCustomers
	}
	if topN > MaxTopCustomers {
		topN = MaxTopCustomers
	}

	type acc struct {
		breakdown models.CustomerBreakdown
		charges   []models.LedgerCharge
	}
	byKey := make(map[string]*acc)
	var order []string
	for _, c := range charges {
		key := CustomerKey(c)
		a, ok := byKey[key]
		if !ok {
			a = &acc{breakdown: models.CustomerBreakdown{CustomerKey: key}}
			byKey[key] = a
			order = append(order, key)
		}
		a.breakdown.Count++
		a.breakdown.GrossMinor += c.AmountMinor
		a.charges = append(a.charges, c)
		if a.breakdown.LastChargeID == "" || c.CreatedAt.After(a.breakdown.LastChargeAt) {
			a.breakdown.LastChargeID = c.ID
			a.breakdown.LastChargeAt = c.CreatedAt
		}
	}

	out := make([]models.CustomerBreakdown, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		a.breakdown.CurrencyBreakdown = RollupByCurrency(a.charges)
		a.breakdown.GrossMajor = grossMajorAcross(a.breakdown.CurrencyBreakdown)
		out = append(out, a.breakdown)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].GrossMajor.Equal(out[j].GrossMajor) {
			return out[i].GrossMajor.GreaterThan(out[j].GrossMajor)
		}
		return out[i].CustomerKey < out[j].CustomerKey
	})

	total := len(out)
	if len(out) > topN {
		out = out[:topN]
	}
	return out, total
}

// grossMajorAcross sums major-unit gross over a currency breakdown. Mixing
// currencies without conversion is a display approximation carried over from
// the upstream reports; FX-converted views go through Converter instead.
func grossMajorAcross(breakdown []models.CurrencyBreakdown) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range breakdown {
		sum = sum.Add(b.GrossMajor)
	}
	return sum
}

// BuildReport assembles the full rollup for one provider over a resolved
// window. Collections are always non-nil; a zero-charge window yields the
// single sentinel insight.
func BuildReport(provider string, startDate, endDate string, charges []models.LedgerCharge, topN int, now time.Time) models.RevenueReport {
	currencies := RollupByCurrency(charges)
	topCustomers, totalCustomers := RollupByCustomer(charges, topN)

	report := models.RevenueReport{
		Provider:       provider,
		StartDate:      startDate,
		EndDate:        endDate,
		TotalCharges:   len(charges),
		Currencies:     currencies,
		TotalCustomers: totalCustomers,
		TopCustomers:   topCustomers,
		GeneratedAt:    now.UTC(),
	}
	report.Insights = BuildInsights(report, charges)
	return report
}
