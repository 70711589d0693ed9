// api/revenue/insights.go
package revenue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"cartpulse/api/models"
)

// BuildInsights derives deterministic natural-language summary sentences from
// the computed aggregates. Every number traces to a computed field; there is
// no free-form generation. A zero-charge window yields exactly one sentinel
// sentence.
func BuildInsights(report models.RevenueReport, charges []models.LedgerCharge) []string {
	if report.TotalCharges == 0 {
		return []string{fmt.Sprintf(
			"No %s activity between %s and %s.",
			report.Provider, report.StartDate, report.EndDate,
		)}
	}

	insights := make([]string, 0, 5)

	lead := report.Currencies[0]
	insights = append(insights, fmt.Sprintf(
		"Processed %d charges between %s and %s across %d currencies; the leading currency was %s with %s gross (%d charges).",
		report.TotalCharges, report.StartDate, report.EndDate,
		len(report.Currencies), lead.Currency, lead.GrossMajor.StringFixed(2), lead.Count,
	))

	if lead.AvgTicketMajor != nil {
		insights = append(insights, fmt.Sprintf(
			"Average ticket in %s was %s.",
			lead.Currency, lead.AvgTicketMajor.StringFixed(2),
		))
	}

	refunded := 0
	for _, b := range report.Currencies {
		refunded += b.RefundedCount
	}
	rate := decimal.NewFromInt(int64(refunded)).
		Div(decimal.NewFromInt(int64(report.TotalCharges))).
		Mul(decimal.NewFromInt(100)).Round(1)
	insights = append(insights, fmt.Sprintf(
		"%d of %d charges (%s%%) were refunded or reversed.",
		refunded, report.TotalCharges, rate.String(),
	))

	if brand := leadingMetadata(charges, "card_brand"); brand != "" {
		insights = append(insights, fmt.Sprintf("The most used card brand was %s.", brand))
	}
	if product := leadingMetadata(charges, "product"); product != "" {
		insights = append(insights, fmt.Sprintf("The leading product was %s.", product))
	}

	if len(report.TopCustomers) > 0 {
		top := report.TopCustomers[0]
		insights = append(insights, fmt.Sprintf(
			"Top customer %s accounted for %d charges totalling %s gross, last seen %s.",
			top.CustomerKey, top.Count, top.GrossMajor.StringFixed(2),
			top.LastChargeAt.UTC().Format("2006-01-02"),
		))
	}

	return insights
}

// leadingMetadata returns the most frequent non-empty metadata value for key,
// breaking count ties by lexical order so the sentence is stable across runs.
func leadingMetadata(charges []models.LedgerCharge, key string) string {
	counts := make(map[string]int)
	for _, c := range charges {
		if v := strings.TrimSpace(c.Metadata[key]); v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return ""
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	return values[0]
}
