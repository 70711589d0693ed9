package revenue

import (
	"strings"
	"testing"
	"time"

	"cartpulse/api/models"
)

func withMetadata(kv map[string]string) func(*models.LedgerCharge) {
	return func(c *models.LedgerCharge) { c.Metadata = kv }
}

func TestBuildInsights_Sentences(t *testing.T) {
	charges := []models.LedgerCharge{
		charge("ch_1", 5000, "USD", "succeeded",
			withCustomer("cus_a", ""),
			withMetadata(map[string]string{"card_brand": "visa", "product": "pro-plan"})),
		charge("ch_2", 3000, "USD", "refunded",
			withCustomer("cus_b", ""),
			withMetadata(map[string]string{"card_brand": "visa"})),
		charge("ch_3", 2000, "USD", "succeeded",
			withCustomer("cus_a", ""),
			withMetadata(map[string]string{"card_brand": "mastercard", "product": "pro-plan"})),
	}
	report := BuildReport("card", "2024-06-01", "2024-06-07", charges, 10, time.Now())

	if len(report.Insights) != 6 {
		t.Fatalf("expected 6 insights, got %d: %v", len(report.Insights), report.Insights)
	}
	want := "Processed 3 charges between 2024-06-01 and 2024-06-07 across 1 currencies; the leading currency was USD with 100.00 gross (3 charges)."
	if report.Insights[0] != want {
		t.Errorf("headline insight:\n got %q\nwant %q", report.Insights[0], want)
	}
	if report.Insights[1] != "Average ticket in USD was 33.33." {
		t.Errorf("got %q", report.Insights[1])
	}
	if report.Insights[2] != "1 of 3 charges (33.3%) were refunded or reversed." {
		t.Errorf("got %q", report.Insights[2])
	}
	if report.Insights[3] != "The most used card brand was visa." {
		t.Errorf("got %q", report.Insights[3])
	}
	if report.Insights[4] != "The leading product was pro-plan." {
		t.Errorf("got %q", report.Insights[4])
	}
	if !strings.HasPrefix(report.Insights[5], "Top customer cus_a accounted for 2 charges totalling 70.00 gross") {
		t.Errorf("got %q", report.Insights[5])
	}
}

func TestBuildInsights_SkipsMetadataSentencesWhenAbsent(t *testing.T) {
	charges := []models.LedgerCharge{charge("ch_1", 100, "USD", "succeeded")}
	report := BuildReport("wallet", "2024-06-01", "2024-06-07", charges, 10, time.Now())

	for _, s := range report.Insights {
		if strings.Contains(s, "card brand") || strings.Contains(s, "leading product") {
			t.Errorf("metadata sentence must be omitted without metadata: %q", s)
		}
	}
}

func TestLeadingMetadata_TieBreaksLexically(t *testing.T) {
	charges := []models.LedgerCharge{
		charge("ch_1", 100, "USD", "succeeded", withMetadata(map[string]string{"card_brand": "visa"})),
		charge("ch_2", 100, "USD", "succeeded", withMetadata(map[string]string{"card_brand": "amex"})),
		charge("ch_3", 100, "USD", "succeeded", withMetadata(map[string]string{"card_brand": "  "})),
	}
	if got := leadingMetadata(charges, "card_brand"); got != "amex" {
		t.Errorf("tied counts must break lexically, got %q", got)
	}
	if got := leadingMetadata(charges, "missing"); got != "" {
		t.Errorf("absent key must yield empty, got %q", got)
	}
}
