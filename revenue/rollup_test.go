package revenue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cartpulse/api/models"
)

var chargeBase = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func charge(id string, minor int64, currency, status string, opts ...func(*models.LedgerCharge)) models.LedgerCharge {
	c := models.LedgerCharge{
		ID:          id,
		AmountMinor: minor,
		Currency:    currency,
		Status:      status,
		CreatedAt:   chargeBase,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func withCustomer(id, email string) func(*models.LedgerCharge) {
	return func(c *models.LedgerCharge) {
		c.CustomerID = id
		c.CustomerEmail = email
	}
}

func withCreated(t time.Time) func(*models.LedgerCharge) {
	return func(c *models.LedgerCharge) { c.CreatedAt = t }
}

func TestMajorUnits(t *testing.T) {
	tests := []struct {
		minor    int64
		currency string
		want     string
	}{
		{1050, "USD", "10.5"},
		{1050, "usd", "10.5"},
		{1050, "JPY", "1050"},
		{1050, "jpy", "1050"},
		{1050, "KRW", "1050"},
		{0, "EUR", "0"},
		{-250, "EUR", "-2.5"},
	}
	for _, tt := range tests {
		if got := MajorUnits(tt.minor, tt.currency); got.String() != tt.want {
			t.Errorf("MajorUnits(%d, %s) = %s, want %s", tt.minor, tt.currency, got, tt.want)
		}
	}
}

func TestIsRefundLike(t *testing.T) {
	tests := []struct {
		name   string
		charge models.LedgerCharge
		want   bool
	}{
		{"refunded flag", charge("ch_1", 100, "USD", "succeeded", func(c *models.LedgerCharge) { c.Refunded = true }), true},
		{"refunded status", charge("ch_2", 100, "USD", "refunded"), true},
		{"mixed-case status", charge("ch_3", 100, "USD", "Reversed"), true},
		{"british spelling", charge("ch_4", 100, "USD", "cancelled"), true},
		{"chargeback", charge("ch_5", 100, "USD", "charged_back"), true},
		{"succeeded", charge("ch_6", 100, "USD", "succeeded"), false},
		{"pending", charge("ch_7", 100, "USD", "pending"), false},
	}
	for _, tt := range tests {
		if got := IsRefundLike(tt.charge); got != tt.want {
			t.Errorf("%s: IsRefundLike = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRollupByCurrency(t *testing.T) {
	charges := []models.LedgerCharge{
		charge("ch_1", 1050, "usd", "succeeded"),
		charge("ch_2", 2000, "USD", "refunded"),
		charge("ch_3", 1050, "JPY", "succeeded"),
	}

	out := RollupByCurrency(charges)
	if len(out) != 2 {
		t.Fatalf("expected 2 currency groups, got %d", len(out))
	}

	// 1050 JPY major beats 30.50 USD major, so JPY sorts first.
	jpy := out[0]
	if jpy.Currency != "JPY" {
		t.Fatalf("expected JPY first by gross, got %s", jpy.Currency)
	}
	if jpy.GrossMajor.String() != "1050" {
		t.Errorf("zero-decimal gross: got %s", jpy.GrossMajor)
	}

	usd := out[1]
	if usd.Currency != "USD" || usd.Count != 2 {
		t.Fatalf("expected merged case-insensitive USD group with 2 charges, got %s/%d", usd.Currency, usd.Count)
	}
	if usd.GrossMinor != 3050 || usd.GrossMajor.String() != "30.5" {
		t.Errorf("got gross %d minor / %s major", usd.GrossMinor, usd.GrossMajor)
	}
	if usd.RefundedCount != 1 {
		t.Errorf("got refundedCount %d", usd.RefundedCount)
	}
	if usd.AvgTicketMajor == nil || usd.AvgTicketMajor.String() != "15.25" {
		t.Errorf("got avg ticket %v", usd.AvgTicketMajor)
	}
}

func TestRollupByCurrency_TieBreaksByCode(t *testing.T) {
	out := RollupByCurrency([]models.LedgerCharge{
		charge("ch_1", 1000, "GBP", "succeeded"),
		charge("ch_2", 1000, "EUR", "succeeded"),
	})
	if out[0].Currency != "EUR" || out[1].Currency != "GBP" {
		t.Errorf("equal gross must order by code, got %s then %s", out[0].Currency, out[1].Currency)
	}
}

func TestCustomerKey(t *testing.T) {
	tests := []struct {
		charge models.LedgerCharge
		want   string
	}{
		{charge("ch_1", 100, "USD", "succeeded", withCustomer("cus_9", "a@b.test")), "cus_9"},
		{charge("ch_2", 100, "USD", "succeeded", withCustomer("", "a@b.test")), "a@b.test"},
		{charge("ch_3", 100, "USD", "succeeded"), "unknown"},
	}
	for _, tt := range tests {
		if got := CustomerKey(tt.charge); got != tt.want {
			t.Errorf("CustomerKey(%s) = %s, want %s", tt.charge.ID, got, tt.want)
		}
	}
}

func TestRollupByCustomer(t *testing.T) {
	charges := []models.LedgerCharge{
		charge("ch_1", 5000, "USD", "succeeded", withCustomer("cus_a", ""), withCreated(chargeBase)),
		charge("ch_2", 3000, "USD", "succeeded", withCustomer("cus_a", ""), withCreated(chargeBase.Add(time.Hour))),
		charge("ch_3", 2000, "USD", "succeeded", withCustomer("", "b@shop.test")),
		charge("ch_4", 1000, "USD", "succeeded"),
	}

	out, total := RollupByCustomer(charges, 2)
	if total != 3 {
		t.Fatalf("expected 3 distinct customers before truncation, got %d", total)
	}
	if len(out) != 2 {
		t.Fatalf("expected top-2 truncation, got %d", len(out))
	}

	top := out[0]
	if top.CustomerKey != "cus_a" || top.Count != 2 || top.GrossMinor != 8000 {
		t.Fatalf("got top customer %s count=%d gross=%d", top.CustomerKey, top.Count, top.GrossMinor)
	}
	if top.LastChargeID != "ch_2" {
		t.Errorf("lastCharge must track the most recent charge, got %s", top.LastChargeID)
	}
	if len(top.CurrencyBreakdown) != 1 || top.CurrencyBreakdown[0].Currency != "USD" {
		t.Errorf("expected nested per-customer currency rollup")
	}
	if !top.GrossMajor.Equal(decimal.NewFromInt(80)) {
		t.Errorf("got gross major %s", top.GrossMajor)
	}

	if out[1].CustomerKey != "b@shop.test" {
		t.Errorf("expected email-keyed customer second, got %s", out[1].CustomerKey)
	}
}

func TestRollupByCustomer_TopNClamp(t *testing.T) {
	var charges []models.LedgerCharge
	for i := 0; i < 60; i++ {
		charges = append(charges, charge("ch", 100, "USD", "succeeded",
			withCustomer(string(rune('A'+i%26))+string(rune('a'+i/26)), "")))
	}

	if out, _ := RollupByCustomer(charges, 999); len(out) > MaxTopCustomers {
		t.Errorf("topN must clamp to %d, got %d", MaxTopCustomers, len(out))
	}
	if out, _ := RollupByCustomer(charges, 0); len(out) != DefaultTopCustomers {
		t.Errorf("topN <= 0 must fall back to default %d, got %d", DefaultTopCustomers, len(out))
	}
}

func TestBuildReport_EmptyWindow(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	report := BuildReport("card", "2024-06-01", "2024-06-07", nil, 0, now)

	if report.TotalCharges != 0 || report.TotalCustomers != 0 {
		t.Errorf("got totals %d/%d", report.TotalCharges, report.TotalCustomers)
	}
	if report.Currencies == nil || len(report.Currencies) != 0 {
		t.Errorf("currencies must be empty but non-nil")
	}
	if report.TopCustomers == nil || len(report.TopCustomers) != 0 {
		t.Errorf("topCustomers must be empty but non-nil")
	}
	if len(report.Insights) != 1 {
		t.Fatalf("empty window must yield exactly one sentinel insight, got %d", len(report.Insights))
	}
	if report.Insights[0] != "No card activity between 2024-06-01 and 2024-06-07." {
		t.Errorf("got sentinel %q", report.Insights[0])
	}
	if !report.GeneratedAt.Equal(now) {
		t.Errorf("got generatedAt %v", report.GeneratedAt)
	}
}

func TestBuildReport_Deterministic(t *testing.T) {
	charges := []models.LedgerCharge{
		charge("ch_1", 5000, "USD", "succeeded", withCustomer("cus_a", "")),
		charge("ch_2", 3000, "EUR", "refunded", withCustomer("cus_b", "")),
		charge("ch_3", 2000, "USD", "succeeded", withCustomer("cus_a", "")),
	}
	now := time.Now().UTC()

	first := BuildReport("card", "2024-06-01", "2024-06-07", charges, 10, now)
	second := BuildReport("card", "2024-06-01", "2024-06-07", charges, 10, now)

	if len(first.Insights) != len(second.Insights) {
		t.Fatalf("insight count differs between identical runs")
	}
	for i := range first.Insights {
		if first.Insights[i] != second.Insights[i] {
			t.Errorf("insight %d differs:\n  %s\n  %s", i, first.Insights[i], second.Insights[i])
		}
	}
	for i := range first.Currencies {
		if first.Currencies[i].Currency != second.Currencies[i].Currency {
			t.Errorf("currency order differs at %d", i)
		}
	}
}
