package analytics

import (
	"context"
	"strings"
	"testing"

	"cartpulse/api/models"
)

// fakeSource serves canned events and records the filters it was called with.
type fakeSource struct {
	all       []models.Event
	purchases []models.Event
	calls     []string
}

func (f *fakeSource) Events(_ context.Context, _ DateRange, eventName string, limit, offset int) ([]models.Event, error) {
	f.calls = append(f.calls, eventName)
	if eventName == models.EventPurchase {
		if offset >= len(f.purchases) {
			return nil, nil
		}
		end := len(f.purchases)
		if limit > 0 && offset+limit < end {
			end = offset + limit
		}
		return f.purchases[offset:end], nil
	}
	return f.all, nil
}

func testWindow(t *testing.T) DateRange {
	t.Helper()
	return DateRange{Start: mustDate(t, "2024-06-01"), End: mustDate(t, "2024-06-07")}
}

func TestEngine_PurchaseSessions(t *testing.T) {
	purchase := purchaseEvent("v1", "s1", 60, models.Params{
		"transaction_id": models.StringParam("T-1"),
	})
	src := &fakeSource{
		all: []models.Event{
			pv("v1", "s1", 0, "https://shop.test/?utm_source=ads&utm_medium=cpc", nil),
			purchase,
		},
		purchases: []models.Event{purchase},
	}
	engine := NewEngine(src, noopResolver())

	records, err := engine.PurchaseSessions(context.Background(), testWindow(t), DefaultPageRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Session == nil {
		t.Fatalf("expected joined session")
	}
	if rec.Session.Attribution.Source != "ads" || rec.Session.Attribution.Medium != "cpc" {
		t.Errorf("expected UTM attribution on the joined session, got %s/%s",
			rec.Session.Attribution.Source, rec.Session.Attribution.Medium)
	}
}

func TestEngine_PurchaseSessions_PaginatesSequentially(t *testing.T) {
	var purchases []models.Event
	for _, id := range []string{"T-1", "T-2", "T-3"} {
		purchases = append(purchases, purchaseEvent("v", "s"+id, 0, models.Params{
			"transaction_id": models.StringParam(id),
		}))
	}
	src := &fakeSource{purchases: purchases}
	engine := NewEngine(src, noopResolver())

	records, err := engine.PurchaseSessions(context.Background(), testWindow(t), PageRequest{
		Limit: 10, Page: 1, PageSize: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}

	var purchaseFetches int
	for _, call := range src.calls {
		if call == models.EventPurchase {
			purchaseFetches++
		}
	}
	if purchaseFetches != 2 {
		t.Errorf("expected 2 purchase page fetches (2 rows then 1), got %d", purchaseFetches)
	}
}

func TestEngine_PurchaseSessions_TruncatesStrings(t *testing.T) {
	longCoupon := strings.Repeat("C", 300)
	purchase := purchaseEvent("v", "s", 0, models.Params{
		"transaction_id": models.StringParam("T-1"),
		"coupon":         models.StringParam(longCoupon),
	})
	src := &fakeSource{purchases: []models.Event{purchase}}
	engine := NewEngine(src, noopResolver())

	req := DefaultPageRequest()
	records, err := engine.PurchaseSessions(context.Background(), testWindow(t), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *records[0].Coupon; len(got) != 200 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated coupon of length 200 with marker, got length %d", len(got))
	}

	// Truncation off leaves the field intact.
	req.TruncateStrings = false
	records, err = engine.PurchaseSessions(context.Background(), testWindow(t), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *records[0].Coupon; len(got) != 300 {
		t.Errorf("expected untruncated coupon, got length %d", len(got))
	}
}
