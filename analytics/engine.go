// api/analytics/engine.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"cartpulse/api/models"
)

// EventSource abstracts the warehouse reader. eventName filters server-side
// when non-empty; limit <= 0 means unbounded, offset applies only with a
// limit. Both range bounds are always concrete here — open-ended reads are a
// store-level concern.
type EventSource interface {
	Events(ctx context.Context, r DateRange, eventName string, limit, offset int) ([]models.Event, error)
}

// Engine runs the session reconstruction and purchase attribution pipeline
// over a fetched event window. It holds no state between queries; sessions are
// recomputed per request.
type Engine struct {
	source   EventSource
	resolver *AttributionResolver
	now      func() time.Time
}

// NewEngine wires an engine to a warehouse source and attribution resolver.
func NewEngine(source EventSource, resolver *AttributionResolver) *Engine {
	return &Engine{source: source, resolver: resolver, now: time.Now}
}

// SessionTable fetches the full (unfiltered) event window and reconstructs one
// attributed session per (visitor, session-id) pair.
func (e *Engine) SessionTable(ctx context.Context, r DateRange) ([]models.Session, error) {
	events, err := e.source.Events(ctx, r, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read events for session table: %w", err)
	}
	return ReconstructSessions(events, e.resolver), nil
}

// PurchaseSessions produces the paginated purchase-session record set for a
// window: purchase events are accumulated page by page, extracted, and
// left-joined against the window's session table.
func (e *Engine) PurchaseSessions(ctx context.Context, r DateRange, req PageRequest) ([]models.PurchaseSessionRecord, error) {
	req = req.Normalize()

	purchaseEvents, err := AccumulatePages(req, func(limit, offset int) ([]models.Event, error) {
		return e.source.Events(ctx, r, models.EventPurchase, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase events: %w", err)
	}

	sessions, err := e.SessionTable(ctx, r)
	if err != nil {
		return nil, err
	}

	purchases := ExtractPurchases(purchaseEvents, e.now().UTC())
	records := JoinPurchaseSessions(purchases, sessions)

	if req.TruncateStrings {
		for i := range records {
			truncateRecord(&records[i])
		}
	}
	return records, nil
}

// truncateRecord clips every free-form string field on the record. Join keys
// and identifiers are left alone.
func truncateRecord(rec *models.PurchaseSessionRecord) {
	TruncatePtr(rec.MerchantOrderID)
	TruncatePtr(rec.PaymentType)
	TruncatePtr(rec.Coupon)
	TruncatePtr(rec.Affiliation)
	TruncatePtr(rec.GclID)
	TruncatePtr(rec.DclID)
	if s := rec.Session; s != nil {
		TruncatePtr(s.LandingPageURL)
		TruncatePtr(s.LandingPageTitle)
		TruncatePtr(s.ExitPageURL)
		TruncatePtr(s.Attribution.Term)
		TruncatePtr(s.Attribution.Content)
		TruncatePtr(s.Attribution.GclID)
		TruncatePtr(s.Attribution.DclID)
	}
}
