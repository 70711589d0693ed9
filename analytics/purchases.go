// api/analytics/purchases.go
package analytics

import (
	"time"

	"cartpulse/api/models"
)

// ExtractPurchases isolates purchase-type events with a non-null transaction
// identifier and pulls their transaction-level fields out of the parameter
// map. Rows lacking a transaction id are dropped. ingestedAt is fixed at query
// time for the whole batch.
func ExtractPurchases(events []models.Event, ingestedAt time.Time) []models.Purchase {
	purchases := make([]models.Purchase, 0, len(events))
	for _, ev := range events {
		if ev.Name != models.EventPurchase {
			continue
		}
		tid := ev.Params.Str("transaction_id")
		if tid == nil || *tid == "" {
			continue
		}
		p := models.Purchase{
			TransactionID:   *tid,
			MerchantOrderID: ev.Params.FirstStr("merchant_order_id", "unique_order_id"),
			PaymentType:     ev.Params.Str("payment_type"),
			Currency:        ev.Params.Str("currency"),

			GrossValue:    ev.Params.Number("value"),
			TaxValue:      ev.Params.Number("tax"),
			ShippingValue: ev.Params.Number("shipping"),
			DiscountValue: ev.Params.Number("discount"),
			Coupon:        ev.Params.Str("coupon"),
			Affiliation:   ev.Params.Str("affiliation"),
			CustomerID:    ev.Params.FirstStr("customer_id", "user_id"),
			TotalQuantity: ev.Params.Number("total_quantity"),
			UniqueItems:   ev.Params.Number("unique_items"),

			// Click identifiers come from the purchase event itself, not the
			// session verdict.
			GclID: ev.Params.Str("gclid"),
			DclID: ev.Params.Str("dclid"),

			IsRefund: false,

			VisitorID:  ev.VisitorID,
			SessionID:  ev.SessionID,
			SessionKey: ev.SessionKey(),
			Timestamp:  ev.Timestamp,
			IngestedAt: ingestedAt,
		}
		purchases = append(purchases, p)
	}
	return purchases
}

// JoinPurchaseSessions left-joins each purchase to its session by the shared
// composite key. Every purchase is retained; the session pointer is nil when
// no session matches.
func JoinPurchaseSessions(purchases []models.Purchase, sessions []models.Session) []models.PurchaseSessionRecord {
	byKey := make(map[string]*models.Session, len(sessions))
	for i := range sessions {
		byKey[sessions[i].SessionKey] = &sessions[i]
	}

	records := make([]models.PurchaseSessionRecord, 0, len(purchases))
	for _, p := range purchases {
		records = append(records, models.PurchaseSessionRecord{
			Purchase: p,
			Session:  byKey[p.SessionKey],
		})
	}
	return records
}
