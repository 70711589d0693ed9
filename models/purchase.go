// api/models/purchase.go
package models

import "time"

// Purchase is one purchase-type event with a non-null transaction identifier.
// Rows lacking a transaction id are dropped by the extractor.
type Purchase struct {
	TransactionID   string  `json:"transactionId"`
	MerchantOrderID *string `json:"merchantOrderId,omitempty"`
	PaymentType     *string `json:"paymentType,omitempty"`
	Currency        *string `json:"currency,omitempty"`

	GrossValue    *float64 `json:"grossValue,omitempty"`
	TaxValue      *float64 `json:"taxValue,omitempty"`
	ShippingValue *float64 `json:"shippingValue,omitempty"`
	DiscountValue *float64 `json:"discountValue,omitempty"`
	Coupon        *string  `json:"coupon,omitempty"`
	Affiliation   *string  `json:"affiliation,omitempty"`
	CustomerID    *string  `json:"customerId,omitempty"`
	TotalQuantity *float64 `json:"totalQuantity,omitempty"`
	UniqueItems   *float64 `json:"uniqueItems,omitempty"`

	GclID *string `json:"gclid,omitempty"`
	DclID *string `json:"dclid,omitempty"`

	// Refund linkage comes from a separate upstream mechanism; for warehouse
	// purchases these hold their static defaults.
	IsRefund            bool     `json:"isRefund"`
	RefundAmount        *float64 `json:"refundAmount,omitempty"`
	ParentTransactionID *string  `json:"parentTransactionId,omitempty"`

	VisitorID  string    `json:"visitorId"`
	SessionID  string    `json:"sessionId"`
	SessionKey string    `json:"sessionKey"`
	Timestamp  time.Time `json:"timestamp"`
	IngestedAt time.Time `json:"ingestedAt"`
}

// PurchaseSessionRecord is a purchase left-joined to its originating session.
// Session-derived fields are nil when no session matched the join key.
type PurchaseSessionRecord struct {
	Purchase
	Session *Session `json:"session,omitempty"`
}
