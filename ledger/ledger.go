// api/ledger/ledger.go

// Package ledger adapts the two upstream payment ledgers (card and wallet)
// into the shared LedgerCharge shape consumed by the revenue rollup engine.
package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"cartpulse/api/models"
)

// ErrMissingCredential marks an adapter invoked without its API credential.
var ErrMissingCredential = errors.New("missing ledger credential")

// Source lists normalized charges created inside an inclusive time window.
type Source interface {
	// Name identifies the provider in logs and reports.
	Name() string
	// DegradeOnFailure reports the adapter's failure policy: true means fetch
	// errors degrade to an empty charge set instead of failing the request.
	DegradeOnFailure() bool
	ListCharges(ctx context.Context, start, end time.Time) ([]models.LedgerCharge, error)
}

// Collect fetches charges from a source, applying its failure policy: a
// degrading source logs the error and returns an empty (non-nil) set, while a
// strict source propagates the error and aborts the request. Callers depend on
// this asymmetry; do not normalize it.
func Collect(ctx context.Context, src Source, start, end time.Time) ([]models.LedgerCharge, error) {
	charges, err := src.ListCharges(ctx, start, end)
	if err != nil {
		if src.DegradeOnFailure() {
			log.Printf("WARN: %s ledger fetch failed, degrading to empty result: %v", src.Name(), err)
			return []models.LedgerCharge{}, nil
		}
		return nil, err
	}
	if charges == nil {
		charges = []models.LedgerCharge{}
	}
	return charges, nil
}
