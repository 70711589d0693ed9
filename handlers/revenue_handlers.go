// api/handlers/revenue_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cartpulse/api/ledger"
	"cartpulse/api/revenue"
	"cartpulse/api/utils"
)

type RevenueHandlers struct {
	Card   ledger.Source
	Wallet ledger.Source
	Rates  revenue.RateSource
	// OverrideRates always take precedence over fetched rates when converting.
	OverrideRates map[string]float64
}

func NewRevenueHandlers(card, wallet ledger.Source, rates revenue.RateSource, overrides map[string]float64) *RevenueHandlers {
	return &RevenueHandlers{Card: card, Wallet: wallet, Rates: rates, OverrideRates: overrides}
}

// GetCardRevenue returns the per-currency and per-customer rollup for the
// card-payment ledger. Ledger or FX failures abort the request.
func (h *RevenueHandlers) GetCardRevenue(c *gin.Context) {
	h.rollup(c, h.Card)
}

// GetWalletRevenue returns the rollup for the wallet-payment ledger. An
// unreachable wallet ledger degrades to an empty, clearly-labeled report.
func (h *RevenueHandlers) GetWalletRevenue(c *gin.Context) {
	h.rollup(c, h.Wallet)
}

func (h *RevenueHandlers) rollup(c *gin.Context, src ledger.Source) {
	r, ok := resolveRange(c)
	if !ok {
		return
	}

	topN, parsed := utils.IntQueryParam(c.Query("topCustomers"), revenue.DefaultTopCustomers)
	if !parsed || topN > revenue.MaxTopCustomers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'topCustomers' parameter. Must be an integer between 1 and 50."})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	// The range is calendar dates; the ledger windows are inclusive of the
	// end date's full day.
	start := r.Start
	end := r.End.Add(24*time.Hour - time.Second)

	charges, err := ledger.Collect(ctx, src, start, end)
	if err != nil {
		if errors.Is(err, ledger.ErrMissingCredential) {
			log.Printf("%s ledger credential missing: %v", src.Name(), err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger credentials are not configured"})
			return
		}
		log.Printf("Error listing %s charges: %v", src.Name(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve charges from the payment ledger"})
		return
	}

	report := revenue.BuildReport(src.Name(), r.StartString(), r.EndString(), charges, topN, time.Now())

	if convertTo := c.Query("convertTo"); convertTo != "" {
		converter, err := revenue.NewConverter(ctx, convertTo, h.Rates, h.OverrideRates)
		if err != nil {
			log.Printf("Error fetching FX rates for %s: %v", convertTo, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve exchange rates"})
			return
		}
		if err := converter.ConvertReportTotal(&report); err != nil {
			if errors.Is(err, revenue.ErrNoRateAvailable) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Printf("Error converting report total: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert report total"})
			return
		}
	}

	c.JSON(http.StatusOK, report)
}
