// api/revenue/fx.go
package revenue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cartpulse/api/models"
)

// ErrNoRateAvailable marks an FX conversion request for a currency with no
// published rate and no override. No default is substituted except the fixed
// 1.0 rate for the base currency itself.
var ErrNoRateAvailable = errors.New("no exchange rate available")

// RateSource returns a map of currency code to rate for a base currency.
type RateSource interface {
	Rates(ctx context.Context, base string) (map[string]float64, error)
}

// HTTPRateSource fetches rates from a frankfurter-style endpoint:
// GET {baseURL}/latest?base=USD -> {"base":"USD","rates":{"EUR":0.92,...}}.
type HTTPRateSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPRateSource builds a rate source with a bounded request timeout.
func NewHTTPRateSource(baseURL string) *HTTPRateSource {
	return &HTTPRateSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPRateSource) Rates(ctx context.Context, base string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/latest?base=%s", s.BaseURL, url.QueryEscape(strings.ToUpper(base)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build FX request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FX service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FX service returned status %d", resp.StatusCode)
	}

	var body struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode FX response: %w", err)
	}
	rates := make(map[string]float64, len(body.Rates))
	for code, rate := range body.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	return rates, nil
}

// Converter converts major-unit amounts into a single base currency. Override
// rates always take precedence over fetched rates; the base converts at a
// fixed 1.0.
type Converter struct {
	Base      string
	Rates     map[string]float64
	Overrides map[string]float64
}

// NewConverter resolves the rate table for base, preferring overrides.
// Passing a nil source skips the fetch entirely (override-only operation);
// with a source, a fetch failure propagates even when overrides exist, so an
// outage never degrades into a partial rate table.
func NewConverter(ctx context.Context, base string, source RateSource, overrides map[string]float64) (*Converter, error) {
	base = strings.ToUpper(base)
	c := &Converter{Base: base, Overrides: normalizeRates(overrides)}
	if source != nil {
		rates, err := source.Rates(ctx, base)
		if err != nil {
			return nil, err
		}
		c.Rates = rates
	}
	return c, nil
}

// rate returns the divisor that maps one unit of the base currency onto
// currency. A published rate of R means 1 base = R currency, so converting
// currency back to base divides by R.
func (c *Converter) rate(currency string) (float64, error) {
	currency = strings.ToUpper(currency)
	if currency == c.Base {
		return 1.0, nil
	}
	if r, ok := c.Overrides[currency]; ok && r > 0 {
		return r, nil
	}
	if r, ok := c.Rates[currency]; ok && r > 0 {
		return r, nil
	}
	return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrNoRateAvailable, currency, c.Base)
}

// ConvertMajor converts a major-unit amount from currency into the base.
func (c *Converter) ConvertMajor(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	r, err := c.rate(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(decimal.NewFromFloat(r)).Round(2), nil
}

// ConvertReportTotal sums every per-currency gross into the converter's base
// currency. Fails with ErrNoRateAvailable when any observed currency has no
// rate and no override.
func (c *Converter) ConvertReportTotal(report *models.RevenueReport) error {
	total := decimal.Zero
	for _, b := range report.Currencies {
		converted, err := c.ConvertMajor(b.GrossMajor, b.Currency)
		if err != nil {
			return err
		}
		total = total.Add(converted)
	}
	report.ConvertedTotal = &models.ConvertedTotal{Currency: c.Base, GrossMajor: total}
	return nil
}

func normalizeRates(rates map[string]float64) map[string]float64 {
	if len(rates) == 0 {
		return nil
	}
	out := make(map[string]float64, len(rates))
	for code, rate := range rates {
		out[strings.ToUpper(code)] = rate
	}
	return out
}
