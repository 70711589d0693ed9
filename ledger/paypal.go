// api/ledger/paypal.go
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cartpulse/api/models"
)

// expressCheckoutCodes is the wallet event-code vocabulary retained for
// rollups. T-codes outside this set (fees, transfers, holds) are dropped.
var expressCheckoutCodes = map[string]struct{}{
	"T0000": {}, // general payment
	"T0001": {}, // MassPay payment
	"T0003": {}, // pre-approved payment
	"T0006": {}, // express checkout payment
	"T0007": {}, // website payments standard
	"T1106": {}, // payment reversal
	"T1107": {}, // payment refund
}

// refundEventCodes are wallet event codes that represent money moving back.
var refundEventCodes = map[string]struct{}{
	"T1106": {},
	"T1107": {},
}

// walletStatuses maps the provider's single-letter transaction status onto the
// normalized status vocabulary.
var walletStatuses = map[string]string{
	"S": "succeeded",
	"P": "pending",
	"D": "denied",
	"V": "reversed",
}

const walletPageSize = 100

// WalletLedger lists wallet transactions from the PayPal reporting API. Fetch
// failures degrade to an empty result set (logged, not raised) — callers build
// assumptions on the wallet side tolerating transient absence.
type WalletLedger struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Client       *http.Client
}

// NewWalletLedger builds a wallet adapter against the given API base URL
// (e.g. https://api-m.paypal.com).
func NewWalletLedger(baseURL, clientID, clientSecret string) *WalletLedger {
	return &WalletLedger{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       &http.Client{Timeout: 20 * time.Second},
	}
}

func (l *WalletLedger) Name() string           { return "wallet" }
func (l *WalletLedger) DegradeOnFailure() bool { return true }

// walletTransaction mirrors the subset of the transaction-detail schema the
// rollup needs.
type walletTransaction struct {
	TransactionInfo struct {
		TransactionID     string `json:"transaction_id"`
		EventCode         string `json:"transaction_event_code"`
		InitiationDate    string `json:"transaction_initiation_date"`
		TransactionStatus string `json:"transaction_status"`
		TransactionAmount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"transaction_amount"`
	} `json:"transaction_info"`
	PayerInfo struct {
		AccountID    string `json:"account_id"`
		EmailAddress string `json:"email_address"`
		PayerName    struct {
			AlternateFullName string `json:"alternate_full_name"`
		} `json:"payer_name"`
	} `json:"payer_info"`
}

type walletSearchResponse struct {
	TransactionDetails []walletTransaction `json:"transaction_details"`
	TotalPages         int                 `json:"total_pages"`
	Page               int                 `json:"page"`
}

// ListCharges walks the paginated transaction search bounded by the ISO-8601
// window, retaining only express-checkout vocabulary entries.
func (l *WalletLedger) ListCharges(ctx context.Context, start, end time.Time) ([]models.LedgerCharge, error) {
	if l.ClientID == "" || l.ClientSecret == "" {
		return nil, fmt.Errorf("%w: PAYPAL_CLIENT_ID / PAYPAL_CLIENT_SECRET are not set", ErrMissingCredential)
	}

	token, err := l.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	charges := []models.LedgerCharge{}
	for page := 1; ; page++ {
		resp, err := l.searchPage(ctx, token, start, end, page)
		if err != nil {
			return nil, err
		}
		for _, tx := range resp.TransactionDetails {
			charge, ok := walletCharge(tx)
			if !ok {
				continue
			}
			charges = append(charges, charge)
		}
		if resp.TotalPages == 0 || page >= resp.TotalPages {
			break
		}
	}
	return charges, nil
}

func (l *WalletLedger) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.BaseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("failed to build wallet token request: %w", err)
	}
	req.SetBasicAuth(l.ClientID, l.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := l.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet ledger unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wallet token request returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode wallet token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("wallet token response carried no access_token")
	}
	return body.AccessToken, nil
}

func (l *WalletLedger) searchPage(ctx context.Context, token string, start, end time.Time, page int) (*walletSearchResponse, error) {
	q := url.Values{}
	q.Set("start_date", start.UTC().Format(time.RFC3339))
	q.Set("end_date", end.UTC().Format(time.RFC3339))
	q.Set("fields", "transaction_info,payer_info")
	q.Set("page_size", strconv.Itoa(walletPageSize))
	q.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		l.BaseURL+"/v1/reporting/transactions?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wallet ledger unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet transaction search returned status %d", resp.StatusCode)
	}

	var body walletSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode wallet search response: %w", err)
	}
	return &body, nil
}

// walletCharge maps one transaction onto the normalized ledger shape. The
// second return value is false for entries outside the express-checkout
// vocabulary or with unparseable amounts.
func walletCharge(tx walletTransaction) (models.LedgerCharge, bool) {
	info := tx.TransactionInfo
	if _, ok := expressCheckoutCodes[info.EventCode]; !ok {
		return models.LedgerCharge{}, false
	}

	minor, err := amountToMinor(info.TransactionAmount.Value, info.TransactionAmount.CurrencyCode)
	if err != nil {
		return models.LedgerCharge{}, false
	}

	status := walletStatuses[info.TransactionStatus]
	if status == "" {
		status = strings.ToLower(info.TransactionStatus)
	}
	_, refunded := refundEventCodes[info.EventCode]

	createdAt, _ := time.Parse(time.RFC3339, info.InitiationDate)

	return models.LedgerCharge{
		ID:            info.TransactionID,
		AmountMinor:   minor,
		Currency:      strings.ToUpper(info.TransactionAmount.CurrencyCode),
		Status:        status,
		Refunded:      refunded || info.TransactionStatus == "V",
		CreatedAt:     createdAt.UTC(),
		CustomerID:    tx.PayerInfo.AccountID,
		CustomerEmail: tx.PayerInfo.EmailAddress,
		Metadata: map[string]string{
			"event_code": info.EventCode,
			"payer_name": tx.PayerInfo.PayerName.AlternateFullName,
		},
	}, true
}

// zeroDecimalWallet mirrors the zero-decimal set used by the rollup engine so
// the string-decimal amounts land on the same minor-unit scale.
var zeroDecimalWallet = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

func amountToMinor(value, currency string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("unparseable wallet amount %q: %w", value, err)
	}
	if _, ok := zeroDecimalWallet[strings.ToUpper(currency)]; !ok {
		d = d.Shift(2)
	}
	return d.IntPart(), nil
}
