package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/pkg/logger"
)

const (
	defaultBaseURL = "https://api.nowpayments.io/v1"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config is everything the client needs; nothing is read from the environment.
type Config struct {
	BaseURL        string
	APIKey         string
	PayoutEmail    string
	PayoutPassword string
	Timeout        time.Duration
}

// Client talks to a NOWPayments-compatible API
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a gateway client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// flexString accepts ids the API returns either as strings or as numbers
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type paymentResponse struct {
	PaymentID     flexString          `json:"payment_id"`
	PaymentStatus string              `json:"payment_status"`
	OrderID       string              `json:"order_id"`
	PayAddress    string              `json:"pay_address"`
	PayAmount     decimal.NullDecimal `json:"pay_amount"`
	PayCurrency   string              `json:"pay_currency"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// CreatePayment opens a payment for an order
func (c *Client) CreatePayment(ctx context.Context, req entities.PaymentRequest) (*entities.GatewayPayment, error) {
	body := map[string]interface{}{
		"price_amount":      jsonNumber(req.PriceAmount),
		"price_currency":    strings.ToLower(req.PriceCurrency),
		"pay_currency":      strings.ToLower(req.PayCurrency),
		"order_id":          req.OrderID,
		"order_description": req.OrderDescription,
	}
	if req.CallbackURL != "" {
		body["ipn_callback_url"] = req.CallbackURL
	}

	raw, err := c.do(ctx, http.MethodPost, "/payment", nil, body, "")
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

// GetPaymentStatus fetches the current state of a payment
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*entities.GatewayPayment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", domainerrors.ErrInvalidInput)
	}
	raw, err := c.do(ctx, http.MethodGet, "/payment/"+url.PathEscape(paymentID), nil, nil, "")
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

// GetEstimatedPrice converts amount from one currency into another
func (c *Client) GetEstimatedPrice(ctx context.Context, amount decimal.Decimal, from, to string) (*entities.PriceEstimate, error) {
	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("currency_from", strings.ToLower(from))
	q.Set("currency_to", strings.ToLower(to))

	raw, err := c.do(ctx, http.MethodGet, "/estimate", q, nil, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		CurrencyFrom    string          `json:"currency_from"`
		AmountFrom      decimal.Decimal `json:"amount_from"`
		CurrencyTo      string          `json:"currency_to"`
		EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode estimate: %v", domainerrors.ErrGateway, err)
	}
	return &entities.PriceEstimate{
		CurrencyFrom:    resp.CurrencyFrom,
		AmountFrom:      resp.AmountFrom,
		CurrencyTo:      resp.CurrencyTo,
		EstimatedAmount: resp.EstimatedAmount,
	}, nil
}

// GetMinimumAmount returns the smallest payment accepted for a currency pair
func (c *Client) GetMinimumAmount(ctx context.Context, from, to string) (*entities.MinimumAmount, error) {
	q := url.Values{}
	q.Set("currency_from", strings.ToLower(from))
	q.Set("currency_to", strings.ToLower(to))
	q.Set("fiat_equivalent", "usd")

	raw, err := c.do(ctx, http.MethodGet, "/min-amount", q, nil, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		CurrencyFrom   string              `json:"currency_from"`
		CurrencyTo     string              `json:"currency_to"`
		MinAmount      decimal.Decimal     `json:"min_amount"`
		FiatEquivalent decimal.NullDecimal `json:"fiat_equivalent"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode min amount: %v", domainerrors.ErrGateway, err)
	}
	return &entities.MinimumAmount{
		CurrencyFrom:   resp.CurrencyFrom,
		CurrencyTo:     resp.CurrencyTo,
		MinAmount:      resp.MinAmount,
		FiatEquivalent: resp.FiatEquivalent.Decimal,
	}, nil
}

// CreatePayout authenticates with the payout credentials and requests one withdrawal
func (c *Client) CreatePayout(ctx context.Context, req entities.PayoutRequest) (*entities.GatewayPayment, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	withdrawal := map[string]interface{}{
		"address":            req.Address,
		"currency":           strings.ToLower(req.Currency),
		"amount":             jsonNumber(req.Amount),
		"unique_external_id": req.Reference,
	}
	if req.CallbackURL != "" {
		withdrawal["ipn_callback_url"] = req.CallbackURL
	}
	body := map[string]interface{}{
		"withdrawals": []interface{}{withdrawal},
	}
	if req.CallbackURL != "" {
		body["ipn_callback_url"] = req.CallbackURL
	}

	raw, err := c.do(ctx, http.MethodPost, "/payout", nil, body, token)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID          flexString `json:"id"`
		Withdrawals []struct {
			ID               flexString          `json:"id"`
			Status           string              `json:"status"`
			Currency         string              `json:"currency"`
			Amount           decimal.NullDecimal `json:"amount"`
			UniqueExternalID string              `json:"unique_external_id"`
		} `json:"withdrawals"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode payout: %v", domainerrors.ErrGateway, err)
	}
	if len(resp.Withdrawals) == 0 {
		return nil, fmt.Errorf("%w: payout response has no withdrawals", domainerrors.ErrGateway)
	}

	w := resp.Withdrawals[0]
	return &entities.GatewayPayment{
		PaymentID:     string(w.ID),
		PaymentStatus: strings.ToLower(w.Status),
		OrderID:       w.UniqueExternalID,
		PayAddress:    req.Address,
		PayAmount:     w.Amount,
		PayCurrency:   w.Currency,
		Raw:           raw,
	}, nil
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	if c.cfg.PayoutEmail == "" || c.cfg.PayoutPassword == "" {
		return "", fmt.Errorf("%w: payout credentials are not configured", domainerrors.ErrGateway)
	}
	raw, err := c.do(ctx, http.MethodPost, "/auth", nil, map[string]string{
		"email":    c.cfg.PayoutEmail,
		"password": c.cfg.PayoutPassword,
	}, "")
	if err != nil {
		return "", err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Token == "" {
		return "", fmt.Errorf("%w: gateway auth returned no token", domainerrors.ErrGateway)
	}
	return resp.Token, nil
}

// jsonNumber renders a decimal as a bare JSON number; the API rejects quoted amounts
func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func decodePayment(raw []byte) (*entities.GatewayPayment, error) {
	var resp paymentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode payment: %v", domainerrors.ErrGateway, err)
	}
	if resp.PaymentID == "" {
		return nil, fmt.Errorf("%w: payment response has no payment_id", domainerrors.ErrGateway)
	}
	p := &entities.GatewayPayment{
		PaymentID:     string(resp.PaymentID),
		PaymentStatus: strings.ToLower(resp.PaymentStatus),
		OrderID:       resp.OrderID,
		PayAddress:    resp.PayAddress,
		PayAmount:     resp.PayAmount,
		PayCurrency:   resp.PayCurrency,
		Raw:           raw,
	}
	return p, nil
}

// do sends one request under the configured timeout and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, bearer string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domainerrors.ErrGateway, err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn(ctx, "gateway request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %v", domainerrors.ErrGateway, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domainerrors.ErrGateway, err)
	}

	logger.Debug(ctx, "gateway request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return nil, fmt.Errorf("%w: %s (status %d)", domainerrors.ErrGateway, msg, resp.StatusCode)
	}
	return raw, nil
}
