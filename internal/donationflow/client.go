package donationflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
	"bloodlink/internal/providers/stripepay"
)

// Backend is the slice of the funds REST API the flow consumes.
type Backend interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (*domain.PaymentIntent, error)
	RecordFund(ctx context.Context, fund *domain.Fund) error
}

// Client talks to the funds backend. RecordFund maps the backend's 409
// duplicate response to ErrRecordConflict so the flow can treat it as
// success.
type Client struct {
	baseURL    string
	token      string
	locale     string
	httpClient *http.Client
	logger     zerolog.Logger
}

type ClientOption func(*Client)

// WithSessionToken attaches the platform session JWT to every request.
func WithSessionToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithClientLocale sets the X-Locale header sent to the backend.
func WithClientLocale(locale string) ClientOption {
	return func(c *Client) { c.locale = locale }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createIntentPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createIntentReply struct {
	ClientSecret string `json:"clientSecret"`
}

func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*domain.PaymentIntent, error) {
	var reply createIntentReply
	status, err := c.post(ctx, "/api/payments/create-intent", createIntentPayload{
		Amount:   amountMinor,
		Currency: currency,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentSetup, err)
	}
	if status != http.StatusOK || reply.ClientSecret == "" {
		return nil, fmt.Errorf("%w: backend returned status %d without client secret", domain.ErrPaymentSetup, status)
	}
	intentID, err := stripepay.IntentIDFromClientSecret(reply.ClientSecret)
	if err != nil {
		return nil, err
	}
	return &domain.PaymentIntent{
		ID:           intentID,
		ClientSecret: reply.ClientSecret,
		AmountMinor:  amountMinor,
		Currency:     currency,
	}, nil
}

type fundPayload struct {
	UserEmail       string          `json:"userEmail"`
	UserName        string          `json:"userName"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Status          string          `json:"status"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
}

func (c *Client) RecordFund(ctx context.Context, fund *domain.Fund) error {
	status, err := c.post(ctx, "/api/funds", fundPayload{
		UserEmail:       fund.UserEmail,
		UserName:        fund.UserName,
		Amount:          fund.AmountMinor,
		Currency:        fund.Currency,
		PaymentIntentID: fund.PaymentIntentID,
		Status:          fund.Status,
		Metadata:        fund.Metadata,
	}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRecordPersistence, err)
	}
	switch {
	case status == http.StatusConflict:
		return domain.ErrRecordConflict
	case status >= 200 && status < 300:
		return nil
	default:
		return fmt.Errorf("%w: backend returned status %d", domain.ErrRecordPersistence, status)
	}
}

func (c *Client) post(ctx context.Context, path string, body any, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.locale != "" {
		req.Header.Set("X-Locale", c.locale)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	} else {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	}
	return resp.StatusCode, nil
}

var _ Backend = (*Client)(nil)
