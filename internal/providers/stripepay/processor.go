package stripepay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v74"
	stripeclient "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"bloodlink/internal/domain"
)

// Processor is the payment-processor boundary the rest of the repo depends
// on. Settlement is entirely the processor's concern; this surface only
// creates intents, confirms them, and verifies webhook signatures.
type Processor interface {
	Ready() bool
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string, billing domain.BillingDetails) (*domain.PaymentOutcome, error)
	GetIntent(ctx context.Context, id string) (*domain.PaymentIntent, string, error)
}

// Client implements Processor on the Stripe SDK.
type Client struct {
	api           *stripeclient.API
	webhookSecret string
	logger        zerolog.Logger
}

func New(secretKey, webhookSecret string, logger zerolog.Logger) *Client {
	c := &Client{webhookSecret: webhookSecret, logger: logger}
	if secretKey != "" {
		c.api = &stripeclient.API{}
		c.api.Init(secretKey, nil)
	}
	return c
}

// Ready reports whether the SDK client finished initializing. Callers must
// fail fast on false instead of passing nil handles downstream.
func (c *Client) Ready() bool {
	return c != nil && c.api != nil
}

func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	if !c.Ready() {
		return nil, domain.ErrPaymentSystemNotReady
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		c.logger.Error().Err(err).Int64("amount", amountMinor).Msg("stripe: create intent failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentSetup, err)
	}
	if pi.ClientSecret == "" {
		return nil, fmt.Errorf("%w: intent %s has no client secret", domain.ErrPaymentSetup, pi.ID)
	}
	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string, billing domain.BillingDetails) (*domain.PaymentOutcome, error) {
	if !c.Ready() {
		return nil, domain.ErrPaymentSystemNotReady
	}
	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx
	if billing.Email != "" {
		params.ReceiptEmail = stripe.String(billing.Email)
	}

	pi, err := c.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		var sErr *stripe.Error
		if errors.As(err, &sErr) && sErr.Msg != "" {
			return nil, &domain.ConfirmationError{Reason: sErr.Msg}
		}
		return nil, &domain.ConfirmationError{Reason: err.Error()}
	}
	return &domain.PaymentOutcome{
		PaymentIntentID: pi.ID,
		Status:          string(pi.Status),
	}, nil
}

// GetIntent fetches the current amount and status of an intent. The funds
// handler uses it to enforce that the recorded amount equals the charged
// amount.
func (c *Client) GetIntent(ctx context.Context, id string) (*domain.PaymentIntent, string, error) {
	if !c.Ready() {
		return nil, "", domain.ErrPaymentSystemNotReady
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, "", fmt.Errorf("stripe: get intent %s: %w", id, err)
	}
	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, string(pi.Status), nil
}

// VerifyWebhook checks the signature header and returns the parsed event.
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error) {
	if c.webhookSecret == "" {
		return nil, errors.New("stripe: webhook secret not configured")
	}
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: verify webhook: %w", err)
	}
	return &event, nil
}

// IntentIDFromClientSecret derives the intent id from a client secret of the
// form "pi_xxx_secret_yyy".
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret")
	if idx <= 0 {
		return "", fmt.Errorf("%w: malformed client secret", domain.ErrPaymentSetup)
	}
	return clientSecret[:idx], nil
}

var _ Processor = (*Client)(nil)
