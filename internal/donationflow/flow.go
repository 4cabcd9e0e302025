package donationflow

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

// Confirmer is the processor-side confirmation surface. Ready must be
// checked before ConfirmPayment: the flow fails fast instead of passing an
// uninitialized client downstream.
type Confirmer interface {
	Ready() bool
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string, billing domain.BillingDetails) (*domain.PaymentOutcome, error)
}

// Session is the donor identity injected per submission by the caller.
type Session struct {
	Name      string
	Email     string
	Anonymous bool
}

// Submission is one attempt to donate. Amount is the user's decimal input
// in major units; it is validated and converted to minor units exactly once.
type Submission struct {
	Amount          float64
	Currency        string
	PaymentMethodID string
	Campaign        string
	Session         Session
}

// State tracks one flow through the submission protocol.
type State int32

const (
	StateIdle State = iota
	StateConfirming
	StateSucceeded
	StateFailed
)

// FailureKind classifies how a submission failed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInFlight
	FailureCancelled
	FailureInvalidAmount
	FailureSystemNotReady
	FailureSetup
	FailureConfirmation
	FailureRecord
)

// Result is the typed outcome of one submission. Callers decide what UI
// action to take; the flow itself never renders anything.
type Result struct {
	Succeeded       bool
	AlreadyRecorded bool
	Failure         FailureKind
	AmountMinor     int64
	Currency        string
	Outcome         *domain.PaymentOutcome
	Message         string
	Err             error
}

// ConfirmPrompt is the blocking "donate this amount?" step. Returning false
// aborts the submission before any network call.
type ConfirmPrompt func(amountMinor int64, currency string) bool

// Flow drives one donation submission through its protocol: validate,
// confirm intent with the donor, check processor readiness, create the
// payment intent, confirm the card, record the fund. Steps run strictly
// sequentially and nothing is retried automatically.
type Flow struct {
	backend   Backend
	confirmer Confirmer
	prompt    ConfirmPrompt
	messages  *Catalog
	logger    zerolog.Logger

	inFlight atomic.Bool
	state    atomic.Int32
}

type Option func(*Flow)

// WithConfirmPrompt installs the blocking donor confirmation step. Without
// it submissions proceed directly to payment.
func WithConfirmPrompt(prompt ConfirmPrompt) Option {
	return func(f *Flow) { f.prompt = prompt }
}

func WithLocale(locale string) Option {
	return func(f *Flow) { f.messages = NewCatalog(locale) }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

func New(backend Backend, confirmer Confirmer, opts ...Option) *Flow {
	f := &Flow{
		backend:   backend,
		confirmer: confirmer,
		messages:  NewCatalog("en"),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the flow's current protocol state.
func (f *Flow) State() State {
	return State(f.state.Load())
}

// MinorUnits validates a decimal donation amount and converts it to minor
// units. The minimum is 1.00 and at most two decimal places are accepted.
func MinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, domain.ErrInvalidAmount
	}
	if amount < 1.00 {
		return 0, domain.ErrInvalidAmount
	}
	scaled := amount * 100
	minor := math.Round(scaled)
	if math.Abs(scaled-minor) > 1e-6 {
		return 0, domain.ErrInvalidAmount
	}
	if minor > math.MaxInt64 {
		return 0, domain.ErrInvalidAmount
	}
	return int64(minor), nil
}

// Submit runs the donation protocol once. Overlapping submissions on the
// same Flow are rejected; the caller resubmits from idle after any failure.
func (f *Flow) Submit(ctx context.Context, sub Submission) Result {
	if !f.inFlight.CompareAndSwap(false, true) {
		return Result{Failure: FailureInFlight, Message: f.messages.InFlight(), Err: errors.New("submission already in flight")}
	}
	defer f.inFlight.Store(false)

	f.state.Store(int32(StateIdle))

	currency := sub.Currency
	if currency == "" {
		currency = "usd"
	}

	// Step 1: local validation, before any network call.
	amountMinor, err := MinorUnits(sub.Amount)
	if err != nil {
		f.state.Store(int32(StateFailed))
		return Result{Failure: FailureInvalidAmount, Message: f.messages.InvalidAmount(), Err: err}
	}

	// Step 2: blocking donor confirmation. Declining is a clean abort, not
	// an error.
	if f.prompt != nil && !f.prompt(amountMinor, currency) {
		return Result{Failure: FailureCancelled, Message: f.messages.Cancelled()}
	}

	// Step 3: processor readiness.
	if f.confirmer == nil || !f.confirmer.Ready() {
		f.state.Store(int32(StateFailed))
		return Result{
			Failure: FailureSystemNotReady,
			Message: f.messages.NotReady(),
			Err:     domain.ErrPaymentSystemNotReady,
		}
	}

	// Step 4: create the payment intent.
	intent, err := f.backend.CreateIntent(ctx, amountMinor, currency)
	if err != nil {
		f.state.Store(int32(StateFailed))
		f.logger.Error().Err(err).Int64("amount", amountMinor).Msg("intent creation failed")
		return Result{Failure: FailureSetup, Message: f.messages.SetupFailed(), Err: err}
	}

	// Step 5: confirm the card. The intent's amount is carried through
	// unchanged; nothing may mutate it between creation and recording.
	f.state.Store(int32(StateConfirming))
	outcome, err := f.confirmer.ConfirmPayment(ctx, intent.ClientSecret, sub.PaymentMethodID, billingFor(sub.Session))
	if err != nil {
		f.state.Store(int32(StateFailed))
		message := f.messages.NotCompleted()
		var ce *domain.ConfirmationError
		if errors.As(err, &ce) && ce.Reason != "" {
			message = ce.Reason
		}
		return Result{Failure: FailureConfirmation, Message: message, Err: err}
	}
	if !outcome.Succeeded() {
		f.state.Store(int32(StateFailed))
		return Result{
			Failure: FailureConfirmation,
			Message: f.messages.NotCompleted(),
			Outcome: outcome,
			Err:     &domain.ConfirmationError{Reason: "payment status " + outcome.Status},
		}
	}

	// Step 6: record the fund. A duplicate (409) means a previous attempt
	// already landed; that is success, not an error.
	fund := &domain.Fund{
		UserEmail:       sub.Session.Email,
		UserName:        donorName(sub.Session),
		AmountMinor:     intent.AmountMinor,
		Currency:        currency,
		PaymentIntentID: outcome.PaymentIntentID,
		Status:          outcome.Status,
		Metadata:        fundMetadata(sub.Campaign),
	}
	recordErr := f.backend.RecordFund(ctx, fund)
	switch {
	case recordErr == nil:
		f.state.Store(int32(StateSucceeded))
		return Result{
			Succeeded:   true,
			AmountMinor: amountMinor,
			Currency:    currency,
			Outcome:     outcome,
			Message:     f.messages.Success(amountMinor, currency),
		}
	case errors.Is(recordErr, domain.ErrRecordConflict):
		f.state.Store(int32(StateSucceeded))
		return Result{
			Succeeded:       true,
			AlreadyRecorded: true,
			AmountMinor:     amountMinor,
			Currency:        currency,
			Outcome:         outcome,
			Message:         f.messages.AlreadyRecorded(amountMinor, currency),
		}
	default:
		// The card was charged but the ledger write failed. The webhook
		// reconciler will backfill the record; surface that honestly
		// instead of a generic payment failure.
		f.state.Store(int32(StateFailed))
		f.logger.Error().Err(recordErr).
			Str("payment_intent", outcome.PaymentIntentID).
			Int64("amount", amountMinor).
			Msg("charge succeeded but ledger record failed; awaiting reconciliation")
		return Result{
			Failure:     FailureRecord,
			AmountMinor: amountMinor,
			Currency:    currency,
			Outcome:     outcome,
			Message:     f.messages.ChargedButUnrecorded(),
			Err:         recordErr,
		}
	}
}

func donorName(s Session) string {
	if s.Anonymous || s.Name == "" {
		return domain.AnonymousDonorName
	}
	return s.Name
}

func billingFor(s Session) domain.BillingDetails {
	return domain.BillingDetails{Name: donorName(s), Email: s.Email}
}

func fundMetadata(campaign string) json.RawMessage {
	meta := map[string]string{"source": "donation-flow"}
	if campaign != "" {
		meta["campaign"] = campaign
	}
	raw, _ := json.Marshal(meta)
	return raw
}
