package domain

// PaymentIntent is the processor-side object representing an
// authorized-but-not-yet-confirmed charge attempt. The client secret is a
// one-time-use token; an intent is created on submit, confirmed once, and
// never reused.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// Payment outcome statuses. The confirmation flow treats anything other
// than an immediate OutcomeSucceeded as a failure; no pending state is
// tracked client-side.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// PaymentOutcome is the terminal result of confirming a PaymentIntent.
type PaymentOutcome struct {
	PaymentIntentID string `json:"id"`
	Status          string `json:"status"`
}

// Succeeded reports whether the outcome may trigger ledger recording.
func (o *PaymentOutcome) Succeeded() bool {
	return o != nil && o.Status == OutcomeSucceeded
}

// BillingDetails identifies the donor on the processor side.
type BillingDetails struct {
	Name  string
	Email string
}
