package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrPaymentSystemNotReady = errors.New("payment system not ready")
	ErrPaymentSetup          = errors.New("payment setup failed")
	ErrRecordConflict        = errors.New("donation already recorded")
	ErrRecordPersistence     = errors.New("failed to record donation")
)

// ConfirmationError carries the processor-supplied reason for a failed
// card confirmation (e.g. a decline). The reason is shown to the donor
// verbatim.
type ConfirmationError struct {
	Reason string
}

func (e *ConfirmationError) Error() string {
	if e.Reason == "" {
		return "payment confirmation failed"
	}
	return e.Reason
}
